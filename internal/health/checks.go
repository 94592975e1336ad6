package health

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/MrWong99/littlewords/internal/resilience"
	"github.com/MrWong99/littlewords/pkg/clipkey"
	"github.com/MrWong99/littlewords/pkg/storage"
)

// ManifestChecker passes when the word manifest exists in fs and is a JSON
// array of strings.
func ManifestChecker(fs storage.FileStore) Checker {
	return Checker{
		Name: "manifest",
		Check: func(ctx context.Context) error {
			r, err := fs.Read(ctx, clipkey.ManifestPath)
			if err != nil {
				return err
			}
			defer r.Close()
			var keys []string
			if err := json.NewDecoder(r).Decode(&keys); err != nil {
				return fmt.Errorf("decode %s: %w", clipkey.ManifestPath, err)
			}
			return nil
		},
	}
}

// StorageChecker passes when fs answers an existence query.
func StorageChecker(fs storage.FileStore) Checker {
	return Checker{
		Name: "storage",
		Check: func(ctx context.Context) error {
			_, err := fs.Exists(ctx, clipkey.ManifestPath)
			return err
		},
	}
}

// SynthChecker fails when every synthesis engine's breaker is open.
func SynthChecker(states func() map[string]resilience.State) Checker {
	return Checker{
		Name: "synth",
		Check: func(context.Context) error {
			st := states()
			if len(st) == 0 {
				return errors.New("no engines configured")
			}
			var open []string
			for name, s := range st {
				if s != resilience.StateOpen {
					return nil
				}
				open = append(open, name)
			}
			return fmt.Errorf("all engines open: %s", strings.Join(open, ", "))
		},
	}
}
