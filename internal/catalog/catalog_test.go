package catalog

import (
	"testing"

	"github.com/MrWong99/littlewords/pkg/clipkey"
)

func TestItemWords_Counts(t *testing.T) {
	t.Parallel()

	// 26 letters, 10 numbers, 8 colours, 5 shapes, 21 animals, 13 birds,
	// 12 foods, 10 vehicles, 10 professions.
	const want = 26 + 10 + 8 + 5 + 21 + 13 + 12 + 10 + 10
	if got := len(ItemWords()); got != want {
		t.Fatalf("len(ItemWords()) = %d, want %d", got, want)
	}
}

func TestLearningPhrases(t *testing.T) {
	t.Parallel()

	words := ItemWords()
	phrases := LearningPhrases()
	if got, want := len(phrases), 2*len(words)+2; got != want {
		t.Fatalf("len(LearningPhrases()) = %d, want %d", got, want)
	}
	if phrases[len(words)] != ThatWas || phrases[len(words)+1] != TryToFind {
		t.Errorf("fragments = %q, %q; want %q, %q", phrases[len(words)], phrases[len(words)+1], ThatWas, TryToFind)
	}
	if got, want := phrases[len(phrases)-1], "Which one is Chauffeur?"; got != want {
		t.Errorf("last phrase = %q, want %q", got, want)
	}
}

func TestLearningPhrases_KeysUnique(t *testing.T) {
	t.Parallel()

	seen := make(map[string]string)
	for _, p := range LearningPhrases() {
		key := clipkey.Normalize(p)
		if key == "" {
			t.Errorf("phrase %q normalizes to an empty key", p)
			continue
		}
		if prev, ok := seen[key]; ok {
			t.Errorf("phrases %q and %q share key %q", prev, p, key)
		}
		seen[key] = p
	}
}

func TestLookup(t *testing.T) {
	t.Parallel()

	c, ok := Lookup("colors")
	if !ok {
		t.Fatal("Lookup(colors) not found")
	}
	if got := c.Items[0]; got.Name != "Red" || got.Hex != "#FF4D4D" {
		t.Errorf("first colour = %+v, want Red #FF4D4D", got)
	}
	if _, ok := Lookup("dinosaurs"); ok {
		t.Error("Lookup(dinosaurs) found, want missing")
	}
}

func TestDifficulty_OptionCount(t *testing.T) {
	t.Parallel()

	tests := []struct {
		d    Difficulty
		n    int
		want int
	}{
		{Easy, 26, 3},
		{Easy, 2, 2},
		{Medium, 26, 5},
		{Medium, 4, 4},
		{Hard, 26, 26},
		{Difficulty("bogus"), 10, 3},
	}
	for _, tt := range tests {
		if got := tt.d.OptionCount(tt.n); got != tt.want {
			t.Errorf("%s.OptionCount(%d) = %d, want %d", tt.d, tt.n, got, tt.want)
		}
	}
}

func TestParseDifficulty(t *testing.T) {
	t.Parallel()

	if d, err := ParseDifficulty("medium"); err != nil || d != Medium {
		t.Errorf("ParseDifficulty(medium) = %q, %v; want medium, nil", d, err)
	}
	if _, err := ParseDifficulty("extreme"); err == nil {
		t.Error("ParseDifficulty(extreme) returned nil error")
	}
}
