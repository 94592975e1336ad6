package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"

	"github.com/MrWong99/littlewords/pkg/storage"
)

// Secrets are read from the environment rather than the config file.
type Secrets struct {
	ElevenLabsAPIKey string `env:"ELEVENLABS_API_KEY"`

	// S3 carries AWS_REGION, S3_ENDPOINT and the AWS credentials.
	S3 storage.S3Config
}

// LoadSecrets parses [Secrets] from the process environment.
func LoadSecrets() (Secrets, error) {
	var s Secrets
	if err := env.Parse(&s); err != nil {
		return Secrets{}, fmt.Errorf("config: environment: %w", err)
	}
	return s, nil
}

// ApplySecrets copies environment secrets into cfg. A key in the
// environment overrides one in the file.
func (c *Config) ApplySecrets(s Secrets) {
	if s.ElevenLabsAPIKey != "" {
		c.ElevenLabs.APIKey = s.ElevenLabsAPIKey
	}
}
