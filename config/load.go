package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// LoadFile overlays the YAML file at path onto cfg.  Keys absent from the
// file keep whatever value cfg already holds.
func LoadFile(path string, cfg *Config) error {
	b, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("%w: %s: %w",
			ErrConfigFailedToRead, path, err,
		)
	}

	if err := yaml.Unmarshal(b, cfg); err != nil {
		return fmt.Errorf("%w: %s: %w",
			ErrConfigFailedToParse, path, err,
		)
	}

	return nil
}
