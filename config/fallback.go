package config

import (
	"fmt"
	"net/url"
)

type Fallback struct {
	BaseURL string `yaml:"base_url"`
}

func (c *Fallback) Preprocess() error {
	u, err := url.Parse(c.BaseURL)
	if err != nil {
		return fmt.Errorf("%w: %w",
			ErrInvalidFallbackURL, err,
		)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("%w: unsupported scheme '%s'",
			ErrInvalidFallbackURL, u.Scheme,
		)
	}
	return nil
}
