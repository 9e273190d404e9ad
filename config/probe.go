package config

import (
	"fmt"
	"time"
)

type Probe struct {
	Timeout   time.Duration `yaml:"timeout"`
	MaxBytes  int64         `yaml:"max_bytes"`
	UserAgent string        `yaml:"user_agent"`
}

func (c *Probe) Preprocess() error {
	if c.Timeout <= 0 {
		return fmt.Errorf("%w: non-positive timeout %s",
			ErrInvalidProbe, c.Timeout,
		)
	}
	if c.MaxBytes <= 0 {
		return fmt.Errorf("%w: non-positive max bytes %d",
			ErrInvalidProbe, c.MaxBytes,
		)
	}
	return nil
}
