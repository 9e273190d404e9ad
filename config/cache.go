package config

import (
	"fmt"
	"time"
)

type Cache struct {
	Key string        `yaml:"key"`
	TTL time.Duration `yaml:"ttl"`
}

func (c *Cache) Preprocess() error {
	if c.Key == "" {
		return fmt.Errorf("%w: empty key",
			ErrInvalidCache,
		)
	}
	if c.TTL <= 0 {
		return fmt.Errorf("%w: non-positive ttl %s",
			ErrInvalidCache, c.TTL,
		)
	}
	return nil
}
