package config

import (
	"fmt"
	"strings"
)

const (
	StorageDriverBadger = "badger"
	StorageDriverMemory = "memory"
	StorageDriverNone   = "none"
	StorageDriverRedis  = "redis"
)

type Storage struct {
	Driver string `yaml:"driver"`

	Badger StorageBadger `yaml:"badger"`
	Redis  StorageRedis  `yaml:"redis"`
}

type StorageBadger struct {
	Dir      string `yaml:"dir"`
	InMemory bool   `yaml:"in_memory"`
}

type StorageRedis struct {
	Addrs    []string `yaml:"addrs"`
	Username string   `yaml:"username"`
	Password string   `yaml:"password"`
	DB       int      `yaml:"db"`
	SkipPing bool     `yaml:"skip_ping"`
}

func (c *Storage) Preprocess() error {
	c.Driver = strings.ToLower(strings.TrimSpace(c.Driver))

	switch c.Driver {
	case "":
		c.Driver = StorageDriverMemory
	case StorageDriverMemory, StorageDriverNone:
		// nothing to check
	case StorageDriverBadger:
		if c.Badger.Dir == "" && !c.Badger.InMemory {
			return fmt.Errorf("%w: badger requires a directory or in-memory mode",
				ErrInvalidStorage,
			)
		}
	case StorageDriverRedis:
		addrs := make([]string, 0, len(c.Redis.Addrs))
		for _, addr := range c.Redis.Addrs {
			if addr = strings.TrimSpace(addr); addr != "" {
				addrs = append(addrs, addr)
			}
		}
		if len(addrs) == 0 {
			return fmt.Errorf("%w: redis requires at least one address",
				ErrInvalidStorage,
			)
		}
		c.Redis.Addrs = addrs
	default:
		return fmt.Errorf("%w: unknown driver '%s'",
			ErrInvalidStorage, c.Driver,
		)
	}

	return nil
}
