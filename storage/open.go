package storage

import (
	"context"
	"fmt"

	"github.com/flashbots/backdrop/config"
)

// Open returns the backend selected by cfg.Driver.  The "none" driver yields
// a nil KV, which callers treat as storage being unavailable.
func Open(ctx context.Context, cfg *config.Storage) (KV, error) {
	switch cfg.Driver {
	case config.StorageDriverMemory, "":
		return NewMemory(), nil
	case config.StorageDriverNone:
		return nil, nil
	case config.StorageDriverBadger:
		b, err := NewBadger(&cfg.Badger)
		if err != nil {
			return nil, err
		}
		return b, nil
	case config.StorageDriverRedis:
		r, err := NewRedis(ctx, &cfg.Redis)
		if err != nil {
			return nil, err
		}
		return r, nil
	default:
		return nil, fmt.Errorf("%w: unknown driver '%s'",
			ErrStorageFailedToOpen, cfg.Driver,
		)
	}
}
