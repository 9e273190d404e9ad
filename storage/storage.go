// Package storage provides the key-value backends the background cache
// record is persisted in.
package storage

import (
	"context"
	"errors"
)

var (
	ErrNotFound            = errors.New("key not found")
	ErrStorageFailedToOpen = errors.New("failed to open the storage")
)

// KV is a minimal string-keyed byte store.  Get returns ErrNotFound when the
// key is absent.  Implementations are safe for concurrent use.
type KV interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	Close() error
}
