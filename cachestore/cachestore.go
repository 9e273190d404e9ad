// Package cachestore keeps the single expiring background record.
package cachestore

import (
	"context"
	"errors"
	"time"

	"github.com/bytedance/sonic"
	"go.uber.org/zap"

	"github.com/flashbots/backdrop/metrics"
	"github.com/flashbots/backdrop/storage"
)

const (
	DefaultKey = "background_image_cache"
	DefaultTTL = 24 * time.Hour
)

const (
	outcomeCorrupt     = "corrupt"
	outcomeExpired     = "expired"
	outcomeHit         = "hit"
	outcomeMiss        = "miss"
	outcomeUnavailable = "unavailable"
)

// Record is the persisted form of the last verified background.
type Record struct {
	URL string `json:"url"`

	// Timestamp is the epoch-millis of the write.
	Timestamp int64 `json:"timestamp"`
}

type Store struct {
	kv  storage.KV
	key string
	ttl time.Duration

	log *zap.Logger
	now func() time.Time
}

type Option func(*Store)

func WithKey(key string) Option {
	return func(s *Store) {
		s.key = key
	}
}

func WithTTL(ttl time.Duration) Option {
	return func(s *Store) {
		s.ttl = ttl
	}
}

func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		s.now = now
	}
}

func WithLogger(l *zap.Logger) Option {
	return func(s *Store) {
		s.log = l
	}
}

// New returns a store over kv.  A nil kv means storage is unavailable: every
// read misses and writes are dropped.
func New(kv storage.KV, opts ...Option) *Store {
	s := &Store{
		kv:  kv,
		key: DefaultKey,
		ttl: DefaultTTL,
		log: zap.L(),
		now: time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Read returns the record if one exists and is no older than the TTL.
// Expired records are deleted.  Storage and parse failures read as absent.
func (s *Store) Read(ctx context.Context) (*Record, bool) {
	if s.kv == nil {
		s.count(outcomeUnavailable)
		return nil, false
	}

	b, err := s.kv.Get(ctx, s.key)
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			s.log.Warn("Failed to read the background cache",
				zap.String("key", s.key),
				zap.Error(err),
			)
		}
		s.count(outcomeMiss)
		return nil, false
	}

	var rec Record
	if err := sonic.Unmarshal(b, &rec); err != nil || rec.URL == "" {
		s.log.Warn("Ignoring malformed background cache record",
			zap.String("key", s.key),
			zap.Error(err),
		)
		s.count(outcomeCorrupt)
		return nil, false
	}

	age := s.now().UnixMilli() - rec.Timestamp
	if age > s.ttl.Milliseconds() {
		s.log.Debug("Background cache record expired",
			zap.String("url", rec.URL),
			zap.Duration("age", time.Duration(age)*time.Millisecond),
		)
		s.Delete(ctx)
		s.count(outcomeExpired)
		return nil, false
	}

	s.count(outcomeHit)
	return &rec, true
}

// Write persists url stamped with the current time.  Best-effort.
func (s *Store) Write(ctx context.Context, url string) {
	if s.kv == nil {
		return
	}

	b, err := sonic.Marshal(&Record{
		URL:       url,
		Timestamp: s.now().UnixMilli(),
	})
	if err != nil {
		s.log.Error("Failed to encode the background cache record",
			zap.Error(err),
		)
		return
	}

	if err := s.kv.Set(ctx, s.key, b); err != nil {
		s.log.Warn("Failed to write the background cache",
			zap.String("key", s.key),
			zap.Error(err),
		)
	}
}

// Delete removes the record.  Best-effort.
func (s *Store) Delete(ctx context.Context) {
	if s.kv == nil {
		return
	}

	if err := s.kv.Delete(ctx, s.key); err != nil {
		s.log.Warn("Failed to delete the background cache",
			zap.String("key", s.key),
			zap.Error(err),
		)
	}
}

func (s *Store) count(outcome string) {
	metrics.CacheReadsCount.Add(context.Background(), 1,
		metrics.Outcome(outcome),
	)
}
