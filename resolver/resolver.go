// Package resolver decides which background URL to show: the cached one if it
// still loads, otherwise a freshly fetched one.
package resolver

import (
	"context"
	"time"

	otelapi "go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"

	"github.com/flashbots/backdrop/cachestore"
	"github.com/flashbots/backdrop/metrics"
	"github.com/flashbots/backdrop/probe"
)

const (
	outcomeCache    = "cache"
	outcomeFailed   = "failed"
	outcomeFallback = "fallback"
	outcomeOk       = "ok"
)

type Resolver struct {
	cache  *cachestore.Store
	prober probe.Prober
	source Source

	log *zap.Logger
	now func() time.Time
}

func New(cache *cachestore.Store, prober probe.Prober, source Source) *Resolver {
	return &Resolver{
		cache:  cache,
		prober: prober,
		source: source,
		log:    zap.L(),
		now:    time.Now,
	}
}

// Resolve returns the cached URL if it still loads, else a verified fallback
// URL (which is then persisted), else "".  Probes run one after another so a
// URL is persisted only after it loaded.
func (r *Resolver) Resolve(ctx context.Context) string {
	if rec, ok := r.cache.Read(ctx); ok {
		if r.prober.Probe(ctx, probe.SourceCache, rec.URL) {
			r.log.Debug("Using cached background",
				zap.String("url", rec.URL),
			)
			r.count(metrics.ResolutionsCount, outcomeCache)
			return rec.URL
		}

		r.log.Info("Cached background failed to load; discarding it",
			zap.String("url", rec.URL),
		)
		r.cache.Delete(ctx)
	}

	if url := r.fetch(ctx); url != "" {
		r.count(metrics.ResolutionsCount, outcomeFallback)
		return url
	}

	r.log.Warn("Failed to resolve a background")
	r.count(metrics.ResolutionsCount, outcomeFailed)
	return ""
}

// Refresh ignores the cache and returns a new verified URL, or "" when the
// candidate failed to load.  On success the cache is overwritten.
func (r *Resolver) Refresh(ctx context.Context) string {
	url := r.fetch(ctx)
	if url == "" {
		r.log.Warn("Failed to refresh the background")
		r.count(metrics.RefreshesCount, outcomeFailed)
		return ""
	}

	r.count(metrics.RefreshesCount, outcomeOk)
	return url
}

func (r *Resolver) fetch(ctx context.Context) string {
	url := r.source.Next(r.now())
	if !r.prober.Probe(ctx, probe.SourceFallback, url) {
		return ""
	}

	r.cache.Write(ctx, url)
	r.log.Info("Adopted new background",
		zap.String("url", url),
	)
	return url
}

func (r *Resolver) count(counter otelapi.Int64Counter, outcome string) {
	counter.Add(context.Background(), 1, metrics.Outcome(outcome))
}
