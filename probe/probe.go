// Package probe checks that an image URL actually loads before it is shown
// or persisted.
package probe

import (
	"context"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
	_ "golang.org/x/image/webp"

	"github.com/flashbots/backdrop/config"
	"github.com/flashbots/backdrop/metrics"
)

var (
	ErrProbeTimeout          = errors.New("image did not load in time")
	ErrProbeUnexpectedStatus = errors.New("unexpected HTTP status")
	ErrProbeUndecodable      = errors.New("response is not a decodable image")
)

// Prober reports whether url refers to an image that loads.  It never
// returns an error: every failure is a false.
type Prober interface {
	Probe(ctx context.Context, source, url string) bool
}

type Image struct {
	client   *resty.Client
	log      *zap.Logger
	maxBytes int64
	timeout  time.Duration
}

func New(cfg *config.Probe) *Image {
	log := zap.L()

	client := resty.New().
		SetLogger(log.Sugar()).
		SetHeader("accept", "image/webp,image/png,image/jpeg,image/gif;q=0.9,image/*;q=0.5").
		SetDoNotParseResponse(true)
	if cfg.UserAgent != "" {
		client.SetHeader("user-agent", cfg.UserAgent)
	}

	return &Image{
		client:   client,
		log:      log,
		maxBytes: cfg.MaxBytes,
		timeout:  cfg.Timeout,
	}
}

func (p *Image) Probe(ctx context.Context, source, url string) bool {
	res := p.Check(ctx, source, url)

	metrics.ProbesCount.Add(context.Background(), 1,
		metrics.SourceOutcome(res.Source, res.Outcome()),
	)

	if !res.Ok {
		p.log.Debug("Image probe failed",
			zap.Error(res.Error()),
		)
	}

	return res.Ok
}

// Check loads url and decodes its image header within the configured
// timeout.  When the timeout fires first the request is cancelled.
func (p *Image) Check(ctx context.Context, source, url string) *Result {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	r := &Result{Source: source, URL: url}

	res, err := p.client.R().
		SetContext(ctx).
		Get(url)
	if err != nil {
		r.Err = p.failure(ctx, err)
		return r
	}
	body := res.RawBody()
	defer body.Close()

	if res.StatusCode() < 200 || res.StatusCode() > 299 {
		r.Err = fmt.Errorf("%w '%d'",
			ErrProbeUnexpectedStatus, res.StatusCode(),
		)
		return r
	}

	img, format, err := image.DecodeConfig(io.LimitReader(body, p.maxBytes))
	if err != nil {
		r.Err = fmt.Errorf("%w: %w",
			ErrProbeUndecodable, p.failure(ctx, err),
		)
		return r
	}

	p.log.Debug("Image probe succeeded",
		zap.String("source", source),
		zap.String("url", url),
		zap.String("format", format),
		zap.Int("width", img.Width),
		zap.Int("height", img.Height),
	)

	r.Ok = true
	return r
}

func (p *Image) failure(ctx context.Context, err error) error {
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return fmt.Errorf("%w (%s): %w",
			ErrProbeTimeout, p.timeout, err,
		)
	}
	return err
}
