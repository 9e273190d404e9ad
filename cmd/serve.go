package main

import (
	"time"

	"github.com/urfave/cli/v2"
	"go.uber.org/zap"

	"github.com/flashbots/backdrop/background"
	"github.com/flashbots/backdrop/cachestore"
	"github.com/flashbots/backdrop/config"
	"github.com/flashbots/backdrop/metrics"
	"github.com/flashbots/backdrop/probe"
	"github.com/flashbots/backdrop/resolver"
	"github.com/flashbots/backdrop/server"
	"github.com/flashbots/backdrop/storage"
)

const (
	categoryBackground = "Background:"
	categoryServing    = "Serving:"
	categoryStorage    = "Storage:"
)

func CommandServe(cfg *config.Config) *cli.Command {
	var (
		configFile     string
		allowedOrigins cli.StringSlice
		redisAddrs     cli.StringSlice
	)

	return &cli.Command{
		Name:  "serve",
		Usage: "run the background server",

		Flags: []cli.Flag{
			&cli.StringFlag{
				Destination: &configFile,
				EnvVars:     []string{"BACKDROP_CONFIG"},
				Name:        "config",
				Usage:       "load settings from the YAML `file` (its values win over flags)",
			},

			// Serving

			&cli.StringFlag{
				Category:    categoryServing,
				Destination: &cfg.Server.ListenAddress,
				EnvVars:     []string{"BACKDROP_LISTEN_ADDRESS"},
				Name:        "listen-address",
				Usage:       "serve the background api at the address of `host:port`",
				Value:       "0.0.0.0:8080",
			},

			&cli.StringSliceFlag{
				Category:    categoryServing,
				Destination: &allowedOrigins,
				EnvVars:     []string{"BACKDROP_ALLOWED_ORIGINS"},
				Name:        "allowed-origin",
				Usage:       "`origin` allowed to subscribe over websocket (repeatable, '*' for any)",
			},

			// Background

			&cli.StringFlag{
				Category:    categoryBackground,
				Destination: &cfg.Fallback.BaseURL,
				EnvVars:     []string{"BACKDROP_FALLBACK_URL"},
				Name:        "fallback-url",
				Usage:       "fetch new backgrounds from the `URL` (a timestamp is appended)",
				Value:       "https://picsum.photos/1920/1080",
			},

			&cli.DurationFlag{
				Category:    categoryBackground,
				Destination: &cfg.Probe.Timeout,
				EnvVars:     []string{"BACKDROP_PROBE_TIMEOUT"},
				Name:        "probe-timeout",
				Usage:       "give up on an image that did not load within `duration`",
				Value:       10 * time.Second,
			},

			&cli.Int64Flag{
				Category:    categoryBackground,
				Destination: &cfg.Probe.MaxBytes,
				Name:        "probe-max-bytes",
				Usage:       "read at most `bytes` of an image while probing",
				Value:       32 << 20,
			},

			&cli.StringFlag{
				Category:    categoryBackground,
				Destination: &cfg.Probe.UserAgent,
				Name:        "probe-user-agent",
				Usage:       "user-agent `string` to probe images with",
				Value:       "backdrop/" + version,
			},

			&cli.BoolFlag{
				Category:    categoryBackground,
				Destination: &cfg.Background.Warmup,
				EnvVars:     []string{"BACKDROP_WARMUP"},
				Name:        "warmup",
				Usage:       "resolve the background at startup instead of on first request",
			},

			// Storage

			&cli.StringFlag{
				Category:    categoryStorage,
				Destination: &cfg.Storage.Driver,
				EnvVars:     []string{"BACKDROP_STORAGE"},
				Name:        "storage",
				Usage:       "persist the cache record in `driver` (memory, badger, redis, none)",
				Value:       config.StorageDriverMemory,
			},

			&cli.StringFlag{
				Category:    categoryStorage,
				Destination: &cfg.Cache.Key,
				Name:        "cache-key",
				Usage:       "storage `key` of the cache record",
				Value:       cachestore.DefaultKey,
			},

			&cli.DurationFlag{
				Category:    categoryStorage,
				Destination: &cfg.Cache.TTL,
				Name:        "cache-ttl",
				Usage:       "treat cache records older than `duration` as absent",
				Value:       cachestore.DefaultTTL,
			},

			&cli.StringFlag{
				Category:    categoryStorage,
				Destination: &cfg.Storage.Badger.Dir,
				EnvVars:     []string{"BACKDROP_BADGER_DIR"},
				Name:        "badger-dir",
				Usage:       "keep the badger database in `path`",
				Value:       "./data",
			},

			&cli.StringSliceFlag{
				Category:    categoryStorage,
				Destination: &redisAddrs,
				EnvVars:     []string{"BACKDROP_REDIS_ADDRS"},
				Name:        "redis-addr",
				Usage:       "redis `host:port` (repeat for a cluster)",
			},

			&cli.StringFlag{
				Category:    categoryStorage,
				Destination: &cfg.Storage.Redis.Password,
				EnvVars:     []string{"BACKDROP_REDIS_PASSWORD"},
				Name:        "redis-password",
				Usage:       "redis `password`",
			},

			&cli.IntFlag{
				Category:    categoryStorage,
				Destination: &cfg.Storage.Redis.DB,
				Name:        "redis-db",
				Usage:       "redis database `number`",
			},
		},

		Action: func(clictx *cli.Context) error {
			cfg.Server.AllowedOrigins = allowedOrigins.Value()
			cfg.Storage.Redis.Addrs = redisAddrs.Value()

			if configFile != "" {
				if err := config.LoadFile(configFile, cfg); err != nil {
					return err
				}
			}
			if err := cfg.Preprocess(); err != nil {
				return err
			}

			if err := metrics.Setup(clictx.Context); err != nil {
				return err
			}

			kv, err := storage.Open(clictx.Context, &cfg.Storage)
			if err != nil {
				return err
			}
			if kv != nil {
				defer func() {
					if err := kv.Close(); err != nil {
						zap.L().Error("Failed to close the storage", zap.Error(err))
					}
				}()
			}

			store := cachestore.New(kv,
				cachestore.WithKey(cfg.Cache.Key),
				cachestore.WithTTL(cfg.Cache.TTL),
			)
			r := resolver.New(store,
				probe.New(&cfg.Probe),
				resolver.Fallback{BaseURL: cfg.Fallback.BaseURL},
			)

			s, err := server.New(cfg, background.New(r))
			if err != nil {
				return err
			}
			return s.Run()
		},
	}
}
