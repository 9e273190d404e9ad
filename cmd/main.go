package main

import (
	"fmt"
	"os"

	"github.com/urfave/cli/v2"
	"go.uber.org/zap"

	"github.com/flashbots/backdrop/config"
	"github.com/flashbots/backdrop/logutils"
)

var (
	version = "development"
)

func main() {
	cfg := &config.Config{}

	app := &cli.App{
		Name:    "backdrop",
		Usage:   "Serves a verified, cached background image URL to UI clients",
		Version: version,

		Action: func(c *cli.Context) error {
			return cli.ShowAppHelp(c)
		},

		Flags: []cli.Flag{
			&cli.StringFlag{
				Destination: &cfg.Log.Level,
				EnvVars:     []string{"LOG_LEVEL"},
				Name:        "log-level",
				Usage:       "logging level",
				Value:       "info",
			},

			&cli.StringFlag{
				Destination: &cfg.Log.Mode,
				EnvVars:     []string{"LOG_MODE"},
				Name:        "log-mode",
				Usage:       "logging mode",
				Value:       "prod",
			},
		},

		Before: func(_ *cli.Context) error {
			l, err := logutils.NewLogger(&cfg.Log, version)
			if err != nil {
				fmt.Fprintf(os.Stderr, "failed to configure the logging: %s\n", err)
				return err
			}
			zap.ReplaceGlobals(l)
			return nil
		},

		Commands: []*cli.Command{
			CommandServe(cfg),
			CommandHelp(cfg),
		},
	}

	defer func() {
		_ = zap.L().Sync()
	}()
	if err := app.Run(os.Args); err != nil {
		zap.L().Error("Failed with error", zap.Error(err))
		os.Exit(1)
	}
}
