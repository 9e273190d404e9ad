package server

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/flashbots/backdrop/background"
	"github.com/flashbots/backdrop/config"
	"github.com/flashbots/backdrop/httplogger"
	"github.com/flashbots/backdrop/logutils"
)

const (
	pathBackground = "/api/background"
	pathHealthz    = "/healthz"
	pathLoaded     = "/api/background/loaded"
	pathMetrics    = "/metrics"
	pathRefresh    = "/api/background/refresh"
	pathSubscribe  = "/api/background/subscribe"
)

type Server struct {
	cfg *config.Config

	failure chan error

	logger *zap.Logger
	server *http.Server

	background *background.Service
	upgrader   websocket.Upgrader
}

func New(cfg *config.Config, bg *background.Service) (*Server, error) {
	s := &Server{
		cfg:        cfg,
		failure:    make(chan error, 1),
		logger:     zap.L(),
		background: bg,
		upgrader: websocket.Upgrader{
			HandshakeTimeout: 10 * time.Second,
			CheckOrigin:      checkOrigin(cfg.Server.AllowedOrigins),
		},
	}

	s.server = &http.Server{
		Addr:              cfg.Server.ListenAddress,
		ErrorLog:          logutils.NewHttpServerErrorLogger(s.logger),
		Handler:           s.Handler(),
		MaxHeaderBytes:    4096,
		ReadHeaderTimeout: 30 * time.Second,
		ReadTimeout:       30 * time.Second,
	}

	return s, nil
}

func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET "+pathBackground, s.handleState)
	mux.HandleFunc("POST "+pathLoaded, s.handleLoaded)
	mux.HandleFunc("POST "+pathRefresh, s.handleRefresh)
	mux.HandleFunc("GET "+pathSubscribe, s.handleSubscribe)
	mux.HandleFunc("GET "+pathHealthz, s.handleHealthz)
	mux.Handle("GET "+pathMetrics, promhttp.Handler())

	return httplogger.Middleware(s.logger, mux, pathHealthz, pathMetrics)
}

func (s *Server) Run() error {
	l := s.logger
	ctx := logutils.ContextWithLogger(context.Background(), l)

	if s.cfg.Background.Warmup {
		go func() {
			st := s.background.Activate(ctx)
			l.Info("Background warm-up finished",
				zap.String("background_url", st.BackgroundURL),
			)
		}()
	}

	go func() { // run the server
		l.Info("Background server is going up...",
			zap.String("server_listen_address", s.cfg.Server.ListenAddress),
		)
		if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.failure <- err
		}
		l.Info("Background server is down")
	}()

	errs := []error{}
	{ // wait until termination or internal failure
		terminator := make(chan os.Signal, 1)
		signal.Notify(terminator, os.Interrupt, syscall.SIGTERM)

		select {
		case stop := <-terminator:
			l.Info("Stop signal received; shutting down...",
				zap.String("signal", stop.String()),
			)
		case err := <-s.failure:
			l.Error("Internal failure; shutting down...",
				zap.Error(err),
			)
			errs = append(errs, err)
		exhaustErrors:
			for { // exhaust the errors
				select {
				case err := <-s.failure:
					l.Error("Extra internal failure",
						zap.Error(err),
					)
					errs = append(errs, err)
				default:
					break exhaustErrors
				}
			}
		}
	}

	{ // stop the server
		ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
		defer cancel()
		if err := s.server.Shutdown(ctx); err != nil {
			l.Error("Background server shutdown failed",
				zap.Error(err),
			)
		}
	}

	switch len(errs) {
	default:
		return errors.Join(errs...)
	case 1:
		return errs[0]
	case 0:
		return nil
	}
}
