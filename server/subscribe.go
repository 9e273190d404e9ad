package server

import (
	"context"
	"net/http"
	"net/url"
	"slices"
	"strings"
	"time"

	"github.com/bytedance/sonic"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/flashbots/backdrop/background"
	"github.com/flashbots/backdrop/logutils"
)

const (
	commandLoaded  = "loaded"
	commandRefresh = "refresh"

	pingInterval = 30 * time.Second
	writeTimeout = 10 * time.Second
)

// handleSubscribe streams the background state over a websocket: once on
// connect, then after every change.  Clients may send the text commands
// "loaded" and "refresh".
func (s *Server) handleSubscribe(w http.ResponseWriter, r *http.Request) {
	l := logutils.LoggerFromRequest(r)

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		l.Debug("Websocket upgrade failed",
			zap.Error(err),
		)
		return
	}
	defer conn.Close()

	updates, unsubscribe := s.background.Subscribe()
	defer unsubscribe()

	// the request context is not reliable once the connection is hijacked
	ctx, cancel := context.WithCancel(logutils.ContextWithLogger(context.Background(), l))
	defer cancel()

	go s.readCommands(ctx, cancel, conn)

	if err := writeState(conn, s.background.Activate(ctx)); err != nil {
		l.Debug("Failed to send the background state", zap.Error(err))
		return
	}

	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case st, ok := <-updates:
			if !ok {
				return
			}
			if err := writeState(conn, st); err != nil {
				l.Debug("Failed to send the background state", zap.Error(err))
				return
			}
		case <-ticker.C:
			deadline := time.Now().Add(writeTimeout)
			if err := conn.WriteControl(websocket.PingMessage, nil, deadline); err != nil {
				return
			}
		}
	}
}

func (s *Server) readCommands(ctx context.Context, cancel context.CancelFunc, conn *websocket.Conn) {
	defer cancel()
	l := logutils.LoggerFromContext(ctx)

	for {
		kind, msg, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				l.Debug("Websocket closed unexpectedly", zap.Error(err))
			}
			return
		}
		if kind != websocket.TextMessage {
			continue
		}

		switch cmd := strings.ToLower(strings.TrimSpace(string(msg))); cmd {
		case commandLoaded:
			s.background.MarkLoaded()
		case commandRefresh:
			s.background.TriggerRefresh(ctx)
		default:
			l.Debug("Ignoring unknown websocket command",
				zap.String("command", cmd),
			)
		}
	}
}

func writeState(conn *websocket.Conn, st background.State) error {
	b, err := sonic.Marshal(&st)
	if err != nil {
		return err
	}
	if err := conn.SetWriteDeadline(time.Now().Add(writeTimeout)); err != nil {
		return err
	}
	return conn.WriteMessage(websocket.TextMessage, b)
}

// checkOrigin returns nil (same-origin only) when no origins are configured.
func checkOrigin(allowed []string) func(*http.Request) bool {
	if len(allowed) == 0 {
		return nil
	}
	if slices.Contains(allowed, "*") {
		return func(*http.Request) bool { return true }
	}
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true
		}
		u, err := url.Parse(origin)
		if err != nil {
			return false
		}
		return slices.Contains(allowed, u.Scheme+"://"+u.Host)
	}
}
