package httplogger

import (
	"encoding/base64"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/flashbots/backdrop/logutils"
)

const headerRequestID = "X-Request-Id"

// Middleware attaches a request-scoped logger, recovers from handler panics
// and writes one access-log line per request.  Paths listed in quiet are
// logged at debug level (probes and scrapes would drown the log otherwise).
func Middleware(logger *zap.Logger, next http.Handler, quiet ...string) http.Handler {
	quietPaths := make(map[string]struct{}, len(quiet))
	for _, p := range quiet {
		quietPaths[p] = struct{}{}
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Generate request ID (`base64` to shorten its string representation)
		_uuid := [16]byte(uuid.New())
		httpRequestID := base64.RawURLEncoding.EncodeToString(_uuid[:])
		w.Header().Set(headerRequestID, httpRequestID)

		l := logger.With(
			zap.String("httpRequestID", httpRequestID),
			zap.String("logType", "activity"),
		)
		r = logutils.RequestWithLogger(r, l)

		start := time.Now()
		wrapped := wrapResponseWriter(w)

		// Handle panics
		defer func() {
			if msg := recover(); msg != nil {
				wrapped.WriteHeader(http.StatusInternalServerError)
				l.Error("HTTP request handler panicked",
					zap.Any("error", msg),
					zap.String("method", r.Method),
					zap.String("url", r.URL.EscapedPath()),
				)
			}

			level := zapcore.InfoLevel
			if _, ok := quietPaths[r.URL.Path]; ok {
				level = zapcore.DebugLevel
			}

			// Passing request stats both in-message (for the human reader)
			// as well as inside the structured log (for the machine parser)
			logger.Log(level, fmt.Sprintf("%s %s %d", r.Method, r.URL.EscapedPath(), wrapped.Status()),
				zap.Int("durationMs", int(time.Since(start).Milliseconds())),
				zap.Int("status", wrapped.Status()),
				zap.String("httpRequestID", httpRequestID),
				zap.String("logType", "access"),
				zap.String("method", r.Method),
				zap.String("path", r.URL.EscapedPath()),
				zap.String("userAgent", r.Header.Get("user-agent")),
			)
		}()

		next.ServeHTTP(wrapped, r)
	})
}
