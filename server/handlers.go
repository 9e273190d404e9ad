package server

import (
	"net/http"

	"github.com/bytedance/sonic"
	"go.uber.org/zap"

	"github.com/flashbots/backdrop/background"
	"github.com/flashbots/backdrop/logutils"
)

func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	st := s.background.Activate(r.Context())
	s.writeJSON(w, r, http.StatusOK, st)
}

func (s *Server) handleLoaded(w http.ResponseWriter, r *http.Request) {
	s.background.MarkLoaded()
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	s.background.TriggerRefresh(r.Context())
	s.writeJSON(w, r, http.StatusAccepted, s.background.State())
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
}

func (s *Server) writeJSON(w http.ResponseWriter, r *http.Request, status int, st background.State) {
	l := logutils.LoggerFromRequest(r)

	body, err := sonic.Marshal(&st)
	if err != nil {
		l.Error("Failed to encode the background state",
			zap.Error(err),
		)
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if _, err := w.Write(body); err != nil {
		l.Error("Failed to write the response body",
			zap.Error(err),
		)
	}
}
