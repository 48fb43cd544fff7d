package web

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"admute/internal/domain"
	"admute/internal/logging"
	"admute/internal/usecase"
)

// Server is a primary adapter that exposes a read-mostly JSON API.
// It depends on the use case (primary port).
type Server struct {
	usecase usecase.MonitorUseCase
	server  *http.Server
}

// NewServer creates the HTTP server bound to addr.
func NewServer(uc usecase.MonitorUseCase, addr string) *Server {
	srv := &Server{usecase: uc}
	srv.server = &http.Server{
		Addr:              addr,
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	return srv
}

// Handler returns the routed API handler.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/status", s.handleStatus)
	mux.HandleFunc("/api/patterns", s.handlePatterns)
	mux.HandleFunc("/api/reload", s.handleReload)
	return loggingMiddleware(mux)
}

// Start blocks and serves HTTP traffic.
func (s *Server) Start() error {
	return s.server.ListenAndServe()
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	respondJSON(w, http.StatusOK, statusToView(s.usecase.Status()))
}

func (s *Server) handlePatterns(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if title := r.URL.Query().Get("title"); title != "" {
		view := map[string]any{"title": title, "matched": false}
		if p, ok := s.usecase.Match(title); ok {
			view["matched"] = true
			view["pattern"] = p.String()
		}
		respondJSON(w, http.StatusOK, view)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"patterns": s.usecase.Patterns().Strings(),
	})
}

func (s *Server) handleReload(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	changed, err := s.usecase.Reload()
	view := map[string]any{
		"changed":  changed,
		"patterns": s.usecase.Patterns().Len(),
	}
	if err != nil {
		view["skipped"] = err.Error()
	}
	respondJSON(w, http.StatusOK, view)
}

func statusToView(st domain.Status) map[string]any {
	view := map[string]any{
		"targetProcess": st.TargetProcess,
		"state":         st.State.String(),
		"patterns":      st.Patterns,
		"ticks":         st.Ticks,
		"reloads":       st.Reloads,
	}
	if !st.LastTick.IsZero() {
		view["lastTick"] = st.LastTick
	}
	if !st.LastReload.IsZero() {
		view["lastReload"] = st.LastReload
	}
	if st.LastPattern != "" {
		view["lastPattern"] = st.LastPattern
		view["lastTitle"] = st.LastTitle
	}
	if st.LastError != nil {
		view["lastError"] = st.LastError.Error()
	}
	return view
}

func respondJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		logging.Errorf("encode JSON: %v", err)
	}
}

func loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		logging.Debugf("%s %s %s", r.Method, r.URL.Path, time.Since(start))
	})
}
