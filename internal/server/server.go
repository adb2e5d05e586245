package server

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"

	"archmap/internal/emit"
	t "archmap/internal/types"
)

// Server exposes the live dashboard: the rendered HTML page, the raw
// analysis JSON, and a websocket stream of re-analysis results.
type Server struct {
	httpServer *http.Server
	hub        *Hub
}

// New builds a server on addr with the given hub. The handler speaks h2c
// so HTTP/2 clients work without TLS.
func New(addr string, hub *Hub) *Server {
	mux := http.NewServeMux()
	s := &Server{hub: hub}
	mux.HandleFunc("/", s.handleDashboard)
	mux.HandleFunc("/api/result", s.handleResult)
	mux.HandleFunc("/ws", hub.HandleWS)
	s.httpServer = &http.Server{
		Addr:    addr,
		Handler: h2c.NewHandler(mux, &http2.Server{}),
	}
	return s
}

// Start blocks serving until Shutdown or a listener error.
func (s *Server) Start() error {
	log.Printf("server: dashboard listening on %s", s.httpServer.Addr)
	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	result := s.hub.Latest()
	if result == nil {
		http.Error(w, "no analysis available yet", http.StatusServiceUnavailable)
		return
	}
	page, err := emit.Dashboard(result)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write([]byte(page))
}

func (s *Server) handleResult(w http.ResponseWriter, _ *http.Request) {
	result := s.hub.Latest()
	if result == nil {
		http.Error(w, "no analysis available yet", http.StatusServiceUnavailable)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(result); err != nil {
		log.Printf("server: encode result: %v", err)
	}
}

// Publish records result as latest and broadcasts it to websocket
// clients.
func (s *Server) Publish(result *t.AnalysisResult) {
	s.hub.Publish(result)
}
