// Package server exposes collector health and run history over HTTP for
// operators and scrapers.
package server

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/sanwatch/rdfmon/internal/collector"
)

type Server struct {
	logger     *zap.Logger
	collectors map[string]*collector.Collector
	mu         sync.RWMutex
}

type CollectorInfo struct {
	Name        string          `json:"name"`
	SymmetrixID string          `json:"symmetrix_id"`
	Stats       collector.Stats `json:"stats"`
}

func NewServer(logger *zap.Logger) *Server {
	return &Server{
		logger:     logger,
		collectors: make(map[string]*collector.Collector),
	}
}

func (s *Server) RegisterCollector(c *collector.Collector) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.collectors[c.Name()] = c
	s.logger.Info("collector registered",
		zap.String("name", c.Name()),
		zap.String("symmetrix_id", c.SymmetrixID()))
}

func (s *Server) UnregisterCollector(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.collectors[name]; exists {
		delete(s.collectors, name)
		s.logger.Info("collector unregistered", zap.String("name", name))
	}
}

func (s *Server) Routes() chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)

	r.Get("/health", s.health)

	r.Route("/api/v1/collectors", func(r chi.Router) {
		r.Get("/", s.listCollectors)
		r.Get("/{name}", s.getCollector)
		r.Get("/{name}/runs", s.getCollectorRuns)
	})

	return r
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

func (s *Server) listCollectors(w http.ResponseWriter, r *http.Request) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	collectors := make([]CollectorInfo, 0, len(s.collectors))
	for _, c := range s.collectors {
		collectors = append(collectors, CollectorInfo{
			Name:        c.Name(),
			SymmetrixID: c.SymmetrixID(),
			Stats:       c.Stats(),
		})
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"collectors": collectors,
		"count":      len(collectors),
	})
}

func (s *Server) getCollector(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")

	s.mu.RLock()
	c, exists := s.collectors[name]
	s.mu.RUnlock()

	if !exists {
		http.Error(w, "collector not found", http.StatusNotFound)
		return
	}

	info := CollectorInfo{
		Name:        c.Name(),
		SymmetrixID: c.SymmetrixID(),
		Stats:       c.Stats(),
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(info)
}

func (s *Server) getCollectorRuns(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")

	s.mu.RLock()
	c, exists := s.collectors[name]
	s.mu.RUnlock()

	if !exists {
		http.Error(w, "collector not found", http.StatusNotFound)
		return
	}

	runs := c.RecentRuns()
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"runs":  runs,
		"count": len(runs),
	})
}

func (s *Server) Start(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:    addr,
		Handler: s.Routes(),
	}

	s.logger.Info("starting admin server", zap.String("addr", addr))

	go func() {
		<-ctx.Done()
		s.logger.Info("shutting down admin server")
		srv.Shutdown(context.Background())
	}()

	return srv.ListenAndServe()
}
