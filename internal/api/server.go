// Package api serves archived pipeline reports and Prometheus metrics
// over HTTP.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/quantfarm/harvest/internal/commodity"
	"github.com/quantfarm/harvest/internal/core"
	"github.com/quantfarm/harvest/internal/metrics"
	"github.com/quantfarm/harvest/internal/storage/archive"
)

// Server represents the harvest HTTP server
type Server struct {
	httpServer *http.Server
	logger     *zap.Logger
	store      archive.Store
}

// Config holds server configuration
type Config struct {
	Host        string
	Port        int
	MetricsPath string
}

// NewServer creates a new HTTP server. store may be nil, in which case the
// report routes answer 404.
func NewServer(cfg Config, store archive.Store, reg *metrics.Registry, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}

	s := &Server{logger: logger, store: store}

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", s.handleHealth)
	mux.HandleFunc("/api/v1/commodities", s.handleCommodities)
	mux.HandleFunc("/api/v1/reports", s.handleListReports)
	mux.HandleFunc("/api/v1/reports/", s.handleGetReport)

	metricsPath := cfg.MetricsPath
	if metricsPath == "" {
		metricsPath = "/metrics"
	}
	mux.Handle(metricsPath, promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))

	var handler http.Handler = mux
	handler = metrics.HTTPMiddleware(reg)(handler)
	handler = metrics.LoggingMiddleware(logger)(handler)

	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	return s
}

// Handler exposes the routed handler, for tests.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// Start starts the HTTP server
func (s *Server) Start() error {
	s.logger.Info("starting HTTP server", zap.String("addr", s.httpServer.Addr))
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down HTTP server")
	return s.httpServer.Shutdown(ctx)
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("encoding response", zap.Error(err))
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleCommodities lists the catalog with each commodity's symbol and
// detection thresholds.
func (s *Server) handleCommodities(w http.ResponseWriter, r *http.Request) {
	type entry struct {
		Commodity     core.Commodity `json:"commodity"`
		Symbol        string         `json:"symbol"`
		Region        string         `json:"region"`
		HotThreshold  float64        `json:"hot_threshold"`
		ColdThreshold float64        `json:"cold_threshold"`
		HoldingMonths int            `json:"holding_months"`
	}

	catalog := commodity.Catalog()
	out := make([]entry, 0, len(catalog))
	for _, c := range core.All() {
		cfg := catalog[c]
		out = append(out, entry{
			Commodity:     c,
			Symbol:        cfg.Symbol,
			Region:        cfg.Region.Name,
			HotThreshold:  cfg.Rules.Hot.Threshold,
			ColdThreshold: cfg.Rules.Cold.Threshold,
			HoldingMonths: cfg.HoldingMonths,
		})
	}
	s.writeJSON(w, http.StatusOK, out)
}

// handleListReports lists archived report keys, optionally under ?prefix=.
func (s *Server) handleListReports(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		s.writeJSON(w, http.StatusNotFound, map[string]string{"error": "no archive configured"})
		return
	}

	prefix := r.URL.Query().Get("prefix")
	keys, err := s.store.List(r.Context(), "reports/"+strings.TrimPrefix(prefix, "/"))
	if err != nil {
		s.logger.Error("listing reports", zap.Error(err))
		s.writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "listing failed"})
		return
	}
	// Keys come back relative to the report route, ready for a follow-up GET.
	for i, k := range keys {
		keys[i] = strings.TrimPrefix(k, "reports/")
	}
	s.writeJSON(w, http.StatusOK, map[string]any{"count": len(keys), "keys": keys})
}

// handleGetReport streams one archived report by key.
func (s *Server) handleGetReport(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		s.writeJSON(w, http.StatusNotFound, map[string]string{"error": "no archive configured"})
		return
	}

	key := strings.TrimPrefix(r.URL.Path, "/api/v1/reports/")
	if key == "" || strings.Contains(key, "..") {
		s.writeJSON(w, http.StatusBadRequest, map[string]string{"error": "bad report key"})
		return
	}

	data, err := s.store.Get(r.Context(), "reports/"+key)
	if err != nil {
		if errors.Is(err, core.ErrNoData) {
			s.writeJSON(w, http.StatusNotFound, map[string]string{"error": "report not found"})
			return
		}
		s.logger.Error("reading report", zap.String("key", key), zap.Error(err))
		s.writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "read failed"})
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.Write(data)
}
