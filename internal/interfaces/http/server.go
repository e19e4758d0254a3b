// Package http serves the scoring API: submit a collected bundle for
// scoring, read archived scores, stream live records, and export metrics.
// The server never fetches upstream data itself.
package http

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"

	"github.com/moonscan/tokenrank/internal/metrics"
	"github.com/moonscan/tokenrank/internal/persistence"
	"github.com/moonscan/tokenrank/internal/scan"
)

// ServerConfig holds the HTTP listener configuration.
type ServerConfig struct {
	Host         string
	Port         int
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
	RateLimit    rate.Limit // requests per second across the API
	RateBurst    int
}

// DefaultServerConfig binds locally on 8080 unless HTTP_PORT overrides it.
func DefaultServerConfig() ServerConfig {
	port := 8080
	if portStr := os.Getenv("HTTP_PORT"); portStr != "" {
		if p, err := strconv.Atoi(portStr); err == nil {
			port = p
		}
	}
	return ServerConfig{
		Host:         "127.0.0.1",
		Port:         port,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
		RateLimit:    50,
		RateBurst:    100,
	}
}

// Server is the scoring API server.
type Server struct {
	router  *mux.Router
	server  *http.Server
	config  ServerConfig
	limiter *rate.Limiter
	hub     *Hub

	scanner *scan.Scanner
	scores  persistence.ScoreStore
	reg     *metrics.Registry
}

// NewServer wires routes over the scanner and optional score archive.
func NewServer(config ServerConfig, scanner *scan.Scanner, scores persistence.ScoreStore, reg *metrics.Registry) *Server {
	s := &Server{
		router:  mux.NewRouter(),
		config:  config,
		limiter: rate.NewLimiter(config.RateLimit, config.RateBurst),
		hub:     NewHub(),
		scanner: scanner,
		scores:  scores,
		reg:     reg,
	}
	s.setupRoutes()

	s.server = &http.Server{
		Addr:         fmt.Sprintf("%s:%d", config.Host, config.Port),
		Handler:      s.router,
		ReadTimeout:  config.ReadTimeout,
		WriteTimeout: config.WriteTimeout,
		IdleTimeout:  config.IdleTimeout,
	}
	return s
}

// Hub exposes the websocket broadcaster so the scanner can publish into it.
func (s *Server) Hub() *Hub { return s.hub }

func (s *Server) setupRoutes() {
	api := s.router.PathPrefix("/v1").Subrouter()
	api.Use(s.rateLimitMiddleware)
	api.HandleFunc("/score", s.handleScore).Methods(http.MethodPost)
	api.HandleFunc("/scores/{token}", s.handleLatest).Methods(http.MethodGet)
	api.HandleFunc("/leaderboard", s.handleLeaderboard).Methods(http.MethodGet)
	api.HandleFunc("/stream", s.handleStream).Methods(http.MethodGet)

	s.router.HandleFunc("/healthz", s.handleHealth).Methods(http.MethodGet)
	if s.reg != nil {
		s.router.Handle("/metrics", promhttp.HandlerFor(s.reg.Gatherer(), promhttp.HandlerOpts{}))
	}
}

func (s *Server) rateLimitMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !s.limiter.Allow() {
			writeError(w, http.StatusTooManyRequests, "rate limit exceeded")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// Start runs the listener and the websocket hub until the context ends.
func (s *Server) Start(ctx context.Context) error {
	go s.hub.Run(ctx)

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", s.server.Addr).Msg("scoring API listening")
		if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := s.server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("http shutdown: %w", err)
		}
		return nil
	case err := <-errCh:
		return fmt.Errorf("http serve: %w", err)
	}
}
