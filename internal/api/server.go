// Package api exposes the position-sizing core over HTTP for the
// client surface embedded in the social/wallet host. It serves the
// parameter store, the calculator, the advisory adapter, and a
// WebSocket stream of parameter updates, plus Prometheus metrics.
package api

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"leverage-calc/internal/advisor"
	"leverage-calc/internal/metrics"
	"leverage-calc/internal/notify"
	"leverage-calc/internal/params"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"
)

// Server wires the core components behind an HTTP API.
type Server struct {
	store    *params.Store
	advisor  *advisor.Client
	notifier *notify.Sender
	metrics  *metrics.Metrics

	server   *http.Server
	upgrader websocket.Upgrader

	clientsMu sync.RWMutex
	clients   map[*websocket.Conn]bool

	broadcastChannel chan params.TradingParameters
	stopChannel      chan struct{}

	mu        sync.Mutex
	isRunning bool
}

// New creates a server on the given port. The notifier and metrics may
// be nil.
func New(store *params.Store, adv *advisor.Client, notifier *notify.Sender, m *metrics.Metrics, port int) *Server {
	s := &Server{
		store:            store,
		advisor:          adv,
		notifier:         notifier,
		metrics:          m,
		upgrader:         websocket.Upgrader{CheckOrigin: func(r *http.Request) bool { return true }},
		clients:          make(map[*websocket.Conn]bool),
		broadcastChannel: make(chan params.TradingParameters, 100),
		stopChannel:      make(chan struct{}),
	}

	r := mux.NewRouter()
	r.HandleFunc("/api/params", s.handleGetParams).Methods("GET")
	r.HandleFunc("/api/params", s.handlePutParams).Methods("PUT")
	r.HandleFunc("/api/calculate", s.handleCalculate).Methods("POST")
	r.HandleFunc("/api/result", s.handleResult).Methods("GET")
	r.HandleFunc("/api/suggestions", s.handleSuggestions).Methods("POST")
	r.HandleFunc("/api/suggestions/apply", s.handleApplySuggestion).Methods("POST")
	r.HandleFunc("/healthz", s.handleHealth).Methods("GET")
	r.HandleFunc("/ws", s.handleWebSocket).Methods("GET")
	r.Handle("/metrics", promhttp.Handler()).Methods("GET")

	s.server = &http.Server{
		Addr:         fmt.Sprintf(":%d", port),
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	return s
}

// Start starts the HTTP server and the parameter broadcast loop.
func (s *Server) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		return fmt.Errorf("api server is already running")
	}

	go s.clientBroadcaster()

	go func() {
		log.Info().Str("address", s.server.Addr).Msg("starting api server")
		if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error().Err(err).Msg("api server failed")
		}
	}()

	s.isRunning = true
	return nil
}

// Stop closes client connections and shuts the server down.
func (s *Server) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.isRunning {
		return nil
	}

	close(s.stopChannel)

	s.clientsMu.Lock()
	for client := range s.clients {
		client.Close()
	}
	s.clients = make(map[*websocket.Conn]bool)
	s.clientsMu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := s.server.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("failed to shutdown api server")
		return err
	}

	s.isRunning = false
	log.Info().Msg("api server stopped")
	return nil
}
