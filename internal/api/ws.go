package api

import (
	"encoding/json"
	"net/http"

	"leverage-calc/internal/params"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

// handleWebSocket upgrades the connection and streams parameter
// snapshots. The current snapshot is pushed immediately so a client
// never starts blank.
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Warn().Err(err).Msg("websocket upgrade failed")
		return
	}

	s.clientsMu.Lock()
	s.clients[conn] = true
	count := len(s.clients)
	s.clientsMu.Unlock()

	if s.metrics != nil {
		s.metrics.WSClients.Set(float64(count))
	}

	if data, err := json.Marshal(s.store.Get()); err == nil {
		conn.WriteMessage(websocket.TextMessage, data)
	}

	// Reader loop exists only to detect disconnects.
	go func() {
		defer s.dropClient(conn)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
}

func (s *Server) dropClient(conn *websocket.Conn) {
	conn.Close()

	s.clientsMu.Lock()
	delete(s.clients, conn)
	count := len(s.clients)
	s.clientsMu.Unlock()

	if s.metrics != nil {
		s.metrics.WSClients.Set(float64(count))
	}
}

// broadcastParams queues the current snapshot for delivery to all
// connected clients. Drops the update when the channel is full.
func (s *Server) broadcastParams() {
	select {
	case s.broadcastChannel <- s.store.Get():
	default:
	}
}

// clientBroadcaster delivers queued snapshots to every connected client.
func (s *Server) clientBroadcaster() {
	for {
		select {
		case snapshot := <-s.broadcastChannel:
			s.broadcastToClients(snapshot)
		case <-s.stopChannel:
			return
		}
	}
}

func (s *Server) broadcastToClients(snapshot params.TradingParameters) {
	data, err := json.Marshal(snapshot)
	if err != nil {
		log.Error().Err(err).Msg("failed to marshal parameter snapshot")
		return
	}

	s.clientsMu.RLock()
	conns := make([]*websocket.Conn, 0, len(s.clients))
	for client := range s.clients {
		conns = append(conns, client)
	}
	s.clientsMu.RUnlock()

	for _, client := range conns {
		if err := client.WriteMessage(websocket.TextMessage, data); err != nil {
			s.dropClient(client)
		}
	}
}
