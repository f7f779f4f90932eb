package server

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/i2i-labs/tobi-backend/internal/chat"
	"github.com/i2i-labs/tobi-backend/internal/transport"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// handleWebSocket upgrades the connection and serves chat requests on it.
// Requests are handled one at a time; each produces its own end frame, so
// a client can pipeline questions and still correlate answers in order.
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("server: websocket upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	connID := uuid.New().String()
	s.register(connID)
	defer s.unregister(connID)

	sender := transport.NewWSSender(conn)
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err,
				websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Printf("server: connection %s read error: %v", connID, err)
			}
			return
		}

		var req chat.Request
		if err := json.Unmarshal(data, &req); err != nil {
			log.Printf("server: connection %s sent invalid JSON: %v", connID, err)
			transport.SendErrorEnd(sender, 400, "Invalid request.")
			continue
		}
		req.ConnectionID = connID

		s.handler.Handle(r.Context(), sender, req)
	}
}
