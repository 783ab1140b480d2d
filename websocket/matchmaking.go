package websocket

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"arguematch/internal/debate"
	"arguematch/services"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = 54 * time.Second
	maxMessageSize = 64 * 1024
	sendBuffer     = 256
)

// MatchmakingClient is one browser connection
type MatchmakingClient struct {
	id   string
	conn *websocket.Conn
	send chan []byte
}

// Handler upgrades requests and feeds client messages to the coordinator
type Handler struct {
	hub         *Hub
	coordinator *services.Coordinator
	upgrader    websocket.Upgrader
}

// NewHandler creates a websocket handler. allowedOrigins of nil or "*"
// accepts any origin.
func NewHandler(hub *Hub, coordinator *services.Coordinator, allowedOrigins []string) *Handler {
	return &Handler{
		hub:         hub,
		coordinator: coordinator,
		upgrader: websocket.Upgrader{
			CheckOrigin: originChecker(allowedOrigins),
		},
	}
}

func originChecker(allowed []string) func(r *http.Request) bool {
	for _, origin := range allowed {
		if origin == "*" {
			allowed = nil
			break
		}
	}
	return func(r *http.Request) bool {
		if len(allowed) == 0 {
			return true
		}
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true
		}
		for _, o := range allowed {
			if strings.EqualFold(o, origin) {
				return true
			}
		}
		return false
	}
}

// ServeWS handles GET /ws
func (h *Handler) ServeWS(c *gin.Context) {
	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Warn().Err(err).Msg("[ws] upgrade failed")
		return
	}

	client := &MatchmakingClient{
		id:   uuid.NewString(),
		conn: conn,
		send: make(chan []byte, sendBuffer),
	}
	h.hub.register(client)
	log.Info().Str("conn", client.id).Str("remote", c.ClientIP()).Msg("[ws] connected")

	go client.writePump()
	go h.readPump(client)
}

// readPump handles incoming messages from the client until the socket closes
func (h *Handler) readPump(client *MatchmakingClient) {
	defer func() {
		h.coordinator.Disconnect(client.id)
		h.hub.unregister(client)
		client.conn.Close()
		log.Info().Str("conn", client.id).Msg("[ws] disconnected")
	}()

	client.conn.SetReadLimit(maxMessageSize)
	client.conn.SetReadDeadline(time.Now().Add(pongWait))
	client.conn.SetPongHandler(func(string) error {
		client.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, message, err := client.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Warn().Err(err).Str("conn", client.id).Msg("[ws] read failed")
			}
			return
		}

		var msg debate.ClientMessage
		if err := json.Unmarshal(message, &msg); err != nil {
			h.coordinator.Reject(client.id, fmt.Errorf("%w: %v", services.ErrInvalidPayload, err))
			continue
		}
		if err := h.dispatch(client.id, msg); err != nil {
			log.Debug().Err(err).Str("conn", client.id).Str("type", msg.Type).Msg("[ws] message rejected")
			h.coordinator.Reject(client.id, err)
		}
	}
}

func (h *Handler) dispatch(connectionID string, msg debate.ClientMessage) error {
	switch msg.Type {
	case debate.TypeJoin:
		var payload debate.JoinPayload
		if err := json.Unmarshal(msg.Payload, &payload); err != nil {
			return fmt.Errorf("%w: %v", services.ErrInvalidPayload, err)
		}
		return h.coordinator.Join(connectionID, payload)
	case debate.TypeRequestMatch:
		_, err := h.coordinator.RequestMatch(connectionID)
		return err
	case debate.TypeCancelMatch:
		h.coordinator.CancelMatch(connectionID)
		return nil
	case debate.TypeStartDebate:
		return h.coordinator.StartDebate(connectionID)
	case debate.TypeResetDebate:
		return h.coordinator.ResetDebate(connectionID)
	case debate.TypeActiveUsers:
		h.coordinator.SendStats(connectionID)
		return nil
	}
	if debate.IsRelayType(msg.Type) {
		return h.coordinator.Relay(connectionID, msg.Type, msg.Payload)
	}
	return fmt.Errorf("%w: unknown message type %q", services.ErrInvalidPayload, msg.Type)
}

// writePump handles outgoing messages to the client
func (c *MatchmakingClient) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			w, err := c.conn.NextWriter(websocket.TextMessage)
			if err != nil {
				return
			}
			w.Write(message)

			if err := w.Close(); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
