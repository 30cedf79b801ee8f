package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/LovationAdmin/quote-api/middleware"
	"github.com/LovationAdmin/quote-api/utils"

	"github.com/gin-gonic/gin"
	"github.com/olahol/melody"
)

const wsSessionKey = "session_id"

// QuoteEvent is pushed to a visitor's sockets.
type QuoteEvent struct {
	Type     string   `json:"type"`
	Products []string `json:"products,omitempty"`
	Count    int      `json:"count"`
}

type WSHandler struct {
	M *melody.Melody
}

func NewWSHandler() *WSHandler {
	m := melody.New()

	m.Config.MaxMessageSize = 64 * 1024

	// Keep-alive for proxies that drop idle connections
	m.Config.PingPeriod = 30 * time.Second
	m.Config.PongWait = 60 * time.Second

	m.HandleConnect(func(s *melody.Session) {
		sessionID, _ := s.Get(wsSessionKey)
		utils.LogWebSocket("connected", toSessionID(sessionID))
	})

	m.HandleDisconnect(func(s *melody.Session) {
		sessionID, _ := s.Get(wsSessionKey)
		utils.LogWebSocket("disconnected", toSessionID(sessionID))
	})

	m.HandleError(func(s *melody.Session, err error) {
		utils.SafeWarn("[WS] ❌ WebSocket error: %v", err)
	})

	return &WSHandler{M: m}
}

// HandleWS upgrades the connection for the session in the path. The token
// must belong to that same session.
func (h *WSHandler) HandleWS(c *gin.Context) {
	sessionID := c.Param("id")
	if sessionID != middleware.GetSessionID(c) {
		c.JSON(http.StatusForbidden, gin.H{"error": "Session mismatch"})
		return
	}

	err := h.M.HandleRequestWithKeys(c.Writer, c.Request, map[string]interface{}{
		wsSessionKey: sessionID,
	})
	if err != nil {
		utils.SafeWarn("[WS] ❌ Failed to upgrade websocket: %v", err)
	}
}

// Broadcast sends an event to every socket of one visitor session.
func (h *WSHandler) Broadcast(sessionID string, event QuoteEvent) {
	msg, err := json.Marshal(event)
	if err != nil {
		utils.SafeError("[WS] failed to encode %s event: %v", event.Type, err)
		return
	}

	err = h.M.BroadcastFilter(msg, func(q *melody.Session) bool {
		id, exists := q.Get(wsSessionKey)
		return exists && id == sessionID
	})
	if err != nil {
		utils.SafeWarn("[WS] ⚠️ Error broadcasting to session %s: %v", sessionID, err)
	}
}

// Close disconnects every socket.
func (h *WSHandler) Close() error {
	return h.M.Close()
}

func toSessionID(v interface{}) string {
	s, _ := v.(string)
	return s
}
