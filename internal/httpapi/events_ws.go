package httpapi

import (
	"net/http"
	"time"

	"hotline-router/internal/events"
	"hotline-router/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

// Subscriber is the part of events.Bus the stream handler needs.
type Subscriber interface {
	Subscribe(buffer int) (<-chan events.Event, func())
}

const (
	wsWriteWait  = 10 * time.Second
	wsPongWait   = 60 * time.Second
	wsPingPeriod = 54 * time.Second
)

var upgrader = websocket.Upgrader{
	// The console is served from a different origin in development.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// StreamEvents upgrades to a websocket and pushes every call-state change as JSON.
// Clients that fall behind miss events and should resync from the snapshot endpoints.
func (h Handlers) StreamEvents(c *gin.Context) {
	if h.Events == nil {
		c.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{"error": "events not configured"})
		return
	}
	log := logger.FromGin(c)

	// Subscribe before the handshake completes so no event after it is missed.
	sub, cancel := h.Events.Subscribe(256)
	defer cancel()

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Warn("websocket upgrade failed", "err", err)
		return
	}
	defer conn.Close()

	closed := make(chan struct{})
	go func() {
		defer close(closed)
		conn.SetReadLimit(512)
		_ = conn.SetReadDeadline(time.Now().Add(wsPongWait))
		conn.SetPongHandler(func(string) error {
			return conn.SetReadDeadline(time.Now().Add(wsPongWait))
		})
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ticker := time.NewTicker(wsPingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-closed:
			return
		case <-c.Request.Context().Done():
			return
		case e, ok := <-sub:
			if !ok {
				_ = conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			_ = conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
			if err := conn.WriteJSON(e); err != nil {
				log.Debug("websocket write failed", "err", err)
				return
			}
		case <-ticker.C:
			_ = conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
