package events

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = pongWait * 9 / 10
)

// Handler streams hub events to websocket clients as JSON text messages.
// Clients only listen; anything they send is discarded.
type Handler struct {
	hub      *Hub
	upgrader websocket.Upgrader
	log      logrus.FieldLogger
}

// NewHandler returns a websocket handler for hub. When allowedOrigin is
// empty, only same-host origins may connect; "*" allows any origin.
func NewHandler(hub *Hub, allowedOrigin string, log logrus.FieldLogger) *Handler {
	h := &Handler{hub: hub, log: log}
	h.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
	}
	switch allowedOrigin {
	case "":
		// gorilla's default same-origin check
	case "*":
		h.upgrader.CheckOrigin = func(r *http.Request) bool { return true }
	default:
		h.upgrader.CheckOrigin = func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			return origin == "" || origin == allowedOrigin
		}
	}
	return h
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already written the error response.
		h.log.WithError(err).Debug("websocket upgrade failed")
		return
	}

	events, cancel := h.hub.Subscribe()
	h.log.WithField("remote", r.RemoteAddr).Debug("event subscriber connected")

	done := make(chan struct{})
	go h.readPump(conn, done)
	h.writePump(conn, events, done)

	cancel()
	conn.Close()
	h.log.WithField("remote", r.RemoteAddr).Debug("event subscriber disconnected")
}

// readPump drains client frames so control messages are processed, and
// closes done when the connection goes away.
func (h *Handler) readPump(conn *websocket.Conn, done chan<- struct{}) {
	defer close(done)
	conn.SetReadLimit(512)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.log.WithError(err).Debug("websocket read error")
			}
			return
		}
	}
}

func (h *Handler) writePump(conn *websocket.Conn, events <-chan Event, done <-chan struct{}) {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-done:
			return
		case e, ok := <-events:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseGoingAway, ""))
				return
			}
			if err := conn.WriteJSON(e); err != nil {
				return
			}
		case <-ticker.C:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
