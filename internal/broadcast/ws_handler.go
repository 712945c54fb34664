package broadcast

import (
	"log"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"github.com/newswire/backend/internal/models"
)

const writeTimeout = 10 * time.Second

// Envelope is the wire format of one server→client notification frame.
type Envelope struct {
	Event string       `json:"event"`
	Data  models.Event `json:"data"`
}

// WSHandler upgrades HTTP requests to websocket connections and streams hub
// events to each of them.
type WSHandler struct {
	hub      *Hub
	upgrader websocket.Upgrader
}

// NewWSHandler creates a new WSHandler attached to the given hub.
func NewWSHandler(hub *Hub) *WSHandler {
	return &WSHandler{
		hub: hub,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true // frontend origin is enforced by the CORS layer
			},
		},
	}
}

// RegisterRoutes registers the websocket endpoint
func (h *WSHandler) RegisterRoutes(e *echo.Echo) {
	e.GET("/ws", h.Serve)
}

// Serve upgrades the request, subscribes the connection to the hub and pumps
// events until the client goes away.
func (h *WSHandler) Serve(c echo.Context) error {
	conn, err := h.upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		return err
	}

	sub := h.hub.Subscribe()
	go h.readLoop(conn, sub)
	go h.writeLoop(conn, sub)
	return nil
}

// readLoop discards client frames; its only job is to notice the disconnect
// and tear the subscription down. No client→server event exists in normal
// operation.
func (h *WSHandler) readLoop(conn *websocket.Conn, sub *Subscriber) {
	defer func() {
		h.hub.Unsubscribe(sub)
		conn.Close()
	}()
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Printf("websocket read: %v", err)
			}
			return
		}
	}
}

// writeLoop forwards hub events to the connection. A write failure only kills
// this connection; the hub keeps delivering to everyone else.
func (h *WSHandler) writeLoop(conn *websocket.Conn, sub *Subscriber) {
	defer func() {
		h.hub.Unsubscribe(sub)
		conn.Close()
	}()
	for event := range sub.Events() {
		conn.SetWriteDeadline(time.Now().Add(writeTimeout))
		if err := conn.WriteJSON(Envelope{Event: event.Kind, Data: event}); err != nil {
			log.Printf("websocket write: %v", err)
			return
		}
	}
	// Hub closed the channel; say goodbye politely.
	conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
}
