package server

import (
	"log"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/ayusman/mudra/internal/control"
)

const writeWait = time.Second

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow local connections
	},
}

// Subscriber hands out per-frame result subscriptions.
type Subscriber interface {
	Subscribe() (<-chan control.Result, func())
}

// EventsHandler streams every frame result to websocket clients as JSON.
type EventsHandler struct {
	source Subscriber
}

// NewEventsHandler creates an EventsHandler fed by source.
func NewEventsHandler(source Subscriber) *EventsHandler {
	return &EventsHandler{source: source}
}

// ServeHTTP upgrades the connection and writes results until the client
// goes away or the session ends.
func (h *EventsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	// The subscription exists before the client sees the upgrade.
	results, unsubscribe := h.source.Subscribe()
	defer unsubscribe()

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("websocket upgrade error: %v", err)
		return
	}
	defer conn.Close()

	// Reading is only for noticing the client closing.
	gone := make(chan struct{})
	go func() {
		defer close(gone)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case <-gone:
			return
		case res, ok := <-results:
			if !ok {
				conn.WriteControl(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseNormalClosure, "session ended"),
					time.Now().Add(writeWait))
				return
			}
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteJSON(res); err != nil {
				log.Printf("websocket write error: %v", err)
				return
			}
		}
	}
}
