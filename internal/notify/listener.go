package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/gorilla/websocket"
	"github.com/newswire/backend/internal/models"
)

const (
	reconnectAttempts = 5
	reconnectDelay    = time.Second
)

// envelope mirrors the server's wire format.
type envelope struct {
	Event string       `json:"event"`
	Data  models.Event `json:"data"`
}

// Listener maintains the websocket connection to the notification endpoint and
// feeds decoded events into a Store. When the connection cannot be
// re-established the listener reports the failure and stops; the rest of the
// client keeps working without notifications.
type Listener struct {
	url     string
	store   *Store
	onError func(error)
}

// NewListener creates a listener for the given websocket URL. onError is
// invoked once when the channel is given up on; it may be nil.
func NewListener(url string, store *Store, onError func(error)) *Listener {
	return &Listener{url: url, store: store, onError: onError}
}

// Run connects and pumps events until ctx is cancelled or the reconnect
// budget is exhausted.
func (l *Listener) Run(ctx context.Context) {
	attempts := 0
	for {
		if ctx.Err() != nil {
			return
		}

		conn, _, err := websocket.DefaultDialer.DialContext(ctx, l.url, nil)
		if err != nil {
			attempts++
			if attempts >= reconnectAttempts {
				l.fail(fmt.Errorf("notifications unavailable: %w", err))
				return
			}
			select {
			case <-time.After(reconnectDelay):
			case <-ctx.Done():
				return
			}
			continue
		}

		attempts = 0
		l.pump(ctx, conn)
	}
}

// pump reads frames until the connection dies or ctx is cancelled.
func (l *Listener) pump(ctx context.Context, conn *websocket.Conn) {
	defer conn.Close()

	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			conn.Close()
		case <-done:
		}
	}()

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			return
		}
		var env envelope
		if err := json.Unmarshal(data, &env); err != nil {
			continue // skip frames we do not understand
		}
		switch env.Event {
		case models.EventNewsCreated, models.EventNewsUpdated, models.EventNewsDeleted:
			env.Data.Kind = env.Event
			l.store.OnEvent(env.Data)
		}
	}
}

func (l *Listener) fail(err error) {
	if l.onError != nil {
		l.onError(err)
	}
}
