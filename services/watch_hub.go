package services

import (
	"encoding/json"
	"log"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"questifyAPI/internal/progression"
	"questifyAPI/internal/types/appstate"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer. Watchers are read-only;
	// anything they send is discarded.
	maxMessageSize = 512
)

// StateUpdate is the frame pushed to every connected watcher after a
// dispatch commits a new snapshot.
type StateUpdate struct {
	Type    string               `json:"type"` // "state"
	State   *appstate.AppState   `json:"state"`
	Outcome *progression.Outcome `json:"outcome,omitempty"`
}

// WatchHub fans state updates out to each user's connected websocket
// clients. A user can watch from several devices at once; every device
// gets every committed snapshot.
type WatchHub struct {
	mu       sync.RWMutex
	watchers map[string]map[*Watcher]bool
}

func NewWatchHub() *WatchHub {
	return &WatchHub{
		watchers: make(map[string]map[*Watcher]bool),
	}
}

// Watcher is the middleman between one websocket connection and the hub.
type Watcher struct {
	hub    *WatchHub
	conn   *websocket.Conn
	Send   chan []byte
	userID string
}

// Attach registers a connection for a user. The caller starts the pumps.
func (h *WatchHub) Attach(userID string, conn *websocket.Conn) *Watcher {
	w := &Watcher{
		hub:    h,
		conn:   conn,
		Send:   make(chan []byte, 8),
		userID: userID,
	}

	h.mu.Lock()
	if h.watchers[userID] == nil {
		h.watchers[userID] = make(map[*Watcher]bool)
	}
	h.watchers[userID][w] = true
	count := len(h.watchers[userID])
	h.mu.Unlock()

	log.Printf("[watch] user %s connected. devices: %d", userID, count)
	return w
}

func (h *WatchHub) detach(w *Watcher) {
	h.mu.Lock()
	defer h.mu.Unlock()

	set, ok := h.watchers[w.userID]
	if !ok {
		return
	}
	if _, ok := set[w]; !ok {
		return
	}
	delete(set, w)
	close(w.Send)
	if len(set) == 0 {
		delete(h.watchers, w.userID)
	}
}

// Publish sends a state frame to every watcher of the user. Slow clients
// are dropped rather than allowed to block a dispatch.
func (h *WatchHub) Publish(userID string, state *appstate.AppState, outcome *progression.Outcome) {
	data, err := json.Marshal(StateUpdate{Type: "state", State: state, Outcome: outcome})
	if err != nil {
		log.Printf("[watch] failed to marshal state update: %v", err)
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	for w := range h.watchers[userID] {
		select {
		case w.Send <- data:
		default:
			delete(h.watchers[userID], w)
			close(w.Send)
		}
	}
	if len(h.watchers[userID]) == 0 {
		delete(h.watchers, userID)
	}
}

// WatcherCount reports connected devices for a user.
func (h *WatchHub) WatcherCount(userID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.watchers[userID])
}

// ReadPump drains the connection so control frames get processed and
// disconnects are noticed. Incoming text is ignored.
func (w *Watcher) ReadPump() {
	defer func() {
		w.hub.detach(w)
		w.conn.Close()
	}()

	w.conn.SetReadLimit(maxMessageSize)
	w.conn.SetReadDeadline(time.Now().Add(pongWait))
	w.conn.SetPongHandler(func(string) error {
		w.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		if _, _, err := w.conn.ReadMessage(); err != nil {
			break
		}
	}
}

// WritePump handles frames going to the client plus keepalive pings.
func (w *Watcher) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		w.conn.Close()
	}()

	for {
		select {
		case message, ok := <-w.Send:
			w.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// The hub closed the channel.
				w.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			writer, err := w.conn.NextWriter(websocket.TextMessage)
			if err != nil {
				return
			}
			writer.Write(message)

			if err := writer.Close(); err != nil {
				return
			}

		case <-ticker.C:
			w.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := w.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
