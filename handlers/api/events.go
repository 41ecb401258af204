package api

import (
	"bufio"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
	"github.com/google/uuid"
	"github.com/valyala/fasthttp"

	"msgagent/utils"
)

// Event types published by the API
const (
	EventMessageProcessed = "message_processed"
	EventMessagesImported = "messages_imported"
	EventPromptChanged    = "prompt_changed"
)

// Event is a real-time notification sent to dashboard subscribers
type Event struct {
	ID      string                 `json:"id"`
	Type    string                 `json:"type"`
	UserID  string                 `json:"user_id,omitempty"`
	Message string                 `json:"message"`
	Data    map[string]interface{} `json:"data,omitempty"`
	Time    time.Time              `json:"time"`
}

// EventHub fans events out to SSE and WebSocket subscribers
type EventHub struct {
	subscribers map[string]chan Event
	mu          sync.RWMutex
}

// NewEventHub creates an empty hub
func NewEventHub() *EventHub {
	return &EventHub{subscribers: make(map[string]chan Event)}
}

// Subscribe registers a buffered channel and returns its id
func (h *EventHub) Subscribe() (string, <-chan Event) {
	id := uuid.New().String()
	ch := make(chan Event, 10)

	h.mu.Lock()
	h.subscribers[id] = ch
	h.mu.Unlock()

	utils.Log.Debug("Event subscriber connected: %s", id)
	return id, ch
}

// Unsubscribe removes and closes a subscriber's channel
func (h *EventHub) Unsubscribe(id string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if ch, ok := h.subscribers[id]; ok {
		delete(h.subscribers, id)
		close(ch)
		utils.Log.Debug("Event subscriber disconnected: %s", id)
	}
}

// Subscribers is the number of connected subscribers
func (h *EventHub) Subscribers() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subscribers)
}

// Publish sends event to every subscriber, dropping it for those whose
// buffer is full
func (h *EventHub) Publish(event Event) {
	event.ID = uuid.New().String()
	event.Time = time.Now()

	h.mu.RLock()
	defer h.mu.RUnlock()

	utils.Log.Debug("Broadcasting event: type=%s to %d subscribers", event.Type, len(h.subscribers))

	for id, ch := range h.subscribers {
		select {
		case ch <- event:
		default:
			utils.Log.Warn("Event channel full for subscriber %s", id)
		}
	}
}

// HandleSSE streams events as Server-Sent Events
func (h *EventHub) HandleSSE(c *fiber.Ctx) error {
	c.Set("Content-Type", "text/event-stream")
	c.Set("Cache-Control", "no-cache")
	c.Set("Connection", "keep-alive")
	c.Set("Transfer-Encoding", "chunked")

	id, events := h.Subscribe()

	c.Context().SetBodyStreamWriter(fasthttp.StreamWriter(func(w *bufio.Writer) {
		defer h.Unsubscribe(id)

		fmt.Fprintf(w, "event: connected\ndata: {\"subscriber\":%q}\n\n", id)
		if err := w.Flush(); err != nil {
			return
		}

		ticker := time.NewTicker(30 * time.Second)
		defer ticker.Stop()

		for {
			select {
			case event, ok := <-events:
				if !ok {
					return
				}
				data, _ := json.Marshal(event)
				fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event.Type, data)
			case <-ticker.C:
				w.WriteString(": keepalive\n\n")
			}
			// A failed flush means the client went away.
			if err := w.Flush(); err != nil {
				return
			}
		}
	}))

	return nil
}

// UpgradeWebSocket rejects plain HTTP requests on the websocket route
func UpgradeWebSocket(c *fiber.Ctx) error {
	if websocket.IsWebSocketUpgrade(c) {
		return c.Next()
	}
	return fiber.ErrUpgradeRequired
}

// HandleWebSocket streams events as JSON frames
func (h *EventHub) HandleWebSocket(c *websocket.Conn) {
	id, events := h.Subscribe()
	defer func() {
		h.Unsubscribe(id)
		c.Close()
	}()

	// Reads only detect the close; clients never send anything meaningful.
	closed := make(chan struct{})
	go func() {
		defer close(closed)
		for {
			if _, _, err := c.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case <-closed:
			return
		case event, ok := <-events:
			if !ok {
				return
			}
			if err := c.WriteJSON(event); err != nil {
				utils.Log.Error("Failed to send WebSocket event: %v", err)
				return
			}
		}
	}
}
