package websocket

import (
	"context"
	"encoding/json"

	"heat-alert-service/internal/logging"
	"heat-alert-service/internal/models"
)

const broadcastBuffer = 64

// Hub tracks dashboard clients and fans events out to them.
type Hub struct {
	clients    map[*Client]bool
	broadcast  chan []byte
	register   chan *Client
	unregister chan *Client
	done       chan struct{}
	logger     *logging.Logger
}

// NewHub constructs a Hub. Call Run before registering clients.
func NewHub(logger *logging.Logger) *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		broadcast:  make(chan []byte, broadcastBuffer),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
		logger:     logger,
	}
}

// Run owns the client set until ctx is done. All client sends are closed on exit.
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			close(h.done)
			for client := range h.clients {
				close(client.Send)
				delete(h.clients, client)
			}
			h.logger.Info("WebSocket hub stopped")
			return

		case client := <-h.register:
			h.clients[client] = true
			h.logger.Infof("Added WebSocket connection %s (total: %d)", client.Conn.RemoteAddr(), len(h.clients))

		case client := <-h.unregister:
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.Send)
				h.logger.Infof("Removed WebSocket connection %s (remaining: %d)", client.Conn.RemoteAddr(), len(h.clients))
			}

		case message := <-h.broadcast:
			for client := range h.clients {
				select {
				case client.Send <- message:
				default:
					h.logger.Warnf("WebSocket client %s is not keeping up, removing", client.Conn.RemoteAddr())
					close(client.Send)
					delete(h.clients, client)
				}
			}
		}
	}
}

// Register hands a client to the hub. It returns false if ctx ends first.
func (h *Hub) Register(ctx context.Context, client *Client) bool {
	select {
	case h.register <- client:
		return true
	case <-h.done:
		return false
	case <-ctx.Done():
		return false
	}
}

// Publish encodes event and queues it for broadcast. Events are dropped when
// the hub is backed up so ingestion never waits on dashboards.
func (h *Hub) Publish(_ context.Context, event models.Event) {
	message, err := json.Marshal(event)
	if err != nil {
		h.logger.Errorf("Marshal WebSocket event failed: %v", err)
		return
	}
	select {
	case h.broadcast <- message:
	default:
		h.logger.Warnf("WebSocket broadcast queue full, dropping %s event", event.Type)
	}
}
