package websocket

import (
	"context"
	"encoding/json"

	"github.com/sirupsen/logrus"

	"social-go/internal/metrics"
	"social-go/internal/socialtypes"
)

// Hub maintains the set of connected clients and routes notifications to them.
// Only the Run goroutine touches the clients map.
type Hub struct {
	// One connection per user; a newer connection replaces the older one.
	clients map[uint]*Client

	register   chan *Client
	unregister chan *Client

	// Messages aimed at a specific user.
	direct chan *socialtypes.Message

	log *logrus.Logger
}

// NewHub creates a new Hub.
func NewHub(log *logrus.Logger) *Hub {
	return &Hub{
		clients:    make(map[uint]*Client),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		direct:     make(chan *socialtypes.Message, 256),
		log:        log,
	}
}

// Deliver queues msg for its receiver. It never blocks; when the queue is
// full the message is dropped.
func (h *Hub) Deliver(msg *socialtypes.Message) bool {
	select {
	case h.direct <- msg:
		return true
	default:
		h.log.WithField("receiver", msg.ReceiverID).Warn("hub direct channel full, dropping notification")
		return false
	}
}

// Run serves the hub until ctx is canceled, then disconnects every client.
func (h *Hub) Run(ctx context.Context) {
	h.log.Info("websocket hub started")
	for {
		select {
		case <-ctx.Done():
			for userID, client := range h.clients {
				close(client.send)
				delete(h.clients, userID)
			}
			metrics.SetWebSocketClients(0)
			h.log.Info("websocket hub stopped")
			return

		case client := <-h.register:
			if existing, ok := h.clients[client.UserID]; ok {
				h.log.WithField("user_id", client.UserID).Info("replacing existing websocket connection")
				close(existing.send)
			}
			h.clients[client.UserID] = client
			metrics.SetWebSocketClients(len(h.clients))
			h.log.WithField("user_id", client.UserID).Debug("client registered")
			h.send(client, &socialtypes.Message{
				Type:       socialtypes.SystemMessageType,
				ReceiverID: client.UserID,
				Content:    "connected",
			})

		case client := <-h.unregister:
			// A replaced connection is no longer in the map; its send channel
			// was already closed on replacement.
			if stored, ok := h.clients[client.UserID]; ok && stored == client {
				delete(h.clients, client.UserID)
				close(client.send)
				metrics.SetWebSocketClients(len(h.clients))
				h.log.WithField("user_id", client.UserID).Debug("client unregistered")
			}

		case msg := <-h.direct:
			if client, ok := h.clients[msg.ReceiverID]; ok {
				h.send(client, msg)
			}
		}
	}
}

// send must only be called from Run.
func (h *Hub) send(client *Client, msg *socialtypes.Message) {
	msgBytes, err := json.Marshal(msg)
	if err != nil {
		h.log.WithError(err).Error("failed to marshal websocket message")
		return
	}
	select {
	case client.send <- msgBytes:
	default:
		// slow consumer
		h.log.WithField("user_id", client.UserID).Warn("client send buffer full, disconnecting")
		close(client.send)
		delete(h.clients, client.UserID)
		metrics.SetWebSocketClients(len(h.clients))
	}
}
