package notification

import (
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Sender is the write side of a websocket connection.
type Sender interface {
	WriteJSON(v interface{}) error
}

type client struct {
	id     string
	sender Sender
	mu     sync.Mutex
}

// Hub fans notification events out to the websocket connections of a user.
type Hub struct {
	mu      sync.RWMutex
	clients map[string]map[string]*client
	logger  *zap.Logger
}

func NewHub(logger *zap.Logger) *Hub {
	return &Hub{
		clients: make(map[string]map[string]*client),
		logger:  logger,
	}
}

func hubKey(companyID, userID string) string {
	return companyID + "/" + userID
}

// Subscribe registers a connection and returns its client id.
func (h *Hub) Subscribe(companyID, userID string, sender Sender) string {
	c := &client{id: uuid.NewString(), sender: sender}
	key := hubKey(companyID, userID)

	h.mu.Lock()
	defer h.mu.Unlock()
	if h.clients[key] == nil {
		h.clients[key] = make(map[string]*client)
	}
	h.clients[key][c.id] = c
	return c.id
}

func (h *Hub) Unsubscribe(companyID, userID, clientID string) {
	key := hubKey(companyID, userID)

	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.clients[key], clientID)
	if len(h.clients[key]) == 0 {
		delete(h.clients, key)
	}
}

// Publish sends ev to every connection of the user. Connections that fail to accept
// the write are dropped.
func (h *Hub) Publish(companyID, userID string, ev Event) int {
	h.mu.RLock()
	targets := make([]*client, 0, len(h.clients[hubKey(companyID, userID)]))
	for _, c := range h.clients[hubKey(companyID, userID)] {
		targets = append(targets, c)
	}
	h.mu.RUnlock()

	sent := 0
	for _, c := range targets {
		c.mu.Lock()
		err := c.sender.WriteJSON(ev)
		c.mu.Unlock()
		if err != nil {
			h.logger.Debug("Dropping notification subscriber", zap.String("client_id", c.id), zap.Error(err))
			h.Unsubscribe(companyID, userID, c.id)
			continue
		}
		sent++
	}
	return sent
}

func (h *Hub) Subscribers(companyID, userID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[hubKey(companyID, userID)])
}
