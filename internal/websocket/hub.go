package websocket

import (
	"errors"
	"sync"

	"github.com/dafibh/mpwr/portal-backend/internal/metrics"
	"github.com/rs/zerolog/log"
)

// ErrClientClosed is returned when attempting to send to a closed client
var ErrClientClosed = errors.New("client is closed")

// ClientInterface defines the interface that clients must implement
type ClientInterface interface {
	ID() string
	CustomerID() string
	Send(data []byte) error
	Close() error
}

// Hub manages WebSocket connections grouped by customer.
// A borrower may hold several connections (tabs, devices) at once.
type Hub struct {
	// customers maps customer ID to a map of client ID to client
	customers map[string]map[string]ClientInterface
	mu        sync.RWMutex
}

// NewHub creates a new Hub instance
func NewHub() *Hub {
	return &Hub{
		customers: make(map[string]map[string]ClientInterface),
	}
}

// Register adds a client to the hub under its customer
func (h *Hub) Register(client ClientInterface) {
	h.mu.Lock()
	defer h.mu.Unlock()

	customerID := client.CustomerID()
	clientID := client.ID()

	if h.customers[customerID] == nil {
		h.customers[customerID] = make(map[string]ClientInterface)
	}
	if _, exists := h.customers[customerID][clientID]; !exists {
		metrics.WebSocketClients.Inc()
	}
	h.customers[customerID][clientID] = client

	log.Debug().
		Str("customer_id", customerID).
		Str("client_id", clientID).
		Msg("WebSocket client registered")
}

// Unregister removes a client from the hub
func (h *Hub) Unregister(client ClientInterface) {
	h.mu.Lock()
	defer h.mu.Unlock()

	customerID := client.CustomerID()
	clientID := client.ID()

	clients, ok := h.customers[customerID]
	if !ok {
		return
	}
	if _, exists := clients[clientID]; !exists {
		return
	}

	delete(clients, clientID)
	if len(clients) == 0 {
		delete(h.customers, customerID)
	}
	metrics.WebSocketClients.Dec()

	log.Debug().
		Str("customer_id", customerID).
		Str("client_id", clientID).
		Msg("WebSocket client unregistered")
}

// Broadcast sends an event to every connection of a customer
func (h *Hub) Broadcast(customerID string, event Event) {
	data, err := event.ToJSON()
	if err != nil {
		log.Error().
			Err(err).
			Str("customer_id", customerID).
			Str("event_type", event.Type).
			Msg("Failed to serialize event")
		return
	}

	h.mu.RLock()
	clients, ok := h.customers[customerID]
	if !ok || len(clients) == 0 {
		h.mu.RUnlock()
		return
	}

	// Copy clients to avoid holding lock during send
	clientsCopy := make([]ClientInterface, 0, len(clients))
	for _, client := range clients {
		clientsCopy = append(clientsCopy, client)
	}
	h.mu.RUnlock()

	for _, client := range clientsCopy {
		go func(c ClientInterface) {
			if err := c.Send(data); err != nil {
				log.Warn().
					Err(err).
					Str("customer_id", customerID).
					Str("client_id", c.ID()).
					Msg("Failed to send to client")
			}
		}(client)
	}

	log.Debug().
		Str("customer_id", customerID).
		Str("event_type", event.Type).
		Int("client_count", len(clientsCopy)).
		Msg("Broadcast event")
}

// ClientCount returns the number of connections of a customer
func (h *Hub) ClientCount(customerID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	return len(h.customers[customerID])
}

// TotalClientCount returns the number of connections across all customers
func (h *Hub) TotalClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	total := 0
	for _, clients := range h.customers {
		total += len(clients)
	}
	return total
}
