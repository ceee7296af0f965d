package websocket

import (
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

const (
	// writeWait is time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// pongWait is time allowed to read the next pong message from the peer
	pongWait = 60 * time.Second

	// pingPeriod is the interval for sending pings (must be less than pongWait)
	pingPeriod = (pongWait * 9) / 10

	// maxMessageSize is maximum message size allowed from peer
	maxMessageSize = 512

	// sendBuffer is how many outbound frames may queue before a client is
	// considered too slow and dropped
	sendBuffer = 256
)

// Inbound frame types
const (
	MessageTypeAck  = "notification.ack"
	MessageTypePing = "ping"
)

// ErrUnknownMessage is returned for inbound frames the server does not handle
var ErrUnknownMessage = errors.New("unknown message type")

// ClientMessage is a frame sent by the portal, e.g.
// {"type":"notification.ack","id":"<notification id>"}
type ClientMessage struct {
	Type string `json:"type"`
	ID   string `json:"id,omitempty"`
}

// MessageHandler acts on an acknowledgement from a borrower's connection
type MessageHandler func(customerID string, msg ClientMessage) error

// reply is the frame written back for pings and rejected messages
type reply struct {
	Type    string `json:"type"`
	ID      string `json:"id,omitempty"`
	Message string `json:"message,omitempty"`
}

// Client is one borrower connection. Events flow out through send; the
// only inbound traffic is pings and notification acknowledgements.
type Client struct {
	id         string
	customerID string
	conn       *websocket.Conn
	hub        *Hub
	onMessage  MessageHandler
	send       chan []byte
	closed     bool
	mu         sync.RWMutex
	closeOnce  sync.Once
}

// NewClient creates a new WebSocket client. onMessage may be nil, in which
// case acknowledgements are rejected.
func NewClient(conn *websocket.Conn, customerID string, hub *Hub, onMessage MessageHandler) *Client {
	return &Client{
		id:         uuid.New().String(),
		customerID: customerID,
		conn:       conn,
		hub:        hub,
		onMessage:  onMessage,
		send:       make(chan []byte, sendBuffer),
	}
}

// ID returns the client's unique identifier
func (c *Client) ID() string {
	return c.id
}

// CustomerID returns the borrower the connection belongs to
func (c *Client) CustomerID() string {
	return c.customerID
}

// Send queues a message to be sent to the client
func (c *Client) Send(data []byte) error {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.closed {
		return ErrClientClosed
	}

	select {
	case c.send <- data:
		return nil
	default:
		// Buffer is full, client is too slow
		return ErrClientClosed
	}
}

// Close closes the client connection
// Safe to call multiple times from different goroutines
func (c *Client) Close() error {
	var closeErr error
	c.closeOnce.Do(func() {
		c.mu.Lock()
		c.closed = true
		close(c.send)
		c.mu.Unlock()

		closeErr = c.conn.Close()
	})
	return closeErr
}

// IsClosed returns whether the client is closed
func (c *Client) IsClosed() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.closed
}

// ReadPump pumps messages from the WebSocket connection
// This should be run in a goroutine
func (c *Client) ReadPump() {
	defer func() {
		c.hub.Unregister(c)
		c.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Warn().
					Err(err).
					Str("client_id", c.id).
					Str("customer_id", c.customerID).
					Msg("WebSocket unexpected close")
			}
			break
		}
		c.handleFrame(data)
	}
}

// handleFrame dispatches one inbound frame. Bad frames get an error reply
// and never close the connection.
func (c *Client) handleFrame(data []byte) {
	var msg ClientMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		c.reply(reply{Type: "error", Message: "malformed message"})
		return
	}

	switch msg.Type {
	case MessageTypePing:
		c.reply(reply{Type: "pong"})
	case MessageTypeAck:
		if c.onMessage == nil {
			c.reply(reply{Type: "error", ID: msg.ID, Message: ErrUnknownMessage.Error()})
			return
		}
		if err := c.onMessage(c.customerID, msg); err != nil {
			log.Debug().
				Err(err).
				Str("customer_id", c.customerID).
				Str("notification_id", msg.ID).
				Msg("WebSocket acknowledgement rejected")
			c.reply(reply{Type: "error", ID: msg.ID, Message: err.Error()})
		}
	default:
		c.reply(reply{Type: "error", Message: ErrUnknownMessage.Error()})
	}
}

func (c *Client) reply(r reply) {
	data, err := json.Marshal(r)
	if err != nil {
		return
	}
	if err := c.Send(data); err != nil {
		log.Debug().Err(err).Str("client_id", c.id).Msg("WebSocket reply dropped")
	}
}

// WritePump pumps messages from the hub to the WebSocket connection
// This should be run in a goroutine
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// Channel closed, hub closed this client
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				log.Warn().
					Err(err).
					Str("client_id", c.id).
					Str("customer_id", c.customerID).
					Msg("WebSocket write error")
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
