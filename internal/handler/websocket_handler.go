package handler

import (
	"fmt"
	"net/http"

	"github.com/dafibh/mpwr/portal-backend/internal/domain"
	"github.com/dafibh/mpwr/portal-backend/internal/websocket"
	"github.com/google/uuid"
	ws "github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
)

// JWTValidator validates JWT tokens and returns the customer ID
type JWTValidator interface {
	ValidateToken(token string) (customerID string, err error)
}

// NotificationReader marks inbox entries read
type NotificationReader interface {
	MarkRead(customerID string, id uuid.UUID) (*domain.Notification, error)
}

// WebSocketHandler handles WebSocket connections
type WebSocketHandler struct {
	hub            *websocket.Hub
	validator      JWTValidator
	onMessage      websocket.MessageHandler
	allowedOrigins map[string]bool
	upgrader       ws.Upgrader
}

// NewWebSocketHandler creates a new WebSocketHandler
func NewWebSocketHandler(hub *websocket.Hub, validator JWTValidator, allowedOrigins []string) *WebSocketHandler {
	// Build origin lookup map
	originMap := make(map[string]bool)
	for _, origin := range allowedOrigins {
		originMap[origin] = true
	}

	h := &WebSocketHandler{
		hub:            hub,
		validator:      validator,
		allowedOrigins: originMap,
	}

	h.upgrader = ws.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     h.checkOrigin,
	}

	return h
}

// SetMessageHandler sets what connected clients' acknowledgements do
func (h *WebSocketHandler) SetMessageHandler(fn websocket.MessageHandler) {
	h.onMessage = fn
}

// AckNotifications marks a notification read when the borrower acknowledges
// it over the socket
func AckNotifications(notifications NotificationReader) websocket.MessageHandler {
	return func(customerID string, msg websocket.ClientMessage) error {
		id, err := uuid.Parse(msg.ID)
		if err != nil {
			return fmt.Errorf("%w: notification id %q", domain.ErrInvalidInput, msg.ID)
		}
		_, err = notifications.MarkRead(customerID, id)
		return err
	}
}

// checkOrigin validates the request origin against allowed origins
func (h *WebSocketHandler) checkOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		// Non-browser clients send no Origin
		return true
	}

	if h.allowedOrigins[origin] {
		return true
	}

	log.Warn().
		Str("origin", origin).
		Msg("WebSocket connection rejected: origin not allowed")
	return false
}

// HandleWS handles WebSocket connection requests at
// GET /ws/customers/:customerId/notifications?token=
func (h *WebSocketHandler) HandleWS(c echo.Context) error {
	// Browsers cannot set headers on WebSocket upgrades, so the token rides in the query
	token := c.QueryParam("token")
	if token == "" {
		log.Debug().Msg("WebSocket connection rejected: missing token")
		return echo.NewHTTPError(http.StatusUnauthorized, "missing token")
	}

	customerID, err := h.validator.ValidateToken(token)
	if err != nil {
		log.Debug().Err(err).Msg("WebSocket connection rejected: invalid token")
		return echo.NewHTTPError(http.StatusUnauthorized, "invalid token")
	}

	if requested := c.Param("customerId"); requested != "" && requested != customerID {
		log.Warn().
			Str("customer_id", customerID).
			Str("requested_customer_id", requested).
			Msg("WebSocket connection rejected: customer mismatch")
		return echo.NewHTTPError(http.StatusForbidden, "customer mismatch")
	}

	conn, err := h.upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		log.Error().Err(err).Msg("WebSocket upgrade failed")
		return err
	}

	client := websocket.NewClient(conn, customerID, h.hub, h.onMessage)
	h.hub.Register(client)

	log.Info().
		Str("customer_id", customerID).
		Str("client_id", client.ID()).
		Msg("WebSocket client connected")

	go client.WritePump()
	go client.ReadPump()

	return nil
}
