package service

import (
	"errors"

	"github.com/dafibh/mpwr/portal-backend/internal/domain"
	"github.com/dafibh/mpwr/portal-backend/internal/websocket"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// NotificationService manages the borrower inbox and pushes new entries to
// connected clients
type NotificationService struct {
	notificationRepo domain.NotificationRepository
	eventPublisher   websocket.EventPublisher
}

// NewNotificationService creates a new NotificationService
func NewNotificationService(notificationRepo domain.NotificationRepository) *NotificationService {
	return &NotificationService{notificationRepo: notificationRepo}
}

// SetEventPublisher sets the event publisher for real-time updates
func (s *NotificationService) SetEventPublisher(publisher websocket.EventPublisher) {
	s.eventPublisher = publisher
}

func (s *NotificationService) publishEvent(customerID string, event websocket.Event) {
	if s.eventPublisher != nil {
		s.eventPublisher.Publish(customerID, event)
	}
}

// NotificationList is the inbox with its unread count
type NotificationList struct {
	Notifications []*domain.Notification `json:"notifications"`
	UnreadCount   int64                  `json:"unreadCount"`
}

// List returns a customer's notifications, newest first
func (s *NotificationService) List(customerID string) (*NotificationList, error) {
	list, err := s.notificationRepo.GetAllByCustomer(customerID)
	if err != nil {
		return nil, err
	}
	unread, err := s.notificationRepo.CountUnread(customerID)
	if err != nil {
		return nil, err
	}
	return &NotificationList{Notifications: list, UnreadCount: unread}, nil
}

// MarkRead flags a notification as read
func (s *NotificationService) MarkRead(customerID string, id uuid.UUID) (*domain.Notification, error) {
	n, err := s.notificationRepo.MarkRead(customerID, id)
	if err != nil {
		return nil, err
	}
	s.publishEvent(customerID, websocket.NotificationsRead(map[string]interface{}{"ids": []uuid.UUID{id}}))
	return n, nil
}

// MarkAllRead flags every notification as read and returns how many changed
func (s *NotificationService) MarkAllRead(customerID string) (int64, error) {
	changed, err := s.notificationRepo.MarkAllRead(customerID)
	if err != nil {
		return 0, err
	}
	if changed > 0 {
		s.publishEvent(customerID, websocket.NotificationsRead(map[string]interface{}{"all": true}))
	}
	return changed, nil
}

// UnreadCount returns the number of unread notifications
func (s *NotificationService) UnreadCount(customerID string) (int64, error) {
	return s.notificationRepo.CountUnread(customerID)
}

// Notify stores a notification and pushes it to the customer's connections.
// Notifications are a side effect of other operations, so failures are
// logged rather than returned.
func (s *NotificationService) Notify(customerID string, kind domain.NotificationKind, title, message string) {
	s.notify(&domain.Notification{
		CustomerID: customerID,
		Kind:       kind,
		Title:      title,
		Message:    message,
	})
}

// NotifyOnce is Notify with a dedupe key. It reports whether a new
// notification was created.
func (s *NotificationService) NotifyOnce(customerID, dedupeKey string, kind domain.NotificationKind, title, message string) bool {
	return s.notify(&domain.Notification{
		CustomerID: customerID,
		Kind:       kind,
		Title:      title,
		Message:    message,
		DedupeKey:  &dedupeKey,
	})
}

func (s *NotificationService) notify(n *domain.Notification) bool {
	created, err := s.notificationRepo.Create(n)
	if err != nil {
		if !errors.Is(err, domain.ErrDuplicateNotification) {
			log.Error().Err(err).Str("customer_id", n.CustomerID).Str("kind", string(n.Kind)).Msg("Failed to create notification")
		}
		return false
	}
	s.publishEvent(n.CustomerID, websocket.NotificationCreated(created))
	return true
}
