package postgres

import (
	"context"
	"errors"

	"github.com/dafibh/mpwr/portal-backend/internal/domain"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// NotificationRepository implements domain.NotificationRepository using PostgreSQL
type NotificationRepository struct {
	pool *pgxpool.Pool
}

// NewNotificationRepository creates a new NotificationRepository
func NewNotificationRepository(pool *pgxpool.Pool) *NotificationRepository {
	return &NotificationRepository{pool: pool}
}

const notificationColumns = `id, customer_id, kind, title, message, read, created_at`

// Create inserts a notification
func (r *NotificationRepository) Create(n *domain.Notification) (*domain.Notification, error) {
	ctx := context.Background()

	if n.ID == uuid.Nil {
		n.ID = uuid.New()
	}
	row := r.pool.QueryRow(ctx, `
		INSERT INTO notifications (id, customer_id, kind, title, message, dedupe_key)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (customer_id, dedupe_key) DO NOTHING
		RETURNING `+notificationColumns,
		n.ID, n.CustomerID, string(n.Kind), n.Title, n.Message, n.DedupeKey)
	created, err := scanNotification(row)
	if errors.Is(err, pgx.ErrNoRows) {
		// Only reachable through the dedupe conflict
		return nil, domain.ErrDuplicateNotification
	}
	return created, err
}

// GetAllByCustomer retrieves a customer's notifications, newest first
func (r *NotificationRepository) GetAllByCustomer(customerID string) ([]*domain.Notification, error) {
	ctx := context.Background()

	rows, err := r.pool.Query(ctx, `
		SELECT `+notificationColumns+` FROM notifications
		WHERE customer_id = $1
		ORDER BY created_at DESC
		LIMIT 100`, customerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	list := make([]*domain.Notification, 0)
	for rows.Next() {
		n, err := scanNotification(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, n)
	}
	return list, rows.Err()
}

// MarkRead flags one notification as read
func (r *NotificationRepository) MarkRead(customerID string, id uuid.UUID) (*domain.Notification, error) {
	ctx := context.Background()

	row := r.pool.QueryRow(ctx, `
		UPDATE notifications SET read = TRUE
		WHERE customer_id = $1 AND id = $2
		RETURNING `+notificationColumns, customerID, id)
	n, err := scanNotification(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotificationNotFound
		}
		return nil, err
	}
	return n, nil
}

// MarkAllRead flags every unread notification and returns how many changed
func (r *NotificationRepository) MarkAllRead(customerID string) (int64, error) {
	ctx := context.Background()

	tag, err := r.pool.Exec(ctx, `UPDATE notifications SET read = TRUE WHERE customer_id = $1 AND NOT read`, customerID)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

// CountUnread returns the number of unread notifications
func (r *NotificationRepository) CountUnread(customerID string) (int64, error) {
	ctx := context.Background()

	var count int64
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM notifications WHERE customer_id = $1 AND NOT read`, customerID).Scan(&count)
	return count, err
}

func scanNotification(s scanner) (*domain.Notification, error) {
	var (
		n    domain.Notification
		kind string
	)
	if err := s.Scan(&n.ID, &n.CustomerID, &kind, &n.Title, &n.Message, &n.Read, &n.CreatedAt); err != nil {
		return nil, err
	}
	n.Kind = domain.NotificationKind(kind)
	return &n, nil
}
