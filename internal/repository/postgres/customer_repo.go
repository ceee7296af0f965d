package postgres

import (
	"context"
	"errors"

	"github.com/dafibh/mpwr/portal-backend/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// CustomerRepository implements domain.CustomerRepository using PostgreSQL
type CustomerRepository struct {
	pool *pgxpool.Pool
}

// NewCustomerRepository creates a new CustomerRepository
func NewCustomerRepository(pool *pgxpool.Pool) *CustomerRepository {
	return &CustomerRepository{pool: pool}
}

const customerColumns = `id, email, name, phone, status, created_at, updated_at`

// GetByID retrieves a customer by identity provider username
func (r *CustomerRepository) GetByID(id string) (*domain.Customer, error) {
	ctx := context.Background()

	row := r.pool.QueryRow(ctx, `SELECT `+customerColumns+` FROM customers WHERE id = $1`, id)
	customer, err := scanCustomer(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrCustomerNotFound
		}
		return nil, err
	}
	return customer, nil
}

// UpdateContact updates the customer's name and phone number
func (r *CustomerRepository) UpdateContact(id string, name string, phone *string) (*domain.Customer, error) {
	ctx := context.Background()

	row := r.pool.QueryRow(ctx, `
		UPDATE customers
		SET name = $2, phone = $3, updated_at = NOW()
		WHERE id = $1
		RETURNING `+customerColumns, id, name, phone)
	customer, err := scanCustomer(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrCustomerNotFound
		}
		return nil, err
	}
	return customer, nil
}

// ListActiveIDs returns the IDs of active customers
func (r *CustomerRepository) ListActiveIDs() ([]string, error) {
	ctx := context.Background()

	rows, err := r.pool.Query(ctx, `SELECT id FROM customers WHERE status = 'active' ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	ids := make([]string, 0)
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func scanCustomer(s scanner) (*domain.Customer, error) {
	var c domain.Customer
	if err := s.Scan(&c.ID, &c.Email, &c.Name, &c.Phone, &c.Status, &c.CreatedAt, &c.UpdatedAt); err != nil {
		return nil, err
	}
	return &c, nil
}
