package postgres

import (
	"context"
	"errors"

	"github.com/dafibh/mpwr/portal-backend/internal/domain"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PaymentRepository implements domain.PaymentRepository using PostgreSQL
type PaymentRepository struct {
	pool *pgxpool.Pool
}

// NewPaymentRepository creates a new PaymentRepository
func NewPaymentRepository(pool *pgxpool.Pool) *PaymentRepository {
	return &PaymentRepository{pool: pool}
}

const paymentColumns = `id, customer_id, loan_id, amount, type, status, installment_number, paid_at, created_at`

// Create records a payment
func (r *PaymentRepository) Create(payment *domain.Payment) (*domain.Payment, error) {
	ctx := context.Background()

	amount, err := decimalToPgNumeric(payment.Amount)
	if err != nil {
		return nil, err
	}
	if payment.ID == uuid.Nil {
		payment.ID = uuid.New()
	}

	var installment pgtype.Int4
	if payment.InstallmentNumber != nil {
		installment = pgtype.Int4{Int32: int32(*payment.InstallmentNumber), Valid: true}
	}

	row := r.pool.QueryRow(ctx, `
		INSERT INTO payments (id, customer_id, loan_id, amount, type, status, installment_number, paid_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING `+paymentColumns,
		payment.ID, payment.CustomerID, payment.LoanID, amount, string(payment.Type), string(payment.Status), installment, payment.PaidAt)
	return scanPayment(row)
}

// GetByID retrieves a payment of a customer
func (r *PaymentRepository) GetByID(customerID string, id uuid.UUID) (*domain.Payment, error) {
	ctx := context.Background()

	row := r.pool.QueryRow(ctx, `SELECT `+paymentColumns+` FROM payments WHERE customer_id = $1 AND id = $2`, customerID, id)
	payment, err := scanPayment(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrPaymentNotFound
		}
		return nil, err
	}
	return payment, nil
}

// GetAllByCustomer retrieves a customer's payment history, newest first
func (r *PaymentRepository) GetAllByCustomer(customerID string) ([]*domain.Payment, error) {
	ctx := context.Background()

	rows, err := r.pool.Query(ctx, `
		SELECT `+paymentColumns+` FROM payments
		WHERE customer_id = $1
		ORDER BY paid_at DESC`, customerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	payments := make([]*domain.Payment, 0)
	for rows.Next() {
		p, err := scanPayment(rows)
		if err != nil {
			return nil, err
		}
		payments = append(payments, p)
	}
	return payments, rows.Err()
}

func scanPayment(s scanner) (*domain.Payment, error) {
	var (
		p                   domain.Payment
		amount              pgtype.Numeric
		paymentType, status string
		installment         pgtype.Int4
	)
	if err := s.Scan(&p.ID, &p.CustomerID, &p.LoanID, &amount, &paymentType, &status, &installment, &p.PaidAt, &p.CreatedAt); err != nil {
		return nil, err
	}
	p.Amount = pgNumericToDecimal(amount)
	p.Type = domain.PaymentType(paymentType)
	p.Status = domain.PaymentStatus(status)
	if installment.Valid {
		n := int(installment.Int32)
		p.InstallmentNumber = &n
	}
	return &p, nil
}
