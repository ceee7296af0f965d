package postgres

// LoanRepository stores loans as the raw document received from the
// servicing system and normalizes on read. Aliases never leave ingest.

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dafibh/mpwr/portal-backend/internal/domain"
	"github.com/dafibh/mpwr/portal-backend/internal/ingest"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

// LoanRepository implements domain.LoanRepository using PostgreSQL
type LoanRepository struct {
	pool *pgxpool.Pool
}

// NewLoanRepository creates a new LoanRepository
func NewLoanRepository(pool *pgxpool.Pool) *LoanRepository {
	return &LoanRepository{pool: pool}
}

// GetByID retrieves one loan of a customer
func (r *LoanRepository) GetByID(customerID, id string) (*domain.Loan, error) {
	ctx := context.Background()

	row := r.pool.QueryRow(ctx, `
		SELECT id, document, updated_at FROM loans
		WHERE customer_id = $1 AND id = $2`, customerID, id)
	loan, err := scanLoan(customerID, row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrLoanNotFound
		}
		return nil, err
	}
	return loan, nil
}

// GetAllByCustomer retrieves every loan of a customer. Documents that fail
// to normalize are skipped and logged so one bad record does not hide the rest.
func (r *LoanRepository) GetAllByCustomer(customerID string) ([]*domain.Loan, error) {
	ctx := context.Background()

	rows, err := r.pool.Query(ctx, `
		SELECT id, document, updated_at FROM loans
		WHERE customer_id = $1
		ORDER BY created_at`, customerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	loans := make([]*domain.Loan, 0)
	for rows.Next() {
		loan, err := scanLoan(customerID, rows)
		if err != nil {
			if errors.Is(err, domain.ErrInvalidInput) {
				log.Warn().Err(err).Str("customer_id", customerID).Msg("Skipping malformed loan document")
				continue
			}
			return nil, err
		}
		loans = append(loans, loan)
	}
	return loans, rows.Err()
}

// MarkInstallmentPaid records a confirmed installment payment on the stored document
func (r *LoanRepository) MarkInstallmentPaid(customerID, id string, number int, principal decimal.Decimal) (*domain.Loan, error) {
	return r.rewrite(customerID, id, func(raw []byte) ([]byte, error) {
		return ingest.ApplyPayment(raw, number, principal)
	})
}

// ApplyExtraPrincipal reduces the stored balance by an extra payment
func (r *LoanRepository) ApplyExtraPrincipal(customerID, id string, amount decimal.Decimal) (*domain.Loan, error) {
	return r.rewrite(customerID, id, func(raw []byte) ([]byte, error) {
		return ingest.ApplyPrincipal(raw, amount)
	})
}

// rewrite edits a stored document under a row lock
func (r *LoanRepository) rewrite(customerID, id string, edit func([]byte) ([]byte, error)) (*domain.Loan, error) {
	ctx := context.Background()

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	var raw []byte
	err = tx.QueryRow(ctx, `
		SELECT document FROM loans
		WHERE customer_id = $1 AND id = $2
		FOR UPDATE`, customerID, id).Scan(&raw)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrLoanNotFound
		}
		return nil, err
	}

	updated, err := edit(raw)
	if err != nil {
		return nil, err
	}

	row := tx.QueryRow(ctx, `
		UPDATE loans SET document = $3, updated_at = NOW()
		WHERE customer_id = $1 AND id = $2
		RETURNING id, document, updated_at`, customerID, id, updated)
	loan, err := scanLoan(customerID, row)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return loan, nil
}

// Upsert stores a servicing document as received. The document must
// normalize cleanly before it is accepted.
func (r *LoanRepository) Upsert(customerID, id string, document []byte) (*domain.Loan, error) {
	if _, err := ingest.NormalizeLoan(customerID, document); err != nil {
		return nil, fmt.Errorf("loan %s: %w", id, err)
	}

	ctx := context.Background()
	row := r.pool.QueryRow(ctx, `
		INSERT INTO loans (customer_id, id, document)
		VALUES ($1, $2, $3)
		ON CONFLICT (customer_id, id)
		DO UPDATE SET document = EXCLUDED.document, updated_at = NOW()
		RETURNING id, document, updated_at`, customerID, id, document)
	return scanLoan(customerID, row)
}

func scanLoan(customerID string, s scanner) (*domain.Loan, error) {
	var (
		id        string
		raw       []byte
		updatedAt time.Time
	)
	if err := s.Scan(&id, &raw, &updatedAt); err != nil {
		return nil, err
	}

	loan, err := ingest.NormalizeLoan(customerID, raw)
	if err != nil {
		return nil, fmt.Errorf("loan %s: %w", id, err)
	}
	// The row key is authoritative over any id inside the document
	loan.ID = id
	loan.UpdatedAt = updatedAt
	return loan, nil
}
