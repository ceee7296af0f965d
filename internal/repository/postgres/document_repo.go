package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/dafibh/mpwr/portal-backend/internal/domain"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// DocumentRepository implements domain.DocumentRepository using PostgreSQL
type DocumentRepository struct {
	pool *pgxpool.Pool
}

// NewDocumentRepository creates a new DocumentRepository
func NewDocumentRepository(pool *pgxpool.Pool) *DocumentRepository {
	return &DocumentRepository{pool: pool}
}

const documentColumns = `id, customer_id, name, type, status, object_key, content_type, size_bytes,
	signature_key, signed_at, uploaded_at, created_at, updated_at`

// Create inserts a document record
func (r *DocumentRepository) Create(doc *domain.Document) (*domain.Document, error) {
	ctx := context.Background()

	if doc.ID == uuid.Nil {
		doc.ID = uuid.New()
	}
	row := r.pool.QueryRow(ctx, `
		INSERT INTO documents (id, customer_id, name, type, status, object_key, content_type, size_bytes)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING `+documentColumns,
		doc.ID, doc.CustomerID, doc.Name, string(doc.Type), string(doc.Status), doc.ObjectKey, doc.ContentType, doc.Size)
	return scanDocument(row)
}

// GetByID retrieves a document of a customer
func (r *DocumentRepository) GetByID(customerID string, id uuid.UUID) (*domain.Document, error) {
	ctx := context.Background()

	row := r.pool.QueryRow(ctx, `
		SELECT `+documentColumns+` FROM documents
		WHERE customer_id = $1 AND id = $2 AND deleted_at IS NULL`, customerID, id)
	return notFoundAs(scanDocument(row))
}

// GetAllByCustomer retrieves a customer's documents, newest first
func (r *DocumentRepository) GetAllByCustomer(customerID string) ([]*domain.Document, error) {
	ctx := context.Background()

	rows, err := r.pool.Query(ctx, `
		SELECT `+documentColumns+` FROM documents
		WHERE customer_id = $1 AND deleted_at IS NULL
		ORDER BY created_at DESC`, customerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	docs := make([]*domain.Document, 0)
	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}
	return docs, rows.Err()
}

// MarkUploaded records a completed upload
func (r *DocumentRepository) MarkUploaded(customerID string, id uuid.UUID, size int64) (*domain.Document, error) {
	ctx := context.Background()

	row := r.pool.QueryRow(ctx, `
		UPDATE documents
		SET status = $3, size_bytes = $4, uploaded_at = NOW(), updated_at = NOW()
		WHERE customer_id = $1 AND id = $2 AND deleted_at IS NULL
		RETURNING `+documentColumns,
		customerID, id, string(domain.DocumentStatusUploaded), size)
	return notFoundAs(scanDocument(row))
}

// MarkSigned records a captured signature
func (r *DocumentRepository) MarkSigned(customerID string, id uuid.UUID, signatureKey string, signedAt time.Time) (*domain.Document, error) {
	ctx := context.Background()

	row := r.pool.QueryRow(ctx, `
		UPDATE documents
		SET status = $3, signature_key = $4, signed_at = $5, updated_at = NOW()
		WHERE customer_id = $1 AND id = $2 AND deleted_at IS NULL
		RETURNING `+documentColumns,
		customerID, id, string(domain.DocumentStatusSigned), signatureKey, signedAt)
	return notFoundAs(scanDocument(row))
}

// Delete soft-deletes a document
func (r *DocumentRepository) Delete(customerID string, id uuid.UUID) error {
	ctx := context.Background()

	tag, err := r.pool.Exec(ctx, `
		UPDATE documents SET deleted_at = NOW()
		WHERE customer_id = $1 AND id = $2 AND deleted_at IS NULL`, customerID, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrDocumentNotFound
	}
	return nil
}

func scanDocument(s scanner) (*domain.Document, error) {
	var (
		doc            domain.Document
		docType, state string
	)
	if err := s.Scan(
		&doc.ID, &doc.CustomerID, &doc.Name, &docType, &state, &doc.ObjectKey, &doc.ContentType, &doc.Size,
		&doc.SignatureKey, &doc.SignedAt, &doc.UploadedAt, &doc.CreatedAt, &doc.UpdatedAt,
	); err != nil {
		return nil, err
	}
	doc.Type = domain.DocumentType(docType)
	doc.Status = domain.DocumentStatus(state)
	return &doc, nil
}

func notFoundAs(doc *domain.Document, err error) (*domain.Document, error) {
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrDocumentNotFound
	}
	return doc, err
}
