package domain

import (
	"time"

	"github.com/google/uuid"
)

// DocumentStatus tracks a document through upload and signing
type DocumentStatus string

const (
	DocumentStatusPending          DocumentStatus = "pending"
	DocumentStatusUploaded         DocumentStatus = "uploaded"
	DocumentStatusPendingSignature DocumentStatus = "pending_signature"
	DocumentStatusSigned           DocumentStatus = "signed"
	DocumentStatusActionRequired   DocumentStatus = "action_required"
	DocumentStatusRejected         DocumentStatus = "rejected"
)

// NeedsAction reports whether the borrower has to do something with the document
func (s DocumentStatus) NeedsAction() bool {
	return s == DocumentStatusPendingSignature || s == DocumentStatusActionRequired
}

// DocumentType classifies borrower uploads
type DocumentType string

const (
	DocumentTypePaystub       DocumentType = "paystub"
	DocumentTypeID            DocumentType = "id"
	DocumentTypeBankStatement DocumentType = "bank_statement"
	DocumentTypeAgreement     DocumentType = "agreement"
	DocumentTypeOther         DocumentType = "other"
)

// IsValid reports whether t is a known document type
func (t DocumentType) IsValid() bool {
	switch t {
	case DocumentTypePaystub, DocumentTypeID, DocumentTypeBankStatement, DocumentTypeAgreement, DocumentTypeOther:
		return true
	}
	return false
}

// Document is a file held in object storage on behalf of a customer
type Document struct {
	ID           uuid.UUID      `json:"id"`
	CustomerID   string         `json:"customerId"`
	Name         string         `json:"name"`
	Type         DocumentType   `json:"type"`
	Status       DocumentStatus `json:"status"`
	ObjectKey    string         `json:"-"`
	ContentType  string         `json:"contentType"`
	Size         int64          `json:"size"`
	SignatureKey *string        `json:"-"`
	SignedAt     *time.Time     `json:"signedAt,omitempty"`
	UploadedAt   *time.Time     `json:"uploadedAt,omitempty"`
	CreatedAt    time.Time      `json:"createdAt"`
	UpdatedAt    time.Time      `json:"updatedAt"`
}

// DocumentRepository defines the interface for document persistence operations
type DocumentRepository interface {
	Create(doc *Document) (*Document, error)
	GetByID(customerID string, id uuid.UUID) (*Document, error)
	GetAllByCustomer(customerID string) ([]*Document, error)
	MarkUploaded(customerID string, id uuid.UUID, size int64) (*Document, error)
	MarkSigned(customerID string, id uuid.UUID, signatureKey string, signedAt time.Time) (*Document, error)
	Delete(customerID string, id uuid.UUID) error
}
