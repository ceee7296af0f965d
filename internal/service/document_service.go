package service

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	_ "image/jpeg" // decoder for JPEG signatures
	_ "image/png"  // decoder for PNG signatures
	"path"
	"strings"
	"time"

	"github.com/dafibh/mpwr/portal-backend/internal/domain"
	"github.com/dafibh/mpwr/portal-backend/internal/repository/storage"
	"github.com/dafibh/mpwr/portal-backend/internal/websocket"
	"github.com/disintegration/imaging"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

const (
	MaxDocumentSize       = 10 * 1024 * 1024 // 10MB
	MaxDocumentNameLength = 200
	MaxSignatureSize      = 1024 * 1024 // decoded bytes
	MinSignatureWidth     = 50
	MinSignatureHeight    = 20
	SignatureWidth        = 600
)

// AllowedDocumentTypes contains the accepted upload MIME types
var AllowedDocumentTypes = map[string]bool{
	"application/pdf": true,
	"image/jpeg":      true,
	"image/png":       true,
}

// DocumentService handles borrower document uploads and e-signatures.
// File bytes go straight between the browser and object storage through
// presigned URLs; only signatures pass through the API.
type DocumentService struct {
	documentRepo   domain.DocumentRepository
	storage        storage.DocumentStorage
	notifications  *NotificationService
	eventPublisher websocket.EventPublisher
	now            func() time.Time
}

// NewDocumentService creates a new DocumentService
func NewDocumentService(documentRepo domain.DocumentRepository, store storage.DocumentStorage, notifications *NotificationService) *DocumentService {
	return &DocumentService{
		documentRepo:  documentRepo,
		storage:       store,
		notifications: notifications,
		now:           time.Now,
	}
}

// SetEventPublisher sets the event publisher for real-time updates
func (s *DocumentService) SetEventPublisher(publisher websocket.EventPublisher) {
	s.eventPublisher = publisher
}

func (s *DocumentService) publishEvent(customerID string, event websocket.Event) {
	if s.eventPublisher != nil {
		s.eventPublisher.Publish(customerID, event)
	}
}

func (s *DocumentService) notify(customerID, title, message string) {
	if s.notifications != nil {
		s.notifications.Notify(customerID, domain.NotificationKindDocument, title, message)
	}
}

// UploadRequest describes a file the browser is about to upload
type UploadRequest struct {
	Name        string
	Type        domain.DocumentType
	ContentType string
	Size        int64
}

// UploadTicket is a pending document plus the URL to PUT the file to
type UploadTicket struct {
	Document  *domain.Document `json:"document"`
	UploadURL string           `json:"uploadUrl"`
}

// DocumentLink is a temporary URL for a document
type DocumentLink struct {
	Document *domain.Document `json:"document"`
	URL      string           `json:"url"`
}

// SigningStatus reports where a document is in the signing flow
type SigningStatus struct {
	DocumentID uuid.UUID             `json:"documentId"`
	Status     domain.DocumentStatus `json:"status"`
	Signed     bool                  `json:"signed"`
	SignedAt   *time.Time            `json:"signedAt,omitempty"`
}

// List returns a customer's documents
func (s *DocumentService) List(customerID string) ([]*domain.Document, error) {
	return s.documentRepo.GetAllByCustomer(customerID)
}

// RequestUpload validates the file and creates a pending document
func (s *DocumentService) RequestUpload(ctx context.Context, customerID string, req UploadRequest) (*UploadTicket, error) {
	name := strings.TrimSpace(path.Base(req.Name))
	if name == "" || name == "." || name == "/" {
		return nil, domain.ErrNameRequired
	}
	if len(name) > MaxDocumentNameLength {
		return nil, domain.ErrNameTooLong
	}
	if !req.Type.IsValid() {
		return nil, domain.ErrInvalidDocumentType
	}
	if !AllowedDocumentTypes[req.ContentType] {
		return nil, domain.ErrUnsupportedFileType
	}
	if req.Size <= 0 || req.Size > MaxDocumentSize {
		return nil, domain.ErrFileTooLarge
	}

	id := uuid.New()
	objectKey := storage.DocumentKey(customerID, id, name)
	uploadURL, err := s.storage.PresignUpload(ctx, objectKey, req.ContentType)
	if err != nil {
		return nil, err
	}

	doc, err := s.documentRepo.Create(&domain.Document{
		ID:          id,
		CustomerID:  customerID,
		Name:        name,
		Type:        req.Type,
		Status:      domain.DocumentStatusPending,
		ObjectKey:   objectKey,
		ContentType: req.ContentType,
		Size:        req.Size,
	})
	if err != nil {
		return nil, err
	}

	return &UploadTicket{Document: doc, UploadURL: uploadURL}, nil
}

// ConfirmUpload checks that the file reached storage and marks it uploaded
func (s *DocumentService) ConfirmUpload(ctx context.Context, customerID string, id uuid.UUID) (*domain.Document, error) {
	doc, err := s.documentRepo.GetByID(customerID, id)
	if err != nil {
		return nil, err
	}
	if doc.Status != domain.DocumentStatusPending {
		return doc, nil
	}

	size, err := s.storage.Stat(ctx, doc.ObjectKey)
	if err != nil {
		if errors.Is(err, storage.ErrObjectNotFound) {
			return nil, domain.ErrDocumentNotUploaded
		}
		return nil, err
	}
	if size > MaxDocumentSize {
		if err := s.storage.Delete(ctx, doc.ObjectKey); err != nil {
			log.Warn().Err(err).Str("object_key", doc.ObjectKey).Msg("Failed to remove oversized upload")
		}
		return nil, domain.ErrFileTooLarge
	}

	doc, err = s.documentRepo.MarkUploaded(customerID, id, size)
	if err != nil {
		return nil, err
	}

	s.publishEvent(customerID, websocket.DocumentUpdated(doc))
	s.notify(customerID, "Document received", fmt.Sprintf("We received %s and will review it shortly.", doc.Name))
	return doc, nil
}

// DownloadURL returns a temporary link to an uploaded document
func (s *DocumentService) DownloadURL(ctx context.Context, customerID string, id uuid.UUID) (*DocumentLink, error) {
	doc, err := s.documentRepo.GetByID(customerID, id)
	if err != nil {
		return nil, err
	}
	if doc.Status == domain.DocumentStatusPending {
		return nil, domain.ErrDocumentNotUploaded
	}

	url, err := s.storage.PresignDownload(ctx, doc.ObjectKey)
	if err != nil {
		return nil, err
	}
	return &DocumentLink{Document: doc, URL: url}, nil
}

// Delete removes a borrower upload. Agreements belong to the lender and
// cannot be removed.
func (s *DocumentService) Delete(ctx context.Context, customerID string, id uuid.UUID) error {
	doc, err := s.documentRepo.GetByID(customerID, id)
	if err != nil {
		return err
	}
	if doc.Type == domain.DocumentTypeAgreement {
		return fmt.Errorf("%w: agreements cannot be deleted", domain.ErrForbidden)
	}

	if err := s.documentRepo.Delete(customerID, id); err != nil {
		return err
	}

	// Storage cleanup is best effort once the record is gone
	if err := s.storage.Delete(ctx, doc.ObjectKey); err != nil {
		log.Warn().Err(err).Str("object_key", doc.ObjectKey).Msg("Failed to delete document object")
	}

	s.publishEvent(customerID, websocket.DocumentDeleted(map[string]interface{}{"id": id}))
	return nil
}

// StartSigning returns a view link for a document awaiting signature
func (s *DocumentService) StartSigning(ctx context.Context, customerID string, id uuid.UUID) (*DocumentLink, error) {
	doc, err := s.documentRepo.GetByID(customerID, id)
	if err != nil {
		return nil, err
	}
	if !doc.Status.NeedsAction() {
		return nil, domain.ErrDocumentNotSignable
	}

	url, err := s.storage.PresignDownload(ctx, doc.ObjectKey)
	if err != nil {
		return nil, err
	}
	return &DocumentLink{Document: doc, URL: url}, nil
}

// ConfirmSignature stores the captured signature and marks the document signed.
// signature is a data URL (data:image/png;base64,...) from the signature pad.
func (s *DocumentService) ConfirmSignature(ctx context.Context, customerID string, id uuid.UUID, signature string) (*domain.Document, error) {
	doc, err := s.documentRepo.GetByID(customerID, id)
	if err != nil {
		return nil, err
	}
	if !doc.Status.NeedsAction() {
		return nil, domain.ErrDocumentNotSignable
	}

	png, err := NormalizeSignature(signature)
	if err != nil {
		return nil, err
	}

	key := storage.SignatureKey(customerID, id)
	if err := s.storage.Upload(ctx, key, bytes.NewReader(png), "image/png", int64(len(png))); err != nil {
		return nil, err
	}

	doc, err = s.documentRepo.MarkSigned(customerID, id, key, s.now().UTC())
	if err != nil {
		return nil, err
	}

	s.publishEvent(customerID, websocket.DocumentSigned(doc))
	s.notify(customerID, "Document signed", fmt.Sprintf("Thanks, %s is signed.", doc.Name))
	return doc, nil
}

// GetSigningStatus reports whether a document has been signed
func (s *DocumentService) GetSigningStatus(customerID string, id uuid.UUID) (*SigningStatus, error) {
	doc, err := s.documentRepo.GetByID(customerID, id)
	if err != nil {
		return nil, err
	}
	return &SigningStatus{
		DocumentID: doc.ID,
		Status:     doc.Status,
		Signed:     doc.Status == domain.DocumentStatusSigned,
		SignedAt:   doc.SignedAt,
	}, nil
}

// NormalizeSignature decodes a signature data URL and re-encodes it as a
// PNG no wider than SignatureWidth
func NormalizeSignature(dataURL string) ([]byte, error) {
	header, payload, ok := strings.Cut(dataURL, ",")
	if !ok || !strings.HasPrefix(header, "data:image/") || !strings.HasSuffix(header, ";base64") {
		return nil, fmt.Errorf("%w: expected a base64 image data URL", domain.ErrInvalidSignature)
	}
	if base64.StdEncoding.DecodedLen(len(payload)) > MaxSignatureSize {
		return nil, fmt.Errorf("%w: image too large", domain.ErrInvalidSignature)
	}

	raw, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidSignature, err)
	}

	img, _, err := image.Decode(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidSignature, err)
	}
	bounds := img.Bounds()
	if bounds.Dx() < MinSignatureWidth || bounds.Dy() < MinSignatureHeight {
		return nil, fmt.Errorf("%w: image too small", domain.ErrInvalidSignature)
	}

	if bounds.Dx() > SignatureWidth {
		img = imaging.Resize(img, SignatureWidth, 0, imaging.Lanczos)
	}

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.PNG); err != nil {
		return nil, fmt.Errorf("failed to encode signature: %w", err)
	}
	return buf.Bytes(), nil
}
