package handler

import (
	"net/http"

	"github.com/dafibh/mpwr/portal-backend/internal/domain"
	"github.com/dafibh/mpwr/portal-backend/internal/middleware"
	"github.com/dafibh/mpwr/portal-backend/internal/service"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
)

// DocumentHandler handles document upload and e-signature HTTP requests
type DocumentHandler struct {
	documentService *service.DocumentService
}

// NewDocumentHandler creates a new DocumentHandler
func NewDocumentHandler(documentService *service.DocumentService) *DocumentHandler {
	return &DocumentHandler{documentService: documentService}
}

// UploadURLRequest represents the upload URL request body
type UploadURLRequest struct {
	FileName    string              `json:"fileName"`
	Type        domain.DocumentType `json:"type"`
	ContentType string              `json:"contentType"`
	Size        int64               `json:"size"`
}

// ConfirmUploadRequest represents the confirm upload request body
type ConfirmUploadRequest struct {
	DocumentID string `json:"documentId"`
}

// ConfirmSignatureRequest represents the confirm signature request body
type ConfirmSignatureRequest struct {
	Signature string `json:"signature"` // data:image/png;base64,...
}

// GetDocuments handles GET /api/customers/:customerId/documents
func (h *DocumentHandler) GetDocuments(c echo.Context) error {
	customerID := middleware.GetCustomerID(c)
	if customerID == "" {
		return NewUnauthorizedError(c, "Authentication required")
	}

	docs, err := h.documentService.List(customerID)
	if err != nil {
		return respondServiceError(c, err, "Failed to get documents")
	}
	return c.JSON(http.StatusOK, docs)
}

// RequestUploadURL godoc
// @Summary Request a document upload URL
// @Description Creates a pending document and returns a presigned URL to PUT the file to. PDF, JPEG and PNG up to 10MB.
// @Tags documents
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param customerId path string true "Customer ID"
// @Param request body UploadURLRequest true "File metadata"
// @Success 201 {object} service.UploadTicket
// @Failure 400 {object} ProblemDetails
// @Router /customers/{customerId}/documents/upload-url [post]
func (h *DocumentHandler) RequestUploadURL(c echo.Context) error {
	customerID := middleware.GetCustomerID(c)
	if customerID == "" {
		return NewUnauthorizedError(c, "Authentication required")
	}

	var req UploadURLRequest
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "Invalid request body", nil)
	}

	var errs []ValidationError
	if req.FileName == "" {
		errs = append(errs, ValidationError{Field: "fileName", Message: "File name is required"})
	}
	if req.ContentType == "" {
		errs = append(errs, ValidationError{Field: "contentType", Message: "Content type is required"})
	}
	if req.Size <= 0 {
		errs = append(errs, ValidationError{Field: "size", Message: "Size must be greater than zero"})
	}
	if len(errs) > 0 {
		return NewValidationError(c, "Validation failed", errs)
	}

	ticket, err := h.documentService.RequestUpload(c.Request().Context(), customerID, service.UploadRequest{
		Name:        req.FileName,
		Type:        req.Type,
		ContentType: req.ContentType,
		Size:        req.Size,
	})
	if err != nil {
		return respondServiceError(c, err, "Failed to create upload URL")
	}

	log.Info().Str("customer_id", customerID).Str("document_id", ticket.Document.ID.String()).Msg("Upload URL issued")
	return c.JSON(http.StatusCreated, ticket)
}

// ConfirmUpload handles POST /api/customers/:customerId/documents/confirm
func (h *DocumentHandler) ConfirmUpload(c echo.Context) error {
	customerID := middleware.GetCustomerID(c)
	if customerID == "" {
		return NewUnauthorizedError(c, "Authentication required")
	}

	var req ConfirmUploadRequest
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "Invalid request body", nil)
	}
	id, err := uuid.Parse(req.DocumentID)
	if err != nil {
		return NewValidationError(c, "Validation failed", []ValidationError{
			{Field: "documentId", Message: "Must be a valid document ID"},
		})
	}

	doc, err := h.documentService.ConfirmUpload(c.Request().Context(), customerID, id)
	if err != nil {
		return respondServiceError(c, err, "Failed to confirm upload")
	}
	return c.JSON(http.StatusOK, doc)
}

// GetDownloadURL handles GET /api/customers/:customerId/documents/:docId/download-url
func (h *DocumentHandler) GetDownloadURL(c echo.Context) error {
	customerID := middleware.GetCustomerID(c)
	if customerID == "" {
		return NewUnauthorizedError(c, "Authentication required")
	}
	id, err := uuid.Parse(c.Param("docId"))
	if err != nil {
		return NewValidationError(c, "Invalid document ID", nil)
	}

	link, err := h.documentService.DownloadURL(c.Request().Context(), customerID, id)
	if err != nil {
		return respondServiceError(c, err, "Failed to create download URL")
	}
	return c.JSON(http.StatusOK, link)
}

// DeleteDocument handles DELETE /api/customers/:customerId/documents/:docId
func (h *DocumentHandler) DeleteDocument(c echo.Context) error {
	customerID := middleware.GetCustomerID(c)
	if customerID == "" {
		return NewUnauthorizedError(c, "Authentication required")
	}
	id, err := uuid.Parse(c.Param("docId"))
	if err != nil {
		return NewValidationError(c, "Invalid document ID", nil)
	}

	if err := h.documentService.Delete(c.Request().Context(), customerID, id); err != nil {
		return respondServiceError(c, err, "Failed to delete document")
	}
	return c.NoContent(http.StatusNoContent)
}

// StartSigning godoc
// @Summary Start signing a document
// @Description Returns a temporary view URL for a document awaiting the borrower's signature
// @Tags documents
// @Produce json
// @Security BearerAuth
// @Param customerId path string true "Customer ID"
// @Param docId path string true "Document ID"
// @Success 200 {object} service.DocumentLink
// @Failure 404 {object} ProblemDetails
// @Failure 422 {object} ProblemDetails
// @Router /customers/{customerId}/documents/{docId}/sign [get]
func (h *DocumentHandler) StartSigning(c echo.Context) error {
	customerID := middleware.GetCustomerID(c)
	if customerID == "" {
		return NewUnauthorizedError(c, "Authentication required")
	}
	id, err := uuid.Parse(c.Param("docId"))
	if err != nil {
		return NewValidationError(c, "Invalid document ID", nil)
	}

	link, err := h.documentService.StartSigning(c.Request().Context(), customerID, id)
	if err != nil {
		return respondServiceError(c, err, "Failed to start signing")
	}
	return c.JSON(http.StatusOK, link)
}

// ConfirmSignature handles POST /api/customers/:customerId/documents/:docId/confirm-signature
func (h *DocumentHandler) ConfirmSignature(c echo.Context) error {
	customerID := middleware.GetCustomerID(c)
	if customerID == "" {
		return NewUnauthorizedError(c, "Authentication required")
	}
	id, err := uuid.Parse(c.Param("docId"))
	if err != nil {
		return NewValidationError(c, "Invalid document ID", nil)
	}

	var req ConfirmSignatureRequest
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "Invalid request body", nil)
	}
	if req.Signature == "" {
		return NewValidationError(c, "Validation failed", []ValidationError{
			{Field: "signature", Message: "Signature is required"},
		})
	}

	doc, err := h.documentService.ConfirmSignature(c.Request().Context(), customerID, id, req.Signature)
	if err != nil {
		return respondServiceError(c, err, "Failed to confirm signature")
	}

	log.Info().Str("customer_id", customerID).Str("document_id", id.String()).Msg("Document signed")
	return c.JSON(http.StatusOK, doc)
}

// GetSigningStatus handles GET /api/customers/:customerId/documents/:docId/signing-status
func (h *DocumentHandler) GetSigningStatus(c echo.Context) error {
	customerID := middleware.GetCustomerID(c)
	if customerID == "" {
		return NewUnauthorizedError(c, "Authentication required")
	}
	id, err := uuid.Parse(c.Param("docId"))
	if err != nil {
		return NewValidationError(c, "Invalid document ID", nil)
	}

	status, err := h.documentService.GetSigningStatus(customerID, id)
	if err != nil {
		return respondServiceError(c, err, "Failed to get signing status")
	}
	return c.JSON(http.StatusOK, status)
}
