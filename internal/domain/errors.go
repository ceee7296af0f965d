package domain

import "errors"

// Domain errors
var (
	ErrNotFound      = errors.New("resource not found")
	ErrInvalidInput  = errors.New("invalid input")
	ErrUnauthorized  = errors.New("unauthorized")
	ErrForbidden     = errors.New("forbidden")
	ErrInternalError = errors.New("internal error")

	ErrCustomerNotFound     = errors.New("customer not found")
	ErrLoanNotFound         = errors.New("loan not found")
	ErrInstallmentNotFound  = errors.New("installment not found")
	ErrDocumentNotFound     = errors.New("document not found")
	ErrPaymentNotFound      = errors.New("payment not found")
	ErrNotificationNotFound = errors.New("notification not found")

	ErrDuplicateNotification = errors.New("notification already sent")
	ErrDocumentNotUploaded   = errors.New("document upload not found in storage")
	ErrDocumentNotSignable   = errors.New("document is not awaiting signature")
	ErrInvalidDocumentType   = errors.New("invalid document type")
	ErrUnsupportedFileType   = errors.New("unsupported file type")
	ErrFileTooLarge          = errors.New("file too large")
	ErrInvalidSignature      = errors.New("invalid signature image")
	ErrInvalidPaymentAmount  = errors.New("payment amount must be positive")
	ErrNothingDue            = errors.New("loan has no outstanding installment")
	ErrInstallmentPaid       = errors.New("installment already paid")

	// ErrInvalidLoanTerms is returned when a loan cannot be amortized:
	// non-positive minimum payment, negative rate, negative balance or a
	// balance above the original amount.
	ErrInvalidLoanTerms = errors.New("invalid loan terms")
	// ErrOverrideRejected is returned when a staged amount falls outside
	// [0.5x, 3x] of the minimum payment. The store is left unchanged.
	ErrOverrideRejected    = errors.New("override amount out of range")
	ErrInvalidExtraPayment = errors.New("extra payment must not be negative")

	ErrNameRequired = errors.New("name is required")
	ErrNameTooLong  = errors.New("name exceeds maximum length")
)

// Validation constants
const (
	MaxCustomerNameLength = 255
	MaxPhoneLength        = 32
)
