package testutil

import (
	"context"
	"fmt"
	"io"
	"sort"
	"sync"
	"time"

	"github.com/dafibh/mpwr/portal-backend/internal/domain"
	"github.com/dafibh/mpwr/portal-backend/internal/repository/storage"
	"github.com/dafibh/mpwr/portal-backend/internal/websocket"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// MockCustomerRepository is a mock implementation of domain.CustomerRepository
type MockCustomerRepository struct {
	Customers       map[string]*domain.Customer
	UpdateContactFn func(id string, name string, phone *string) (*domain.Customer, error)
}

// NewMockCustomerRepository creates a new MockCustomerRepository
func NewMockCustomerRepository() *MockCustomerRepository {
	return &MockCustomerRepository{
		Customers: make(map[string]*domain.Customer),
	}
}

// GetByID retrieves a customer by ID
func (m *MockCustomerRepository) GetByID(id string) (*domain.Customer, error) {
	if c, ok := m.Customers[id]; ok {
		return c, nil
	}
	return nil, domain.ErrCustomerNotFound
}

// ListActiveIDs returns active customer IDs in sorted order
func (m *MockCustomerRepository) ListActiveIDs() ([]string, error) {
	ids := make([]string, 0, len(m.Customers))
	for id, c := range m.Customers {
		if c.Status == "" || c.Status == "active" {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)
	return ids, nil
}

// UpdateContact updates name and phone
func (m *MockCustomerRepository) UpdateContact(id string, name string, phone *string) (*domain.Customer, error) {
	if m.UpdateContactFn != nil {
		return m.UpdateContactFn(id, name, phone)
	}
	c, ok := m.Customers[id]
	if !ok {
		return nil, domain.ErrCustomerNotFound
	}
	c.Name = &name
	c.Phone = phone
	c.UpdatedAt = time.Now()
	return c, nil
}

// AddCustomer adds a customer to the mock repository (helper for tests)
func (m *MockCustomerRepository) AddCustomer(c *domain.Customer) {
	m.Customers[c.ID] = c
}

// MockLoanRepository is a mock implementation of domain.LoanRepository
type MockLoanRepository struct {
	mu                    sync.Mutex
	Loans                 map[string]map[string]*domain.Loan // customerID -> loanID -> loan
	GetByIDFn             func(customerID, id string) (*domain.Loan, error)
	MarkInstallmentPaidFn func(customerID, id string, number int, principal decimal.Decimal) (*domain.Loan, error)
}

// NewMockLoanRepository creates a new MockLoanRepository
func NewMockLoanRepository() *MockLoanRepository {
	return &MockLoanRepository{
		Loans: make(map[string]map[string]*domain.Loan),
	}
}

// AddLoan adds a loan to the mock repository (helper for tests)
func (m *MockLoanRepository) AddLoan(loan *domain.Loan) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Loans[loan.CustomerID] == nil {
		m.Loans[loan.CustomerID] = make(map[string]*domain.Loan)
	}
	m.Loans[loan.CustomerID][loan.ID] = loan
}

// GetByID retrieves a loan of a customer
func (m *MockLoanRepository) GetByID(customerID, id string) (*domain.Loan, error) {
	if m.GetByIDFn != nil {
		return m.GetByIDFn(customerID, id)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if loan, ok := m.Loans[customerID][id]; ok {
		return loan, nil
	}
	return nil, domain.ErrLoanNotFound
}

// GetAllByCustomer retrieves a customer's loans ordered by ID
func (m *MockLoanRepository) GetAllByCustomer(customerID string) ([]*domain.Loan, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	loans := make([]*domain.Loan, 0, len(m.Loans[customerID]))
	for _, loan := range m.Loans[customerID] {
		loans = append(loans, loan)
	}
	sort.Slice(loans, func(i, j int) bool { return loans[i].ID < loans[j].ID })
	return loans, nil
}

// MarkInstallmentPaid mirrors the write-back done on servicing documents
func (m *MockLoanRepository) MarkInstallmentPaid(customerID, id string, number int, principal decimal.Decimal) (*domain.Loan, error) {
	if m.MarkInstallmentPaidFn != nil {
		return m.MarkInstallmentPaidFn(customerID, id, number, principal)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	loan, ok := m.Loans[customerID][id]
	if !ok {
		return nil, domain.ErrLoanNotFound
	}
	if loan.HasSchedule() {
		if number < 1 || number > len(loan.Schedule) {
			return nil, domain.ErrInstallmentNotFound
		}
		if loan.Schedule[number-1].Paid {
			return nil, domain.ErrInstallmentPaid
		}
		loan.Schedule[number-1].Paid = true
	} else if number <= loan.PaidPayments {
		return nil, domain.ErrInstallmentPaid
	}
	loan.PaidPayments++
	loan.CurrentBalance = decimal.Max(decimal.Zero, loan.CurrentBalance.Sub(principal))
	return loan, nil
}

// ApplyExtraPrincipal reduces the balance
func (m *MockLoanRepository) ApplyExtraPrincipal(customerID, id string, amount decimal.Decimal) (*domain.Loan, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	loan, ok := m.Loans[customerID][id]
	if !ok {
		return nil, domain.ErrLoanNotFound
	}
	loan.CurrentBalance = decimal.Max(decimal.Zero, loan.CurrentBalance.Sub(amount))
	return loan, nil
}

// MockDocumentRepository is a mock implementation of domain.DocumentRepository
type MockDocumentRepository struct {
	Documents map[uuid.UUID]*domain.Document
}

// NewMockDocumentRepository creates a new MockDocumentRepository
func NewMockDocumentRepository() *MockDocumentRepository {
	return &MockDocumentRepository{
		Documents: make(map[uuid.UUID]*domain.Document),
	}
}

// AddDocument adds a document to the mock repository (helper for tests)
func (m *MockDocumentRepository) AddDocument(doc *domain.Document) {
	if doc.ID == uuid.Nil {
		doc.ID = uuid.New()
	}
	m.Documents[doc.ID] = doc
}

// Create stores a document
func (m *MockDocumentRepository) Create(doc *domain.Document) (*domain.Document, error) {
	if doc.ID == uuid.Nil {
		doc.ID = uuid.New()
	}
	now := time.Now()
	doc.CreatedAt = now
	doc.UpdatedAt = now
	m.Documents[doc.ID] = doc
	return doc, nil
}

// GetByID retrieves a document of a customer
func (m *MockDocumentRepository) GetByID(customerID string, id uuid.UUID) (*domain.Document, error) {
	doc, ok := m.Documents[id]
	if !ok || doc.CustomerID != customerID {
		return nil, domain.ErrDocumentNotFound
	}
	return doc, nil
}

// GetAllByCustomer retrieves a customer's documents, newest first
func (m *MockDocumentRepository) GetAllByCustomer(customerID string) ([]*domain.Document, error) {
	docs := make([]*domain.Document, 0)
	for _, doc := range m.Documents {
		if doc.CustomerID == customerID {
			docs = append(docs, doc)
		}
	}
	sort.Slice(docs, func(i, j int) bool { return docs[i].CreatedAt.After(docs[j].CreatedAt) })
	return docs, nil
}

// MarkUploaded records a completed upload
func (m *MockDocumentRepository) MarkUploaded(customerID string, id uuid.UUID, size int64) (*domain.Document, error) {
	doc, err := m.GetByID(customerID, id)
	if err != nil {
		return nil, err
	}
	now := time.Now()
	doc.Status = domain.DocumentStatusUploaded
	doc.Size = size
	doc.UploadedAt = &now
	return doc, nil
}

// MarkSigned records a signature
func (m *MockDocumentRepository) MarkSigned(customerID string, id uuid.UUID, signatureKey string, signedAt time.Time) (*domain.Document, error) {
	doc, err := m.GetByID(customerID, id)
	if err != nil {
		return nil, err
	}
	doc.Status = domain.DocumentStatusSigned
	doc.SignatureKey = &signatureKey
	doc.SignedAt = &signedAt
	return doc, nil
}

// Delete removes a document
func (m *MockDocumentRepository) Delete(customerID string, id uuid.UUID) error {
	if _, err := m.GetByID(customerID, id); err != nil {
		return err
	}
	delete(m.Documents, id)
	return nil
}

// MockPaymentRepository is a mock implementation of domain.PaymentRepository
type MockPaymentRepository struct {
	Payments map[uuid.UUID]*domain.Payment
	CreateFn func(payment *domain.Payment) (*domain.Payment, error)
}

// NewMockPaymentRepository creates a new MockPaymentRepository
func NewMockPaymentRepository() *MockPaymentRepository {
	return &MockPaymentRepository{
		Payments: make(map[uuid.UUID]*domain.Payment),
	}
}

// Create stores a payment
func (m *MockPaymentRepository) Create(payment *domain.Payment) (*domain.Payment, error) {
	if m.CreateFn != nil {
		return m.CreateFn(payment)
	}
	if payment.ID == uuid.Nil {
		payment.ID = uuid.New()
	}
	payment.CreatedAt = time.Now()
	m.Payments[payment.ID] = payment
	return payment, nil
}

// GetByID retrieves a payment of a customer
func (m *MockPaymentRepository) GetByID(customerID string, id uuid.UUID) (*domain.Payment, error) {
	p, ok := m.Payments[id]
	if !ok || p.CustomerID != customerID {
		return nil, domain.ErrPaymentNotFound
	}
	return p, nil
}

// GetAllByCustomer retrieves a customer's payments, newest first
func (m *MockPaymentRepository) GetAllByCustomer(customerID string) ([]*domain.Payment, error) {
	list := make([]*domain.Payment, 0)
	for _, p := range m.Payments {
		if p.CustomerID == customerID {
			list = append(list, p)
		}
	}
	sort.Slice(list, func(i, j int) bool { return list[i].PaidAt.After(list[j].PaidAt) })
	return list, nil
}

// MockNotificationRepository is a mock implementation of domain.NotificationRepository
type MockNotificationRepository struct {
	mu            sync.Mutex
	Notifications map[uuid.UUID]*domain.Notification
	dedupe        map[string]bool
}

// NewMockNotificationRepository creates a new MockNotificationRepository
func NewMockNotificationRepository() *MockNotificationRepository {
	return &MockNotificationRepository{
		Notifications: make(map[uuid.UUID]*domain.Notification),
		dedupe:        make(map[string]bool),
	}
}

// Create stores a notification, honouring DedupeKey
func (m *MockNotificationRepository) Create(n *domain.Notification) (*domain.Notification, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if n.DedupeKey != nil {
		key := n.CustomerID + "|" + *n.DedupeKey
		if m.dedupe[key] {
			return nil, domain.ErrDuplicateNotification
		}
		m.dedupe[key] = true
	}
	if n.ID == uuid.Nil {
		n.ID = uuid.New()
	}
	n.CreatedAt = time.Now()
	m.Notifications[n.ID] = n
	return n, nil
}

// GetAllByCustomer retrieves a customer's notifications, newest first
func (m *MockNotificationRepository) GetAllByCustomer(customerID string) ([]*domain.Notification, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	list := make([]*domain.Notification, 0)
	for _, n := range m.Notifications {
		if n.CustomerID == customerID {
			list = append(list, n)
		}
	}
	sort.Slice(list, func(i, j int) bool { return list[i].CreatedAt.After(list[j].CreatedAt) })
	return list, nil
}

// MarkRead flags one notification as read
func (m *MockNotificationRepository) MarkRead(customerID string, id uuid.UUID) (*domain.Notification, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n, ok := m.Notifications[id]
	if !ok || n.CustomerID != customerID {
		return nil, domain.ErrNotificationNotFound
	}
	n.Read = true
	return n, nil
}

// MarkAllRead flags every unread notification of a customer
func (m *MockNotificationRepository) MarkAllRead(customerID string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var changed int64
	for _, n := range m.Notifications {
		if n.CustomerID == customerID && !n.Read {
			n.Read = true
			changed++
		}
	}
	return changed, nil
}

// CountUnread counts unread notifications of a customer
func (m *MockNotificationRepository) CountUnread(customerID string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var count int64
	for _, n := range m.Notifications {
		if n.CustomerID == customerID && !n.Read {
			count++
		}
	}
	return count, nil
}

// MockOverrideSessionRepository is a map-backed domain.OverrideSessionRepository
type MockOverrideSessionRepository struct {
	mu       sync.Mutex
	Sessions map[domain.OverrideSession]domain.OverrideSnapshot
	SaveFn   func(s domain.OverrideSession, snapshot domain.OverrideSnapshot) error
}

// NewMockOverrideSessionRepository creates a new MockOverrideSessionRepository
func NewMockOverrideSessionRepository() *MockOverrideSessionRepository {
	return &MockOverrideSessionRepository{
		Sessions: make(map[domain.OverrideSession]domain.OverrideSnapshot),
	}
}

// Load returns the stored snapshot, empty when absent
func (m *MockOverrideSessionRepository) Load(s domain.OverrideSession) (domain.OverrideSnapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	snap := domain.OverrideSnapshot{}
	for k, v := range m.Sessions[s] {
		snap[k] = v
	}
	return snap, nil
}

// Save stores a snapshot
func (m *MockOverrideSessionRepository) Save(s domain.OverrideSession, snapshot domain.OverrideSnapshot) error {
	if m.SaveFn != nil {
		return m.SaveFn(s, snapshot)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Sessions[s] = snapshot
	return nil
}

// Delete drops a snapshot
func (m *MockOverrideSessionRepository) Delete(s domain.OverrideSession) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.Sessions, s)
	return nil
}

// MockDocumentStorage is an in-memory storage.DocumentStorage
type MockDocumentStorage struct {
	mu      sync.Mutex
	Objects map[string][]byte
	Deleted []string
}

var _ storage.DocumentStorage = (*MockDocumentStorage)(nil)

// NewMockDocumentStorage creates a new MockDocumentStorage
func NewMockDocumentStorage() *MockDocumentStorage {
	return &MockDocumentStorage{Objects: make(map[string][]byte)}
}

// PresignUpload returns a fake upload URL
func (m *MockDocumentStorage) PresignUpload(ctx context.Context, objectKey, contentType string) (string, error) {
	return fmt.Sprintf("https://storage.test/%s?method=PUT", objectKey), nil
}

// PresignDownload returns a fake download URL
func (m *MockDocumentStorage) PresignDownload(ctx context.Context, objectKey string) (string, error) {
	return fmt.Sprintf("https://storage.test/%s?method=GET", objectKey), nil
}

// Upload stores data in memory
func (m *MockDocumentStorage) Upload(ctx context.Context, objectKey string, data io.Reader, contentType string, size int64) error {
	buf, err := io.ReadAll(data)
	if err != nil {
		return err
	}
	m.mu.Lock()
	m.Objects[objectKey] = buf
	m.mu.Unlock()
	return nil
}

// Stat returns the stored size
func (m *MockDocumentStorage) Stat(ctx context.Context, objectKey string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	buf, ok := m.Objects[objectKey]
	if !ok {
		return 0, storage.ErrObjectNotFound
	}
	return int64(len(buf)), nil
}

// Delete removes an object
func (m *MockDocumentStorage) Delete(ctx context.Context, objectKey string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.Objects, objectKey)
	m.Deleted = append(m.Deleted, objectKey)
	return nil
}

// PublishedEvent is an event captured by MockEventPublisher
type PublishedEvent struct {
	CustomerID string
	Event      websocket.Event
}

// MockEventPublisher records published events
type MockEventPublisher struct {
	mu     sync.Mutex
	Events []PublishedEvent
}

// Publish records the event
func (m *MockEventPublisher) Publish(customerID string, event websocket.Event) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Events = append(m.Events, PublishedEvent{CustomerID: customerID, Event: event})
}

// Types returns the type of every published event in order
func (m *MockEventPublisher) Types() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	types := make([]string, len(m.Events))
	for i, e := range m.Events {
		types[i] = e.Event.Type
	}
	return types
}
