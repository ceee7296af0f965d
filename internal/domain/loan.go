package domain

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// DefaultLoanName is shown when the servicing record carries no name
const DefaultLoanName = "Personal Loan"

// LoanStatus is the servicing status of a loan
type LoanStatus string

const (
	LoanStatusActive  LoanStatus = "active"
	LoanStatusPending LoanStatus = "pending"
	LoanStatusPaidOff LoanStatus = "paid_off"
	LoanStatusClosed  LoanStatus = "closed"
)

var (
	hundred       = decimal.NewFromInt(100)
	monthsPerYear = decimal.NewFromInt(12)
)

// Loan is the canonical loan shape produced by ingestion. The engine only
// ever sees this type, never the raw servicing document.
type Loan struct {
	ID                string          `json:"id"`
	CustomerID        string          `json:"customerId"`
	Name              string          `json:"name"`
	Status            LoanStatus      `json:"status"`
	OriginalAmount    decimal.Decimal `json:"originalAmount"`
	CurrentBalance    decimal.Decimal `json:"currentBalance"`
	InterestRate      decimal.Decimal `json:"interestRate"` // annual percent
	MonthlyPayment    decimal.Decimal `json:"monthlyPayment"`
	MinPayment        decimal.Decimal `json:"minPayment"`
	Term              string          `json:"term,omitempty"`
	TotalPayments     int             `json:"totalPayments"`
	PaidPayments      int             `json:"paidPayments"`
	StartDate         *time.Time      `json:"startDate,omitempty"`
	NextPaymentDate   *time.Time      `json:"nextPaymentDate,omitempty"`
	NextPaymentAmount decimal.Decimal `json:"nextPaymentAmount"`
	Reasons           []string        `json:"reasons,omitempty"`
	Schedule          []Installment   `json:"schedule,omitempty"`
	UpdatedAt         time.Time       `json:"updatedAt"`
}

// Installment is one entry of the authoritative repayment schedule
type Installment struct {
	Date      time.Time       `json:"date"`
	Amount    decimal.Decimal `json:"amount"`
	Principal decimal.Decimal `json:"principal"`
	Interest  decimal.Decimal `json:"interest"`
	Balance   decimal.Decimal `json:"balance"`
	Paid      bool            `json:"paid"`
}

// MonthlyRate converts the annual percentage rate into a monthly fraction
func (l *Loan) MonthlyRate() decimal.Decimal {
	return l.InterestRate.Div(hundred).Div(monthsPerYear)
}

// ValidateTerms checks the preconditions the amortization engine relies on
func (l *Loan) ValidateTerms() error {
	if l.MinPayment.LessThanOrEqual(decimal.Zero) {
		return fmt.Errorf("%w: minimum payment must be positive", ErrInvalidLoanTerms)
	}
	if l.InterestRate.IsNegative() {
		return fmt.Errorf("%w: interest rate must not be negative", ErrInvalidLoanTerms)
	}
	if l.CurrentBalance.IsNegative() {
		return fmt.Errorf("%w: balance must not be negative", ErrInvalidLoanTerms)
	}
	// A record without an original amount only carries its balance
	if l.OriginalAmount.IsPositive() && l.CurrentBalance.GreaterThan(l.OriginalAmount) {
		return fmt.Errorf("%w: balance %s exceeds original amount %s", ErrInvalidLoanTerms, l.CurrentBalance, l.OriginalAmount)
	}
	return nil
}

// Progress returns the percentage of the original amount already repaid
func (l *Loan) Progress() decimal.Decimal {
	if !l.OriginalAmount.IsPositive() {
		return decimal.Zero
	}
	return l.OriginalAmount.Sub(l.CurrentBalance).Div(l.OriginalAmount).Mul(hundred).Round(2)
}

// PaidAmount returns how much principal has been repaid so far
func (l *Loan) PaidAmount() decimal.Decimal {
	return l.OriginalAmount.Sub(l.CurrentBalance)
}

// HasSchedule reports whether the servicing system supplied a schedule
func (l *Loan) HasSchedule() bool {
	return len(l.Schedule) > 0
}

// LoanRepository stores raw servicing documents and returns them normalized
type LoanRepository interface {
	GetByID(customerID, id string) (*Loan, error)
	GetAllByCustomer(customerID string) ([]*Loan, error)
	// MarkInstallmentPaid flags installment number (1-based) as paid and
	// reduces the current balance by principal.
	MarkInstallmentPaid(customerID, id string, number int, principal decimal.Decimal) (*Loan, error)
	// ApplyExtraPrincipal reduces the current balance without touching installments
	ApplyExtraPrincipal(customerID, id string, amount decimal.Decimal) (*Loan, error)
}
