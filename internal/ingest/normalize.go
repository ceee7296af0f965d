// Package ingest turns raw servicing-system loan documents into the
// canonical domain.Loan. Field aliases and extraction wrappers are resolved
// here once, so nothing downstream ever branches on them.
package ingest

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/dafibh/mpwr/portal-backend/internal/domain"
	"github.com/dafibh/mpwr/portal-backend/internal/util"
	"github.com/shopspring/decimal"
)

// Aliases lists, per canonical field, the keys a servicing record may use.
// The first key holding a non-null value wins.
var (
	idKeys             = []string{"id", "loan_id", "loanId"}
	nameKeys           = []string{"loan_name", "name"}
	statusKeys         = []string{"status", "loan_status"}
	amountKeys         = []string{"amount", "originalAmount", "original_amount"}
	balanceKeys        = []string{"current_balance", "currentBalance"}
	rateKeys           = []string{"interest_rate", "interestRate"}
	monthlyKeys        = []string{"avg_monthly_payment", "monthlyPayment", "monthly_payment"}
	minPaymentKeys     = []string{"minPayment", "min_payment", "minimum_payment"}
	termKeys           = []string{"term", "loan_term"}
	totalPaymentsKeys  = []string{"totalPayments", "total_payments"}
	paidPaymentsKeys   = []string{"paidPayments", "paid_payments"}
	startDateKeys      = []string{"startDate", "start_date"}
	nextDateKeys       = []string{"nextPaymentDate", "next_payment_date"}
	nextAmountKeys     = []string{"nextPaymentAmount", "next_payment_amount"}
	reasonsKeys        = []string{"reasons"}
	scheduleKeys       = []string{"repayment_schedule", "repaymentSchedule", "schedule"}
	entryDateKeys      = []string{"date", "due_date", "dueDate"}
	entryAmountKeys    = []string{"amount", "payment"}
	entryPrincipalKeys = []string{"principal"}
	entryInterestKeys  = []string{"interest"}
	entryBalanceKeys   = []string{"balance"}
	entryStatusKeys    = []string{"status"}
	entryPaidKeys      = []string{"paid"}
)

// NormalizeLoan decodes a raw servicing document and normalizes it
func NormalizeLoan(customerID string, raw []byte) (*domain.Loan, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()

	var doc map[string]any
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("%w: decode loan document: %v", domain.ErrInvalidInput, err)
	}
	return NormalizeLoanMap(customerID, doc)
}

// NormalizeLoanMap normalizes an already decoded servicing document
func NormalizeLoanMap(customerID string, doc map[string]any) (*domain.Loan, error) {
	if doc == nil {
		return nil, fmt.Errorf("%w: empty loan document", domain.ErrInvalidInput)
	}
	unwrapped, ok := UnwrapScored(doc).(map[string]any)
	if !ok {
		return nil, fmt.Errorf("%w: loan document is not an object", domain.ErrInvalidInput)
	}
	r := record(unwrapped)

	loan := &domain.Loan{
		CustomerID: customerID,
		ID:         r.text(idKeys...),
		Name:       r.text(nameKeys...),
		Status:     domain.LoanStatus(strings.ToLower(r.text(statusKeys...))),
		Term:       r.text(termKeys...),
	}
	if loan.Name == "" {
		loan.Name = domain.DefaultLoanName
	}
	if loan.Status == "" {
		loan.Status = domain.LoanStatusActive
	}

	var err error
	var hasBalance bool
	if loan.OriginalAmount, _, err = r.number(amountKeys...); err != nil {
		return nil, err
	}
	if loan.CurrentBalance, hasBalance, err = r.number(balanceKeys...); err != nil {
		return nil, err
	} else if !hasBalance {
		loan.CurrentBalance = loan.OriginalAmount
	}
	if loan.InterestRate, _, err = r.number(rateKeys...); err != nil {
		return nil, err
	}

	monthly, hasMonthly, err := r.number(monthlyKeys...)
	if err != nil {
		return nil, err
	}
	minPayment, hasMin, err := r.number(minPaymentKeys...)
	if err != nil {
		return nil, err
	}
	switch {
	case hasMonthly && !hasMin:
		minPayment = monthly
	case hasMin && !hasMonthly:
		monthly = minPayment
	}
	loan.MonthlyPayment = monthly
	loan.MinPayment = minPayment

	if loan.NextPaymentAmount, _, err = r.number(nextAmountKeys...); err != nil {
		return nil, err
	}
	if loan.StartDate, err = r.date(startDateKeys...); err != nil {
		return nil, err
	}
	if loan.NextPaymentDate, err = r.date(nextDateKeys...); err != nil {
		return nil, err
	}
	loan.Reasons = r.list(reasonsKeys...)

	if loan.Schedule, err = r.schedule(loan.MonthlyPayment); err != nil {
		return nil, err
	}

	if loan.HasSchedule() {
		loan.TotalPayments = len(loan.Schedule)
		for _, inst := range loan.Schedule {
			if inst.Paid {
				loan.PaidPayments++
			}
		}
	} else {
		if loan.TotalPayments, err = r.count(totalPaymentsKeys...); err != nil {
			return nil, err
		}
		if loan.PaidPayments, err = r.count(paidPaymentsKeys...); err != nil {
			return nil, err
		}
	}

	return loan, nil
}

// UnwrapScored replaces every {text, score} extraction object in v with its
// text, recursing through maps and slices.
func UnwrapScored(v any) any {
	switch val := v.(type) {
	case map[string]any:
		if text, hasText := val["text"]; hasText {
			if _, hasScore := val["score"]; hasScore {
				return text
			}
		}
		out := make(map[string]any, len(val))
		for k, item := range val {
			out[k] = UnwrapScored(item)
		}
		return out
	case []any:
		out := make([]any, len(val))
		for i, item := range val {
			out[i] = UnwrapScored(item)
		}
		return out
	default:
		return v
	}
}

type record map[string]any

// first returns the value of the first alias that is present and not null.
// A blank or whitespace-only string also counts as absent, so a record with
// "loan_name": "" still falls through to "name". An explicit zero is a value
// and is never skipped.
func (r record) first(keys ...string) (string, any, bool) {
	for _, k := range keys {
		v, ok := r[k]
		if !ok || v == nil {
			continue
		}
		if s, isString := v.(string); isString && strings.TrimSpace(s) == "" {
			continue
		}
		return k, v, true
	}
	return "", nil, false
}

func (r record) text(keys ...string) string {
	_, v, ok := r.first(keys...)
	if !ok {
		return ""
	}
	switch val := v.(type) {
	case string:
		return strings.TrimSpace(val)
	case json.Number:
		return val.String()
	default:
		return strings.TrimSpace(fmt.Sprint(val))
	}
}

func (r record) number(keys ...string) (decimal.Decimal, bool, error) {
	key, v, ok := r.first(keys...)
	if !ok {
		return decimal.Zero, false, nil
	}
	d, err := toDecimal(v)
	if err != nil {
		return decimal.Zero, false, fmt.Errorf("%w: field %s: %v", domain.ErrInvalidInput, key, err)
	}
	return d, true, nil
}

func (r record) count(keys ...string) (int, error) {
	key, v, ok := r.first(keys...)
	if !ok {
		return 0, nil
	}
	d, err := toDecimal(v)
	if err != nil || !d.IsInteger() {
		return 0, fmt.Errorf("%w: field %s is not a whole number", domain.ErrInvalidInput, key)
	}
	return int(d.IntPart()), nil
}

func (r record) date(keys ...string) (*time.Time, error) {
	key, v, ok := r.first(keys...)
	if !ok {
		return nil, nil
	}
	s, isString := v.(string)
	if !isString {
		return nil, fmt.Errorf("%w: field %s is not a date", domain.ErrInvalidInput, key)
	}
	t, err := util.ParseDate(s)
	if err != nil {
		return nil, fmt.Errorf("%w: field %s: %v", domain.ErrInvalidInput, key, err)
	}
	return &t, nil
}

func (r record) list(keys ...string) []string {
	_, v, ok := r.first(keys...)
	if !ok {
		return nil
	}
	items, isList := v.([]any)
	if !isList {
		if s := r.text(keys...); s != "" {
			return []string{s}
		}
		return nil
	}
	out := make([]string, 0, len(items))
	for _, item := range items {
		if item == nil {
			continue
		}
		if s := strings.TrimSpace(fmt.Sprint(item)); s != "" {
			out = append(out, s)
		}
	}
	return out
}

func (r record) schedule(monthly decimal.Decimal) ([]domain.Installment, error) {
	key, v, ok := r.first(scheduleKeys...)
	if !ok {
		return nil, nil
	}
	items, isList := v.([]any)
	if !isList {
		return nil, fmt.Errorf("%w: field %s is not a list", domain.ErrInvalidInput, key)
	}

	schedule := make([]domain.Installment, 0, len(items))
	for i, item := range items {
		m, isMap := item.(map[string]any)
		if !isMap {
			return nil, fmt.Errorf("%w: %s[%d] is not an object", domain.ErrInvalidInput, key, i)
		}
		inst, err := installment(record(m), monthly)
		if err != nil {
			return nil, fmt.Errorf("%s[%d]: %w", key, i, err)
		}
		schedule = append(schedule, inst)
	}
	return schedule, nil
}

func installment(r record, monthly decimal.Decimal) (domain.Installment, error) {
	var inst domain.Installment

	due, err := r.date(entryDateKeys...)
	if err != nil {
		return inst, err
	}
	if due == nil {
		return inst, fmt.Errorf("%w: installment has no date", domain.ErrInvalidInput)
	}
	inst.Date = *due

	var ok bool
	if inst.Amount, ok, err = r.number(entryAmountKeys...); err != nil {
		return inst, err
	} else if !ok || inst.Amount.IsZero() {
		inst.Amount = monthly
	}
	if inst.Principal, _, err = r.number(entryPrincipalKeys...); err != nil {
		return inst, err
	}
	if inst.Interest, _, err = r.number(entryInterestKeys...); err != nil {
		return inst, err
	}
	if inst.Balance, _, err = r.number(entryBalanceKeys...); err != nil {
		return inst, err
	}

	inst.Paid = entryPaid(r)
	return inst, nil
}

// entryPaid reports whether a schedule entry is settled, by status or by
// a true paid flag.
func entryPaid(r record) bool {
	if strings.EqualFold(r.text(entryStatusKeys...), "paid") {
		return true
	}
	if _, v, ok := r.first(entryPaidKeys...); ok {
		if b, isBool := v.(bool); isBool && b {
			return true
		}
	}
	return false
}

func toDecimal(v any) (decimal.Decimal, error) {
	switch val := v.(type) {
	case json.Number:
		return decimal.NewFromString(val.String())
	case float64:
		return decimal.NewFromFloat(val), nil
	case int:
		return decimal.NewFromInt(int64(val)), nil
	case int64:
		return decimal.NewFromInt(val), nil
	case string:
		cleaned := strings.NewReplacer("$", "", ",", "", "%", "", " ", "").Replace(val)
		return decimal.NewFromString(cleaned)
	case bool:
		return decimal.Zero, fmt.Errorf("unexpected boolean %s", strconv.FormatBool(val))
	default:
		return decimal.Zero, fmt.Errorf("unexpected %T", v)
	}
}
