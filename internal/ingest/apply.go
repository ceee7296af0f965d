package ingest

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/dafibh/mpwr/portal-backend/internal/domain"
	"github.com/shopspring/decimal"
)

// ApplyPayment records a confirmed installment payment on a raw servicing
// document, writing through whichever aliases the document already uses.
// The installment (1-based) is marked paid and the balance reduced by
// principal, never below zero. An installment that is already paid yields
// ErrInstallmentPaid and leaves the document untouched.
//
// Edits go to the decoded document itself, so extraction wrappers and
// their scores survive the write-back; values are only unwrapped to read.
func ApplyPayment(raw []byte, number int, principal decimal.Decimal) ([]byte, error) {
	doc, err := decodeDocument(raw)
	if err != nil {
		return nil, err
	}
	view, err := readView(doc)
	if err != nil {
		return nil, err
	}

	if key, v, ok := view.first(scheduleKeys...); ok {
		if _, isList := v.([]any); !isList {
			return nil, fmt.Errorf("%w: field %s is not a list", domain.ErrInvalidInput, key)
		}
		items, _ := scoredText(doc[key]).([]any)
		if number < 1 || number > len(items) {
			return nil, domain.ErrInstallmentNotFound
		}
		entry, isMap := scoredText(items[number-1]).(map[string]any)
		if !isMap {
			return nil, fmt.Errorf("%w: %s[%d] is not an object", domain.ErrInvalidInput, key, number-1)
		}
		entryView, err := readView(entry)
		if err != nil {
			return nil, err
		}
		if entryPaid(entryView) {
			return nil, fmt.Errorf("%w: installment %d", domain.ErrInstallmentPaid, number)
		}
		setField(entry, presentKey(entryView, entryStatusKeys), "paid")
	} else {
		paid, err := view.count(paidPaymentsKeys...)
		if err != nil {
			return nil, err
		}
		total, err := view.count(totalPaymentsKeys...)
		if err != nil {
			return nil, err
		}
		if number <= paid {
			return nil, fmt.Errorf("%w: installment %d", domain.ErrInstallmentPaid, number)
		}
		if total > 0 && paid >= total {
			return nil, domain.ErrNothingDue
		}
		setField(doc, presentKey(view, paidPaymentsKeys), paid+1)
	}

	if err := reduceBalance(doc, view, principal); err != nil {
		return nil, err
	}
	return json.Marshal(doc)
}

// ApplyPrincipal records an extra principal payment that is not tied to
// an installment. Only the balance changes.
func ApplyPrincipal(raw []byte, amount decimal.Decimal) ([]byte, error) {
	doc, err := decodeDocument(raw)
	if err != nil {
		return nil, err
	}
	view, err := readView(doc)
	if err != nil {
		return nil, err
	}
	if err := reduceBalance(doc, view, amount); err != nil {
		return nil, err
	}
	return json.Marshal(doc)
}

func decodeDocument(raw []byte) (map[string]any, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()

	var doc map[string]any
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("%w: decode loan document: %v", domain.ErrInvalidInput, err)
	}
	if doc == nil {
		return nil, fmt.Errorf("%w: loan document is not an object", domain.ErrInvalidInput)
	}
	return doc, nil
}

// readView is an unwrapped copy of doc used only for reading values
func readView(doc map[string]any) (record, error) {
	view, ok := UnwrapScored(doc).(map[string]any)
	if !ok {
		return nil, fmt.Errorf("%w: loan document is not an object", domain.ErrInvalidInput)
	}
	return record(view), nil
}

func reduceBalance(doc map[string]any, view record, by decimal.Decimal) error {
	balance, hasBalance, err := view.number(balanceKeys...)
	if err != nil {
		return err
	}
	if !hasBalance {
		if balance, _, err = view.number(amountKeys...); err != nil {
			return err
		}
	}
	balance = decimal.Max(decimal.Zero, balance.Sub(by))
	setField(doc, presentKey(view, balanceKeys), json.Number(balance.String()))
	return nil
}

// isScored reports whether v is a {text, score} extraction wrapper
func isScored(v any) (map[string]any, bool) {
	m, ok := v.(map[string]any)
	if !ok {
		return nil, false
	}
	_, hasText := m["text"]
	_, hasScore := m["score"]
	return m, hasText && hasScore
}

// scoredText returns the text of an extraction wrapper, or v itself
func scoredText(v any) any {
	if w, ok := isScored(v); ok {
		return w["text"]
	}
	return v
}

// setField writes v under key. A wrapped value keeps its wrapper and score;
// only the text is replaced.
func setField(m map[string]any, key string, v any) {
	if w, ok := isScored(m[key]); ok {
		w["text"] = v
		return
	}
	m[key] = v
}

// presentKey returns the alias the document already uses for a field, or
// the first alias when the field is absent.
func presentKey(r record, keys []string) string {
	if key, _, ok := r.first(keys...); ok {
		return key
	}
	return keys[0]
}
