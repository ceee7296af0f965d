package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/dafibh/mpwr/portal-backend/internal/domain"
	"github.com/dafibh/mpwr/portal-backend/internal/ingest"
	"github.com/shopspring/decimal"
)

// readLoan loads and normalizes a servicing document. The raw bytes are
// returned as well so import can store the document untouched.
func readLoan(path, customerID string) (*domain.Loan, []byte, error) {
	if path == "" {
		return nil, nil, fmt.Errorf("--file is required")
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	loan, err := ingest.NormalizeLoan(customerID, raw)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to normalize %s: %w", path, err)
	}
	return loan, raw, nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func money(d decimal.Decimal) string {
	return "$" + d.StringFixed(2)
}
