package source

import (
	"fmt"
	"strings"

	"finmodel/internal/core"
)

// Column order shared by the CSV and spreadsheet layouts.
const (
	colDate = iota
	colMerchant
	colCategory
	colAmount
	columnCount
)

// ParseRow converts a date,merchant,category,amount record into a transaction.
// Missing names are kept empty so the schema builder reports them with the
// transaction's position.
func ParseRow(fields []string) (core.Transaction, error) {
	if len(fields) < columnCount {
		return core.Transaction{}, fmt.Errorf("expected %d columns, got %d", columnCount, len(fields))
	}
	date, err := core.ParseDate(fields[colDate])
	if err != nil {
		return core.Transaction{}, fmt.Errorf("date %q: %w", fields[colDate], err)
	}
	amount, err := core.ParseAmount(fields[colAmount])
	if err != nil {
		return core.Transaction{}, fmt.Errorf("amount %q: %w", fields[colAmount], err)
	}
	return core.Transaction{
		Date:     date,
		Merchant: strings.TrimSpace(fields[colMerchant]),
		Category: strings.TrimSpace(fields[colCategory]),
		Amount:   amount,
	}, nil
}

// IsHeader reports whether a record is a column header rather than data.
func IsHeader(fields []string) bool {
	if len(fields) == 0 {
		return false
	}
	_, err := core.ParseDate(fields[colDate])
	return err != nil && strings.EqualFold(strings.TrimSpace(fields[colDate]), "date")
}

// IsBlank reports whether every field of a record is empty.
func IsBlank(fields []string) bool {
	for _, f := range fields {
		if strings.TrimSpace(f) != "" {
			return false
		}
	}
	return true
}
