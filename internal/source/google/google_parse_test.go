package google

import (
	"errors"
	"strings"
	"testing"

	"finmodel/internal/core"
	"finmodel/internal/schema"
)

// Build a small matrix emulating a transactions sheet as the API returns it.
func TestParseRows_Sheet(t *testing.T) {
	values := [][]interface{}{
		{"Date", "Merchant", "Category", "Amount"},
		{"2024-01-01", "Walmart", "Groceries", "-50"},
		{"2024-01-02", "Starbucks", "Dining", -20.25},
		{},
		{"2024-02-01", "Amazon", "Shopping", "200"},
	}
	txns, err := parseRows(values)
	if err != nil {
		t.Fatalf("parse err: %v", err)
	}
	if len(txns) != 3 {
		t.Fatalf("got %d transactions", len(txns))
	}
	if txns[1].Merchant != "Starbucks" || txns[1].Amount.String() != "-20.25" {
		t.Fatalf("unexpected row: %+v", txns[1])
	}
	if txns[2].Date != core.NewDate(2024, 2, 1) {
		t.Fatalf("unexpected date: %v", txns[2].Date)
	}
}

func TestParseRows_ShortRowFailsValidationLater(t *testing.T) {
	values := [][]interface{}{
		{"2024-01-01", "Walmart", "Groceries", "-50"},
		{"2024-01-02", "Starbucks", "", "-5"},
	}
	txns, err := parseRows(values)
	if err != nil {
		t.Fatalf("parse err: %v", err)
	}
	_, err = schema.Build(txns, nil)
	var ve *core.ValidationError
	if !errors.As(err, &ve) || ve.Index != 1 || ve.Field != "category_name" {
		t.Fatalf("expected validation error on second transaction, got %v", err)
	}
}

func TestParseRows_ReportsRow(t *testing.T) {
	values := [][]interface{}{
		{"Date", "Merchant", "Category", "Amount"},
		{"2024-01-01", "Walmart", "Groceries"},
	}
	_, err := parseRows(values)
	if err == nil || !strings.Contains(err.Error(), "row 2") {
		t.Fatalf("expected row number in error, got %v", err)
	}
}
