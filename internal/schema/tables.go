package schema

import (
	"finmodel/internal/core"

	"github.com/shopspring/decimal"
)

type (
	// FactTransaction is one row of Fact_Transaction.
	FactTransaction struct {
		TransactionID int
		Date          core.Date
		MerchantID    int
		CategoryID    int
		Amount        decimal.Decimal
	}

	// DateRow is one row of Dimension_Date.
	DateRow struct {
		Date    core.Date
		Month   int
		Year    int
		Quarter int
	}

	// CategoryRow is one row of Dimension_Category.
	CategoryRow struct {
		CategoryID   int
		CategoryName string
		BudgetLimit  decimal.Decimal
	}

	// MerchantRow is one row of Dimension_Merchant.
	MerchantRow struct {
		MerchantID   int
		MerchantName string
	}
)

// Model is the star schema built from one transaction snapshot. It is never
// mutated after Build returns.
type Model struct {
	Facts      []FactTransaction
	Dates      []DateRow
	Categories []CategoryRow
	Merchants  []MerchantRow
}

// IsOutflow reports whether the fact is spend.
func (f FactTransaction) IsOutflow() bool { return f.Amount.IsNegative() }

// IsInflow reports whether the fact is income or a refund.
func (f FactTransaction) IsInflow() bool { return f.Amount.IsPositive() }

// Category returns the dimension row for a surrogate key. Keys are dense and
// rows are stored in key order.
func (m *Model) Category(id int) (CategoryRow, bool) {
	if id < 1 || id > len(m.Categories) {
		return CategoryRow{}, false
	}
	return m.Categories[id-1], true
}

// Merchant returns the dimension row for a surrogate key.
func (m *Model) Merchant(id int) (MerchantRow, bool) {
	if id < 1 || id > len(m.Merchants) {
		return MerchantRow{}, false
	}
	return m.Merchants[id-1], true
}

// DateRow returns the date dimension row for d.
func (m *Model) DateRow(d core.Date) (DateRow, bool) {
	d = core.DateOf(d.Time)
	for _, row := range m.Dates {
		if row.Date.Equal(d.Time) {
			return row, true
		}
	}
	return DateRow{}, false
}

// Stats counts the rows of each table.
func (m *Model) Stats() core.ModelStats {
	return core.ModelStats{
		Facts:      len(m.Facts),
		Dates:      len(m.Dates),
		Categories: len(m.Categories),
		Merchants:  len(m.Merchants),
	}
}
