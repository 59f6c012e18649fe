package core

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

// CategoryAmount represents an amount aggregated by category (or merchant) name.
type CategoryAmount struct {
	Name   string
	Amount decimal.Decimal
}

// CategoryTotals maps a group name to its aggregated amount.
type CategoryTotals map[string]decimal.Decimal

// Sum adds every entry.
func (c CategoryTotals) Sum() decimal.Decimal {
	total := decimal.Zero
	for _, v := range c {
		total = total.Add(v)
	}
	return total
}

// Sorted returns the entries ordered by name.
func (c CategoryTotals) Sorted() []CategoryAmount {
	out := make([]CategoryAmount, 0, len(c))
	for name, amount := range c {
		out = append(out, CategoryAmount{Name: name, Amount: amount})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// MonthSummary is a compact income/expense summary for a specific year+month.
type MonthSummary struct {
	Year    int
	Month   int // 1-12
	Income  decimal.Decimal
	Expense decimal.Decimal // absolute outflow
	Net     decimal.Decimal

	// Per-category absolute amounts for the month.
	ExpenseByCategory CategoryTotals
	IncomeByCategory  CategoryTotals
}

// ModelStats counts the rows of each star-schema table.
type ModelStats struct {
	Facts      int
	Dates      int
	Categories int
	Merchants  int
}

// Report is the measure output of one run, ready for a report sink.
// BudgetUtilization is nil when its computation failed.
type Report struct {
	RunID             string
	GeneratedAt       time.Time
	Stats             ModelStats
	TotalSpend        decimal.Decimal
	IncomeTotal       decimal.Decimal
	SpendByCategory   CategoryTotals
	SpendByMerchant   CategoryTotals
	BudgetUtilization CategoryTotals
	Monthly           []MonthSummary
}
