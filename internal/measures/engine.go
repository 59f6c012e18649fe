// Package measures evaluates business measures over a star-schema model.
//
// Every function is a read-only pass over the tables; none of them depends
// on another having succeeded.
package measures

import (
	"sort"

	"finmodel/internal/core"
	"finmodel/internal/schema"

	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// TotalSpend sums the absolute value of every negative amount.
func TotalSpend(m *schema.Model) decimal.Decimal {
	total := decimal.Zero
	for _, f := range m.Facts {
		if f.IsOutflow() {
			total = total.Sub(f.Amount)
		}
	}
	return total
}

// IncomeTotal sums every positive amount.
func IncomeTotal(m *schema.Model) decimal.Decimal {
	total := decimal.Zero
	for _, f := range m.Facts {
		if f.IsInflow() {
			total = total.Add(f.Amount)
		}
	}
	return total
}

// SpendByCategory joins facts to Dimension_Category and sums the absolute
// negative amounts per category name. Categories without spend are absent.
func SpendByCategory(m *schema.Model) core.CategoryTotals {
	return spendBy(m, func(f schema.FactTransaction) (string, bool) {
		row, ok := m.Category(f.CategoryID)
		return row.CategoryName, ok
	})
}

// SpendByMerchant is SpendByCategory grouped by merchant name.
func SpendByMerchant(m *schema.Model) core.CategoryTotals {
	return spendBy(m, func(f schema.FactTransaction) (string, bool) {
		row, ok := m.Merchant(f.MerchantID)
		return row.MerchantName, ok
	})
}

// spendBy accumulates outflows under the group key returned by key. Facts
// whose key does not resolve are dropped, as in an inner join.
func spendBy(m *schema.Model, key func(schema.FactTransaction) (string, bool)) core.CategoryTotals {
	out := core.CategoryTotals{}
	for _, f := range m.Facts {
		if !f.IsOutflow() {
			continue
		}
		name, ok := key(f)
		if !ok {
			continue
		}
		out[name] = out[name].Sub(f.Amount)
	}
	return out
}

// BudgetUtilization divides each category's spend by its budget limit and
// scales to a percentage. A non-positive limit fails the whole measure with
// *core.ConfigurationError naming the first such category in name order.
func BudgetUtilization(m *schema.Model) (core.CategoryTotals, error) {
	limits := make(map[string]decimal.Decimal, len(m.Categories))
	for _, row := range m.Categories {
		limits[row.CategoryName] = row.BudgetLimit
	}

	out := core.CategoryTotals{}
	for _, c := range SpendByCategory(m).Sorted() {
		limit := limits[c.Name]
		if !limit.IsPositive() {
			return nil, &core.ConfigurationError{Category: c.Name, Limit: limit}
		}
		out[c.Name] = c.Amount.Div(limit).Mul(hundred)
	}
	return out, nil
}

// Flow selects which side of the ledger a breakdown aggregates.
type Flow int

const (
	Expense Flow = iota
	Income
)

func (f Flow) String() string {
	if f == Income {
		return "income"
	}
	return "expense"
}

// ParseFlow accepts "income" or "expense".
func ParseFlow(s string) (Flow, bool) {
	switch s {
	case "income":
		return Income, true
	case "expense":
		return Expense, true
	}
	return Expense, false
}

// CategoryBreakdown sums absolute amounts per category name for one calendar
// month, taking the year and month from Dimension_Date. Expense counts
// outflows and Income counts inflows. Months without matching facts yield an
// empty map.
func CategoryBreakdown(m *schema.Model, year, month int, flow Flow) core.CategoryTotals {
	inMonth := make(map[string]bool)
	for _, row := range m.Dates {
		if row.Year == year && row.Month == month {
			inMonth[row.Date.String()] = true
		}
	}

	out := core.CategoryTotals{}
	for _, f := range m.Facts {
		if !inMonth[f.Date.String()] {
			continue
		}
		if (flow == Expense && !f.IsOutflow()) || (flow == Income && !f.IsInflow()) {
			continue
		}
		row, ok := m.Category(f.CategoryID)
		if !ok {
			continue
		}
		out[row.CategoryName] = out[row.CategoryName].Add(f.Amount.Abs())
	}
	return out
}

type monthKey struct{ year, month int }

// MonthlySummary reports income, expense and net per calendar month, using
// the month and year of Dimension_Date. Months are ordered chronologically
// and only months with transactions appear.
func MonthlySummary(m *schema.Model) []core.MonthSummary {
	dates := make(map[string]schema.DateRow, len(m.Dates))
	for _, row := range m.Dates {
		dates[row.Date.String()] = row
	}

	byMonth := map[monthKey]*core.MonthSummary{}
	for _, f := range m.Facts {
		row, ok := dates[f.Date.String()]
		if !ok {
			continue
		}
		k := monthKey{row.Year, row.Month}
		s, ok := byMonth[k]
		if !ok {
			s = &core.MonthSummary{Year: row.Year, Month: row.Month}
			byMonth[k] = s
		}
		switch {
		case f.IsInflow():
			s.Income = s.Income.Add(f.Amount)
		case f.IsOutflow():
			s.Expense = s.Expense.Sub(f.Amount)
		}
	}

	out := make([]core.MonthSummary, 0, len(byMonth))
	for _, s := range byMonth {
		s.Net = s.Income.Sub(s.Expense)
		out = append(out, *s)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Year != out[j].Year {
			return out[i].Year < out[j].Year
		}
		return out[i].Month < out[j].Month
	})
	return out
}
