// Package schema turns a flat transaction snapshot into a star schema: one
// fact table and the date, category and merchant dimensions.
package schema

import (
	"sort"

	"finmodel/internal/core"
)

// Build converts txns into a Model.
//
// transaction_id is the 1-based position in txns. Category and merchant keys
// come from AssignKeys. Dates are the distinct input dates in ascending
// order. An empty input yields empty tables. A transaction without a
// merchant or category name fails the whole build with *core.ValidationError.
func Build(txns []core.Transaction, budgets BudgetLimits) (*Model, error) {
	for i, t := range txns {
		if err := t.Validate(); err != nil {
			return nil, core.NewValidationError(i, err)
		}
	}

	categoryNames := make([]string, len(txns))
	merchantNames := make([]string, len(txns))
	for i, t := range txns {
		categoryNames[i] = t.Category
		merchantNames[i] = t.Merchant
	}
	categoryKeys, categoryOrder := AssignKeys(categoryNames)
	merchantKeys, merchantOrder := AssignKeys(merchantNames)

	m := &Model{
		Facts:      make([]FactTransaction, 0, len(txns)),
		Dates:      buildDates(txns),
		Categories: make([]CategoryRow, 0, len(categoryOrder)),
		Merchants:  make([]MerchantRow, 0, len(merchantOrder)),
	}

	for i, t := range txns {
		m.Facts = append(m.Facts, FactTransaction{
			TransactionID: i + 1,
			Date:          core.DateOf(t.Date.Time),
			MerchantID:    merchantKeys[t.Merchant],
			CategoryID:    categoryKeys[t.Category],
			Amount:        t.Amount,
		})
	}
	for i, name := range categoryOrder {
		m.Categories = append(m.Categories, CategoryRow{
			CategoryID:   i + 1,
			CategoryName: name,
			BudgetLimit:  budgets.LimitFor(name),
		})
	}
	for i, name := range merchantOrder {
		m.Merchants = append(m.Merchants, MerchantRow{
			MerchantID:   i + 1,
			MerchantName: name,
		})
	}

	return m, nil
}

// AssignKeys numbers the distinct values of names 1..k in ascending byte
// order. It returns the value->key map and the distinct values in key order.
// Keys depend only on the set of values, not on their order in names.
func AssignKeys(names []string) (map[string]int, []string) {
	keys := make(map[string]int)
	distinct := make([]string, 0)
	for _, n := range names {
		if _, ok := keys[n]; ok {
			continue
		}
		keys[n] = 0
		distinct = append(distinct, n)
	}
	sort.Strings(distinct)
	for i, n := range distinct {
		keys[n] = i + 1
	}
	return keys, distinct
}

func buildDates(txns []core.Transaction) []DateRow {
	seen := make(map[string]struct{})
	dates := make([]core.Date, 0)
	for _, t := range txns {
		d := core.DateOf(t.Date.Time)
		k := d.String()
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		dates = append(dates, d)
	}
	sort.Slice(dates, func(i, j int) bool { return dates[i].Before(dates[j].Time) })

	rows := make([]DateRow, len(dates))
	for i, d := range dates {
		rows[i] = DateRow{Date: d, Month: d.Month(), Year: d.Year(), Quarter: d.Quarter()}
	}
	return rows
}
