package schema

import "github.com/shopspring/decimal"

// DefaultBudgetLimit is assigned to categories without an explicit limit.
var DefaultBudgetLimit = decimal.NewFromInt(100)

// BudgetLimits maps a category name to its budget limit.
type BudgetLimits map[string]decimal.Decimal

// DefaultBudgets returns the built-in category limits.
func DefaultBudgets() BudgetLimits {
	return BudgetLimits{
		"Groceries":     decimal.NewFromInt(500),
		"Dining":        decimal.NewFromInt(200),
		"Transport":     decimal.NewFromInt(150),
		"Shopping":      decimal.NewFromInt(300),
		"Entertainment": decimal.NewFromInt(50),
	}
}

// LimitFor returns the configured limit for category, or DefaultBudgetLimit.
// Configured values are returned as-is; a nil map yields the default.
func (b BudgetLimits) LimitFor(category string) decimal.Decimal {
	if limit, ok := b[category]; ok {
		return limit
	}
	return DefaultBudgetLimit
}
