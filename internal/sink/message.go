package sink

import (
	"encoding/json"
	"time"

	"finmodel/internal/core"

	"github.com/shopspring/decimal"
)

// ReportMessage is the wire form of a report. Amounts marshal as strings so
// no precision is lost between producer and consumer.
type ReportMessage struct {
	RunID             string                     `json:"run_id"`
	GeneratedAt       time.Time                  `json:"generated_at"`
	Stats             StatsMessage               `json:"stats"`
	TotalSpend        decimal.Decimal            `json:"total_spend"`
	IncomeTotal       decimal.Decimal            `json:"income_total"`
	SpendByCategory   map[string]decimal.Decimal `json:"spend_by_category"`
	SpendByMerchant   map[string]decimal.Decimal `json:"spend_by_merchant"`
	BudgetUtilization map[string]decimal.Decimal `json:"budget_utilization"`
	Monthly           []MonthMessage             `json:"monthly"`
}

type StatsMessage struct {
	Facts      int `json:"facts"`
	Dates      int `json:"dates"`
	Categories int `json:"categories"`
	Merchants  int `json:"merchants"`
}

type MonthMessage struct {
	Year              int                        `json:"year"`
	Month             int                        `json:"month"`
	Income            decimal.Decimal            `json:"income"`
	Expense           decimal.Decimal            `json:"expense"`
	Net               decimal.Decimal            `json:"net"`
	ExpenseByCategory map[string]decimal.Decimal `json:"expense_by_category"`
	IncomeByCategory  map[string]decimal.Decimal `json:"income_by_category"`
}

// NewReportMessage converts a report into its wire form. A nil
// BudgetUtilization stays null.
func NewReportMessage(r *core.Report) *ReportMessage {
	msg := &ReportMessage{
		RunID:       r.RunID,
		GeneratedAt: r.GeneratedAt.UTC(),
		Stats: StatsMessage{
			Facts:      r.Stats.Facts,
			Dates:      r.Stats.Dates,
			Categories: r.Stats.Categories,
			Merchants:  r.Stats.Merchants,
		},
		TotalSpend:        r.TotalSpend,
		IncomeTotal:       r.IncomeTotal,
		SpendByCategory:   nonNil(r.SpendByCategory),
		SpendByMerchant:   nonNil(r.SpendByMerchant),
		BudgetUtilization: r.BudgetUtilization,
		Monthly:           make([]MonthMessage, 0, len(r.Monthly)),
	}
	for _, m := range r.Monthly {
		msg.Monthly = append(msg.Monthly, MonthMessage{
			Year:    m.Year,
			Month:   m.Month,
			Income:  m.Income,
			Expense: m.Expense,
			Net:     m.Net,

			ExpenseByCategory: nonNil(m.ExpenseByCategory),
			IncomeByCategory:  nonNil(m.IncomeByCategory),
		})
	}
	return msg
}

func nonNil(c core.CategoryTotals) map[string]decimal.Decimal {
	if c == nil {
		return map[string]decimal.Decimal{}
	}
	return c
}

// ToJSON converts the message to JSON bytes
func (m *ReportMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// ReportMessageFromJSON creates a message from JSON bytes
func ReportMessageFromJSON(data []byte) (*ReportMessage, error) {
	var msg ReportMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
