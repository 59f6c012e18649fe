package sink

import (
	"context"

	"finmodel/internal/core"
	"finmodel/internal/log"
)

// LogSink writes a report as structured log lines: one summary line, one
// line per category and one per month.
type LogSink struct {
	logger *log.Logger
}

var _ ReportSink = (*LogSink)(nil)

func NewLogSink(logger *log.Logger) *LogSink {
	if logger == nil {
		logger = log.New(log.DefaultConfig())
	}
	return &LogSink{logger: logger.WithComponent(log.ComponentSink)}
}

func (s *LogSink) Publish(ctx context.Context, r *core.Report) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	fields := log.NewFields().
		WithOperation(log.OpPublish).
		WithRunID(r.RunID).
		WithModel(r.Stats.Facts, r.Stats.Dates, r.Stats.Categories, r.Stats.Merchants).
		WithAmount(log.FieldTotalSpend, r.TotalSpend).
		WithAmount("income_total", r.IncomeTotal)
	s.logger.InfoContext(ctx, "Report generated", fields.ToSlice()...)

	for _, c := range r.SpendByCategory.Sorted() {
		args := []any{
			log.FieldRunID, r.RunID,
			log.FieldCategory, c.Name,
			log.FieldAmount, c.Amount.String(),
		}
		if r.BudgetUtilization != nil {
			args = append(args, "utilization_pct", r.BudgetUtilization[c.Name].StringFixed(2))
		}
		s.logger.InfoContext(ctx, "Category spend", args...)
	}

	for _, m := range r.Monthly {
		s.logger.InfoContext(ctx, "Monthly summary",
			log.FieldRunID, r.RunID,
			"year", m.Year,
			"month", m.Month,
			"income", m.Income.String(),
			"expense", m.Expense.String(),
			"net", m.Net.String())
		for _, c := range m.ExpenseByCategory.Sorted() {
			s.logger.DebugContext(ctx, "Monthly category spend",
				log.FieldRunID, r.RunID,
				"year", m.Year,
				"month", m.Month,
				log.FieldCategory, c.Name,
				log.FieldAmount, c.Amount.String())
		}
	}

	if r.BudgetUtilization == nil {
		s.logger.WarnContext(ctx, "Budget utilization unavailable", log.FieldRunID, r.RunID)
	}
	return nil
}
