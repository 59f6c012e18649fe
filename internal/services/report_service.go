package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"finmodel/internal/core"
	"finmodel/internal/log"
	"finmodel/internal/measures"
	"finmodel/internal/schema"
	"finmodel/internal/source"
	"finmodel/internal/sink"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// ErrPublish marks a Run whose report was generated but could not be
// delivered to its sink.
var ErrPublish = errors.New("publish report")

// ReportService builds the star schema from a transaction list and evaluates
// every measure over it. Each call works on its own freshly built model.
type ReportService struct {
	budgets     schema.BudgetLimits
	concurrency int
	logger      *log.Logger

	now      func() time.Time
	newRunID func() string
}

// BatchResult is the outcome of one independent run in GenerateBatch.
type BatchResult struct {
	Report *core.Report
	Err    error
}

func NewReportService(budgets schema.BudgetLimits, concurrency int, logger *log.Logger) *ReportService {
	if budgets == nil {
		budgets = schema.DefaultBudgets()
	}
	if concurrency < 1 {
		concurrency = 1
	}
	if logger == nil {
		logger = log.New(log.DefaultConfig())
	}
	return &ReportService{
		budgets:     budgets,
		concurrency: concurrency,
		logger:      logger.WithComponent(log.ComponentReport),
		now:         time.Now,
		newRunID:    func() string { return uuid.New().String() },
	}
}

// Generate builds the model and evaluates all measures.
//
// A validation failure aborts the run and returns a nil report. A
// configuration failure in budget utilization still returns the report with
// every other measure filled and BudgetUtilization nil, alongside the error.
func (s *ReportService) Generate(ctx context.Context, txns []core.Transaction) (*core.Report, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	start := time.Now()
	runID := s.newRunID()
	logger := s.logger.With(log.FieldRunID, runID)

	model, err := schema.Build(txns, s.budgets)
	if err != nil {
		logger.WarnContext(ctx, "Transactions rejected",
			log.NewFields().WithOperation(log.OpBuild).WithError(err, ErrorTypeFor(err)).ToSlice()...)
		return nil, err
	}

	stats := model.Stats()
	logger.DebugContext(ctx, "Model built",
		log.NewFields().WithOperation(log.OpBuild).WithModel(stats.Facts, stats.Dates, stats.Categories, stats.Merchants).ToSlice()...)

	report := &core.Report{
		RunID:           runID,
		GeneratedAt:     s.now().UTC(),
		Stats:           stats,
		TotalSpend:      measures.TotalSpend(model),
		IncomeTotal:     measures.IncomeTotal(model),
		SpendByCategory: measures.SpendByCategory(model),
		SpendByMerchant: measures.SpendByMerchant(model),
		Monthly:         measures.MonthlySummary(model),
	}

	for i := range report.Monthly {
		mo := &report.Monthly[i]
		mo.ExpenseByCategory = measures.CategoryBreakdown(model, mo.Year, mo.Month, measures.Expense)
		mo.IncomeByCategory = measures.CategoryBreakdown(model, mo.Year, mo.Month, measures.Income)
	}

	utilization, err := measures.BudgetUtilization(model)
	if err != nil {
		logger.ErrorContext(ctx, "Budget utilization failed",
			log.NewFields().WithOperation(log.OpMeasure).WithError(err, ErrorTypeFor(err)).ToSlice()...)
		return report, err
	}
	report.BudgetUtilization = utilization

	logger.InfoContext(ctx, "Measures evaluated",
		log.NewFields().
			WithOperation(log.OpGenerate).
			WithAmount(log.FieldTotalSpend, report.TotalSpend).
			WithModel(stats.Facts, stats.Dates, stats.Categories, stats.Merchants).
			ToSlice()...,
	)
	logger.DebugContext(ctx, "Generation timing", log.FieldDuration, time.Since(start).Milliseconds())
	return report, nil
}

// Run reads the source, generates a report and publishes it. A report with
// failed budget utilization is still published; the configuration error is
// returned afterwards.
func (s *ReportService) Run(ctx context.Context, src source.TransactionSource, out sink.ReportSink) (*core.Report, error) {
	txns, err := src.Transactions(ctx)
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to read transactions",
			log.NewFields().WithOperation(log.OpRead).WithError(err, log.ErrorTypeSource).ToSlice()...)
		return nil, fmt.Errorf("read transactions: %w", err)
	}
	s.logger.InfoContext(ctx, "Transactions loaded", log.FieldTransactions, len(txns))

	report, genErr := s.Generate(ctx, txns)
	if report == nil {
		return nil, genErr
	}

	if err := out.Publish(ctx, report); err != nil {
		s.logger.ErrorContext(ctx, "Failed to publish report",
			log.NewFields().WithOperation(log.OpPublish).WithRunID(report.RunID).WithError(err, log.ErrorTypeSink).ToSlice()...)
		return report, errors.Join(genErr, fmt.Errorf("%w: %w", ErrPublish, err))
	}
	return report, genErr
}

// GenerateBatch evaluates independent transaction snapshots concurrently.
// Results line up with snapshots; one snapshot failing never affects the
// others. The returned error is set only when ctx ends before every
// snapshot started.
func (s *ReportService) GenerateBatch(ctx context.Context, snapshots [][]core.Transaction) ([]BatchResult, error) {
	results := make([]BatchResult, len(snapshots))

	var g errgroup.Group
	g.SetLimit(s.concurrency)
	for i, snapshot := range snapshots {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				results[i] = BatchResult{Err: err}
				return err
			}
			report, err := s.Generate(ctx, snapshot)
			results[i] = BatchResult{Report: report, Err: err}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		s.logger.WarnContext(ctx, "Batch interrupted", "runs", len(snapshots), log.FieldError, err)
		return results, err
	}
	s.logger.InfoContext(ctx, "Batch generated", "runs", len(snapshots))
	return results, nil
}

// ErrorTypeFor classifies an error for the error_type log field.
func ErrorTypeFor(err error) string {
	switch {
	case errors.Is(err, core.ErrValidation):
		return log.ErrorTypeValidation
	case errors.Is(err, core.ErrConfiguration):
		return log.ErrorTypeConfiguration
	default:
		return log.ErrorTypeInternal
	}
}
