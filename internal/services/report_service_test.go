package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"finmodel/internal/core"
	"finmodel/internal/schema"
	"finmodel/internal/source/memory"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

func tx(year, month, day int, merchant, category, amount string) core.Transaction {
	return core.Transaction{
		Date:     core.NewDate(year, month, day),
		Merchant: merchant,
		Category: category,
		Amount:   decimal.RequireFromString(amount),
	}
}

func groceriesAndDining() []core.Transaction {
	return []core.Transaction{
		tx(2024, 1, 1, "Walmart", "Groceries", "-50"),
		tx(2024, 1, 2, "Starbucks", "Dining", "-20"),
		tx(2024, 1, 3, "Safeway", "Groceries", "-30"),
	}
}

type recordingSink struct {
	mu      sync.Mutex
	reports []*core.Report
	err     error
}

func (s *recordingSink) Publish(_ context.Context, r *core.Report) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	s.reports = append(s.reports, r)
	return nil
}

func (s *recordingSink) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.reports)
}

type failingSource struct{ err error }

func (f failingSource) Transactions(context.Context) ([]core.Transaction, error) {
	return nil, f.err
}

func TestReportService_Generate(t *testing.T) {
	svc := NewReportService(schema.DefaultBudgets(), 2, nil)
	fixed := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return fixed }

	report, err := svc.Generate(context.Background(), groceriesAndDining())
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if _, err := uuid.Parse(report.RunID); err != nil {
		t.Errorf("run ID %q is not a UUID", report.RunID)
	}
	if !report.GeneratedAt.Equal(fixed) {
		t.Errorf("GeneratedAt = %v", report.GeneratedAt)
	}
	if report.Stats != (core.ModelStats{Facts: 3, Dates: 3, Categories: 2, Merchants: 3}) {
		t.Errorf("Stats = %+v", report.Stats)
	}
	if !report.TotalSpend.Equal(decimal.NewFromInt(100)) {
		t.Errorf("TotalSpend = %s", report.TotalSpend)
	}
	if !report.BudgetUtilization["Groceries"].Equal(decimal.NewFromInt(16)) {
		t.Errorf("Groceries utilization = %s", report.BudgetUtilization["Groceries"])
	}
	if len(report.Monthly) != 1 {
		t.Fatalf("Monthly = %+v", report.Monthly)
	}
	jan := report.Monthly[0]
	if !jan.ExpenseByCategory["Groceries"].Equal(decimal.NewFromInt(80)) || !jan.ExpenseByCategory["Dining"].Equal(decimal.NewFromInt(20)) {
		t.Errorf("January expense breakdown = %v", jan.ExpenseByCategory)
	}
	if len(jan.IncomeByCategory) != 0 {
		t.Errorf("January income breakdown = %v", jan.IncomeByCategory)
	}
}

func TestReportService_GenerateValidationError(t *testing.T) {
	svc := NewReportService(nil, 1, nil)
	txns := append(groceriesAndDining(), tx(2024, 1, 4, "", "Dining", "-5"))

	report, err := svc.Generate(context.Background(), txns)
	if report != nil {
		t.Fatalf("expected nil report, got %+v", report)
	}
	var ve *core.ValidationError
	if !errors.As(err, &ve) || ve.Index != 3 || ve.Field != "merchant_name" {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestReportService_GenerateConfigurationError(t *testing.T) {
	svc := NewReportService(schema.BudgetLimits{"Gifts": decimal.Zero}, 1, nil)
	txns := []core.Transaction{
		tx(2024, 12, 20, "Etsy", "Gifts", "-40"),
		tx(2024, 12, 21, "Walmart", "Groceries", "-10"),
	}

	report, err := svc.Generate(context.Background(), txns)
	if !errors.Is(err, core.ErrConfiguration) {
		t.Fatalf("expected configuration error, got %v", err)
	}
	if report == nil {
		t.Fatal("other measures must still be reported")
	}
	if report.BudgetUtilization != nil {
		t.Errorf("utilization must be nil, got %v", report.BudgetUtilization)
	}
	if !report.TotalSpend.Equal(decimal.NewFromInt(50)) || len(report.SpendByCategory) != 2 {
		t.Errorf("unexpected measures: %+v", report)
	}
}

func TestReportService_GenerateCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := NewReportService(nil, 1, nil).Generate(ctx, groceriesAndDining()); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestReportService_Run(t *testing.T) {
	svc := NewReportService(nil, 1, nil)
	out := &recordingSink{}

	report, err := svc.Run(context.Background(), memory.New(groceriesAndDining()...), out)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if out.count() != 1 || out.reports[0] != report {
		t.Fatalf("report not published")
	}
}

func TestReportService_RunPublishesPartialReport(t *testing.T) {
	svc := NewReportService(schema.BudgetLimits{"Groceries": decimal.NewFromInt(-1)}, 1, nil)
	out := &recordingSink{}

	report, err := svc.Run(context.Background(), memory.New(groceriesAndDining()...), out)
	if !errors.Is(err, core.ErrConfiguration) {
		t.Fatalf("expected configuration error, got %v", err)
	}
	if report == nil || out.count() != 1 {
		t.Fatalf("partial report must still be published")
	}
}

func TestReportService_RunErrors(t *testing.T) {
	svc := NewReportService(nil, 1, nil)

	t.Run("source failure", func(t *testing.T) {
		boom := errors.New("sheet unavailable")
		out := &recordingSink{}
		if _, err := svc.Run(context.Background(), failingSource{err: boom}, out); !errors.Is(err, boom) {
			t.Fatalf("expected source error, got %v", err)
		}
		if out.count() != 0 {
			t.Fatal("nothing must be published")
		}
	})

	t.Run("validation failure publishes nothing", func(t *testing.T) {
		out := &recordingSink{}
		src := memory.New(tx(2024, 1, 1, "Walmart", " ", "-1"))
		if _, err := svc.Run(context.Background(), src, out); !errors.Is(err, core.ErrValidation) {
			t.Fatalf("expected validation error, got %v", err)
		}
		if out.count() != 0 {
			t.Fatal("nothing must be published")
		}
	})

	t.Run("sink failure", func(t *testing.T) {
		boom := errors.New("broker down")
		report, err := svc.Run(context.Background(), memory.New(groceriesAndDining()...), &recordingSink{err: boom})
		if !errors.Is(err, boom) || !errors.Is(err, ErrPublish) || report == nil {
			t.Fatalf("expected sink error with report, got report=%v err=%v", report, err)
		}
	})
}

func TestReportService_GenerateBatch(t *testing.T) {
	svc := NewReportService(nil, 2, nil)
	snapshots := [][]core.Transaction{
		groceriesAndDining(),
		{tx(2024, 2, 1, "Amazon", "Shopping", "200")},
		{tx(2024, 2, 1, "", "Shopping", "-1")},
		nil,
	}

	results, err := svc.GenerateBatch(context.Background(), snapshots)
	if err != nil {
		t.Fatalf("GenerateBatch: %v", err)
	}
	if len(results) != len(snapshots) {
		t.Fatalf("got %d results", len(results))
	}
	if !results[0].Report.TotalSpend.Equal(decimal.NewFromInt(100)) {
		t.Errorf("first run total = %s", results[0].Report.TotalSpend)
	}
	if !results[1].Report.TotalSpend.IsZero() || !results[1].Report.IncomeTotal.Equal(decimal.NewFromInt(200)) {
		t.Errorf("second run = %+v", results[1].Report)
	}
	if !errors.Is(results[2].Err, core.ErrValidation) || results[2].Report != nil {
		t.Errorf("third run should fail validation: %+v", results[2])
	}
	if results[3].Err != nil || results[3].Report.Stats.Facts != 0 {
		t.Errorf("empty run = %+v", results[3])
	}
	// Runs never share state.
	if results[0].Report.RunID == results[1].Report.RunID {
		t.Error("runs share a run ID")
	}
	if _, ok := results[1].Report.SpendByCategory["Groceries"]; ok {
		t.Error("second run sees categories from the first")
	}
}

func TestReportService_GenerateBatchCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	results, err := NewReportService(nil, 1, nil).GenerateBatch(ctx, [][]core.Transaction{groceriesAndDining()})
	if !errors.Is(err, context.Canceled) || !errors.Is(results[0].Err, context.Canceled) {
		t.Fatalf("expected cancellation, got results=%+v err=%v", results, err)
	}
}

func TestErrorTypeFor(t *testing.T) {
	if got := ErrorTypeFor(core.NewValidationError(0, core.ErrEmptyMerchant)); got != "validation_error" {
		t.Errorf("validation = %q", got)
	}
	if got := ErrorTypeFor(&core.ConfigurationError{Category: "X"}); got != "configuration_error" {
		t.Errorf("configuration = %q", got)
	}
	if got := ErrorTypeFor(errors.New("x")); got != "internal_error" {
		t.Errorf("other = %q", got)
	}
}
