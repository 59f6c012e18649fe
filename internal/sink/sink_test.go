package sink

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"finmodel/internal/core"
	"finmodel/internal/log"

	"github.com/shopspring/decimal"
)

func sampleReport() *core.Report {
	return &core.Report{
		RunID:       "run-1",
		GeneratedAt: time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC),
		Stats:       core.ModelStats{Facts: 3, Dates: 3, Categories: 2, Merchants: 3},
		TotalSpend:  decimal.RequireFromString("100.10"),
		IncomeTotal: decimal.Zero,
		SpendByCategory: core.CategoryTotals{
			"Groceries": decimal.RequireFromString("80.10"),
			"Dining":    decimal.NewFromInt(20),
		},
		SpendByMerchant: core.CategoryTotals{"Walmart": decimal.NewFromInt(50)},
		BudgetUtilization: core.CategoryTotals{
			"Groceries": decimal.RequireFromString("16.02"),
			"Dining":    decimal.NewFromInt(10),
		},
		Monthly: []core.MonthSummary{{
			Year:              2024,
			Month:             1,
			Expense:           decimal.RequireFromString("100.10"),
			Net:               decimal.RequireFromString("-100.10"),
			ExpenseByCategory: core.CategoryTotals{"Groceries": decimal.RequireFromString("80.10"), "Dining": decimal.NewFromInt(20)},
		}},
	}
}

func TestReportMessage_JSON(t *testing.T) {
	msg := NewReportMessage(sampleReport())

	jsonBytes, err := msg.ToJSON()
	if err != nil {
		t.Fatalf("ToJSON() error = %v", err)
	}

	var raw map[string]any
	if err := json.Unmarshal(jsonBytes, &raw); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if raw["total_spend"] != "100.1" {
		t.Errorf("total_spend = %#v, want string \"100.1\"", raw["total_spend"])
	}

	parsed, err := ReportMessageFromJSON(jsonBytes)
	if err != nil {
		t.Fatalf("ReportMessageFromJSON() error = %v", err)
	}
	if parsed.RunID != "run-1" || parsed.Stats.Facts != 3 {
		t.Errorf("unexpected header: %+v", parsed)
	}
	if !parsed.SpendByCategory["Groceries"].Equal(decimal.RequireFromString("80.10")) {
		t.Errorf("Groceries = %s", parsed.SpendByCategory["Groceries"])
	}
	if len(parsed.Monthly) != 1 || !parsed.Monthly[0].Net.Equal(decimal.RequireFromString("-100.10")) {
		t.Errorf("unexpected monthly: %+v", parsed.Monthly)
	}
	if !parsed.Monthly[0].ExpenseByCategory["Dining"].Equal(decimal.NewFromInt(20)) {
		t.Errorf("monthly Dining expense = %s", parsed.Monthly[0].ExpenseByCategory["Dining"])
	}
	if parsed.Monthly[0].IncomeByCategory == nil || len(parsed.Monthly[0].IncomeByCategory) != 0 {
		t.Errorf("income breakdown should be an empty object: %+v", parsed.Monthly[0].IncomeByCategory)
	}
}

func TestReportMessage_NilUtilization(t *testing.T) {
	r := sampleReport()
	r.BudgetUtilization = nil
	r.SpendByMerchant = nil

	jsonBytes, err := NewReportMessage(r).ToJSON()
	if err != nil {
		t.Fatalf("ToJSON() error = %v", err)
	}
	if !strings.Contains(string(jsonBytes), `"budget_utilization":null`) {
		t.Errorf("expected null utilization: %s", jsonBytes)
	}
	if !strings.Contains(string(jsonBytes), `"spend_by_merchant":{}`) {
		t.Errorf("expected empty merchant map: %s", jsonBytes)
	}
}

func TestReportMessage_InvalidJSON(t *testing.T) {
	if _, err := ReportMessageFromJSON([]byte(`{"total_spend": "abc"}`)); err == nil {
		t.Error("ReportMessageFromJSON() should fail with invalid amount")
	}
}

func TestLogSink_Publish(t *testing.T) {
	var buf bytes.Buffer
	logger := log.New(log.Config{Level: log.ParseLevel("info"), Output: &buf})
	s := NewLogSink(logger)

	if err := s.Publish(context.Background(), sampleReport()); err != nil {
		t.Fatalf("Publish: %v", err)
	}
	out := buf.String()
	for _, want := range []string{"Report generated", "total_spend=100.1", "category=Dining", "utilization_pct=16.02", "Monthly summary"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
	// Categories are logged in name order.
	if strings.Index(out, "category=Dining") > strings.Index(out, "category=Groceries") {
		t.Errorf("categories not sorted:\n%s", out)
	}
}

func TestLogSink_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := NewLogSink(nil).Publish(ctx, sampleReport()); err == nil {
		t.Fatal("expected context error")
	}
}

type countingSink struct {
	calls int
	err   error
}

func (c *countingSink) Publish(context.Context, *core.Report) error {
	c.calls++
	return c.err
}

func TestFanout_PublishesToEverySink(t *testing.T) {
	errA := errors.New("a down")
	errC := errors.New("c down")
	a, b, c := &countingSink{err: errA}, &countingSink{}, &countingSink{err: errC}

	err := Fanout{a, nil, b, c}.Publish(context.Background(), sampleReport())

	if a.calls != 1 || b.calls != 1 || c.calls != 1 {
		t.Fatalf("calls = %d/%d/%d, want 1 each", a.calls, b.calls, c.calls)
	}
	if !errors.Is(err, errA) || !errors.Is(err, errC) {
		t.Fatalf("err = %v, want both sink errors", err)
	}
	if err := (Fanout{b}).Publish(context.Background(), sampleReport()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
