package kafka

import (
	"context"
	"errors"
	"testing"
	"time"

	"finmodel/internal/core"
	"finmodel/internal/sink"

	"github.com/segmentio/kafka-go"
	"github.com/shopspring/decimal"
)

type fakeWriter struct {
	msgs   []kafka.Message
	err    error
	closed bool
}

func (f *fakeWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	if f.err != nil {
		return f.err
	}
	f.msgs = append(f.msgs, msgs...)
	return nil
}

func (f *fakeWriter) Close() error {
	f.closed = true
	return nil
}

func TestPublisher_Publish(t *testing.T) {
	w := &fakeWriter{}
	p := newPublisher(w, "finmodel.reports", nil)

	report := &core.Report{
		RunID:           "run-42",
		GeneratedAt:     time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC),
		TotalSpend:      decimal.RequireFromString("12.34"),
		SpendByCategory: core.CategoryTotals{"Dining": decimal.RequireFromString("12.34")},
	}
	if err := p.Publish(context.Background(), report); err != nil {
		t.Fatalf("Publish: %v", err)
	}

	if len(w.msgs) != 1 {
		t.Fatalf("got %d messages", len(w.msgs))
	}
	msg := w.msgs[0]
	if string(msg.Key) != "run-42" {
		t.Errorf("key = %q", msg.Key)
	}
	decoded, err := sink.ReportMessageFromJSON(msg.Value)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !decoded.TotalSpend.Equal(report.TotalSpend) || decoded.RunID != "run-42" {
		t.Errorf("unexpected payload: %+v", decoded)
	}

	if err := p.Close(); err != nil || !w.closed {
		t.Errorf("Close: err=%v closed=%v", err, w.closed)
	}
}

func TestPublisher_WriteError(t *testing.T) {
	boom := errors.New("broker unavailable")
	p := newPublisher(&fakeWriter{err: boom}, "finmodel.reports", nil)

	err := p.Publish(context.Background(), &core.Report{RunID: "run-1"})
	if !errors.Is(err, boom) {
		t.Fatalf("expected wrapped writer error, got %v", err)
	}
}
