package cache

import (
	"context"
	"sort"
	"time"

	"finmodel/internal/core"
)

// ReportHistory keeps the most recent reports in memory, keyed by run ID.
// It is a report sink so it can sit next to the configured one.
type ReportHistory struct {
	reports *LRUCache[*core.Report]
}

func NewReportHistory(size int, ttl time.Duration) *ReportHistory {
	return &ReportHistory{reports: NewLRUCache[*core.Report](size, ttl)}
}

// Publish records r.
func (h *ReportHistory) Publish(ctx context.Context, r *core.Report) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	h.reports.Set(r.RunID, r)
	return nil
}

// Get returns the report generated by runID.
func (h *ReportHistory) Get(runID string) (*core.Report, bool) {
	return h.reports.Get(runID)
}

// List returns the retained reports, newest first.
func (h *ReportHistory) List() []*core.Report {
	reports := h.reports.Values()
	sort.SliceStable(reports, func(i, j int) bool {
		return reports[i].GeneratedAt.After(reports[j].GeneratedAt)
	})
	return reports
}

// Latest returns the most recently generated report.
func (h *ReportHistory) Latest() (*core.Report, bool) {
	reports := h.List()
	if len(reports) == 0 {
		return nil, false
	}
	return reports[0], true
}

func (h *ReportHistory) Len() int {
	return h.reports.Size()
}

// CleanExpired drops reports older than the retention TTL.
func (h *ReportHistory) CleanExpired() int {
	return h.reports.CleanExpired()
}
