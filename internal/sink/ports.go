package sink

import (
	"context"

	"finmodel/internal/core"
)

// ReportSink receives the measure output of a run.
type ReportSink interface {
	Publish(ctx context.Context, r *core.Report) error
}
