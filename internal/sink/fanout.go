package sink

import (
	"context"
	"errors"

	"finmodel/internal/core"
)

// Fanout publishes each report to every sink in order. A failing sink does
// not stop the ones after it; their errors are joined.
type Fanout []ReportSink

func (f Fanout) Publish(ctx context.Context, r *core.Report) error {
	var errs []error
	for _, s := range f {
		if s == nil {
			continue
		}
		if err := s.Publish(ctx, r); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
