package http

import (
	"context"
	"errors"
	"net/http"
	"time"

	"finmodel/internal/core"
	"finmodel/internal/log"
	"finmodel/internal/middleware/trace"
	"finmodel/internal/services"
	"finmodel/internal/sink"
)

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	metrics := s.tracer.GetMetrics()
	NewJSONResponse().Body(HealthResponse{
		Status:         "ok",
		Uptime:         time.Since(s.started).Round(time.Second).String(),
		Reports:        s.history.Len(),
		TotalRequests:  metrics.TotalRequests,
		FailedRequests: metrics.FailedRequests,
		RateLimited:    s.limiter.GetMetrics().TotalHits,
	}).Write(w)
}

// handleRunReport reads the configured source, evaluates the measures and
// publishes the report.
func (s *Server) handleRunReport(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), s.runTimeout)
	defer cancel()
	logger := log.FromContext(ctx)

	report, err := s.service.Run(ctx, s.source, s.sink)
	resp := RunResponse{}
	if report != nil {
		resp.Report = sink.NewReportMessage(report)
	}

	status := http.StatusCreated
	if err != nil {
		resp.Error = err.Error()
		status, resp.ErrorType = classifyRunError(report, err)
		logger.WarnContext(ctx, "Report run failed",
			log.NewFields().WithOperation(log.OpGenerate).WithError(err, resp.ErrorType).ToSlice()...)
	}

	b := NewJSONResponse().Status(status).Body(resp)
	if report != nil {
		b.Header("Location", "/reports/"+report.RunID)
	}
	b.Write(w)
}

// classifyRunError maps a Run error to a status code and error type. A run
// that produced a report with failed budget utilization is still a success
// from the client's point of view.
func classifyRunError(report *core.Report, err error) (int, string) {
	switch {
	case errors.Is(err, services.ErrPublish):
		return http.StatusBadGateway, log.ErrorTypeSink
	case errors.Is(err, core.ErrValidation):
		return http.StatusUnprocessableEntity, log.ErrorTypeValidation
	case errors.Is(err, core.ErrConfiguration) && report != nil:
		return http.StatusOK, log.ErrorTypeConfiguration
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout, log.ErrorTypeSource
	default:
		return http.StatusBadGateway, log.ErrorTypeSource
	}
}

func (s *Server) handleListReports(w http.ResponseWriter, r *http.Request) {
	reports := s.history.List()
	resp := ReportListResponse{Reports: make([]*sink.ReportMessage, 0, len(reports)), Count: len(reports)}
	for _, report := range reports {
		resp.Reports = append(resp.Reports, sink.NewReportMessage(report))
	}
	NewJSONResponse().Body(resp).Write(w)
}

func (s *Server) handleLatestReport(w http.ResponseWriter, r *http.Request) {
	report, ok := s.history.Latest()
	if !ok {
		notFound(w, r, "no report has been generated yet")
		return
	}
	NewJSONResponse().Body(sink.NewReportMessage(report)).Write(w)
}

func (s *Server) handleGetReport(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	report, ok := s.history.Get(id)
	if !ok {
		notFound(w, r, "report "+id+" not found")
		return
	}
	NewJSONResponse().Body(sink.NewReportMessage(report)).Write(w)
}

func notFound(w http.ResponseWriter, r *http.Request, message string) {
	NewJSONResponse().
		Status(http.StatusNotFound).
		Body(ErrorBody{Error: message, ErrorType: "not_found", RequestID: trace.GetRequestID(r.Context())}).
		Write(w)
}
