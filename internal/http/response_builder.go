package http

import (
	"encoding/json"
	"net/http"

	"finmodel/internal/sink"
)

// JSONResponseBuilder provides a fluent API for JSON responses.
type JSONResponseBuilder struct {
	statusCode int
	headers    map[string]string
	body       any
}

// NewJSONResponse creates a new response builder with default 200 status.
func NewJSONResponse() *JSONResponseBuilder {
	return &JSONResponseBuilder{
		statusCode: http.StatusOK,
		headers:    make(map[string]string),
	}
}

func (b *JSONResponseBuilder) Status(code int) *JSONResponseBuilder {
	b.statusCode = code
	return b
}

func (b *JSONResponseBuilder) Header(name, value string) *JSONResponseBuilder {
	b.headers[name] = value
	return b
}

// Body sets the value encoded as the response body.
func (b *JSONResponseBuilder) Body(v any) *JSONResponseBuilder {
	b.body = v
	return b
}

// Write sends the built response. An unencodable body becomes a 500.
func (b *JSONResponseBuilder) Write(w http.ResponseWriter) {
	payload := []byte("null")
	if b.body != nil {
		data, err := json.Marshal(b.body)
		if err != nil {
			http.Error(w, `{"error":"failed to encode response"}`, http.StatusInternalServerError)
			return
		}
		payload = data
	}

	for name, value := range b.headers {
		w.Header().Set(name, value)
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(b.statusCode)
	_, _ = w.Write(append(payload, '\n'))
}

// ErrorBody is the JSON shape of every error response.
type ErrorBody struct {
	Error     string `json:"error"`
	ErrorType string `json:"error_type,omitempty"`
	RequestID string `json:"request_id,omitempty"`
}

// ErrorResponse creates a standard JSON error response.
func ErrorResponse(statusCode int, errorType, message string) *JSONResponseBuilder {
	return NewJSONResponse().
		Status(statusCode).
		Body(ErrorBody{Error: message, ErrorType: errorType})
}

// TooManyRequestsError creates a 429 response.
func TooManyRequestsError() *JSONResponseBuilder {
	return ErrorResponse(http.StatusTooManyRequests, "rate_limited", "rate limit exceeded, try again later")
}

// RunResponse is the body of POST /reports. Report is set whenever a report
// was produced, including runs whose budget utilization or publish step
// failed.
type RunResponse struct {
	Report    *sink.ReportMessage `json:"report,omitempty"`
	Error     string              `json:"error,omitempty"`
	ErrorType string              `json:"error_type,omitempty"`
}

// ReportListResponse is the body of GET /reports.
type ReportListResponse struct {
	Reports []*sink.ReportMessage `json:"reports"`
	Count   int                   `json:"count"`
}

// HealthResponse is the body of GET /healthz.
type HealthResponse struct {
	Status         string `json:"status"`
	Uptime         string `json:"uptime"`
	Reports        int    `json:"reports"`
	TotalRequests  int64  `json:"total_requests"`
	FailedRequests int64  `json:"failed_requests"`
	RateLimited    int64  `json:"rate_limited"`
}
