package backend

import (
	"context"

	"finmodel/internal/sink"
	"finmodel/internal/source"
)

// CleanupFunc represents a cleanup function for resources
type CleanupFunc func() error

// SourceResult contains the transaction source and optional cleanup function.
// Importer is nil when the source cannot store transactions.
type SourceResult struct {
	Source   source.TransactionSource
	Importer source.TransactionImporter
	Cleanup  CleanupFunc
}

// SinkResult contains the report sink and optional cleanup function
type SinkResult struct {
	Sink    sink.ReportSink
	Cleanup CleanupFunc
}

// Factory creates sources and sinks based on configuration
type Factory interface {
	CreateSource(ctx context.Context, config Config) (*SourceResult, error)
	CreateSink(ctx context.Context, config Config) (*SinkResult, error)
}

// SourceType represents the type of transaction source
type SourceType string

const (
	MemorySource SourceType = "memory"
	SQLiteSource SourceType = "sqlite"
	SheetsSource SourceType = "sheets"
)

// String implements fmt.Stringer
func (st SourceType) String() string {
	return string(st)
}

// IsValid returns true if the source type is valid
func (st SourceType) IsValid() bool {
	switch st {
	case MemorySource, SQLiteSource, SheetsSource:
		return true
	default:
		return false
	}
}

// SinkType represents the type of report sink
type SinkType string

const (
	LogSink   SinkType = "log"
	AMQPSink  SinkType = "amqp"
	KafkaSink SinkType = "kafka"
)

// String implements fmt.Stringer
func (st SinkType) String() string {
	return string(st)
}

// IsValid returns true if the sink type is valid
func (st SinkType) IsValid() bool {
	switch st {
	case LogSink, AMQPSink, KafkaSink:
		return true
	default:
		return false
	}
}
