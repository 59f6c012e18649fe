package backend

import (
	"context"
	"fmt"

	"finmodel/internal/amqp"
	"finmodel/internal/events/kafka"
	"finmodel/internal/log"
	"finmodel/internal/sink"
	"finmodel/internal/source/google"
	"finmodel/internal/source/memory"
	"finmodel/internal/storage"
)

// DefaultFactory implements the Factory interface
type DefaultFactory struct {
	logger *log.Logger
}

// NewFactory creates a new backend factory
func NewFactory(logger *log.Logger) Factory {
	if logger == nil {
		logger = log.New(log.DefaultConfig())
	}
	return &DefaultFactory{
		logger: logger.WithComponent(log.ComponentBackend),
	}
}

// CreateSource implements Factory.CreateSource
func (f *DefaultFactory) CreateSource(ctx context.Context, config Config) (*SourceResult, error) {
	switch config.Source {
	case MemorySource:
		return f.createMemorySource(config)
	case SQLiteSource:
		return f.createSQLiteSource(config)
	case SheetsSource:
		return f.createSheetsSource(ctx, config)
	default:
		return nil, fmt.Errorf("unsupported source type: %s", config.Source)
	}
}

// CreateSink implements Factory.CreateSink
func (f *DefaultFactory) CreateSink(ctx context.Context, config Config) (*SinkResult, error) {
	switch config.Sink {
	case LogSink:
		f.logger.InfoContext(ctx, "Initialized log sink")
		return &SinkResult{Sink: sink.NewLogSink(f.logger)}, nil
	case AMQPSink:
		client, err := amqp.NewClient(config.AMQPURL, config.AMQPExchange, config.AMQPQueue, f.logger)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize AMQP client: %w", err)
		}
		f.logger.InfoContext(ctx, "Initialized AMQP sink",
			"exchange", config.AMQPExchange,
			"queue", config.AMQPQueue)
		return &SinkResult{Sink: client, Cleanup: client.Close}, nil
	case KafkaSink:
		publisher := kafka.NewPublisher(config.KafkaBrokers, config.KafkaTopic, f.logger)
		f.logger.InfoContext(ctx, "Initialized Kafka sink",
			"brokers", config.KafkaBrokers,
			"topic", config.KafkaTopic)
		return &SinkResult{Sink: publisher, Cleanup: publisher.Close}, nil
	default:
		return nil, fmt.Errorf("unsupported sink type: %s", config.Sink)
	}
}

func (f *DefaultFactory) createMemorySource(config Config) (*SourceResult, error) {
	dataDir := config.DataDirectory
	if dataDir == "" {
		dataDir = "data"
	}

	store, err := memory.NewFromFiles(dataDir)
	if err != nil {
		return nil, fmt.Errorf("failed to load memory source: %w", err)
	}

	f.logger.Info("Initialized memory source", "data_directory", dataDir)

	return &SourceResult{Source: store, Importer: store}, nil
}

func (f *DefaultFactory) createSQLiteSource(config Config) (*SourceResult, error) {
	repo, err := storage.NewSQLiteRepository(config.SQLiteDBPath, f.logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize SQLite repository: %w", err)
	}

	f.logger.Info("Initialized SQLite source", "db_path", config.SQLiteDBPath)

	return &SourceResult{Source: repo, Importer: repo, Cleanup: repo.Close}, nil
}

func (f *DefaultFactory) createSheetsSource(ctx context.Context, config Config) (*SourceResult, error) {
	cli, err := google.New(ctx, google.Options{
		SpreadsheetID:   config.GoogleSpreadsheetID,
		SheetName:       config.GoogleSheetName,
		CredentialsJSON: config.GoogleServiceAccountJSON,
		CredentialsFile: config.GoogleServiceAccountFile,
	}, f.logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Google Sheets client: %w", err)
	}

	f.logger.Info("Initialized Google Sheets source", "sheet", config.GoogleSheetName)

	return &SourceResult{Source: cli}, nil
}
