package backend

import (
	"fmt"

	"finmodel/internal/config"
)

// Config holds configuration for source and sink creation
type Config struct {
	Source SourceType
	Sink   SinkType

	// Memory source specific
	DataDirectory string

	// SQLite specific
	SQLiteDBPath string

	// Google Sheets specific
	GoogleSpreadsheetID      string
	GoogleSheetName          string
	GoogleServiceAccountFile string
	GoogleServiceAccountJSON string

	// AMQP specific
	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string

	// Kafka specific
	KafkaBrokers []string
	KafkaTopic   string
}

// FromAppConfig converts the application config to backend config
func FromAppConfig(appConfig *config.Config) (Config, error) {
	if appConfig == nil {
		return Config{}, fmt.Errorf("app config is nil")
	}

	cfg := Config{
		Source: SourceType(appConfig.SourceBackend),
		Sink:   SinkType(appConfig.SinkBackend),

		DataDirectory: appConfig.DataDirectory,
		SQLiteDBPath:  appConfig.SQLiteDBPath,

		GoogleSpreadsheetID:      appConfig.GoogleSpreadsheetID,
		GoogleSheetName:          appConfig.GoogleSheetName,
		GoogleServiceAccountFile: appConfig.GoogleServiceAccountFile,
		GoogleServiceAccountJSON: appConfig.GoogleServiceAccountJSON,

		AMQPURL:      appConfig.AMQPURL,
		AMQPExchange: appConfig.AMQPExchange,
		AMQPQueue:    appConfig.AMQPQueue,

		KafkaBrokers: appConfig.KafkaBrokers,
		KafkaTopic:   appConfig.KafkaTopic,
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate validates the backend configuration
func (c Config) Validate() error {
	if !c.Source.IsValid() {
		return fmt.Errorf("invalid source type: %s", c.Source)
	}
	if !c.Sink.IsValid() {
		return fmt.Errorf("invalid sink type: %s", c.Sink)
	}

	switch c.Source {
	case SQLiteSource:
		if c.SQLiteDBPath == "" {
			return fmt.Errorf("SQLite database path is required for sqlite source")
		}
	case SheetsSource:
		if c.GoogleSpreadsheetID == "" {
			return fmt.Errorf("Google Spreadsheet ID is required for sheets source")
		}
		if c.GoogleServiceAccountFile == "" && c.GoogleServiceAccountJSON == "" {
			return fmt.Errorf("either GoogleServiceAccountFile or GoogleServiceAccountJSON must be provided for sheets source")
		}
	case MemorySource:
		// DataDirectory defaults to "data" if empty
	}

	switch c.Sink {
	case AMQPSink:
		if c.AMQPURL == "" {
			return fmt.Errorf("AMQP URL is required for amqp sink")
		}
	case KafkaSink:
		if len(c.KafkaBrokers) == 0 || c.KafkaTopic == "" {
			return fmt.Errorf("Kafka brokers and topic are required for kafka sink")
		}
	}

	return nil
}

// GetSourceTypeStrings returns all valid source type strings
func GetSourceTypeStrings() []string {
	return []string{MemorySource.String(), SQLiteSource.String(), SheetsSource.String()}
}

// GetSinkTypeStrings returns all valid sink type strings
func GetSinkTypeStrings() []string {
	return []string{LogSink.String(), AMQPSink.String(), KafkaSink.String()}
}
