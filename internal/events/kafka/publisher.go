package kafka

import (
	"context"
	"fmt"

	"finmodel/internal/core"
	"finmodel/internal/log"
	"finmodel/internal/sink"

	"github.com/segmentio/kafka-go"
)

// messageWriter is the subset of *kafka.Writer the publisher needs.
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Publisher writes report messages to a topic, keyed by run ID so every
// message of a run lands on the same partition.
type Publisher struct {
	writer messageWriter
	topic  string
	logger *log.Logger
}

var _ sink.ReportSink = (*Publisher)(nil)

func NewPublisher(brokers []string, topic string, logger *log.Logger) *Publisher {
	return newPublisher(&kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafka.Hash{},
		RequiredAcks:           kafka.RequireAll,
		AllowAutoTopicCreation: true,
	}, topic, logger)
}

func newPublisher(w messageWriter, topic string, logger *log.Logger) *Publisher {
	if logger == nil {
		logger = log.New(log.DefaultConfig())
	}
	return &Publisher{writer: w, topic: topic, logger: logger.WithComponent(log.ComponentKafka)}
}

func (p *Publisher) Publish(ctx context.Context, r *core.Report) error {
	data, err := sink.NewReportMessage(r).ToJSON()
	if err != nil {
		return fmt.Errorf("marshal message: %w", err)
	}

	err = p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(r.RunID),
		Value: data,
		Time:  r.GeneratedAt,
		Headers: []kafka.Header{
			{Key: "content-type", Value: []byte("application/json")},
		},
	})
	if err != nil {
		return fmt.Errorf("write message to %s: %w", p.topic, err)
	}

	p.logger.InfoContext(ctx, "Published report message",
		log.FieldOperation, log.OpPublish,
		log.FieldRunID, r.RunID,
		"topic", p.topic)
	return nil
}

func (p *Publisher) Close() error {
	return p.writer.Close()
}
