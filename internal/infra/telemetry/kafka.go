// Package telemetry publishes one message per simulated step to Kafka,
// for dashboards and downstream analytics that follow the simulation
// without holding a WebSocket open.
package telemetry

import (
	"context"
	"encoding/json"
	"strconv"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/MVidalUrbina/CiudadGemela/server/internal/domain/city"
	"github.com/MVidalUrbina/CiudadGemela/server/internal/platform/logger"
	"github.com/MVidalUrbina/CiudadGemela/server/internal/platform/metrics"
)

// StepMessage is the JSON payload published per simulated year.
type StepMessage struct {
	Year      int             `json:"year"`
	Stats     city.Statistics `json:"stats"`
	Timestamp time.Time       `json:"timestamp"`
}

// Publisher writes step messages to a Kafka topic. Enqueueing is
// non-blocking: when the buffer is full the message is dropped and
// counted, never stalling the stepping loop.
type Publisher struct {
	writer *kafka.Writer
	queue  chan StepMessage
	logger *logger.Logger
}

// New creates a publisher for the given brokers and topic.
func New(brokers []string, topic string, buffer int, log *logger.Logger) *Publisher {
	return &Publisher{
		writer: &kafka.Writer{
			Addr:         kafka.TCP(brokers...),
			Topic:        topic,
			RequiredAcks: kafka.RequireOne,
			Async:        false,
		},
		queue:  make(chan StepMessage, buffer),
		logger: log,
	}
}

// Run drains the queue until ctx is cancelled. Call in a goroutine.
func (p *Publisher) Run(ctx context.Context) {
	p.logger.Info("telemetry publisher started for topic %s", p.writer.Topic)

	for {
		select {
		case <-ctx.Done():
			p.logger.Info("telemetry publisher stopped")
			return
		case msg := <-p.queue:
			p.write(ctx, msg)
		}
	}
}

// Publish enqueues a step message without blocking.
func (p *Publisher) Publish(msg StepMessage) {
	select {
	case p.queue <- msg:
	default:
		metrics.Get().RecordTelemetryDrop()
	}
}

// Close flushes the underlying writer.
func (p *Publisher) Close() error {
	return p.writer.Close()
}

func (p *Publisher) write(ctx context.Context, msg StepMessage) {
	value, err := json.Marshal(msg)
	if err != nil {
		p.logger.Error("failed to marshal telemetry message: %v", err)
		return
	}

	writeCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	err = p.writer.WriteMessages(writeCtx, kafka.Message{
		Key:   []byte(strconv.Itoa(msg.Year)),
		Value: value,
	})
	metrics.Get().RecordTelemetry(err)
	if err != nil {
		p.logger.Error("failed to publish telemetry message: %v", err)
	}
}
