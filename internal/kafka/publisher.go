package kafka

import (
	"context"
	"encoding/json"

	"github.com/segmentio/kafka-go"

	"heat-alert-service/internal/logging"
	"heat-alert-service/internal/models"
)

// Publisher mirrors events onto a Kafka topic. Writes are asynchronous and
// failures are only logged.
type Publisher struct {
	writer *kafka.Writer
	logger *logging.Logger
}

// NewPublisher builds an async writer for topic.
func NewPublisher(brokers []string, topic string, logger *logging.Logger) *Publisher {
	p := &Publisher{logger: logger}
	p.writer = &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafka.LeastBytes{},
		Async:                  true,
		AllowAutoTopicCreation: true,
		Completion: func(messages []kafka.Message, err error) {
			if err != nil {
				p.logger.Errorf("Publish %d event(s) to Kafka failed: %v", len(messages), err)
			}
		},
	}
	return p
}

// Publish encodes event and hands it to the writer.
func (p *Publisher) Publish(ctx context.Context, event models.Event) {
	value, err := json.Marshal(event)
	if err != nil {
		p.logger.Errorf("Marshal event failed: %v", err)
		return
	}
	if err := p.writer.WriteMessages(ctx, kafka.Message{Key: []byte(event.Type), Value: value}); err != nil {
		p.logger.Errorf("Queue %s event failed: %v", event.Type, err)
	}
}

// Close flushes pending writes.
func (p *Publisher) Close() {
	if err := p.writer.Close(); err != nil {
		p.logger.Errorf("Close Kafka writer failed: %v", err)
	}
}
