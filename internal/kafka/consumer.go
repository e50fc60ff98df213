package kafka

import (
	"context"
	"errors"
	"sync"

	"github.com/segmentio/kafka-go"

	"heat-alert-service/internal/ingest"
	"heat-alert-service/internal/logging"
)

// Ingester accepts raw reading payloads.
type Ingester interface {
	IngestJSON(ctx context.Context, raw []byte, source string) (ingest.Result, error)
}

// Consumer feeds readings from a Kafka topic into the ingestion gateway.
type Consumer struct {
	reader   *kafka.Reader
	ingester Ingester
	logger   *logging.Logger
}

// NewConsumer builds a group consumer for topic.
func NewConsumer(brokers []string, topic, groupID string, ingester Ingester, logger *logging.Logger) *Consumer {
	r := kafka.NewReader(kafka.ReaderConfig{
		Brokers:  brokers,
		Topic:    topic,
		GroupID:  groupID,
		MinBytes: 1,
		MaxBytes: 10e6,
	})
	return &Consumer{reader: r, ingester: ingester, logger: logger}
}

// Start consumes until ctx is done.
func (c *Consumer) Start(ctx context.Context, wg *sync.WaitGroup) {
	wg.Add(1)
	go func() {
		defer wg.Done()
		c.logger.Infof("Kafka consumer started on topic %s", c.reader.Config().Topic)
		for {
			msg, err := c.reader.ReadMessage(ctx)
			if err != nil {
				if ctx.Err() != nil || errors.Is(err, context.Canceled) {
					c.logger.Info("Kafka consumer stopped")
					return
				}
				c.logger.Errorf("Read message failed: %v", err)
				continue
			}
			c.handle(ctx, msg)
		}
	}()
}

func (c *Consumer) handle(ctx context.Context, msg kafka.Message) {
	// Invalid or unstorable messages are skipped; the offset still advances.
	if _, err := c.ingester.IngestJSON(ctx, msg.Value, "kafka"); err != nil {
		c.logger.Errorf("Ingest Kafka message at offset %d failed: %v", msg.Offset, err)
		return
	}
	c.logger.Debugf("Processed Kafka message at offset %d", msg.Offset)
}

// Close releases the reader.
func (c *Consumer) Close() {
	if err := c.reader.Close(); err != nil {
		c.logger.Errorf("Close Kafka reader failed: %v", err)
	}
}
