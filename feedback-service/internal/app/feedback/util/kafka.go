package util

import (
	"context"
	"fmt"
	"time"

	"guestvoice/pkg/logger"
	"guestvoice/pkg/metrics"

	"github.com/segmentio/kafka-go"
)

// KafkaProducer отправляет события отзывов в Kafka
type KafkaProducer struct {
	writer *kafka.Writer
	topic  string
}

// NewKafkaProducer создает producer для топика событий
func NewKafkaProducer(brokers []string, topic string) *KafkaProducer {
	writer := &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.LeastBytes{},
		BatchTimeout: 10 * time.Millisecond,
	}

	logger.Info().
		Strs("brokers", brokers).
		Str("topic", topic).
		Msg("Kafka producer created")

	return &KafkaProducer{
		writer: writer,
		topic:  topic,
	}
}

// PublishMessage отправляет сообщение с ключом в топик
func (p *KafkaProducer) PublishMessage(ctx context.Context, key string, value []byte) error {
	start := time.Now()

	err := p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(key),
		Value: value,
	})
	if err != nil {
		metrics.RecordKafkaError(serviceName, p.topic, "produce")
		return fmt.Errorf("failed to write message to kafka: %w", err)
	}

	metrics.RecordKafkaMessageProduced(serviceName, p.topic, time.Since(start))
	return nil
}

// Close закрывает writer
func (p *KafkaProducer) Close() error {
	return p.writer.Close()
}
