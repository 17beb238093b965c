package utils

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/neiist-dev/activities-backend/config"
)

var (
	signupWriter *kafka.Writer
	syncWriter   *kafka.Writer
)

// InitializeKafka sets up the producers for the signup and sync-run topics.
// Kafka being down must never take the API down, so this only logs.
func InitializeKafka(cfg *config.Config) {
	signupWriter = &kafka.Writer{
		Addr:         kafka.TCP(cfg.KafkaBrokers...),
		Topic:        cfg.KafkaSignupTopic,
		Balancer:     &kafka.LeastBytes{},
		RequiredAcks: kafka.RequireOne,
	}
	syncWriter = &kafka.Writer{
		Addr:         kafka.TCP(cfg.KafkaBrokers...),
		Topic:        cfg.KafkaSyncTopic,
		Balancer:     &kafka.LeastBytes{},
		RequiredAcks: kafka.RequireOne,
	}
	log.Printf("✅ Kafka producers ready (brokers: %v)", cfg.KafkaBrokers)
}

// PublishSignupEvent emits a signup state change for the notification consumer.
func PublishSignupEvent(ctx context.Context, key string, payload interface{}) {
	publish(ctx, signupWriter, key, payload)
}

// PublishSyncEvent emits a sync-run summary for the notification consumer.
func PublishSyncEvent(ctx context.Context, key string, payload interface{}) {
	publish(ctx, syncWriter, key, payload)
}

func publish(ctx context.Context, w *kafka.Writer, key string, payload interface{}) {
	if w == nil {
		return
	}
	value, err := json.Marshal(payload)
	if err != nil {
		log.Printf("⚠️ Kafka payload marshal failed: %v", err)
		return
	}

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := w.WriteMessages(ctx, kafka.Message{Key: []byte(key), Value: value}); err != nil {
		log.Printf("⚠️ Kafka publish to %s failed: %v", w.Topic, err)
	}
}

// NewReader builds a consumer for the notification service.
func NewReader(cfg *config.Config, topic, groupID string) *kafka.Reader {
	return kafka.NewReader(kafka.ReaderConfig{
		Brokers:  cfg.KafkaBrokers,
		Topic:    topic,
		GroupID:  groupID,
		MinBytes: 1,
		MaxBytes: 10e6,
	})
}
