// Package notify delivers triggered price alerts.
package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"game-deals/internal/domain"

	"github.com/IBM/sarama"
	"github.com/rs/zerolog"
)

type Notifier interface {
	Notify(ctx context.Context, alert domain.PriceAlert) error
	Close() error
}

// LogNotifier writes alerts to the application log.
type LogNotifier struct {
	logger zerolog.Logger
}

func NewLogNotifier(logger zerolog.Logger) *LogNotifier {
	return &LogNotifier{logger: logger}
}

func (n *LogNotifier) Notify(_ context.Context, alert domain.PriceAlert) error {
	n.logger.Info().
		Str("alert_id", alert.ID).
		Str("game_id", alert.GameID).
		Str("title", alert.Title).
		Str("store", string(alert.Store)).
		Str("price", alert.Display).
		Float64("target", alert.Target).
		Str("region", alert.Region).
		Msg("price alert triggered")
	return nil
}

func (n *LogNotifier) Close() error { return nil }

// KafkaNotifier publishes each alert as a JSON message keyed by game id, so alerts
// for one game stay ordered within a partition.
type KafkaNotifier struct {
	producer sarama.SyncProducer
	topic    string
	logger   zerolog.Logger
}

func NewKafkaConfig() *sarama.Config {
	config := sarama.NewConfig()
	config.Producer.RequiredAcks = sarama.WaitForLocal
	config.Producer.Compression = sarama.CompressionSnappy
	config.Producer.Return.Successes = true
	config.Producer.Return.Errors = true
	config.Producer.Timeout = 5 * time.Second
	return config
}

func NewKafkaNotifier(brokers []string, topic string, logger zerolog.Logger) (*KafkaNotifier, error) {
	producer, err := sarama.NewSyncProducer(brokers, NewKafkaConfig())
	if err != nil {
		return nil, fmt.Errorf("failed to create kafka producer: %w", err)
	}
	logger.Info().Strs("brokers", brokers).Str("topic", topic).Msg("kafka alert notifier ready")
	return NewKafkaNotifierFromProducer(producer, topic, logger), nil
}

func NewKafkaNotifierFromProducer(producer sarama.SyncProducer, topic string, logger zerolog.Logger) *KafkaNotifier {
	return &KafkaNotifier{producer: producer, topic: topic, logger: logger}
}

func (n *KafkaNotifier) Notify(ctx context.Context, alert domain.PriceAlert) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	data, err := json.Marshal(alert)
	if err != nil {
		return fmt.Errorf("failed to marshal alert: %w", err)
	}

	msg := &sarama.ProducerMessage{
		Topic: n.topic,
		Key:   sarama.StringEncoder(alert.GameID),
		Value: sarama.ByteEncoder(data),
	}
	partition, offset, err := n.producer.SendMessage(msg)
	if err != nil {
		return fmt.Errorf("failed to publish alert %s: %w", alert.ID, err)
	}

	n.logger.Debug().
		Str("alert_id", alert.ID).
		Int32("partition", partition).
		Int64("offset", offset).
		Msg("price alert published")
	return nil
}

func (n *KafkaNotifier) Close() error {
	return n.producer.Close()
}
