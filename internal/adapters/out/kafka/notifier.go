// Package kafka implements the Notifier port as a Kafka producer. The
// out-of-scope notification system consumes the topic and fans out to
// push/email; this side only publishes.
package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/IBM/sarama"

	"fulfillment/internal/core/ports"
	"fulfillment/internal/pkg/errs"
)

// Notifier publishes delivery notifications to a Kafka topic, keyed by
// recipient so one user's notifications stay ordered.
type Notifier struct {
	producer sarama.SyncProducer
	topic    string
	logger   *slog.Logger
}

// NewNotifier connects a synchronous producer to the given brokers.
func NewNotifier(brokers []string, topic string, logger *slog.Logger) (*Notifier, error) {
	if len(brokers) == 0 {
		return nil, errs.NewValueIsRequiredError("brokers")
	}
	if topic == "" {
		return nil, errs.NewValueIsRequiredError("topic")
	}

	config := sarama.NewConfig()
	config.Producer.Return.Successes = true
	config.Producer.Timeout = 5 * time.Second

	producer, err := sarama.NewSyncProducer(brokers, config)
	if err != nil {
		return nil, fmt.Errorf("connect kafka producer: %w", err)
	}

	return &Notifier{
		producer: producer,
		topic:    topic,
		logger:   logger.With("component", "kafka_notifier"),
	}, nil
}

type notificationMessage struct {
	UserID    string `json:"user_id"`
	Type      string `json:"type"`
	Title     string `json:"title"`
	Message   string `json:"message"`
	Priority  string `json:"priority"`
	ActionURL string `json:"action_url,omitempty"`
	SentAt    string `json:"sent_at"`
}

// Notify publishes one notification. Callers treat failures as
// fire-and-forget: the error is returned for logging but must never roll
// back the state transition that produced it.
func (n *Notifier) Notify(_ context.Context, notification ports.Notification) error {
	payload, err := json.Marshal(notificationMessage{
		UserID:    notification.UserID.String(),
		Type:      notification.Type,
		Title:     notification.Title,
		Message:   notification.Message,
		Priority:  string(notification.Priority),
		ActionURL: notification.ActionURL,
		SentAt:    time.Now().UTC().Format(time.RFC3339),
	})
	if err != nil {
		return fmt.Errorf("encode notification: %w", err)
	}

	partition, offset, err := n.producer.SendMessage(&sarama.ProducerMessage{
		Topic: n.topic,
		Key:   sarama.StringEncoder(notification.UserID.String()),
		Value: sarama.ByteEncoder(payload),
	})
	if err != nil {
		return errs.NewUpstreamError("kafka", true, err)
	}

	n.logger.Debug("notification published",
		"user_id", notification.UserID.String(),
		"type", notification.Type,
		"partition", partition,
		"offset", offset,
	)
	return nil
}

// Close shuts the underlying producer down.
func (n *Notifier) Close() error {
	return n.producer.Close()
}
