package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	kafkago "github.com/segmentio/kafka-go"

	"github.com/sdars/hazard-engine/internal/alert"
	"github.com/sdars/hazard-engine/internal/config"
)

// Publisher pushes alert events onto the alerts topic for downstream
// consumers (dashboards, sibling services). It implements the SYSTEM-channel
// publisher port.
type Publisher struct {
	writer *kafkago.Writer
	logger *slog.Logger
}

// NewPublisher creates a Kafka producer for the configured alerts topic.
func NewPublisher(cfg *config.Config, logger *slog.Logger) *Publisher {
	w := &kafkago.Writer{
		Addr:         kafkago.TCP(cfg.KafkaBrokers...),
		Topic:        cfg.KafkaAlertsTopic,
		Balancer:     &kafkago.LeastBytes{},
		RequiredAcks: kafkago.RequireAll,
	}
	return &Publisher{writer: w, logger: logger}
}

// PublishAlert serializes and publishes one alert event.
func (p *Publisher) PublishAlert(ctx context.Context, a *alert.Alert) error {
	msg, err := serializeToMessage(a)
	if err != nil {
		return err
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("publish alert %s: %w", a.ID, err)
	}
	p.logger.Debug("alert published", "alert_id", a.ID, "topic", p.writer.Topic)
	return nil
}

func (p *Publisher) Close() error {
	return p.writer.Close()
}

// serializeToMessage marshals an alert into a Kafka message keyed by alert ID.
func serializeToMessage(a *alert.Alert) (kafkago.Message, error) {
	data, err := json.Marshal(a)
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize alert: %w", err)
	}
	return kafkago.Message{
		Key:   []byte(a.ID),
		Value: data,
		Headers: []kafkago.Header{
			{Key: "hazard", Value: []byte(a.Hazard)},
			{Key: "severity", Value: []byte(a.Severity)},
			{Key: "created_at", Value: []byte(a.CreatedAt.Format(time.RFC3339))},
		},
	}, nil
}
