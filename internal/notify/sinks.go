package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"appointment-service/internal/models"

	"github.com/segmentio/kafka-go"
)

type NotificationSaver interface {
	SaveNotification(ctx context.Context, n models.Notification) error
}

// StoreSink persists notifications so recipients can list them later.
type StoreSink struct {
	store NotificationSaver
}

func NewStoreSink(store NotificationSaver) *StoreSink {
	return &StoreSink{store: store}
}

func (s *StoreSink) Name() string { return "store" }

func (s *StoreSink) Deliver(ctx context.Context, n models.Notification) error {
	const op = "notify.StoreSink.Deliver"

	if err := s.store.SaveNotification(ctx, n); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaSink publishes every notification as an appointment event keyed by
// appointment id, so events of one appointment stay ordered.
type KafkaSink struct {
	writer messageWriter
}

func NewKafkaSink(brokers []string, topic string) *KafkaSink {
	return &KafkaSink{
		writer: &kafka.Writer{
			Addr:         kafka.TCP(brokers...),
			Topic:        topic,
			Balancer:     &kafka.Hash{},
			RequiredAcks: kafka.RequireOne,
		},
	}
}

func (k *KafkaSink) Name() string { return "kafka" }

type event struct {
	EventID       string    `json:"event_id"`
	EventType     string    `json:"event_type"`
	AppointmentID string    `json:"appointment_id"`
	RecipientID   string    `json:"recipient_id"`
	Kind          string    `json:"kind"`
	Title         string    `json:"title"`
	Message       string    `json:"message"`
	OccurredAt    time.Time `json:"occurred_at"`
}

func EventType(kind models.NotificationKind) string {
	return fmt.Sprintf("appointment.%s.v1", kind)
}

func (k *KafkaSink) Deliver(ctx context.Context, n models.Notification) error {
	const op = "notify.KafkaSink.Deliver"

	e := event{
		EventID:       n.ID,
		EventType:     EventType(n.Kind),
		AppointmentID: n.AppointmentID,
		RecipientID:   n.RecipientID,
		Kind:          string(n.Kind),
		Title:         n.Title,
		Message:       n.Message,
		OccurredAt:    n.CreatedAt,
	}

	payload, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	msg := kafka.Message{
		Key:   []byte(n.AppointmentID),
		Value: payload,
		Headers: []kafka.Header{
			{Key: "event_id", Value: []byte(e.EventID)},
			{Key: "event_type", Value: []byte(e.EventType)},
		},
	}
	if err := k.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

func (k *KafkaSink) Close() error {
	return k.writer.Close()
}

func SplitBrokers(raw string) []string {
	var brokers []string
	for _, b := range strings.Split(raw, ",") {
		b = strings.TrimSpace(b)
		if b != "" {
			brokers = append(brokers, b)
		}
	}
	return brokers
}
