package audit

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/twmb/franz-go/pkg/kgo"
)

// Publisher appends events to the store and fans them out to Kafka when a
// producer is wired. Kafka delivery is best-effort and asynchronous; the
// store append is the source of truth.
type Publisher struct {
	store    Store
	producer *kgo.Client
	topic    string
	logger   *slog.Logger
}

func NewPublisher(store Store, producer *kgo.Client, topic string, logger *slog.Logger) *Publisher {
	return &Publisher{store: store, producer: producer, topic: topic, logger: logger}
}

func (p *Publisher) Emit(ctx context.Context, event Event) error {
	if event.ID == "" {
		event = NewEvent(event.SessionID, event.Action, event.Details)
	}
	if err := p.store.Append(ctx, event); err != nil {
		return err
	}

	if p.producer == nil {
		return nil
	}
	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}
	record := &kgo.Record{
		Topic: p.topic,
		Key:   []byte(event.SessionID),
		Value: payload,
	}
	p.producer.Produce(ctx, record, func(_ *kgo.Record, err error) {
		if err != nil {
			p.logger.Warn("audit event publish failed",
				"action", event.Action,
				"session_id", event.SessionID,
				"error", err.Error(),
			)
		}
	})
	return nil
}

func (p *Publisher) List(ctx context.Context, sessionID string) ([]Event, error) {
	return p.store.ListBySession(ctx, sessionID)
}
