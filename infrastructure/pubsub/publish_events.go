package pubsub

import (
	"context"
	"encoding/json"
	"time"

	"cloud.google.com/go/pubsub"

	"content-studio/domain/model"
	"content-studio/infrastructure/logger"
)

// PublishEvent is emitted after every publish request completes, one event
// per request with all per-platform results attached.
type PublishEvent struct {
	RequestID string                `json:"request_id"`
	UserID    string                `json:"user_id"`
	Overall   string                `json:"overall"`
	Results   []model.PublishResult `json:"results"`
	EmittedAt time.Time             `json:"emitted_at"`
}

// IPublishEvents publishes completion events to interested consumers.
// Emission is best effort, failures are logged and never affect the
// publish response.
type IPublishEvents interface {
	PublishCompleted(ctx context.Context, event PublishEvent) error
}

type PubSub struct {
	client *pubsub.Client
	topic  string
}

func NewPubSub(ctx context.Context, projectID, topic string) (*PubSub, error) {
	client, err := pubsub.NewClient(ctx, projectID)
	if err != nil {
		return nil, err
	}
	return &PubSub{client: client, topic: topic}, nil
}

func (p *PubSub) PublishCompleted(ctx context.Context, event PublishEvent) error {
	data, err := json.Marshal(event)
	if err != nil {
		return err
	}
	t := p.client.Topic(p.topic)
	defer t.Stop()
	result := t.Publish(ctx, &pubsub.Message{
		Data: data,
		Attributes: map[string]string{
			"overall": event.Overall,
		},
	})
	id, err := result.Get(ctx)
	if err != nil {
		logger.GetLogger().WithField("error", err).Warn("Failed to publish completion event")
		return err
	}
	logger.GetLogger().WithField("message_id", id).WithField("request_id", event.RequestID).Info("Publish event emitted")
	return nil
}

func (p *PubSub) Close() error {
	return p.client.Close()
}
