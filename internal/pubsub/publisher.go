package pubsub

import (
	"context"
	"fmt"

	"app/internal/config"

	"cloud.google.com/go/pubsub"
)

// Publisher emits scoring pipeline events. The scoring service treats
// publishing as best effort; implementations report failures, callers decide
// whether to care.
type Publisher interface {
	Publish(ctx context.Context, payload []byte) (string, error)
}

// EventPublisher publishes scoring run events to the configured Google
// Pub/Sub topic.
type EventPublisher struct {
	client *pubsub.Client
	topic  *pubsub.Topic
}

// NewPublisher creates an EventPublisher bound to the scoring events topic
// of the configured GCP project.
func NewPublisher(ctx context.Context, cfg *config.Config) (*EventPublisher, error) {
	client, err := pubsub.NewClient(ctx, cfg.GCPProjectID)
	if err != nil {
		return nil, fmt.Errorf("failed to create Pub/Sub client: %w", err)
	}
	return &EventPublisher{client: client, topic: client.Topic(cfg.PubSubScoringTopic)}, nil
}

// Publish sends the payload to the scoring events topic and returns the
// message ID.
func (p *EventPublisher) Publish(ctx context.Context, payload []byte) (string, error) {
	result := p.topic.Publish(ctx, &pubsub.Message{Data: payload})
	id, err := result.Get(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to publish message to topic %s: %w", p.topic.ID(), err)
	}
	return id, nil
}
