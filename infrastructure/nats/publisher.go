package nats

import (
	"context"
	"encoding/json"
	"fmt"

	"taskhub/domain/ports"
	"taskhub/pkg/logger"
)

// Publisher publishes change events to JetStream
type Publisher struct {
	client *Client
}

func NewPublisher(client *Client) *Publisher {
	return &Publisher{client: client}
}

func (p *Publisher) Publish(ctx context.Context, event ports.Event) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	ack, err := p.client.js.Publish(ctx, SubjectFor(event.Type), data)
	if err != nil {
		return fmt.Errorf("failed to publish %s: %w", event.Type, err)
	}

	logger.DebugContext(ctx, "Event published to JetStream",
		"type", event.Type,
		"id", event.ID,
		"stream", ack.Stream,
		"sequence", ack.Sequence,
	)
	return nil
}
