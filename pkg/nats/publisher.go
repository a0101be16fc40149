package nats

import (
	"context"
	"fmt"

	"github.com/abgdnv/kasir/pkg/messaging"
	"github.com/nats-io/nats.go/jetstream"
)

// Publisher sends messaging events to JetStream and waits for the ack.
type Publisher struct {
	js jetstream.JetStream
}

func NewPublisher(js jetstream.JetStream) *Publisher {
	return &Publisher{js: js}
}

func (p *Publisher) Publish(ctx context.Context, event messaging.Event) error {
	data, err := event.Payload()
	if err != nil {
		return fmt.Errorf("failed to get event payload: %w", err)
	}
	var opts []jetstream.PublishOpt
	if id := event.ID(); id != "" {
		opts = append(opts, jetstream.WithMsgID(id))
	}
	if _, err = p.js.Publish(ctx, event.Subject(), data, opts...); err != nil {
		return fmt.Errorf("failed to publish %s: %w", event.Subject(), err)
	}
	return nil
}
