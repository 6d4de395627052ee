// Package messaging fans change events out to every configured sink.
package messaging

import (
	"context"
	"errors"

	"taskhub/domain/ports"
)

// FanoutPublisher delivers each event to all publishers and joins their
// errors. One failing sink does not stop delivery to the others.
type FanoutPublisher struct {
	publishers []ports.EventPublisher
}

func NewFanoutPublisher(publishers ...ports.EventPublisher) *FanoutPublisher {
	f := &FanoutPublisher{}
	for _, p := range publishers {
		if p != nil {
			f.publishers = append(f.publishers, p)
		}
	}
	return f
}

func (f *FanoutPublisher) Publish(ctx context.Context, event ports.Event) error {
	var errs []error
	for _, p := range f.publishers {
		if err := p.Publish(ctx, event); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Len returns the number of sinks
func (f *FanoutPublisher) Len() int {
	return len(f.publishers)
}

// NopPublisher discards events
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, ports.Event) error { return nil }
