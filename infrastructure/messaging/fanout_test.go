package messaging

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"taskhub/domain/ports"
)

type recorder struct {
	events []ports.Event
	err    error
}

func (r *recorder) Publish(_ context.Context, e ports.Event) error {
	r.events = append(r.events, e)
	return r.err
}

func TestFanoutPublisher(t *testing.T) {
	ok := &recorder{}
	broken := &recorder{err: errors.New("nats: connection closed")}
	f := NewFanoutPublisher(broken, nil, ok)

	assert.Equal(t, 2, f.Len())

	event := ports.NewEvent(ports.EventUserCreated, ports.ResourceUsers, "u1")
	err := f.Publish(context.Background(), event)

	assert.ErrorIs(t, err, broken.err)
	assert.Len(t, ok.events, 1)
	assert.Len(t, broken.events, 1)

	assert.NoError(t, NewFanoutPublisher().Publish(context.Background(), event))
	assert.NoError(t, NopPublisher{}.Publish(context.Background(), event))
}
