package ports

import (
	"context"
	"time"
)

// EventType names a committed change, e.g. "task.updated"
type EventType string

const (
	EventUserCreated EventType = "user.created"
	EventUserUpdated EventType = "user.updated"
	EventUserDeleted EventType = "user.deleted"
	EventTaskCreated EventType = "task.created"
	EventTaskUpdated EventType = "task.updated"
	EventTaskDeleted EventType = "task.deleted"
)

const (
	ResourceUsers = "users"
	ResourceTasks = "tasks"
)

// Event is published after a write has been applied to the store
type Event struct {
	Type       EventType `json:"type"`
	Resource   string    `json:"resource"`
	ID         string    `json:"id"`
	OccurredAt time.Time `json:"occurredAt"`
}

func NewEvent(t EventType, resource, id string) Event {
	return Event{Type: t, Resource: resource, ID: id, OccurredAt: time.Now().UTC()}
}

// EventPublisher delivers change events to subscribers. Delivery is best
// effort: callers log failures and carry on.
type EventPublisher interface {
	Publish(ctx context.Context, event Event) error
}
