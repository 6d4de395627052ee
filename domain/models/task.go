package models

import (
	"time"

	"github.com/google/uuid"
)

// UnassignedUserName is the denormalised owner name of a task without owner
const UnassignedUserName = "unassigned"

type Task struct {
	ID               uuid.UUID
	Name             string
	Description      string
	Deadline         time.Time
	Completed        bool
	AssignedUser     *uuid.UUID
	AssignedUserName string
}

// IsAssigned reports whether the task has an owner
func (t *Task) IsAssigned() bool {
	return t.AssignedUser != nil
}

// IsOwnedBy reports whether the task is assigned to userID
func (t *Task) IsOwnedBy(userID uuid.UUID) bool {
	return t.AssignedUser != nil && *t.AssignedUser == userID
}

// IsPending reports whether the task belongs in its owner's pending set
func (t *Task) IsPending() bool {
	return t.AssignedUser != nil && !t.Completed
}
