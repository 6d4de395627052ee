package models

import (
	"slices"

	"github.com/google/uuid"
)

type User struct {
	ID           uuid.UUID
	Name         string
	Email        string
	PendingTasks []uuid.UUID
}

// HasPendingTask reports whether taskID is in the user's pending set
func (u *User) HasPendingTask(taskID uuid.UUID) bool {
	return slices.Contains(u.PendingTasks, taskID)
}
