package repositories

import (
	"context"

	"github.com/google/uuid"

	"taskhub/domain/models"
	"taskhub/domain/query"
)

type TaskRepository interface {
	// Create stores task, assigning an id when task.ID is uuid.Nil
	Create(ctx context.Context, task *models.Task) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Task, error)
	// GetByIDs returns the tasks that exist, in no particular order
	GetByIDs(ctx context.Context, ids []uuid.UUID) ([]*models.Task, error)
	Update(ctx context.Context, task *models.Task) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, q *query.Query) ([]*models.Task, error)
	Count(ctx context.Context, q *query.Query) (int64, error)

	// Assign sets the owner of one task; a nil userID unassigns it.
	// No-op when the task does not exist.
	Assign(ctx context.Context, taskID uuid.UUID, userID *uuid.UUID, userName string) error
	// RenameAssignee rewrites assignedUserName on every task of userID
	RenameAssignee(ctx context.Context, userID uuid.UUID, name string) (int64, error)
	// UnassignAll clears the owner of every task of userID
	UnassignAll(ctx context.Context, userID uuid.UUID) (int64, error)
}
