package repositories

import (
	"context"

	"github.com/google/uuid"

	"taskhub/domain/models"
	"taskhub/domain/query"
)

type UserRepository interface {
	// Create stores user, assigning an id when user.ID is uuid.Nil
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	// Update replaces name, email and pending tasks of an existing user
	Update(ctx context.Context, user *models.User) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, q *query.Query) ([]*models.User, error)
	Count(ctx context.Context, q *query.Query) (int64, error)

	// Pending set updates are no-ops when the user does not exist
	AddPendingTask(ctx context.Context, userID, taskID uuid.UUID) error
	RemovePendingTask(ctx context.Context, userID, taskID uuid.UUID) error
}
