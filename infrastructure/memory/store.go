// Package memory is a mutex-guarded in-memory entity store. It evaluates the
// same query AST as the database adapters and backs local runs and tests.
package memory

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"taskhub/domain/models"
	"taskhub/domain/repositories"
)

// Store holds both collections in insertion order, which is the natural
// order returned when no sort is requested.
type Store struct {
	mu sync.RWMutex

	users     map[uuid.UUID]*models.User
	userOrder []uuid.UUID
	tasks     map[uuid.UUID]*models.Task
	taskOrder []uuid.UUID
}

func NewStore() *Store {
	return &Store{
		users: make(map[uuid.UUID]*models.User),
		tasks: make(map[uuid.UUID]*models.Task),
	}
}

func (s *Store) Users() repositories.UserRepository {
	return &UserRepositoryImpl{store: s}
}

func (s *Store) Tasks() repositories.TaskRepository {
	return &TaskRepositoryImpl{store: s}
}

func (s *Store) TxManager() repositories.TxManager {
	return txManager{}
}

// txManager runs fn directly. Each repository call is atomic on its own;
// there is no rollback.
type txManager struct{}

func (txManager) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

func cloneUser(u *models.User) *models.User {
	c := *u
	c.PendingTasks = append([]uuid.UUID{}, u.PendingTasks...)
	return &c
}

func cloneTask(t *models.Task) *models.Task {
	c := *t
	if t.AssignedUser != nil {
		id := *t.AssignedUser
		c.AssignedUser = &id
	}
	return &c
}

func removeID(ids []uuid.UUID, id uuid.UUID) []uuid.UUID {
	out := ids[:0]
	for _, v := range ids {
		if v != id {
			out = append(out, v)
		}
	}
	return out
}
