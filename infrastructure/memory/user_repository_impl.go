package memory

import (
	"context"

	"github.com/google/uuid"

	"taskhub/domain/models"
	"taskhub/domain/query"
	"taskhub/domain/repositories"
)

type UserRepositoryImpl struct {
	store *Store
}

func (r *UserRepositoryImpl) Create(ctx context.Context, user *models.User) error {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.emailTaken(user.Email, uuid.Nil) {
		return repositories.ErrDuplicateEmail
	}
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	if user.PendingTasks == nil {
		user.PendingTasks = []uuid.UUID{}
	}
	s.users[user.ID] = cloneUser(user)
	s.userOrder = append(s.userOrder, user.ID)
	return nil
}

func (r *UserRepositoryImpl) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	s := r.store
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.users[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	return cloneUser(u), nil
}

func (r *UserRepositoryImpl) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	s := r.store
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, id := range s.userOrder {
		if u := s.users[id]; u.Email == email {
			return cloneUser(u), nil
		}
	}
	return nil, repositories.ErrNotFound
}

func (r *UserRepositoryImpl) Update(ctx context.Context, user *models.User) error {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.users[user.ID]; !ok {
		return repositories.ErrNotFound
	}
	if s.emailTaken(user.Email, user.ID) {
		return repositories.ErrDuplicateEmail
	}
	s.users[user.ID] = cloneUser(user)
	return nil
}

func (r *UserRepositoryImpl) Delete(ctx context.Context, id uuid.UUID) error {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.users[id]; !ok {
		return repositories.ErrNotFound
	}
	delete(s.users, id)
	s.userOrder = removeID(s.userOrder, id)
	return nil
}

func (r *UserRepositoryImpl) List(ctx context.Context, q *query.Query) ([]*models.User, error) {
	s := r.store
	s.mu.RLock()
	defer s.mu.RUnlock()

	var rows []row
	for _, id := range s.userOrder {
		u := s.users[id]
		rows = append(rows, row{doc: userDoc(u), value: u})
	}
	rows, err := evaluate(rows, q, true)
	if err != nil {
		return nil, err
	}

	users := make([]*models.User, 0, len(rows))
	for _, rw := range rows {
		users = append(users, cloneUser(rw.value.(*models.User)))
	}
	return users, nil
}

func (r *UserRepositoryImpl) Count(ctx context.Context, q *query.Query) (int64, error) {
	s := r.store
	s.mu.RLock()
	defer s.mu.RUnlock()

	var rows []row
	for _, id := range s.userOrder {
		rows = append(rows, row{doc: userDoc(s.users[id])})
	}
	rows, err := evaluate(rows, q, false)
	if err != nil {
		return 0, err
	}
	return int64(len(rows)), nil
}

func (r *UserRepositoryImpl) AddPendingTask(ctx context.Context, userID, taskID uuid.UUID) error {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	if u, ok := s.users[userID]; ok && !u.HasPendingTask(taskID) {
		u.PendingTasks = append(u.PendingTasks, taskID)
	}
	return nil
}

func (r *UserRepositoryImpl) RemovePendingTask(ctx context.Context, userID, taskID uuid.UUID) error {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	if u, ok := s.users[userID]; ok {
		u.PendingTasks = removeID(u.PendingTasks, taskID)
	}
	return nil
}

// emailTaken must be called with the lock held
func (s *Store) emailTaken(email string, except uuid.UUID) bool {
	for id, u := range s.users {
		if id != except && u.Email == email {
			return true
		}
	}
	return false
}

func userDoc(u *models.User) map[string]any {
	return map[string]any{
		query.FieldID:           u.ID,
		query.FieldName:         u.Name,
		query.FieldEmail:        u.Email,
		query.FieldPendingTasks: u.PendingTasks,
	}
}
