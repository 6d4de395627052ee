package memory

import (
	"context"

	"github.com/google/uuid"

	"taskhub/domain/models"
	"taskhub/domain/query"
	"taskhub/domain/repositories"
)

type TaskRepositoryImpl struct {
	store *Store
}

func (r *TaskRepositoryImpl) Create(ctx context.Context, task *models.Task) error {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	if task.ID == uuid.Nil {
		task.ID = uuid.New()
	}
	s.tasks[task.ID] = cloneTask(task)
	s.taskOrder = append(s.taskOrder, task.ID)
	return nil
}

func (r *TaskRepositoryImpl) GetByID(ctx context.Context, id uuid.UUID) (*models.Task, error) {
	s := r.store
	s.mu.RLock()
	defer s.mu.RUnlock()

	t, ok := s.tasks[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	return cloneTask(t), nil
}

func (r *TaskRepositoryImpl) GetByIDs(ctx context.Context, ids []uuid.UUID) ([]*models.Task, error) {
	s := r.store
	s.mu.RLock()
	defer s.mu.RUnlock()

	tasks := make([]*models.Task, 0, len(ids))
	seen := make(map[uuid.UUID]bool, len(ids))
	for _, id := range ids {
		if t, ok := s.tasks[id]; ok && !seen[id] {
			seen[id] = true
			tasks = append(tasks, cloneTask(t))
		}
	}
	return tasks, nil
}

func (r *TaskRepositoryImpl) Update(ctx context.Context, task *models.Task) error {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.tasks[task.ID]; !ok {
		return repositories.ErrNotFound
	}
	s.tasks[task.ID] = cloneTask(task)
	return nil
}

func (r *TaskRepositoryImpl) Delete(ctx context.Context, id uuid.UUID) error {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.tasks[id]; !ok {
		return repositories.ErrNotFound
	}
	delete(s.tasks, id)
	s.taskOrder = removeID(s.taskOrder, id)
	return nil
}

func (r *TaskRepositoryImpl) List(ctx context.Context, q *query.Query) ([]*models.Task, error) {
	s := r.store
	s.mu.RLock()
	defer s.mu.RUnlock()

	var rows []row
	for _, id := range s.taskOrder {
		t := s.tasks[id]
		rows = append(rows, row{doc: taskDoc(t), value: t})
	}
	rows, err := evaluate(rows, q, true)
	if err != nil {
		return nil, err
	}

	tasks := make([]*models.Task, 0, len(rows))
	for _, rw := range rows {
		tasks = append(tasks, cloneTask(rw.value.(*models.Task)))
	}
	return tasks, nil
}

func (r *TaskRepositoryImpl) Count(ctx context.Context, q *query.Query) (int64, error) {
	s := r.store
	s.mu.RLock()
	defer s.mu.RUnlock()

	var rows []row
	for _, id := range s.taskOrder {
		rows = append(rows, row{doc: taskDoc(s.tasks[id])})
	}
	rows, err := evaluate(rows, q, false)
	if err != nil {
		return 0, err
	}
	return int64(len(rows)), nil
}

func (r *TaskRepositoryImpl) Assign(ctx context.Context, taskID uuid.UUID, userID *uuid.UUID, userName string) error {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	if t, ok := s.tasks[taskID]; ok {
		setOwner(t, userID, userName)
	}
	return nil
}

func (r *TaskRepositoryImpl) RenameAssignee(ctx context.Context, userID uuid.UUID, name string) (int64, error) {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	var n int64
	for _, t := range s.tasks {
		if t.IsOwnedBy(userID) {
			t.AssignedUserName = name
			n++
		}
	}
	return n, nil
}

func (r *TaskRepositoryImpl) UnassignAll(ctx context.Context, userID uuid.UUID) (int64, error) {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	var n int64
	for _, t := range s.tasks {
		if t.IsOwnedBy(userID) {
			setOwner(t, nil, models.UnassignedUserName)
			n++
		}
	}
	return n, nil
}

func setOwner(t *models.Task, userID *uuid.UUID, userName string) {
	if userID == nil {
		t.AssignedUser = nil
	} else {
		id := *userID
		t.AssignedUser = &id
	}
	t.AssignedUserName = userName
}

func taskDoc(t *models.Task) map[string]any {
	var owner any
	if t.AssignedUser != nil {
		owner = *t.AssignedUser
	}
	return map[string]any{
		query.FieldID:               t.ID,
		query.FieldName:             t.Name,
		query.FieldDescription:      t.Description,
		query.FieldDeadline:         t.Deadline,
		query.FieldCompleted:        t.Completed,
		query.FieldAssignedUser:     owner,
		query.FieldAssignedUserName: t.AssignedUserName,
	}
}
