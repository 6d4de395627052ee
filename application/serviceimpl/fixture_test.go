package serviceimpl

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"taskhub/domain/dto"
	"taskhub/domain/models"
	"taskhub/domain/ports"
	"taskhub/domain/query"
	"taskhub/domain/services"
	"taskhub/infrastructure/memory"
	"taskhub/infrastructure/redis"
)

type recordingPublisher struct {
	mu     sync.Mutex
	events []ports.Event
}

func (p *recordingPublisher) Publish(_ context.Context, e ports.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, e)
	return nil
}

func (p *recordingPublisher) types() []ports.EventType {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]ports.EventType, 0, len(p.events))
	for _, e := range p.events {
		out = append(out, e.Type)
	}
	return out
}

type fixture struct {
	ctx    context.Context
	store  *memory.Store
	events *recordingPublisher
	users  services.UserService
	tasks  services.TaskService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := memory.NewStore()
	events := &recordingPublisher{}
	cache := redis.NewNopReadCache()
	return &fixture{
		ctx:    context.Background(),
		store:  store,
		events: events,
		users:  NewUserService(store.Users(), store.Tasks(), store.TxManager(), events, cache),
		tasks:  NewTaskService(store.Tasks(), store.Users(), store.TxManager(), events, cache),
	}
}

var deadline = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func strPtr(s string) *string { return &s }
func boolPtr(b bool) *bool    { return &b }

func (f *fixture) createUser(t *testing.T, name, email string, pending ...uuid.UUID) *models.User {
	t.Helper()
	req := &dto.CreateUserRequest{Name: name, Email: email}
	for _, id := range pending {
		req.PendingTasks = append(req.PendingTasks, id.String())
	}
	user, err := f.users.CreateUser(f.ctx, req)
	require.NoError(t, err)
	return user
}

func (f *fixture) createTask(t *testing.T, name string, owner *models.User, completed bool) *models.Task {
	t.Helper()
	req := &dto.CreateTaskRequest{Name: name, Deadline: &dto.FlexibleTime{Time: deadline}, Completed: completed}
	if owner != nil {
		req.AssignedUser = owner.ID.String()
	}
	task, err := f.tasks.CreateTask(f.ctx, req)
	require.NoError(t, err)
	return task
}

func (f *fixture) user(t *testing.T, id uuid.UUID) *models.User {
	t.Helper()
	u, err := f.store.Users().GetByID(f.ctx, id)
	require.NoError(t, err)
	return u
}

func (f *fixture) task(t *testing.T, id uuid.UUID) *models.Task {
	t.Helper()
	task, err := f.store.Tasks().GetByID(f.ctx, id)
	require.NoError(t, err)
	return task
}

// assertConsistent checks both directions of the user/task relationship
// over the whole store
func (f *fixture) assertConsistent(t *testing.T) {
	t.Helper()
	users, err := f.store.Users().List(f.ctx, &query.Query{})
	require.NoError(t, err)
	tasks, err := f.store.Tasks().List(f.ctx, &query.Query{})
	require.NoError(t, err)

	usersByID := map[uuid.UUID]*models.User{}
	for _, u := range users {
		usersByID[u.ID] = u
	}
	tasksByID := map[uuid.UUID]*models.Task{}
	for _, task := range tasks {
		tasksByID[task.ID] = task
	}

	for _, task := range tasks {
		if task.AssignedUser == nil {
			assert.Equal(t, models.UnassignedUserName, task.AssignedUserName, "task %s", task.Name)
			continue
		}
		owner, ok := usersByID[*task.AssignedUser]
		if !assert.True(t, ok, "task %s has a dangling owner", task.Name) {
			continue
		}
		assert.Equal(t, owner.Name, task.AssignedUserName, "task %s", task.Name)
		assert.Equal(t, !task.Completed, owner.HasPendingTask(task.ID), "task %s in pending set of %s", task.Name, owner.Name)
	}

	for _, u := range users {
		seen := map[uuid.UUID]bool{}
		for _, id := range u.PendingTasks {
			assert.False(t, seen[id], "duplicate pending task for %s", u.Name)
			seen[id] = true
			task, ok := tasksByID[id]
			if assert.True(t, ok, "%s lists a missing task", u.Name) {
				assert.True(t, task.IsOwnedBy(u.ID), "%s lists a task it does not own", u.Name)
				assert.False(t, task.Completed, "%s lists a completed task", u.Name)
			}
		}
	}
}
