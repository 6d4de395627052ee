package memory

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"taskhub/domain/models"
	"taskhub/domain/query"
	"taskhub/domain/repositories"
)

func seedTasks(t *testing.T, repo repositories.TaskRepository, owner uuid.UUID) []*models.Task {
	t.Helper()
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	tasks := []*models.Task{
		{Name: "b", Deadline: base.Add(48 * time.Hour), AssignedUser: &owner, AssignedUserName: "Ann"},
		{Name: "a", Deadline: base, Completed: true, AssignedUserName: models.UnassignedUserName},
		{Name: "c", Deadline: base.Add(24 * time.Hour), AssignedUserName: models.UnassignedUserName},
	}
	for _, task := range tasks {
		require.NoError(t, repo.Create(context.Background(), task))
		require.NotEqual(t, uuid.Nil, task.ID)
	}
	return tasks
}

func names(tasks []*models.Task) []string {
	out := make([]string, 0, len(tasks))
	for _, t := range tasks {
		out = append(out, t.Name)
	}
	return out
}

func TestTaskRepository_ListQuery(t *testing.T) {
	ctx := context.Background()
	repo := NewStore().Tasks()
	owner := uuid.New()
	seedTasks(t, repo, owner)

	tests := []struct {
		name string
		q    *query.Query
		want []string
	}{
		{name: "natural order", q: &query.Query{}, want: []string{"b", "a", "c"}},
		{name: "equality", q: query.Where(query.Eq(query.FieldCompleted, false)), want: []string{"b", "c"}},
		{name: "unassigned", q: query.Where(query.Eq(query.FieldAssignedUser, nil)), want: []string{"a", "c"}},
		{name: "owner", q: query.Where(query.Eq(query.FieldAssignedUser, owner)), want: []string{"b"}},
		{
			name: "deadline range",
			q: query.Where(query.Condition{
				Field: query.FieldDeadline, Op: query.OpGte,
				Value: time.Date(2025, 1, 2, 0, 0, 0, 0, time.UTC),
			}),
			want: []string{"b", "c"},
		},
		{
			name: "name in",
			q:    query.Where(query.Condition{Field: query.FieldName, Op: query.OpIn, Value: []any{"a", "c"}}),
			want: []string{"a", "c"},
		},
		{
			name: "name nin",
			q:    query.Where(query.Condition{Field: query.FieldName, Op: query.OpNin, Value: []any{"a", "c"}}),
			want: []string{"b"},
		},
		{name: "sort asc", q: &query.Query{Sort: []query.SortField{{Field: query.FieldName}}}, want: []string{"a", "b", "c"}},
		{
			name: "sort by deadline desc",
			q:    &query.Query{Sort: []query.SortField{{Field: query.FieldDeadline, Descending: true}}},
			want: []string{"b", "c", "a"},
		},
		{
			name: "skip limit",
			q:    &query.Query{Sort: []query.SortField{{Field: query.FieldName}}, Skip: 1, Limit: 1},
			want: []string{"b"},
		},
		{name: "skip past end", q: &query.Query{Skip: 10}, want: []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tasks, err := repo.List(ctx, tt.q)
			require.NoError(t, err)
			assert.Equal(t, tt.want, names(tasks))
		})
	}
}

func TestTaskRepository_CountIgnoresPagination(t *testing.T) {
	repo := NewStore().Tasks()
	seedTasks(t, repo, uuid.New())

	n, err := repo.Count(context.Background(), &query.Query{Skip: 1, Limit: 1})
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)
}

func TestTaskRepository_BulkOwnerUpdates(t *testing.T) {
	ctx := context.Background()
	repo := NewStore().Tasks()
	owner := uuid.New()
	tasks := seedTasks(t, repo, owner)

	n, err := repo.RenameAssignee(ctx, owner, "Annie")
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
	got, _ := repo.GetByID(ctx, tasks[0].ID)
	assert.Equal(t, "Annie", got.AssignedUserName)

	n, err = repo.UnassignAll(ctx, owner)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
	got, _ = repo.GetByID(ctx, tasks[0].ID)
	assert.Nil(t, got.AssignedUser)
	assert.Equal(t, models.UnassignedUserName, got.AssignedUserName)

	// missing tasks are ignored
	assert.NoError(t, repo.Assign(ctx, uuid.New(), &owner, "Ann"))
}

func TestTaskRepository_ReturnsCopies(t *testing.T) {
	ctx := context.Background()
	repo := NewStore().Tasks()
	owner := uuid.New()
	tasks := seedTasks(t, repo, owner)

	got, err := repo.GetByID(ctx, tasks[0].ID)
	require.NoError(t, err)
	got.Name = "changed"
	*got.AssignedUser = uuid.New()

	again, _ := repo.GetByID(ctx, tasks[0].ID)
	assert.Equal(t, "b", again.Name)
	assert.Equal(t, owner, *again.AssignedUser)
}

func TestTaskRepository_NotFound(t *testing.T) {
	ctx := context.Background()
	repo := NewStore().Tasks()

	_, err := repo.GetByID(ctx, uuid.New())
	assert.ErrorIs(t, err, repositories.ErrNotFound)
	assert.ErrorIs(t, repo.Update(ctx, &models.Task{ID: uuid.New()}), repositories.ErrNotFound)
	assert.ErrorIs(t, repo.Delete(ctx, uuid.New()), repositories.ErrNotFound)

	found, err := repo.GetByIDs(ctx, []uuid.UUID{uuid.New()})
	require.NoError(t, err)
	assert.Empty(t, found)
}

func TestUserRepository_PendingSet(t *testing.T) {
	ctx := context.Background()
	repo := NewStore().Users()

	user := &models.User{Name: "Ann", Email: "ann@example.com"}
	require.NoError(t, repo.Create(ctx, user))
	task := uuid.New()

	require.NoError(t, repo.AddPendingTask(ctx, user.ID, task))
	require.NoError(t, repo.AddPendingTask(ctx, user.ID, task))
	got, _ := repo.GetByID(ctx, user.ID)
	assert.Equal(t, []uuid.UUID{task}, got.PendingTasks)

	require.NoError(t, repo.RemovePendingTask(ctx, user.ID, task))
	got, _ = repo.GetByID(ctx, user.ID)
	assert.Empty(t, got.PendingTasks)

	// unknown users are a no-op
	assert.NoError(t, repo.AddPendingTask(ctx, uuid.New(), task))
}

func TestUserRepository_DuplicateEmail(t *testing.T) {
	ctx := context.Background()
	repo := NewStore().Users()

	ann := &models.User{Name: "Ann", Email: "ann@example.com"}
	bob := &models.User{Name: "Bob", Email: "bob@example.com"}
	require.NoError(t, repo.Create(ctx, ann))
	require.NoError(t, repo.Create(ctx, bob))

	assert.ErrorIs(t, repo.Create(ctx, &models.User{Name: "X", Email: "ann@example.com"}), repositories.ErrDuplicateEmail)

	bob.Email = "ann@example.com"
	assert.ErrorIs(t, repo.Update(ctx, bob), repositories.ErrDuplicateEmail)

	// keeping one's own email is fine
	ann.Name = "Annie"
	assert.NoError(t, repo.Update(ctx, ann))
}

func TestUserRepository_PendingTaskFilters(t *testing.T) {
	ctx := context.Background()
	repo := NewStore().Users()
	task := uuid.New()

	ann := &models.User{Name: "Ann", Email: "ann@example.com", PendingTasks: []uuid.UUID{task}}
	bob := &models.User{Name: "Bob", Email: "bob@example.com"}
	require.NoError(t, repo.Create(ctx, ann))
	require.NoError(t, repo.Create(ctx, bob))

	users, err := repo.List(ctx, query.Where(query.Eq(query.FieldPendingTasks, task)))
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.Equal(t, "Ann", users[0].Name)

	users, err = repo.List(ctx, query.Where(query.Eq(query.FieldPendingTasks, []uuid.UUID{})))
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.Equal(t, "Bob", users[0].Name)

	n, err := repo.Count(ctx, query.Where(query.Condition{Field: query.FieldPendingTasks, Op: query.OpNe, Value: task}))
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}
