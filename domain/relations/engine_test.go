package relations

import (
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"taskhub/domain/models"
)

func ids(n int) []uuid.UUID {
	out := make([]uuid.UUID, n)
	for i := range out {
		out[i] = uuid.New()
	}
	return out
}

func ptr(id uuid.UUID) *uuid.UUID { return &id }

func TestDiffAssignment(t *testing.T) {
	id := ids(4)

	tests := []struct {
		name       string
		previous   []uuid.UUID
		requested  []uuid.UUID
		toAssign   []uuid.UUID
		toUnassign []uuid.UUID
	}{
		{name: "both empty"},
		{name: "only additions", requested: []uuid.UUID{id[0], id[1]}, toAssign: []uuid.UUID{id[0], id[1]}},
		{name: "only removals", previous: []uuid.UUID{id[0], id[1]}, toUnassign: []uuid.UUID{id[0], id[1]}},
		{
			name:       "mixed keeps order",
			previous:   []uuid.UUID{id[0], id[1], id[2]},
			requested:  []uuid.UUID{id[3], id[1]},
			toAssign:   []uuid.UUID{id[3]},
			toUnassign: []uuid.UUID{id[0], id[2]},
		},
		{name: "unchanged", previous: []uuid.UUID{id[0]}, requested: []uuid.UUID{id[0]}},
		{name: "duplicates collapse", requested: []uuid.UUID{id[0], id[0]}, toAssign: []uuid.UUID{id[0]}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			toAssign, toUnassign := DiffAssignment(tt.previous, tt.requested)
			assert.Equal(t, tt.toAssign, toAssign)
			assert.Equal(t, tt.toUnassign, toUnassign)

			// applying both to previous yields requested
			result := map[uuid.UUID]bool{}
			for _, v := range tt.previous {
				result[v] = true
			}
			for _, v := range toUnassign {
				delete(result, v)
			}
			for _, v := range toAssign {
				assert.False(t, result[v], "toAssign and previous overlap")
				result[v] = true
			}
			want := map[uuid.UUID]bool{}
			for _, v := range tt.requested {
				want[v] = true
			}
			assert.Equal(t, want, result)
		})
	}
}

func TestValidateAssignable(t *testing.T) {
	open := &models.Task{ID: uuid.New()}
	done := &models.Task{ID: uuid.New(), Completed: true}

	assert.NoError(t, ValidateAssignable(nil))
	assert.NoError(t, ValidateAssignable([]*models.Task{open}))
	assert.True(t, errors.Is(ValidateAssignable([]*models.Task{open, done}), ErrCompletedTask))
}

func TestAssignedUserName(t *testing.T) {
	ann := &models.User{ID: uuid.New(), Name: "Ann"}

	assert.Equal(t, "Ann", ResolveAssignedUserName(ann))
	assert.Equal(t, models.UnassignedUserName, ResolveAssignedUserName(nil))

	name := func(s string) *string { return &s }
	assert.NoError(t, CheckAssignedUserName(nil, ann))
	assert.NoError(t, CheckAssignedUserName(name("Ann"), ann))
	assert.NoError(t, CheckAssignedUserName(name("unassigned"), nil))
	assert.ErrorIs(t, CheckAssignedUserName(name("Bob"), ann), ErrAssignedNameMismatch)
	assert.ErrorIs(t, CheckAssignedUserName(name("Ann"), nil), ErrAssignedNameMismatch)
}

func TestCheckTaskTransition(t *testing.T) {
	a, b := uuid.New(), uuid.New()

	tests := []struct {
		name      string
		current   *models.Task
		owner     *uuid.UUID
		completed bool
		wantErr   error
	}{
		{name: "create open assigned", owner: ptr(a)},
		{name: "create completed unassigned", completed: true},
		{name: "create completed assigned", owner: ptr(a), completed: true, wantErr: ErrCompletedAssignment},
		{name: "complete same owner", current: &models.Task{AssignedUser: ptr(a)}, owner: ptr(a), completed: true},
		{name: "complete and move", current: &models.Task{AssignedUser: ptr(a)}, owner: ptr(b), completed: true, wantErr: ErrCompletedAssignment},
		{name: "complete and unassign", current: &models.Task{AssignedUser: ptr(a)}, owner: nil, completed: true},
		{name: "move completed task", current: &models.Task{AssignedUser: ptr(a), Completed: true}, owner: ptr(b), wantErr: ErrReassignCompleted},
		{name: "clear completed task", current: &models.Task{AssignedUser: ptr(a), Completed: true}, owner: nil, completed: true, wantErr: ErrReassignCompleted},
		{name: "keep completed task", current: &models.Task{AssignedUser: ptr(a), Completed: true}, owner: ptr(a), completed: true},
		{name: "reopen and move", current: &models.Task{AssignedUser: ptr(a), Completed: true}, owner: ptr(b), completed: false, wantErr: ErrReassignCompleted},
		{name: "move open task", current: &models.Task{AssignedUser: ptr(a)}, owner: ptr(b)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := CheckTaskTransition(tt.current, tt.owner, tt.completed)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestTransferOwnership(t *testing.T) {
	task, a, b := uuid.New(), uuid.New(), uuid.New()

	changes := TransferOwnership(task, ptr(a), ptr(b))
	require.Len(t, changes, 2)
	assert.Equal(t, PendingChange{UserID: a, TaskID: task, Op: OpRemove}, changes[0])
	assert.Equal(t, PendingChange{UserID: b, TaskID: task, Op: OpAdd}, changes[1])

	assert.Empty(t, TransferOwnership(task, ptr(a), ptr(a)))
	assert.Empty(t, TransferOwnership(task, nil, nil))
	assert.Equal(t, []PendingChange{{UserID: b, TaskID: task, Op: OpAdd}}, TransferOwnership(task, nil, ptr(b)))
	assert.Equal(t, []PendingChange{{UserID: a, TaskID: task, Op: OpRemove}}, TransferOwnership(task, ptr(a), nil))
}

func TestPlanTaskWrite(t *testing.T) {
	task, a, b := uuid.New(), uuid.New(), uuid.New()

	tests := []struct {
		name      string
		previous  *uuid.UUID
		next      *uuid.UUID
		completed bool
		want      []PendingChange
	}{
		{name: "unassigned stays unassigned"},
		{name: "new owner", next: ptr(a), want: []PendingChange{{a, task, OpAdd}}},
		{name: "same owner re-adds", previous: ptr(a), next: ptr(a), want: []PendingChange{{a, task, OpAdd}}},
		{name: "transfer", previous: ptr(a), next: ptr(b), want: []PendingChange{{a, task, OpRemove}, {b, task, OpAdd}}},
		{name: "unassign", previous: ptr(a), want: []PendingChange{{a, task, OpRemove}}},
		{name: "complete evicts", previous: ptr(a), next: ptr(a), completed: true, want: []PendingChange{{a, task, OpRemove}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			plan := PlanTaskWrite(task, tt.previous, tt.next, tt.completed)
			assert.Equal(t, tt.want, plan.Pending)
			assert.Empty(t, plan.Assignments)
		})
	}
}

func TestPlanTaskDelete(t *testing.T) {
	owner := uuid.New()
	task := &models.Task{ID: uuid.New(), AssignedUser: ptr(owner)}

	assert.Equal(t, []PendingChange{{owner, task.ID, OpRemove}}, PlanTaskDelete(task).Pending)
	assert.True(t, PlanTaskDelete(&models.Task{ID: uuid.New()}).IsEmpty())
}

func TestPlanUserPendingTasks(t *testing.T) {
	me, other := uuid.New(), uuid.New()

	free := &models.Task{ID: uuid.New()}
	stolen := &models.Task{ID: uuid.New(), AssignedUser: ptr(other)}
	mine := &models.Task{ID: uuid.New(), AssignedUser: ptr(me)}
	movedAway := &models.Task{ID: uuid.New(), AssignedUser: ptr(other)}

	plan := PlanUserPendingTasks(me, "Ann", []*models.Task{free, stolen}, []*models.Task{mine, movedAway})

	require.Len(t, plan.Assignments, 3)
	assert.Equal(t, Assignment{TaskID: mine.ID, UserID: nil, UserName: models.UnassignedUserName}, plan.Assignments[0])
	assert.Equal(t, free.ID, plan.Assignments[1].TaskID)
	assert.Equal(t, me, *plan.Assignments[1].UserID)
	assert.Equal(t, "Ann", plan.Assignments[1].UserName)
	assert.Equal(t, stolen.ID, plan.Assignments[2].TaskID)

	// the task owned by someone else is not cleared, and the stolen one is
	// pulled from the previous owner
	assert.Equal(t, []PendingChange{{other, stolen.ID, OpRemove}}, plan.Pending)
}
