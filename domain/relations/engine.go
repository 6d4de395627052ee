// Package relations computes the writes that keep User.PendingTasks and
// Task.AssignedUser/AssignedUserName consistent. Nothing here touches a
// store: callers load the entities, ask for a Plan and apply it.
package relations

import (
	"github.com/google/uuid"

	"taskhub/domain/models"
	"taskhub/pkg/apperrors"
)

var (
	ErrCompletedTask        = apperrors.BadRequest("Completed tasks cannot be assigned to a user")
	ErrCompletedAssignment  = apperrors.BadRequest("A completed task cannot be assigned to a user")
	ErrReassignCompleted    = apperrors.BadRequest("A completed task cannot be reassigned")
	ErrAssignedNameMismatch = apperrors.BadRequest("assignedUserName does not match the assigned user")
)

// PendingOp is the change applied to a user's pending set
type PendingOp int

const (
	OpAdd PendingOp = iota
	OpRemove
)

func (op PendingOp) String() string {
	if op == OpRemove {
		return "remove"
	}
	return "add"
}

// PendingChange adds or removes one task id from one user's pendingTasks
type PendingChange struct {
	UserID uuid.UUID
	TaskID uuid.UUID
	Op     PendingOp
}

// Assignment sets a task's owner. A nil UserID unassigns the task.
type Assignment struct {
	TaskID   uuid.UUID
	UserID   *uuid.UUID
	UserName string
}

// Plan is the list of counterpart writes required by one operation
type Plan struct {
	Assignments []Assignment
	Pending     []PendingChange
}

// IsEmpty reports whether the plan requires no writes
func (p Plan) IsEmpty() bool {
	return len(p.Assignments) == 0 && len(p.Pending) == 0
}

// ========== Set arithmetic ==========

// DiffAssignment returns requested−previous and previous−requested.
// Duplicates are collapsed and input order is preserved.
func DiffAssignment(previous, requested []uuid.UUID) (toAssign, toUnassign []uuid.UUID) {
	prev := toSet(previous)
	req := toSet(requested)

	for _, id := range Unique(requested) {
		if _, ok := prev[id]; !ok {
			toAssign = append(toAssign, id)
		}
	}
	for _, id := range Unique(previous) {
		if _, ok := req[id]; !ok {
			toUnassign = append(toUnassign, id)
		}
	}
	return toAssign, toUnassign
}

// Unique drops repeated ids, keeping first occurrences
func Unique(ids []uuid.UUID) []uuid.UUID {
	seen := make(map[uuid.UUID]struct{}, len(ids))
	out := make([]uuid.UUID, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

func toSet(ids []uuid.UUID) map[uuid.UUID]struct{} {
	set := make(map[uuid.UUID]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return set
}

// ========== Validation ==========

// ValidateAssignable fails when any task is completed
func ValidateAssignable(tasks []*models.Task) error {
	for _, task := range tasks {
		if task.Completed {
			return ErrCompletedTask
		}
	}
	return nil
}

// ResolveAssignedUserName returns the denormalised owner name for user
func ResolveAssignedUserName(user *models.User) string {
	if user == nil {
		return models.UnassignedUserName
	}
	return user.Name
}

// CheckAssignedUserName rejects a caller-supplied assignedUserName that
// disagrees with the resolved owner. A nil supplied value is always fine.
func CheckAssignedUserName(supplied *string, user *models.User) error {
	if supplied == nil {
		return nil
	}
	if *supplied != ResolveAssignedUserName(user) {
		return ErrAssignedNameMismatch
	}
	return nil
}

// CheckTaskTransition enforces that completed tasks never gain or change an
// owner. current is nil on create.
func CheckTaskTransition(current *models.Task, owner *uuid.UUID, completed bool) error {
	var currentOwner *uuid.UUID
	if current != nil {
		currentOwner = current.AssignedUser
	}
	changed := !sameOwner(currentOwner, owner)

	if current != nil && current.Completed && changed {
		return ErrReassignCompleted
	}
	if completed && owner != nil && changed {
		return ErrCompletedAssignment
	}
	return nil
}

// ========== Planning ==========

// TransferOwnership returns the pending-set changes for moving taskID from
// one owner to another. Either side may be nil.
func TransferOwnership(taskID uuid.UUID, from, to *uuid.UUID) []PendingChange {
	if sameOwner(from, to) {
		return nil
	}
	var changes []PendingChange
	if from != nil {
		changes = append(changes, PendingChange{UserID: *from, TaskID: taskID, Op: OpRemove})
	}
	if to != nil {
		changes = append(changes, PendingChange{UserID: *to, TaskID: taskID, Op: OpAdd})
	}
	return changes
}

// PlanTaskWrite returns the pending-set changes after a task has been
// written with newOwner and completed. A completed task is evicted from its
// owner's set; an incomplete one is (re)added, which also repairs a missing
// entry when the owner did not change.
func PlanTaskWrite(taskID uuid.UUID, previousOwner, newOwner *uuid.UUID, completed bool) Plan {
	var plan Plan
	if previousOwner != nil && !sameOwner(previousOwner, newOwner) {
		plan.Pending = append(plan.Pending, PendingChange{UserID: *previousOwner, TaskID: taskID, Op: OpRemove})
	}
	if newOwner != nil {
		op := OpAdd
		if completed {
			op = OpRemove
		}
		plan.Pending = append(plan.Pending, PendingChange{UserID: *newOwner, TaskID: taskID, Op: op})
	}
	return plan
}

// PlanTaskDelete pulls a deleted task from its owner's set
func PlanTaskDelete(task *models.Task) Plan {
	var plan Plan
	if task.AssignedUser != nil {
		plan.Pending = append(plan.Pending, PendingChange{UserID: *task.AssignedUser, TaskID: task.ID, Op: OpRemove})
	}
	return plan
}

// PlanUserPendingTasks returns the task writes after a user's pending set
// changed. Tasks in toAssign are stolen from any other owner; tasks in
// toUnassign are cleared only when this user still owns them.
func PlanUserPendingTasks(userID uuid.UUID, userName string, toAssign, toUnassign []*models.Task) Plan {
	var plan Plan
	owner := userID

	for _, task := range toUnassign {
		if !task.IsOwnedBy(userID) {
			continue
		}
		plan.Assignments = append(plan.Assignments, Assignment{
			TaskID:   task.ID,
			UserID:   nil,
			UserName: models.UnassignedUserName,
		})
	}

	for _, task := range toAssign {
		if task.AssignedUser != nil && *task.AssignedUser != userID {
			plan.Pending = append(plan.Pending, PendingChange{UserID: *task.AssignedUser, TaskID: task.ID, Op: OpRemove})
		}
		plan.Assignments = append(plan.Assignments, Assignment{
			TaskID:   task.ID,
			UserID:   &owner,
			UserName: userName,
		})
	}

	return plan
}

func sameOwner(a, b *uuid.UUID) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}
