package serviceimpl

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"taskhub/domain/models"
	"taskhub/domain/ports"
	"taskhub/domain/relations"
	"taskhub/domain/repositories"
	"taskhub/pkg/apperrors"
	"taskhub/pkg/logger"
)

// relationWriter applies relationship plans to the store
type relationWriter struct {
	userRepo repositories.UserRepository
	taskRepo repositories.TaskRepository
}

// apply runs pending-set changes before task assignments, so a stolen task
// leaves its previous owner's set before it is handed to the new owner.
func (w relationWriter) apply(ctx context.Context, plan relations.Plan) error {
	for _, change := range plan.Pending {
		var err error
		switch change.Op {
		case relations.OpAdd:
			err = w.userRepo.AddPendingTask(ctx, change.UserID, change.TaskID)
		case relations.OpRemove:
			err = w.userRepo.RemovePendingTask(ctx, change.UserID, change.TaskID)
		}
		if err != nil {
			return fmt.Errorf("%s pending task %s for user %s: %w", change.Op, change.TaskID, change.UserID, err)
		}
	}

	for _, a := range plan.Assignments {
		if err := w.taskRepo.Assign(ctx, a.TaskID, a.UserID, a.UserName); err != nil {
			return fmt.Errorf("assign task %s: %w", a.TaskID, err)
		}
	}
	return nil
}

// loadTasks fetches every id and fails with NotFound on the first one
// missing, in request order.
func (w relationWriter) loadTasks(ctx context.Context, ids []uuid.UUID) ([]*models.Task, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	found, err := w.taskRepo.GetByIDs(ctx, ids)
	if err != nil {
		return nil, apperrors.Internal("Failed to load tasks", err)
	}

	byID := make(map[uuid.UUID]*models.Task, len(found))
	for _, t := range found {
		byID[t.ID] = t
	}
	tasks := make([]*models.Task, 0, len(ids))
	for _, id := range ids {
		t, ok := byID[id]
		if !ok {
			return nil, apperrors.NotFoundf("Task %s not found", id)
		}
		tasks = append(tasks, t)
	}
	return tasks, nil
}

// parseIDs parses a list of task ids, dropping duplicates
func parseIDs(field string, raw []string) ([]uuid.UUID, error) {
	ids := make([]uuid.UUID, 0, len(raw))
	for _, s := range raw {
		id, err := uuid.Parse(s)
		if err != nil {
			return nil, apperrors.BadRequestf("Invalid task id in %s: %q", field, s)
		}
		ids = append(ids, id)
	}
	return relations.Unique(ids), nil
}

// parseOwner parses an assignedUser value; "" means unassigned
func parseOwner(raw string) (*uuid.UUID, error) {
	if raw == "" {
		return nil, nil
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return nil, apperrors.BadRequestf("Invalid assignedUser id: %q", raw)
	}
	return &id, nil
}

func storeError(msg string, err error) error {
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		return err
	}
	if errors.Is(err, repositories.ErrDuplicateEmail) {
		return ErrEmailExists
	}
	return apperrors.Internal(msg, err)
}

// ========== Side effects ==========

func publish(ctx context.Context, events ports.EventPublisher, t ports.EventType, resource string, id uuid.UUID) {
	if err := events.Publish(ctx, ports.NewEvent(t, resource, id.String())); err != nil {
		logger.WarnContext(ctx, "Failed to publish event", "type", t, "id", id, "error", err)
	}
}

func invalidate(ctx context.Context, cache ports.ReadCache, collections ...string) {
	for _, c := range collections {
		if err := cache.Invalidate(ctx, c); err != nil {
			logger.WarnContext(ctx, "Failed to invalidate cache", "collection", c, "error", err)
		}
	}
}
