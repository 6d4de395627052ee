package serviceimpl

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"taskhub/domain/dto"
	"taskhub/domain/models"
	"taskhub/domain/ports"
	"taskhub/domain/query"
	"taskhub/domain/relations"
	"taskhub/domain/repositories"
	"taskhub/domain/services"
	"taskhub/pkg/apperrors"
	"taskhub/pkg/logger"
)

// ReconcileServiceImpl repairs drift left behind when a multi-step write
// failed halfway on a store without transactions. It runs next to live
// traffic, so a snapshot row is only a hint: every repair re-reads the rows
// it touches and writes a conditional update or a set delta, never an
// overwrite. Running it twice changes nothing the second time.
type ReconcileServiceImpl struct {
	userRepo repositories.UserRepository
	taskRepo repositories.TaskRepository
	tx       repositories.TxManager
	cache    ports.ReadCache

	mu sync.Mutex
}

func NewReconcileService(
	userRepo repositories.UserRepository,
	taskRepo repositories.TaskRepository,
	tx repositories.TxManager,
	cache ports.ReadCache,
) services.ReconcileService {
	return &ReconcileServiceImpl{
		userRepo: userRepo,
		taskRepo: taskRepo,
		tx:       tx,
		cache:    cache,
	}
}

func (s *ReconcileServiceImpl) Reconcile(ctx context.Context) (*dto.ReconcileReport, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	report := &dto.ReconcileReport{StartedAt: time.Now().UTC()}
	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		*report = dto.ReconcileReport{StartedAt: report.StartedAt}
		return s.reconcile(ctx, report)
	})
	if err != nil {
		return nil, err
	}

	report.Duration = time.Since(report.StartedAt)
	if report.Repairs() > 0 {
		invalidate(ctx, s.cache, ports.ResourceUsers, ports.ResourceTasks)
	}
	logger.InfoContext(ctx, "Reconcile finished",
		"users", report.UsersScanned,
		"tasks", report.TasksScanned,
		"tasks_unassigned", report.TasksUnassigned,
		"task_names_fixed", report.TaskNamesFixed,
		"users_rewritten", report.UsersRewritten,
		"duration", report.Duration)

	return report, nil
}

func (s *ReconcileServiceImpl) reconcile(ctx context.Context, report *dto.ReconcileReport) error {
	// tasks first: a user created after this read still shows up below
	tasks, err := s.taskRepo.List(ctx, &query.Query{})
	if err != nil {
		return apperrors.Internal("Failed to load tasks", err)
	}
	users, err := s.userRepo.List(ctx, &query.Query{})
	if err != nil {
		return apperrors.Internal("Failed to load users", err)
	}
	report.UsersScanned = len(users)
	report.TasksScanned = len(tasks)

	usersByID := make(map[uuid.UUID]*models.User, len(users))
	for _, u := range users {
		usersByID[u.ID] = u
	}

	if err := s.repairTasks(ctx, tasks, usersByID, report); err != nil {
		return err
	}
	return s.repairPendingSets(ctx, tasks, users, report)
}

// repairTasks clears dangling owners and fixes stale assignedUserName values
func (s *ReconcileServiceImpl) repairTasks(ctx context.Context, tasks []*models.Task, usersByID map[uuid.UUID]*models.User, report *dto.ReconcileReport) error {
	dangling := make(map[uuid.UUID]bool)
	renames := make(map[uuid.UUID]int)
	for _, task := range tasks {
		if task.AssignedUser == nil {
			if task.AssignedUserName != models.UnassignedUserName {
				fixed, err := s.fixUnassignedName(ctx, task.ID)
				if err != nil {
					return err
				}
				if fixed {
					report.TaskNamesFixed++
				}
			}
			continue
		}

		ownerID := *task.AssignedUser
		owner, ok := usersByID[ownerID]
		if !ok {
			dangling[ownerID] = true
			continue
		}
		if task.AssignedUserName != relations.ResolveAssignedUserName(owner) {
			renames[ownerID]++
		}
	}

	for ownerID := range dangling {
		_, err := s.userRepo.GetByID(ctx, ownerID)
		if err == nil {
			// created after the task snapshot
			continue
		}
		if !errors.Is(err, repositories.ErrNotFound) {
			return apperrors.Internal("Failed to check task owner", err)
		}
		n, err := s.taskRepo.UnassignAll(ctx, ownerID)
		if err != nil {
			return apperrors.Internal("Failed to unassign task", err)
		}
		if n > 0 {
			logger.WarnContext(ctx, "Cleared dangling task owner", "user_id", ownerID, "tasks", n)
		}
		report.TasksUnassigned += int(n)
	}

	for ownerID, drifted := range renames {
		owner, err := s.userRepo.GetByID(ctx, ownerID)
		if errors.Is(err, repositories.ErrNotFound) {
			continue
		}
		if err != nil {
			return apperrors.Internal("Failed to load task owner", err)
		}
		if _, err := s.taskRepo.RenameAssignee(ctx, ownerID, relations.ResolveAssignedUserName(owner)); err != nil {
			return apperrors.Internal("Failed to fix assigned user name", err)
		}
		report.TaskNamesFixed += drifted
	}
	return nil
}

// fixUnassignedName resets the name of a task that is still unassigned
func (s *ReconcileServiceImpl) fixUnassignedName(ctx context.Context, taskID uuid.UUID) (bool, error) {
	current, err := s.taskRepo.GetByID(ctx, taskID)
	if errors.Is(err, repositories.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, apperrors.Internal("Failed to load task", err)
	}
	if current.AssignedUser != nil || current.AssignedUserName == models.UnassignedUserName {
		return false, nil
	}
	if err := s.taskRepo.Assign(ctx, taskID, nil, models.UnassignedUserName); err != nil {
		return false, apperrors.Internal("Failed to fix assigned user name", err)
	}
	return true, nil
}

// repairPendingSets makes each pendingTasks hold exactly the incomplete
// tasks its user owns, one add or remove at a time
func (s *ReconcileServiceImpl) repairPendingSets(ctx context.Context, tasks []*models.Task, users []*models.User, report *dto.ReconcileReport) error {
	owned := make(map[uuid.UUID][]uuid.UUID)
	for _, task := range tasks {
		if task.AssignedUser != nil && !task.Completed {
			owned[*task.AssignedUser] = append(owned[*task.AssignedUser], task.ID)
		}
	}

	for _, user := range users {
		added, removed := 0, 0
		for _, taskID := range user.PendingTasks {
			if containsID(owned[user.ID], taskID) {
				continue
			}
			pending, err := s.stillPending(ctx, user.ID, taskID)
			if err != nil {
				return err
			}
			if pending {
				continue
			}
			if err := s.userRepo.RemovePendingTask(ctx, user.ID, taskID); err != nil {
				return apperrors.Internal("Failed to remove pending task", err)
			}
			removed++
		}
		for _, taskID := range owned[user.ID] {
			if user.HasPendingTask(taskID) {
				continue
			}
			pending, err := s.stillPending(ctx, user.ID, taskID)
			if err != nil {
				return err
			}
			if !pending {
				continue
			}
			if err := s.userRepo.AddPendingTask(ctx, user.ID, taskID); err != nil {
				return apperrors.Internal("Failed to add pending task", err)
			}
			added++
		}

		if added+removed > 0 {
			logger.WarnContext(ctx, "Repaired pending tasks", "user_id", user.ID,
				"added", added, "removed", removed)
			report.UsersRewritten++
		}
	}
	return nil
}

// stillPending re-reads taskID and reports whether userID should list it
func (s *ReconcileServiceImpl) stillPending(ctx context.Context, userID, taskID uuid.UUID) (bool, error) {
	task, err := s.taskRepo.GetByID(ctx, taskID)
	if errors.Is(err, repositories.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, apperrors.Internal("Failed to load task", err)
	}
	return task.IsOwnedBy(userID) && !task.Completed, nil
}

func containsID(ids []uuid.UUID, id uuid.UUID) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}
