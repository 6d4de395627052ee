package serviceimpl

import (
	"context"
	"errors"
	"strings"

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
	"taskhub/pkg/utils"
)

var (
	ErrUserNotFound      = apperrors.NotFound("User not found")
	ErrEmailExists       = apperrors.Conflict("Email already exists")
	ErrUserNameRequired  = apperrors.BadRequest("User name is required")
	ErrUserEmailRequired = apperrors.BadRequest("User email is required")
)

type UserServiceImpl struct {
	userRepo repositories.UserRepository
	taskRepo repositories.TaskRepository
	tx       repositories.TxManager
	events   ports.EventPublisher
	cache    ports.ReadCache
	writer   relationWriter
}

func NewUserService(
	userRepo repositories.UserRepository,
	taskRepo repositories.TaskRepository,
	tx repositories.TxManager,
	events ports.EventPublisher,
	cache ports.ReadCache,
) services.UserService {
	return &UserServiceImpl{
		userRepo: userRepo,
		taskRepo: taskRepo,
		tx:       tx,
		events:   events,
		cache:    cache,
		writer:   relationWriter{userRepo: userRepo, taskRepo: taskRepo},
	}
}

func (s *UserServiceImpl) ListUsers(ctx context.Context, q *query.Query) ([]*models.User, error) {
	users, err := s.userRepo.List(ctx, q)
	if err != nil {
		logger.ErrorContext(ctx, "Failed to list users", "error", err)
		return nil, storeError("Failed to list users", err)
	}
	return users, nil
}

func (s *UserServiceImpl) CountUsers(ctx context.Context, q *query.Query) (int64, error) {
	count, err := s.userRepo.Count(ctx, q)
	if err != nil {
		logger.ErrorContext(ctx, "Failed to count users", "error", err)
		return 0, storeError("Failed to count users", err)
	}
	return count, nil
}

func (s *UserServiceImpl) GetUser(ctx context.Context, id uuid.UUID) (*models.User, error) {
	var user models.User
	err := s.cache.Fetch(ctx, ports.ResourceUsers, id.String(), &user, func(ctx context.Context) (any, error) {
		return s.findUser(ctx, id)
	})
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (s *UserServiceImpl) findUser(ctx context.Context, id uuid.UUID) (*models.User, error) {
	user, err := s.userRepo.GetByID(ctx, id)
	if errors.Is(err, repositories.ErrNotFound) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		logger.ErrorContext(ctx, "Failed to get user", "user_id", id, "error", err)
		return nil, storeError("Failed to get user", err)
	}
	return user, nil
}

func (s *UserServiceImpl) CreateUser(ctx context.Context, req *dto.CreateUserRequest) (*models.User, error) {
	name, email, err := normalizeUserFields(req.Name, req.Email)
	if err != nil {
		return nil, err
	}
	if err := s.ensureEmailFree(ctx, email, uuid.Nil); err != nil {
		return nil, err
	}

	pending, err := parseIDs("pendingTasks", req.PendingTasks)
	if err != nil {
		return nil, err
	}
	tasks, err := s.writer.loadTasks(ctx, pending)
	if err != nil {
		return nil, err
	}
	if err := relations.ValidateAssignable(tasks); err != nil {
		return nil, err
	}

	user := &models.User{
		Name:         name,
		Email:        email,
		PendingTasks: pending,
	}

	err = s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		if err := s.userRepo.Create(ctx, user); err != nil {
			return err
		}
		return s.writer.apply(ctx, relations.PlanUserPendingTasks(user.ID, user.Name, tasks, nil))
	})
	if err != nil {
		logger.ErrorContext(ctx, "Failed to create user", "email", email, "error", err)
		return nil, storeError("Failed to create user", err)
	}

	invalidate(ctx, s.cache, ports.ResourceUsers, ports.ResourceTasks)
	publish(ctx, s.events, ports.EventUserCreated, ports.ResourceUsers, user.ID)
	logger.InfoContext(ctx, "User created successfully", "user_id", user.ID, "pending_tasks", len(pending))

	return user, nil
}

func (s *UserServiceImpl) UpdateUser(ctx context.Context, id uuid.UUID, req *dto.UpdateUserRequest) (*models.User, error) {
	name, email, err := normalizeUserFields(req.Name, req.Email)
	if err != nil {
		return nil, err
	}

	current, err := s.findUser(ctx, id)
	if err != nil {
		return nil, err
	}
	if email != current.Email {
		if err := s.ensureEmailFree(ctx, email, id); err != nil {
			return nil, err
		}
	}

	requested := current.PendingTasks
	if req.PendingTasks != nil {
		if requested, err = parseIDs("pendingTasks", *req.PendingTasks); err != nil {
			return nil, err
		}
	}

	assignIDs, unassignIDs := relations.DiffAssignment(current.PendingTasks, requested)
	toAssign, err := s.writer.loadTasks(ctx, assignIDs)
	if err != nil {
		return nil, err
	}
	if err := relations.ValidateAssignable(toAssign); err != nil {
		return nil, err
	}
	// tasks that no longer exist have nothing to clear
	toUnassign, err := s.taskRepo.GetByIDs(ctx, unassignIDs)
	if err != nil {
		return nil, storeError("Failed to load tasks", err)
	}

	renamed := name != current.Name
	user := &models.User{
		ID:           id,
		Name:         name,
		Email:        email,
		PendingTasks: relations.Unique(requested),
	}

	err = s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		if err := s.userRepo.Update(ctx, user); err != nil {
			return err
		}
		if err := s.writer.apply(ctx, relations.PlanUserPendingTasks(id, name, toAssign, toUnassign)); err != nil {
			return err
		}
		if renamed {
			if _, err := s.taskRepo.RenameAssignee(ctx, id, name); err != nil {
				return err
			}
		}
		return nil
	})
	if errors.Is(err, repositories.ErrNotFound) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		logger.ErrorContext(ctx, "Failed to update user", "user_id", id, "error", err)
		return nil, storeError("Failed to update user", err)
	}

	invalidate(ctx, s.cache, ports.ResourceUsers, ports.ResourceTasks)
	publish(ctx, s.events, ports.EventUserUpdated, ports.ResourceUsers, id)
	logger.InfoContext(ctx, "User updated successfully",
		"user_id", id, "assigned", len(toAssign), "unassigned", len(toUnassign), "renamed", renamed)

	return user, nil
}

func (s *UserServiceImpl) DeleteUser(ctx context.Context, id uuid.UUID) error {
	if _, err := s.findUser(ctx, id); err != nil {
		return err
	}

	var released int64
	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		if err := s.userRepo.Delete(ctx, id); err != nil {
			return err
		}
		n, err := s.taskRepo.UnassignAll(ctx, id)
		released = n
		return err
	})
	if errors.Is(err, repositories.ErrNotFound) {
		return ErrUserNotFound
	}
	if err != nil {
		logger.ErrorContext(ctx, "Failed to delete user", "user_id", id, "error", err)
		return storeError("Failed to delete user", err)
	}

	invalidate(ctx, s.cache, ports.ResourceUsers, ports.ResourceTasks)
	publish(ctx, s.events, ports.EventUserDeleted, ports.ResourceUsers, id)
	logger.InfoContext(ctx, "User deleted successfully", "user_id", id, "tasks_released", released)

	return nil
}

func (s *UserServiceImpl) ensureEmailFree(ctx context.Context, email string, self uuid.UUID) error {
	existing, err := s.userRepo.GetByEmail(ctx, email)
	switch {
	case errors.Is(err, repositories.ErrNotFound):
		return nil
	case err != nil:
		return storeError("Failed to check email", err)
	case existing.ID != self:
		logger.WarnContext(ctx, "Email already exists", "email", email)
		return ErrEmailExists
	}
	return nil
}

func normalizeUserFields(name, email string) (string, string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", "", ErrUserNameRequired
	}
	email = utils.NormalizeEmail(email)
	if email == "" {
		return "", "", ErrUserEmailRequired
	}
	return name, email, nil
}
