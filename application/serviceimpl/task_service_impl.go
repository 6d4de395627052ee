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
)

var (
	ErrTaskNotFound         = apperrors.NotFound("Task not found")
	ErrAssigneeNotFound     = apperrors.BadRequest("Assigned user not found")
	ErrTaskNameRequired     = apperrors.BadRequest("Task name is required")
	ErrTaskDeadlineRequired = apperrors.BadRequest("Task deadline is required")
)

type TaskServiceImpl struct {
	taskRepo repositories.TaskRepository
	userRepo repositories.UserRepository
	tx       repositories.TxManager
	events   ports.EventPublisher
	cache    ports.ReadCache
	writer   relationWriter
}

func NewTaskService(
	taskRepo repositories.TaskRepository,
	userRepo repositories.UserRepository,
	tx repositories.TxManager,
	events ports.EventPublisher,
	cache ports.ReadCache,
) services.TaskService {
	return &TaskServiceImpl{
		taskRepo: taskRepo,
		userRepo: userRepo,
		tx:       tx,
		events:   events,
		cache:    cache,
		writer:   relationWriter{userRepo: userRepo, taskRepo: taskRepo},
	}
}

func (s *TaskServiceImpl) ListTasks(ctx context.Context, q *query.Query) ([]*models.Task, error) {
	tasks, err := s.taskRepo.List(ctx, q)
	if err != nil {
		logger.ErrorContext(ctx, "Failed to list tasks", "error", err)
		return nil, storeError("Failed to list tasks", err)
	}
	return tasks, nil
}

func (s *TaskServiceImpl) CountTasks(ctx context.Context, q *query.Query) (int64, error) {
	count, err := s.taskRepo.Count(ctx, q)
	if err != nil {
		logger.ErrorContext(ctx, "Failed to count tasks", "error", err)
		return 0, storeError("Failed to count tasks", err)
	}
	return count, nil
}

func (s *TaskServiceImpl) GetTask(ctx context.Context, id uuid.UUID) (*models.Task, error) {
	var task models.Task
	err := s.cache.Fetch(ctx, ports.ResourceTasks, id.String(), &task, func(ctx context.Context) (any, error) {
		return s.findTask(ctx, id)
	})
	if err != nil {
		return nil, err
	}
	return &task, nil
}

func (s *TaskServiceImpl) findTask(ctx context.Context, id uuid.UUID) (*models.Task, error) {
	task, err := s.taskRepo.GetByID(ctx, id)
	if errors.Is(err, repositories.ErrNotFound) {
		return nil, ErrTaskNotFound
	}
	if err != nil {
		logger.ErrorContext(ctx, "Failed to get task", "task_id", id, "error", err)
		return nil, storeError("Failed to get task", err)
	}
	return task, nil
}

func (s *TaskServiceImpl) CreateTask(ctx context.Context, req *dto.CreateTaskRequest) (*models.Task, error) {
	name, err := validateTaskFields(req.Name, req.Deadline)
	if err != nil {
		return nil, err
	}

	owner, err := parseOwner(req.AssignedUser)
	if err != nil {
		return nil, err
	}
	if err := relations.CheckTaskTransition(nil, owner, req.Completed); err != nil {
		return nil, err
	}
	ownerUser, err := s.resolveOwner(ctx, owner)
	if err != nil {
		return nil, err
	}
	if err := relations.CheckAssignedUserName(suppliedName(req.AssignedUserName), ownerUser); err != nil {
		return nil, err
	}

	task := &models.Task{
		Name:             name,
		Description:      req.Description,
		Deadline:         req.Deadline.Time,
		Completed:        req.Completed,
		AssignedUser:     owner,
		AssignedUserName: relations.ResolveAssignedUserName(ownerUser),
	}

	err = s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		if err := s.taskRepo.Create(ctx, task); err != nil {
			return err
		}
		return s.writer.apply(ctx, relations.PlanTaskWrite(task.ID, nil, owner, task.Completed))
	})
	if err != nil {
		logger.ErrorContext(ctx, "Failed to create task", "error", err)
		return nil, storeError("Failed to create task", err)
	}

	invalidate(ctx, s.cache, ports.ResourceTasks, ports.ResourceUsers)
	publish(ctx, s.events, ports.EventTaskCreated, ports.ResourceTasks, task.ID)
	logger.InfoContext(ctx, "Task created successfully", "task_id", task.ID, "assigned_user", req.AssignedUser)

	return task, nil
}

func (s *TaskServiceImpl) UpdateTask(ctx context.Context, id uuid.UUID, req *dto.UpdateTaskRequest) (*models.Task, error) {
	name, err := validateTaskFields(req.Name, req.Deadline)
	if err != nil {
		return nil, err
	}

	current, err := s.findTask(ctx, id)
	if err != nil {
		return nil, err
	}

	owner := current.AssignedUser
	if req.AssignedUser != nil {
		if owner, err = parseOwner(*req.AssignedUser); err != nil {
			return nil, err
		}
	}
	completed := current.Completed
	if req.Completed != nil {
		completed = *req.Completed
	}

	if err := relations.CheckTaskTransition(current, owner, completed); err != nil {
		logger.WarnContext(ctx, "Rejected task transition", "task_id", id, "error", err)
		return nil, err
	}
	ownerUser, err := s.resolveOwner(ctx, owner)
	if err != nil {
		return nil, err
	}
	if err := relations.CheckAssignedUserName(suppliedName(req.AssignedUserName), ownerUser); err != nil {
		return nil, err
	}

	task := &models.Task{
		ID:               id,
		Name:             name,
		Description:      current.Description,
		Deadline:         req.Deadline.Time,
		Completed:        completed,
		AssignedUser:     owner,
		AssignedUserName: relations.ResolveAssignedUserName(ownerUser),
	}
	if req.Description != nil {
		task.Description = *req.Description
	}

	err = s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		if err := s.taskRepo.Update(ctx, task); err != nil {
			return err
		}
		return s.writer.apply(ctx, relations.PlanTaskWrite(id, current.AssignedUser, owner, completed))
	})
	if errors.Is(err, repositories.ErrNotFound) {
		return nil, ErrTaskNotFound
	}
	if err != nil {
		logger.ErrorContext(ctx, "Failed to update task", "task_id", id, "error", err)
		return nil, storeError("Failed to update task", err)
	}

	invalidate(ctx, s.cache, ports.ResourceTasks, ports.ResourceUsers)
	publish(ctx, s.events, ports.EventTaskUpdated, ports.ResourceTasks, id)
	logger.InfoContext(ctx, "Task updated successfully", "task_id", id, "completed", completed)

	return task, nil
}

func (s *TaskServiceImpl) DeleteTask(ctx context.Context, id uuid.UUID) error {
	current, err := s.findTask(ctx, id)
	if err != nil {
		return err
	}

	err = s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		if err := s.taskRepo.Delete(ctx, id); err != nil {
			return err
		}
		return s.writer.apply(ctx, relations.PlanTaskDelete(current))
	})
	if errors.Is(err, repositories.ErrNotFound) {
		return ErrTaskNotFound
	}
	if err != nil {
		logger.ErrorContext(ctx, "Failed to delete task", "task_id", id, "error", err)
		return storeError("Failed to delete task", err)
	}

	invalidate(ctx, s.cache, ports.ResourceTasks, ports.ResourceUsers)
	publish(ctx, s.events, ports.EventTaskDeleted, ports.ResourceTasks, id)
	logger.InfoContext(ctx, "Task deleted successfully", "task_id", id)

	return nil
}

// resolveOwner loads the owner; a nil id resolves to no user
func (s *TaskServiceImpl) resolveOwner(ctx context.Context, owner *uuid.UUID) (*models.User, error) {
	if owner == nil {
		return nil, nil
	}
	user, err := s.userRepo.GetByID(ctx, *owner)
	if errors.Is(err, repositories.ErrNotFound) {
		logger.WarnContext(ctx, "Assigned user not found", "user_id", *owner)
		return nil, ErrAssigneeNotFound
	}
	if err != nil {
		return nil, storeError("Failed to load assigned user", err)
	}
	return user, nil
}

func validateTaskFields(name string, deadline *dto.FlexibleTime) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", ErrTaskNameRequired
	}
	if deadline == nil || deadline.IsZero() {
		return "", ErrTaskDeadlineRequired
	}
	return name, nil
}

// suppliedName treats an empty assignedUserName as not supplied
func suppliedName(name *string) *string {
	if name == nil || *name == "" {
		return nil
	}
	return name
}
