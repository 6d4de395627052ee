package handlers

import (
	"github.com/gofiber/fiber/v2"

	"taskhub/domain/dto"
	"taskhub/domain/query"
	"taskhub/domain/services"
	"taskhub/pkg/apperrors"
	"taskhub/pkg/logger"
	"taskhub/pkg/utils"
)

type TaskHandler struct {
	taskService services.TaskService
}

func NewTaskHandler(taskService services.TaskService) *TaskHandler {
	return &TaskHandler{
		taskService: taskService,
	}
}

func (h *TaskHandler) ListTasks(c *fiber.Ctx) error {
	ctx := c.UserContext()

	q, err := query.Parse(query.TaskSchema, listParams(c))
	if err != nil {
		return respondError(ctx, c, "Invalid list parameters", err)
	}

	if q.Count {
		count, err := h.taskService.CountTasks(ctx, q)
		if err != nil {
			return respondError(ctx, c, "Failed to count tasks", err)
		}
		return utils.SuccessResponse(c, count)
	}

	tasks, err := h.taskService.ListTasks(ctx, q)
	if err != nil {
		return respondError(ctx, c, "Failed to list tasks", err)
	}

	data, err := projectAll(q.Projection, dto.TasksToTaskResponses(tasks))
	if err != nil {
		return respondError(ctx, c, "Failed to render tasks", apperrors.Internal("Failed to render tasks", err))
	}
	return utils.SuccessResponse(c, data)
}

func (h *TaskHandler) GetTask(c *fiber.Ctx) error {
	ctx := c.UserContext()

	taskID, err := parseID(c, "Invalid task id")
	if err != nil {
		return respondError(ctx, c, "Invalid task id", err)
	}
	projection, err := query.ParseSelect(query.TaskSchema, c.Query("select"))
	if err != nil {
		return respondError(ctx, c, "Invalid select parameter", err)
	}

	task, err := h.taskService.GetTask(ctx, taskID)
	if err != nil {
		return respondError(ctx, c, "Failed to get task", err)
	}

	data, err := project(projection, dto.TaskToTaskResponse(task))
	if err != nil {
		return respondError(ctx, c, "Failed to render task", apperrors.Internal("Failed to render task", err))
	}
	return utils.SuccessResponse(c, data)
}

func (h *TaskHandler) CreateTask(c *fiber.Ctx) error {
	ctx := c.UserContext()

	var req dto.CreateTaskRequest
	if err := c.BodyParser(&req); err != nil {
		logger.WarnContext(ctx, "Invalid request body", "error", err)
		return utils.BadRequestResponse(c, "Invalid request body")
	}

	if err := utils.ValidateStruct(&req); err != nil {
		logger.WarnContext(ctx, "Validation failed", "errors", utils.GetValidationErrors(err))
		return utils.ValidationErrorResponse(c, err)
	}

	task, err := h.taskService.CreateTask(ctx, &req)
	if err != nil {
		return respondError(ctx, c, "Task creation failed", err)
	}

	return utils.CreatedResponse(c, dto.TaskToTaskResponse(task))
}

func (h *TaskHandler) UpdateTask(c *fiber.Ctx) error {
	ctx := c.UserContext()

	taskID, err := parseID(c, "Invalid task id")
	if err != nil {
		return respondError(ctx, c, "Invalid task id", err)
	}

	var req dto.UpdateTaskRequest
	if err := c.BodyParser(&req); err != nil {
		logger.WarnContext(ctx, "Invalid request body", "error", err)
		return utils.BadRequestResponse(c, "Invalid request body")
	}

	if err := utils.ValidateStruct(&req); err != nil {
		logger.WarnContext(ctx, "Validation failed", "errors", utils.GetValidationErrors(err))
		return utils.ValidationErrorResponse(c, err)
	}

	task, err := h.taskService.UpdateTask(ctx, taskID, &req)
	if err != nil {
		return respondError(ctx, c, "Task update failed", err)
	}

	return utils.SuccessResponse(c, dto.TaskToTaskResponse(task))
}

func (h *TaskHandler) DeleteTask(c *fiber.Ctx) error {
	ctx := c.UserContext()

	taskID, err := parseID(c, "Invalid task id")
	if err != nil {
		return respondError(ctx, c, "Invalid task id", err)
	}

	if err := h.taskService.DeleteTask(ctx, taskID); err != nil {
		return respondError(ctx, c, "Task deletion failed", err)
	}

	return utils.NoContentResponse(c)
}
