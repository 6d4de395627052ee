package dto

import (
	"taskhub/domain/models"
	"taskhub/pkg/datetime"
)

func UserToUserResponse(user *models.User) *UserResponse {
	if user == nil {
		return nil
	}
	pending := make([]string, 0, len(user.PendingTasks))
	for _, id := range user.PendingTasks {
		pending = append(pending, id.String())
	}
	return &UserResponse{
		ID:           user.ID.String(),
		Name:         user.Name,
		Email:        user.Email,
		PendingTasks: pending,
	}
}

func UsersToUserResponses(users []*models.User) []*UserResponse {
	out := make([]*UserResponse, 0, len(users))
	for _, u := range users {
		out = append(out, UserToUserResponse(u))
	}
	return out
}

func TaskToTaskResponse(task *models.Task) *TaskResponse {
	if task == nil {
		return nil
	}
	resp := &TaskResponse{
		ID:               task.ID.String(),
		Name:             task.Name,
		Description:      task.Description,
		Deadline:         datetime.Format(task.Deadline),
		Completed:        task.Completed,
		AssignedUserName: task.AssignedUserName,
	}
	if task.AssignedUser != nil {
		resp.AssignedUser = task.AssignedUser.String()
	}
	if resp.AssignedUserName == "" {
		resp.AssignedUserName = models.UnassignedUserName
	}
	return resp
}

func TasksToTaskResponses(tasks []*models.Task) []*TaskResponse {
	out := make([]*TaskResponse, 0, len(tasks))
	for _, t := range tasks {
		out = append(out, TaskToTaskResponse(t))
	}
	return out
}
