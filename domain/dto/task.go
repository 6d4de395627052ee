package dto

type CreateTaskRequest struct {
	Name             string        `json:"name" validate:"required,notblank,max=255"`
	Description      string        `json:"description" validate:"max=5000"`
	Deadline         *FlexibleTime `json:"deadline" validate:"required"`
	Completed        bool          `json:"completed"`
	AssignedUser     string        `json:"assignedUser"`
	AssignedUserName *string       `json:"assignedUserName"`
}

// UpdateTaskRequest replaces a task. Optional fields left out of the body
// keep their current value; "assignedUser": "" unassigns.
type UpdateTaskRequest struct {
	Name             string        `json:"name" validate:"required,notblank,max=255"`
	Description      *string       `json:"description" validate:"omitempty,max=5000"`
	Deadline         *FlexibleTime `json:"deadline" validate:"required"`
	Completed        *bool         `json:"completed"`
	AssignedUser     *string       `json:"assignedUser"`
	AssignedUserName *string       `json:"assignedUserName"`
}

type TaskResponse struct {
	ID               string `json:"id"`
	Name             string `json:"name"`
	Description      string `json:"description"`
	Deadline         string `json:"deadline"`
	Completed        bool   `json:"completed"`
	AssignedUser     string `json:"assignedUser"`
	AssignedUserName string `json:"assignedUserName"`
}
