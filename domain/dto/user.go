package dto

type CreateUserRequest struct {
	Name         string   `json:"name" validate:"required,notblank,max=255"`
	Email        string   `json:"email" validate:"required,notblank,max=320"`
	PendingTasks []string `json:"pendingTasks" validate:"omitempty,dive,required"`
}

// UpdateUserRequest replaces a user. An absent pendingTasks keeps the
// current set; an empty list clears it.
type UpdateUserRequest struct {
	Name         string    `json:"name" validate:"required,notblank,max=255"`
	Email        string    `json:"email" validate:"required,notblank,max=320"`
	PendingTasks *[]string `json:"pendingTasks"`
}

type UserResponse struct {
	ID           string   `json:"id"`
	Name         string   `json:"name"`
	Email        string   `json:"email"`
	PendingTasks []string `json:"pendingTasks"`
}
