package mongodb

import (
	"time"

	"github.com/google/uuid"

	"taskhub/domain/models"
)

type userDocument struct {
	ID           string    `bson:"_id"`
	Name         string    `bson:"name"`
	Email        string    `bson:"email"`
	PendingTasks []string  `bson:"pendingTasks"`
	CreatedAt    time.Time `bson:"createdAt"`
}

type taskDocument struct {
	ID               string    `bson:"_id"`
	Name             string    `bson:"name"`
	Description      string    `bson:"description"`
	Deadline         time.Time `bson:"deadline"`
	Completed        bool      `bson:"completed"`
	AssignedUser     string    `bson:"assignedUser"`
	AssignedUserName string    `bson:"assignedUserName"`
	CreatedAt        time.Time `bson:"createdAt"`
}

func idStrings(ids []uuid.UUID) []string {
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		out = append(out, id.String())
	}
	return out
}

func parseIDs(raw []string) []uuid.UUID {
	out := make([]uuid.UUID, 0, len(raw))
	for _, s := range raw {
		if id, err := uuid.Parse(s); err == nil {
			out = append(out, id)
		}
	}
	return out
}

func ownerString(id *uuid.UUID) string {
	if id == nil {
		return ""
	}
	return id.String()
}

func toUserDocument(u *models.User) *userDocument {
	return &userDocument{
		ID:           u.ID.String(),
		Name:         u.Name,
		Email:        u.Email,
		PendingTasks: idStrings(u.PendingTasks),
		CreatedAt:    time.Now().UTC(),
	}
}

func (d *userDocument) toModel() *models.User {
	id, _ := uuid.Parse(d.ID)
	return &models.User{
		ID:           id,
		Name:         d.Name,
		Email:        d.Email,
		PendingTasks: parseIDs(d.PendingTasks),
	}
}

func toTaskDocument(t *models.Task) *taskDocument {
	return &taskDocument{
		ID:               t.ID.String(),
		Name:             t.Name,
		Description:      t.Description,
		Deadline:         t.Deadline.UTC(),
		Completed:        t.Completed,
		AssignedUser:     ownerString(t.AssignedUser),
		AssignedUserName: t.AssignedUserName,
		CreatedAt:        time.Now().UTC(),
	}
}

// toModel treats an unparsable owner as unassigned
func (d *taskDocument) toModel() *models.Task {
	id, _ := uuid.Parse(d.ID)
	t := &models.Task{
		ID:               id,
		Name:             d.Name,
		Description:      d.Description,
		Deadline:         d.Deadline.UTC(),
		Completed:        d.Completed,
		AssignedUserName: d.AssignedUserName,
	}
	if owner, err := uuid.Parse(d.AssignedUser); err == nil {
		t.AssignedUser = &owner
	}
	return t
}
