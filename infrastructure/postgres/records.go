package postgres

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"taskhub/domain/models"
)

type userRecord struct {
	ID           uuid.UUID      `gorm:"type:uuid;primaryKey"`
	Name         string         `gorm:"not null"`
	Email        string         `gorm:"not null;uniqueIndex:idx_users_email"`
	PendingTasks pq.StringArray `gorm:"type:text[];not null;default:'{}'"`
	CreatedAt    time.Time      `gorm:"index"`
}

func (userRecord) TableName() string { return "users" }

type taskRecord struct {
	ID               uuid.UUID  `gorm:"type:uuid;primaryKey"`
	Name             string     `gorm:"not null"`
	Description      string     `gorm:"not null;default:''"`
	Deadline         time.Time  `gorm:"not null"`
	Completed        bool       `gorm:"not null;default:false"`
	AssignedUser     *uuid.UUID `gorm:"type:uuid;index"`
	AssignedUserName string     `gorm:"not null;default:'unassigned'"`
	CreatedAt        time.Time  `gorm:"index"`
}

func (taskRecord) TableName() string { return "tasks" }

func idStrings(ids []uuid.UUID) pq.StringArray {
	out := make(pq.StringArray, 0, len(ids))
	for _, id := range ids {
		out = append(out, id.String())
	}
	return out
}

// parseIDs skips entries that are not valid uuids
func parseIDs(raw pq.StringArray) []uuid.UUID {
	out := make([]uuid.UUID, 0, len(raw))
	for _, s := range raw {
		if id, err := uuid.Parse(s); err == nil {
			out = append(out, id)
		}
	}
	return out
}

func toUserRecord(u *models.User) *userRecord {
	return &userRecord{
		ID:           u.ID,
		Name:         u.Name,
		Email:        u.Email,
		PendingTasks: idStrings(u.PendingTasks),
	}
}

func (r *userRecord) toModel() *models.User {
	return &models.User{
		ID:           r.ID,
		Name:         r.Name,
		Email:        r.Email,
		PendingTasks: parseIDs(r.PendingTasks),
	}
}

func toTaskRecord(t *models.Task) *taskRecord {
	rec := &taskRecord{
		ID:               t.ID,
		Name:             t.Name,
		Description:      t.Description,
		Deadline:         t.Deadline.UTC(),
		Completed:        t.Completed,
		AssignedUserName: t.AssignedUserName,
	}
	if t.AssignedUser != nil {
		owner := *t.AssignedUser
		rec.AssignedUser = &owner
	}
	return rec
}

func (r *taskRecord) toModel() *models.Task {
	t := &models.Task{
		ID:               r.ID,
		Name:             r.Name,
		Description:      r.Description,
		Deadline:         r.Deadline.UTC(),
		Completed:        r.Completed,
		AssignedUserName: r.AssignedUserName,
	}
	if r.AssignedUser != nil {
		owner := *r.AssignedUser
		t.AssignedUser = &owner
	}
	return t
}
