package postgres

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"taskhub/domain/models"
	"taskhub/domain/query"
	"taskhub/domain/repositories"
)

type UserRepositoryImpl struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) repositories.UserRepository {
	return &UserRepositoryImpl{db: db}
}

func (r *UserRepositoryImpl) Create(ctx context.Context, user *models.User) error {
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	return translate(conn(ctx, r.db).Create(toUserRecord(user)).Error)
}

func (r *UserRepositoryImpl) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	var rec userRecord
	if err := conn(ctx, r.db).Where("id = ?", id).First(&rec).Error; err != nil {
		return nil, translate(err)
	}
	return rec.toModel(), nil
}

func (r *UserRepositoryImpl) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	var rec userRecord
	if err := conn(ctx, r.db).Where("email = ?", email).First(&rec).Error; err != nil {
		return nil, translate(err)
	}
	return rec.toModel(), nil
}

func (r *UserRepositoryImpl) Update(ctx context.Context, user *models.User) error {
	result := conn(ctx, r.db).Model(&userRecord{}).Where("id = ?", user.ID).Updates(map[string]interface{}{
		"name":          user.Name,
		"email":         user.Email,
		"pending_tasks": idStrings(user.PendingTasks),
	})
	if result.Error != nil {
		return translate(result.Error)
	}
	if result.RowsAffected == 0 {
		return repositories.ErrNotFound
	}
	return nil
}

func (r *UserRepositoryImpl) Delete(ctx context.Context, id uuid.UUID) error {
	result := conn(ctx, r.db).Where("id = ?", id).Delete(&userRecord{})
	if result.Error != nil {
		return translate(result.Error)
	}
	if result.RowsAffected == 0 {
		return repositories.ErrNotFound
	}
	return nil
}

func (r *UserRepositoryImpl) List(ctx context.Context, q *query.Query) ([]*models.User, error) {
	db, err := r.filtered(ctx, q)
	if err != nil {
		return nil, err
	}
	order, err := orderClause(userColumns, q)
	if err != nil {
		return nil, err
	}
	db = paginate(db.Order(order), q)

	var recs []userRecord
	if err := db.Find(&recs).Error; err != nil {
		return nil, err
	}
	users := make([]*models.User, 0, len(recs))
	for i := range recs {
		users = append(users, recs[i].toModel())
	}
	return users, nil
}

func (r *UserRepositoryImpl) Count(ctx context.Context, q *query.Query) (int64, error) {
	db, err := r.filtered(ctx, q)
	if err != nil {
		return 0, err
	}
	var count int64
	err = db.Count(&count).Error
	return count, err
}

func (r *UserRepositoryImpl) filtered(ctx context.Context, q *query.Query) (*gorm.DB, error) {
	db := conn(ctx, r.db).Model(&userRecord{})
	clause, args, err := whereClause(userColumns, q)
	if err != nil {
		return nil, err
	}
	if clause != "" {
		db = db.Where(clause, args...)
	}
	return db, nil
}

func (r *UserRepositoryImpl) AddPendingTask(ctx context.Context, userID, taskID uuid.UUID) error {
	id := taskID.String()
	return conn(ctx, r.db).Model(&userRecord{}).
		Where("id = ? AND NOT (?::text = ANY(pending_tasks))", userID, id).
		Update("pending_tasks", gorm.Expr("array_append(pending_tasks, ?::text)", id)).Error
}

func (r *UserRepositoryImpl) RemovePendingTask(ctx context.Context, userID, taskID uuid.UUID) error {
	return conn(ctx, r.db).Model(&userRecord{}).
		Where("id = ?", userID).
		Update("pending_tasks", gorm.Expr("array_remove(pending_tasks, ?::text)", taskID.String())).Error
}

func paginate(db *gorm.DB, q *query.Query) *gorm.DB {
	if q == nil {
		return db
	}
	if q.Skip > 0 {
		db = db.Offset(q.Skip)
	}
	if q.Limit > 0 {
		db = db.Limit(q.Limit)
	}
	return db
}
