package postgres

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"taskhub/domain/models"
	"taskhub/domain/query"
	"taskhub/domain/repositories"
)

type TaskRepositoryImpl struct {
	db *gorm.DB
}

func NewTaskRepository(db *gorm.DB) repositories.TaskRepository {
	return &TaskRepositoryImpl{db: db}
}

func (r *TaskRepositoryImpl) Create(ctx context.Context, task *models.Task) error {
	if task.ID == uuid.Nil {
		task.ID = uuid.New()
	}
	return translate(conn(ctx, r.db).Create(toTaskRecord(task)).Error)
}

func (r *TaskRepositoryImpl) GetByID(ctx context.Context, id uuid.UUID) (*models.Task, error) {
	var rec taskRecord
	if err := conn(ctx, r.db).Where("id = ?", id).First(&rec).Error; err != nil {
		return nil, translate(err)
	}
	return rec.toModel(), nil
}

func (r *TaskRepositoryImpl) GetByIDs(ctx context.Context, ids []uuid.UUID) ([]*models.Task, error) {
	if len(ids) == 0 {
		return []*models.Task{}, nil
	}
	var recs []taskRecord
	if err := conn(ctx, r.db).Where("id IN ?", ids).Find(&recs).Error; err != nil {
		return nil, err
	}
	tasks := make([]*models.Task, 0, len(recs))
	for i := range recs {
		tasks = append(tasks, recs[i].toModel())
	}
	return tasks, nil
}

func (r *TaskRepositoryImpl) Update(ctx context.Context, task *models.Task) error {
	rec := toTaskRecord(task)
	result := conn(ctx, r.db).Model(&taskRecord{}).Where("id = ?", task.ID).Updates(map[string]interface{}{
		"name":               rec.Name,
		"description":        rec.Description,
		"deadline":           rec.Deadline,
		"completed":          rec.Completed,
		"assigned_user":      rec.AssignedUser,
		"assigned_user_name": rec.AssignedUserName,
	})
	if result.Error != nil {
		return translate(result.Error)
	}
	if result.RowsAffected == 0 {
		return repositories.ErrNotFound
	}
	return nil
}

func (r *TaskRepositoryImpl) Delete(ctx context.Context, id uuid.UUID) error {
	result := conn(ctx, r.db).Where("id = ?", id).Delete(&taskRecord{})
	if result.Error != nil {
		return translate(result.Error)
	}
	if result.RowsAffected == 0 {
		return repositories.ErrNotFound
	}
	return nil
}

func (r *TaskRepositoryImpl) List(ctx context.Context, q *query.Query) ([]*models.Task, error) {
	db, err := r.filtered(ctx, q)
	if err != nil {
		return nil, err
	}
	order, err := orderClause(taskColumns, q)
	if err != nil {
		return nil, err
	}
	db = paginate(db.Order(order), q)

	var recs []taskRecord
	if err := db.Find(&recs).Error; err != nil {
		return nil, err
	}
	tasks := make([]*models.Task, 0, len(recs))
	for i := range recs {
		tasks = append(tasks, recs[i].toModel())
	}
	return tasks, nil
}

func (r *TaskRepositoryImpl) Count(ctx context.Context, q *query.Query) (int64, error) {
	db, err := r.filtered(ctx, q)
	if err != nil {
		return 0, err
	}
	var count int64
	err = db.Count(&count).Error
	return count, err
}

func (r *TaskRepositoryImpl) filtered(ctx context.Context, q *query.Query) (*gorm.DB, error) {
	db := conn(ctx, r.db).Model(&taskRecord{})
	clause, args, err := whereClause(taskColumns, q)
	if err != nil {
		return nil, err
	}
	if clause != "" {
		db = db.Where(clause, args...)
	}
	return db, nil
}

func (r *TaskRepositoryImpl) Assign(ctx context.Context, taskID uuid.UUID, userID *uuid.UUID, userName string) error {
	return conn(ctx, r.db).Model(&taskRecord{}).Where("id = ?", taskID).Updates(map[string]interface{}{
		"assigned_user":      userID,
		"assigned_user_name": userName,
	}).Error
}

func (r *TaskRepositoryImpl) RenameAssignee(ctx context.Context, userID uuid.UUID, name string) (int64, error) {
	result := conn(ctx, r.db).Model(&taskRecord{}).
		Where("assigned_user = ?", userID).
		Update("assigned_user_name", name)
	return result.RowsAffected, result.Error
}

func (r *TaskRepositoryImpl) UnassignAll(ctx context.Context, userID uuid.UUID) (int64, error) {
	result := conn(ctx, r.db).Model(&taskRecord{}).
		Where("assigned_user = ?", userID).
		Updates(map[string]interface{}{
			"assigned_user":      nil,
			"assigned_user_name": models.UnassignedUserName,
		})
	return result.RowsAffected, result.Error
}
