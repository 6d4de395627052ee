package mongodb

import (
	"context"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"taskhub/domain/models"
	"taskhub/domain/query"
	"taskhub/domain/repositories"
)

type TaskRepositoryImpl struct {
	coll *mongo.Collection
}

func NewTaskRepository(db *mongo.Database) repositories.TaskRepository {
	return &TaskRepositoryImpl{coll: db.Collection(TasksCollection)}
}

func (r *TaskRepositoryImpl) Create(ctx context.Context, task *models.Task) error {
	if task.ID == uuid.Nil {
		task.ID = uuid.New()
	}
	_, err := r.coll.InsertOne(ctx, toTaskDocument(task))
	return translate(err)
}

func (r *TaskRepositoryImpl) GetByID(ctx context.Context, id uuid.UUID) (*models.Task, error) {
	var doc taskDocument
	if err := r.coll.FindOne(ctx, bson.M{"_id": id.String()}).Decode(&doc); err != nil {
		return nil, translate(err)
	}
	return doc.toModel(), nil
}

func (r *TaskRepositoryImpl) GetByIDs(ctx context.Context, ids []uuid.UUID) ([]*models.Task, error) {
	if len(ids) == 0 {
		return []*models.Task{}, nil
	}
	return r.find(ctx, bson.M{"_id": bson.M{"$in": idStrings(ids)}}, nil)
}

func (r *TaskRepositoryImpl) Update(ctx context.Context, task *models.Task) error {
	doc := toTaskDocument(task)
	result, err := r.coll.UpdateOne(ctx, bson.M{"_id": doc.ID}, bson.M{"$set": bson.M{
		"name":             doc.Name,
		"description":      doc.Description,
		"deadline":         doc.Deadline,
		"completed":        doc.Completed,
		"assignedUser":     doc.AssignedUser,
		"assignedUserName": doc.AssignedUserName,
	}})
	if err != nil {
		return translate(err)
	}
	if result.MatchedCount == 0 {
		return repositories.ErrNotFound
	}
	return nil
}

func (r *TaskRepositoryImpl) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.coll.DeleteOne(ctx, bson.M{"_id": id.String()})
	if err != nil {
		return translate(err)
	}
	if result.DeletedCount == 0 {
		return repositories.ErrNotFound
	}
	return nil
}

func (r *TaskRepositoryImpl) List(ctx context.Context, q *query.Query) ([]*models.Task, error) {
	return r.find(ctx, buildFilter(q), q)
}

func (r *TaskRepositoryImpl) find(ctx context.Context, filter bson.M, q *query.Query) ([]*models.Task, error) {
	cursor, err := r.coll.Find(ctx, filter, findOptions(q))
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var docs []taskDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, err
	}
	tasks := make([]*models.Task, 0, len(docs))
	for i := range docs {
		tasks = append(tasks, docs[i].toModel())
	}
	return tasks, nil
}

func (r *TaskRepositoryImpl) Count(ctx context.Context, q *query.Query) (int64, error) {
	return r.coll.CountDocuments(ctx, buildFilter(q))
}

func (r *TaskRepositoryImpl) Assign(ctx context.Context, taskID uuid.UUID, userID *uuid.UUID, userName string) error {
	_, err := r.coll.UpdateOne(ctx, bson.M{"_id": taskID.String()}, bson.M{"$set": bson.M{
		"assignedUser":     ownerString(userID),
		"assignedUserName": userName,
	}})
	return err
}

func (r *TaskRepositoryImpl) RenameAssignee(ctx context.Context, userID uuid.UUID, name string) (int64, error) {
	result, err := r.coll.UpdateMany(ctx, bson.M{"assignedUser": userID.String()},
		bson.M{"$set": bson.M{"assignedUserName": name}})
	if err != nil {
		return 0, err
	}
	return result.MatchedCount, nil
}

func (r *TaskRepositoryImpl) UnassignAll(ctx context.Context, userID uuid.UUID) (int64, error) {
	result, err := r.coll.UpdateMany(ctx, bson.M{"assignedUser": userID.String()}, bson.M{"$set": bson.M{
		"assignedUser":     "",
		"assignedUserName": models.UnassignedUserName,
	}})
	if err != nil {
		return 0, err
	}
	return result.MatchedCount, nil
}
