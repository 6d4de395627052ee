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

type UserRepositoryImpl struct {
	coll *mongo.Collection
}

func NewUserRepository(db *mongo.Database) repositories.UserRepository {
	return &UserRepositoryImpl{coll: db.Collection(UsersCollection)}
}

func (r *UserRepositoryImpl) Create(ctx context.Context, user *models.User) error {
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	_, err := r.coll.InsertOne(ctx, toUserDocument(user))
	return translate(err)
}

func (r *UserRepositoryImpl) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	return r.findOne(ctx, bson.M{"_id": id.String()})
}

func (r *UserRepositoryImpl) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.findOne(ctx, bson.M{"email": email})
}

func (r *UserRepositoryImpl) findOne(ctx context.Context, filter bson.M) (*models.User, error) {
	var doc userDocument
	if err := r.coll.FindOne(ctx, filter).Decode(&doc); err != nil {
		return nil, translate(err)
	}
	return doc.toModel(), nil
}

func (r *UserRepositoryImpl) Update(ctx context.Context, user *models.User) error {
	result, err := r.coll.UpdateOne(ctx, bson.M{"_id": user.ID.String()}, bson.M{"$set": bson.M{
		"name":         user.Name,
		"email":        user.Email,
		"pendingTasks": idStrings(user.PendingTasks),
	}})
	if err != nil {
		return translate(err)
	}
	if result.MatchedCount == 0 {
		return repositories.ErrNotFound
	}
	return nil
}

func (r *UserRepositoryImpl) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.coll.DeleteOne(ctx, bson.M{"_id": id.String()})
	if err != nil {
		return translate(err)
	}
	if result.DeletedCount == 0 {
		return repositories.ErrNotFound
	}
	return nil
}

func (r *UserRepositoryImpl) List(ctx context.Context, q *query.Query) ([]*models.User, error) {
	cursor, err := r.coll.Find(ctx, buildFilter(q), findOptions(q))
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var docs []userDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, err
	}
	users := make([]*models.User, 0, len(docs))
	for i := range docs {
		users = append(users, docs[i].toModel())
	}
	return users, nil
}

func (r *UserRepositoryImpl) Count(ctx context.Context, q *query.Query) (int64, error) {
	return r.coll.CountDocuments(ctx, buildFilter(q))
}

func (r *UserRepositoryImpl) AddPendingTask(ctx context.Context, userID, taskID uuid.UUID) error {
	_, err := r.coll.UpdateOne(ctx, bson.M{"_id": userID.String()},
		bson.M{"$addToSet": bson.M{"pendingTasks": taskID.String()}})
	return err
}

func (r *UserRepositoryImpl) RemovePendingTask(ctx context.Context, userID, taskID uuid.UUID) error {
	_, err := r.coll.UpdateOne(ctx, bson.M{"_id": userID.String()},
		bson.M{"$pull": bson.M{"pendingTasks": taskID.String()}})
	return err
}
