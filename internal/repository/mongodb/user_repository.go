// Package mongodb implements the credential and session stores on MongoDB.
package mongodb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	apperrors "bugscape/internal/errors"
	"bugscape/internal/model"
	"bugscape/internal/repository"
)

const (
	usersCollection    = "users"
	sessionsCollection = "sessions"
)

// EnsureIndexes creates the unique email index and the session owner index.
// The unique index is what ultimately enforces one account per email.
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	_, err := db.Collection(usersCollection).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true).SetName("email_unique"),
	})
	if err != nil {
		return fmt.Errorf("create users index: %w", err)
	}

	_, err = db.Collection(sessionsCollection).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "userId", Value: 1}, {Key: "valid", Value: 1}},
	})
	if err != nil {
		return fmt.Errorf("create sessions index: %w", err)
	}
	return nil
}

type userRepository struct {
	coll *mongo.Collection
}

// NewUserRepository builds a MongoDB-backed user repository.
func NewUserRepository(db *mongo.Database) repository.UserRepository {
	return &userRepository{coll: db.Collection(usersCollection)}
}

func (r *userRepository) Create(ctx context.Context, user *model.User) error {
	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if user.CreatedAt.IsZero() {
		user.CreatedAt = now
	}
	user.UpdatedAt = now

	if _, err := r.coll.InsertOne(ctx, userToDoc(user)); err != nil {
		return translateError(err)
	}
	return nil
}

func (r *userRepository) FindByID(ctx context.Context, id string) (*model.User, error) {
	return r.findOne(ctx, bson.D{{Key: "_id", Value: id}})
}

func (r *userRepository) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	return r.findOne(ctx, bson.D{{Key: "email", Value: email}})
}

func (r *userRepository) findOne(ctx context.Context, filter bson.D) (*model.User, error) {
	var doc userDoc
	if err := r.coll.FindOne(ctx, filter).Decode(&doc); err != nil {
		return nil, translateError(err)
	}
	return doc.toModel(), nil
}

func (r *userRepository) Save(ctx context.Context, user *model.User) error {
	user.UpdatedAt = time.Now().UTC()
	res, err := r.coll.ReplaceOne(ctx, bson.D{{Key: "_id", Value: user.ID}}, userToDoc(user))
	if err != nil {
		return translateError(err)
	}
	if res.MatchedCount == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

func (r *userRepository) Delete(ctx context.Context, id string) error {
	res, err := r.coll.DeleteOne(ctx, bson.D{{Key: "_id", Value: id}})
	if err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	if res.DeletedCount == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

func (r *userRepository) List(ctx context.Context) ([]model.User, error) {
	cur, err := r.coll.Find(ctx, bson.D{}, options.Find().SetSort(bson.D{{Key: "createdAt", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	var docs []userDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode users: %w", err)
	}
	users := make([]model.User, 0, len(docs))
	for _, d := range docs {
		users = append(users, *d.toModel())
	}
	return users, nil
}

func translateError(err error) error {
	switch {
	case errors.Is(err, mongo.ErrNoDocuments):
		return apperrors.ErrNotFound
	case mongo.IsDuplicateKeyError(err):
		return apperrors.ErrDuplicateCredential
	default:
		return err
	}
}
