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

type sessionRepository struct {
	coll *mongo.Collection
}

// NewSessionRepository builds a MongoDB-backed session repository.
func NewSessionRepository(db *mongo.Database) repository.SessionRepository {
	return &sessionRepository{coll: db.Collection(sessionsCollection)}
}

func (r *sessionRepository) Create(ctx context.Context, userID, userAgent string) (*model.Session, error) {
	now := time.Now().UTC()
	doc := sessionDoc{
		ID:        uuid.NewString(),
		UserID:    userID,
		Valid:     true,
		UserAgent: userAgent,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}
	s := doc.toModel()
	return &s, nil
}

func (r *sessionRepository) FindByID(ctx context.Context, id string) (*model.Session, error) {
	var doc sessionDoc
	if err := r.coll.FindOne(ctx, bson.D{{Key: "_id", Value: id}}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("find session: %w", err)
	}
	s := doc.toModel()
	return &s, nil
}

func (r *sessionRepository) Find(ctx context.Context, filter repository.SessionFilter) ([]model.Session, error) {
	cur, err := r.coll.Find(ctx, sessionFilter(filter), options.Find().SetSort(bson.D{{Key: "createdAt", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("find sessions: %w", err)
	}
	var docs []sessionDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode sessions: %w", err)
	}
	sessions := make([]model.Session, 0, len(docs))
	for _, d := range docs {
		sessions = append(sessions, d.toModel())
	}
	return sessions, nil
}

func (r *sessionRepository) UpdateOne(ctx context.Context, filter repository.SessionFilter, patch repository.SessionPatch) (int64, error) {
	if filter.IsEmpty() {
		return 0, repository.ErrEmptyFilter
	}
	res, err := r.coll.UpdateOne(ctx, sessionFilter(filter), sessionUpdate(patch, time.Now().UTC()))
	if err != nil {
		return 0, fmt.Errorf("update session: %w", err)
	}
	return res.MatchedCount, nil
}

func (r *sessionRepository) DeleteOne(ctx context.Context, filter repository.SessionFilter) (int64, error) {
	if filter.IsEmpty() {
		return 0, repository.ErrEmptyFilter
	}
	res, err := r.coll.DeleteOne(ctx, sessionFilter(filter))
	if err != nil {
		return 0, fmt.Errorf("delete session: %w", err)
	}
	return res.DeletedCount, nil
}
