package mongo

import (
	"alcyxob/plan-coach/internal/domain"
	"alcyxob/plan-coach/internal/repository"
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const sessionCollectionName = "sessions"

// mongoSessionRepository keeps one document per conversation, transcript and
// pending draft embedded.
type mongoSessionRepository struct {
	collection *mongo.Collection
}

func NewMongoSessionRepository(db *mongo.Database) repository.SessionRepository {
	return &mongoSessionRepository{
		collection: db.Collection(sessionCollectionName),
	}
}

// Create inserts a new session. The ID is chosen by the caller.
func (r *mongoSessionRepository) Create(ctx context.Context, session *domain.Session) error {
	if session.ID == "" || session.AthleteID.IsZero() {
		return repository.ErrInvalidRecord
	}
	now := time.Now().UTC()
	if session.CreatedAt.IsZero() {
		session.CreatedAt = now
	}
	session.UpdatedAt = now
	if session.Turns == nil {
		session.Turns = []domain.ConversationTurn{}
	}

	_, err := r.collection.InsertOne(ctx, session)
	if mongo.IsDuplicateKeyError(err) {
		return repository.ErrDuplicateKey
	}
	return err
}

func (r *mongoSessionRepository) GetByID(ctx context.Context, id string) (*domain.Session, error) {
	var session domain.Session
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&session)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &session, nil
}

// ListByAthlete returns the athlete's most recently updated sessions first.
func (r *mongoSessionRepository) ListByAthlete(ctx context.Context, athleteID primitive.ObjectID, limit int64) ([]domain.Session, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "updatedAt", Value: -1}}).
		SetProjection(bson.M{"turns": 0})
	if limit > 0 {
		opts.SetLimit(limit)
	}

	cursor, err := r.collection.Find(ctx, bson.M{"athleteId": athleteID}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	sessions := []domain.Session{}
	if err = cursor.All(ctx, &sessions); err != nil {
		return nil, err
	}
	return sessions, nil
}

// Save replaces the stored session with session.
func (r *mongoSessionRepository) Save(ctx context.Context, session *domain.Session) error {
	if session.UpdatedAt.IsZero() {
		session.UpdatedAt = time.Now().UTC()
	}
	result, err := r.collection.ReplaceOne(ctx, bson.M{"_id": session.ID}, session)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// EnsureSessionIndexes indexes sessions by owner and recency.
func EnsureSessionIndexes(ctx context.Context, collection *mongo.Collection) error {
	_, err := collection.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "athleteId", Value: 1}, {Key: "updatedAt", Value: -1}}},
	})
	return err
}
