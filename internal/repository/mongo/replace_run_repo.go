package mongo

import (
	"alcyxob/plan-coach/internal/domain"
	"alcyxob/plan-coach/internal/repository"
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const replaceRunCollectionName = "replace_runs"

// mongoReplaceRunRepository records bulk replaces. A run without finishedAt
// was interrupted.
type mongoReplaceRunRepository struct {
	collection *mongo.Collection
}

func NewMongoReplaceRunRepository(db *mongo.Database) repository.ReplaceRunRepository {
	return &mongoReplaceRunRepository{
		collection: db.Collection(replaceRunCollectionName),
	}
}

// Create records the planned deletes and creates before any of them run.
func (r *mongoReplaceRunRepository) Create(ctx context.Context, run *domain.ReplaceRun) (primitive.ObjectID, error) {
	run.ID = primitive.NewObjectID()
	result, err := r.collection.InsertOne(ctx, run)
	if err != nil {
		return primitive.NilObjectID, err
	}
	insertedID, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		return primitive.NilObjectID, errors.New("failed to convert inserted ID")
	}
	return insertedID, nil
}

// Complete stores the outcome of a run.
func (r *mongoReplaceRunRepository) Complete(ctx context.Context, run *domain.ReplaceRun) error {
	update := bson.M{"$set": bson.M{
		"deleted":       run.Deleted,
		"deleteFailed":  run.DeleteFailed,
		"created":       run.Created,
		"failedCreates": run.FailedCreates,
		"finishedAt":    run.FinishedAt,
	}}
	result, err := r.collection.UpdateByID(ctx, run.ID, update)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// ListByAthlete returns the newest runs for a calendar athlete id.
func (r *mongoReplaceRunRepository) ListByAthlete(ctx context.Context, athleteID string, limit int64) ([]domain.ReplaceRun, error) {
	opts := options.Find().SetSort(bson.D{{Key: "startedAt", Value: -1}})
	if limit > 0 {
		opts.SetLimit(limit)
	}
	cursor, err := r.collection.Find(ctx, bson.M{"athleteId": athleteID}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	runs := []domain.ReplaceRun{}
	if err = cursor.All(ctx, &runs); err != nil {
		return nil, err
	}
	return runs, nil
}

func EnsureReplaceRunIndexes(ctx context.Context, collection *mongo.Collection) error {
	_, err := collection.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "athleteId", Value: 1}, {Key: "startedAt", Value: -1}}},
	})
	return err
}
