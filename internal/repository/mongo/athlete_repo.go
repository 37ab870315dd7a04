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

const athleteCollectionName = "athletes"

// mongoAthleteRepository implements repository.AthleteRepository using MongoDB.
type mongoAthleteRepository struct {
	collection *mongo.Collection
}

// NewMongoAthleteRepository creates a new instance of mongoAthleteRepository.
func NewMongoAthleteRepository(db *mongo.Database) repository.AthleteRepository {
	return &mongoAthleteRepository{
		collection: db.Collection(athleteCollectionName),
	}
}

// Create inserts a new athlete.
func (r *mongoAthleteRepository) Create(ctx context.Context, athlete *domain.Athlete) (primitive.ObjectID, error) {
	if athlete.Email == "" || athlete.PasswordHash == "" {
		return primitive.NilObjectID, repository.ErrInvalidRecord
	}

	athlete.ID = primitive.NewObjectID()
	now := time.Now().UTC()
	athlete.CreatedAt = now
	athlete.UpdatedAt = now

	result, err := r.collection.InsertOne(ctx, athlete)
	if err != nil {
		// email carries a unique index
		if mongo.IsDuplicateKeyError(err) {
			return primitive.NilObjectID, repository.ErrDuplicateKey
		}
		return primitive.NilObjectID, err
	}

	insertedID, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		return primitive.NilObjectID, errors.New("failed to convert inserted ID")
	}
	return insertedID, nil
}

// GetByEmail retrieves an athlete by email address.
func (r *mongoAthleteRepository) GetByEmail(ctx context.Context, email string) (*domain.Athlete, error) {
	return r.findOne(ctx, bson.M{"email": email})
}

// GetByID retrieves an athlete by ObjectID.
func (r *mongoAthleteRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Athlete, error) {
	return r.findOne(ctx, bson.M{"_id": id})
}

func (r *mongoAthleteRepository) findOne(ctx context.Context, filter bson.M) (*domain.Athlete, error) {
	var athlete domain.Athlete
	err := r.collection.FindOne(ctx, filter).Decode(&athlete)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &athlete, nil
}

// UpdateCalendarCredentials stores the athlete's calendar id and key.
// Empty values unset the field so the configured defaults apply again.
func (r *mongoAthleteRepository) UpdateCalendarCredentials(ctx context.Context, id primitive.ObjectID, intervalsAthleteID, apiKey string) error {
	set := bson.M{"updatedAt": time.Now().UTC()}
	unset := bson.M{}
	if intervalsAthleteID != "" {
		set["intervalsAthleteId"] = intervalsAthleteID
	} else {
		unset["intervalsAthleteId"] = ""
	}
	if apiKey != "" {
		set["intervalsApiKey"] = apiKey
	} else {
		unset["intervalsApiKey"] = ""
	}
	update := bson.M{"$set": set}
	if len(unset) > 0 {
		update["$unset"] = unset
	}

	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, update)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// EnsureAthleteIndexes creates the unique email index.
func EnsureAthleteIndexes(ctx context.Context, collection *mongo.Collection) error {
	_, err := collection.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "email", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
	})
	return err
}
