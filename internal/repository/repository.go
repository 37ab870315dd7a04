package repository

import (
	"alcyxob/plan-coach/internal/domain"
	"context"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Error constants for repository layer
var (
	ErrNotFound      = RepositoryError("not found")
	ErrUpdateFailed  = RepositoryError("update failed")
	ErrDuplicateKey  = RepositoryError("duplicate key")
	ErrInvalidRecord = RepositoryError("invalid record")
)

// RepositoryError helps distinguish repository errors
type RepositoryError string

func (e RepositoryError) Error() string {
	return string(e)
}

// AthleteRepository stores registered athletes and their calendar credentials.
type AthleteRepository interface {
	Create(ctx context.Context, athlete *domain.Athlete) (primitive.ObjectID, error)
	GetByEmail(ctx context.Context, email string) (*domain.Athlete, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Athlete, error)
	UpdateCalendarCredentials(ctx context.Context, id primitive.ObjectID, intervalsAthleteID, apiKey string) error
}

// SessionRepository stores conversation sessions. Save replaces the whole
// document; turns of one session are serialized by the caller.
type SessionRepository interface {
	Create(ctx context.Context, session *domain.Session) error
	GetByID(ctx context.Context, id string) (*domain.Session, error)
	ListByAthlete(ctx context.Context, athleteID primitive.ObjectID, limit int64) ([]domain.Session, error)
	Save(ctx context.Context, session *domain.Session) error
}

// ReplaceRunRepository is the intent log of bulk replaces.
type ReplaceRunRepository interface {
	Create(ctx context.Context, run *domain.ReplaceRun) (primitive.ObjectID, error)
	Complete(ctx context.Context, run *domain.ReplaceRun) error
	ListByAthlete(ctx context.Context, athleteID string, limit int64) ([]domain.ReplaceRun, error)
}
