package service

import (
	"alcyxob/plan-coach/internal/domain"
	"alcyxob/plan-coach/internal/repository"
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// credentialResolver finds the calendar credentials of an athlete, falling
// back to the configured defaults for anything the athlete has not stored.
type credentialResolver struct {
	athletes repository.AthleteRepository
	fallback domain.Credentials
}

func (r credentialResolver) resolve(ctx context.Context, athleteID primitive.ObjectID) (domain.Credentials, error) {
	athlete, err := r.athletes.GetByID(ctx, athleteID)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return domain.Credentials{}, err
	}
	creds := athlete.Credentials(r.fallback) // nil athlete keeps the fallback
	if !creds.Complete() {
		return creds, ErrMissingCredentials
	}
	return creds, nil
}
