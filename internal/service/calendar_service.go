package service

import (
	"alcyxob/plan-coach/internal/domain"
	"alcyxob/plan-coach/internal/repository"
	"context"
	"errors"
	"strings"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

var ErrInvalidRange = errors.New("oldest and newest must be YYYY-MM-DD with oldest <= newest")

// CalendarService exposes read access to an athlete's calendar and the log
// of past bulk replaces.
type CalendarService interface {
	Events(ctx context.Context, athleteID primitive.ObjectID, oldest, newest string) ([]domain.RemoteEvent, error)
	Activities(ctx context.Context, athleteID primitive.ObjectID, oldest, newest string) ([]domain.Activity, error)
	Streams(ctx context.Context, athleteID primitive.ObjectID, activityID string, types []string) ([]domain.Stream, error)
	ReplaceRuns(ctx context.Context, athleteID primitive.ObjectID) ([]domain.ReplaceRun, error)
}

type calendarService struct {
	calendars CalendarFactory
	creds     credentialResolver
	runs      repository.ReplaceRunRepository
}

const replaceRunListLimit = 20

func NewCalendarService(calendars CalendarFactory, athletes repository.AthleteRepository, runs repository.ReplaceRunRepository, fallback domain.Credentials) CalendarService {
	return &calendarService{
		calendars: calendars,
		creds:     credentialResolver{athletes: athletes, fallback: fallback},
		runs:      runs,
	}
}

// Events lists planned calendar entries. Unlike the assistant's context
// reads, errors are returned to the caller.
func (s *calendarService) Events(ctx context.Context, athleteID primitive.ObjectID, oldest, newest string) ([]domain.RemoteEvent, error) {
	if !validRange(oldest, newest) {
		return nil, ErrInvalidRange
	}
	creds, err := s.creds.resolve(ctx, athleteID)
	if err != nil {
		return nil, err
	}
	return s.calendars(creds.APIKey).ListEvents(ctx, creds.AthleteID, oldest, newest)
}

func (s *calendarService) Activities(ctx context.Context, athleteID primitive.ObjectID, oldest, newest string) ([]domain.Activity, error) {
	if !validRange(oldest, newest) {
		return nil, ErrInvalidRange
	}
	creds, err := s.creds.resolve(ctx, athleteID)
	if err != nil {
		return nil, err
	}
	return s.calendars(creds.APIKey).ListActivities(ctx, creds.AthleteID, oldest, newest)
}

func (s *calendarService) Streams(ctx context.Context, athleteID primitive.ObjectID, activityID string, types []string) ([]domain.Stream, error) {
	creds, err := s.creds.resolve(ctx, athleteID)
	if err != nil {
		return nil, err
	}
	return s.calendars(creds.APIKey).GetActivityStreams(ctx, activityID, types)
}

func (s *calendarService) ReplaceRuns(ctx context.Context, athleteID primitive.ObjectID) ([]domain.ReplaceRun, error) {
	if s.runs == nil {
		return []domain.ReplaceRun{}, nil
	}
	creds, err := s.creds.resolve(ctx, athleteID)
	if err != nil {
		return nil, err
	}
	return s.runs.ListByAthlete(ctx, creds.AthleteID, replaceRunListLimit)
}

func validRange(oldest, newest string) bool {
	return domain.ValidDay(oldest) && domain.ValidDay(newest) && strings.Compare(oldest, newest) <= 0
}
