package service

import (
	"context"
	"time"

	"alcyxob/plan-coach/internal/domain"
	"alcyxob/plan-coach/internal/intervals"
)

// CalendarClient is the remote calendar as seen by the services.
// *intervals.Client implements it.
type CalendarClient interface {
	ListEvents(ctx context.Context, athleteID, from, to string) ([]domain.RemoteEvent, error)
	ListActivities(ctx context.Context, athleteID, from, to string) ([]domain.Activity, error)
	GetActivityStreams(ctx context.Context, activityID string, types []string) ([]domain.Stream, error)
	CreateEvent(ctx context.Context, athleteID string, payload domain.EventPayload) (intervals.CreateResult, error)
	DeleteEvent(ctx context.Context, athleteID string, eventID int64) error
}

// CalendarFactory returns a client authenticated with apiKey.
type CalendarFactory func(apiKey string) CalendarClient

var _ CalendarClient = (*intervals.Client)(nil)

// IntervalsFactory returns a CalendarFactory building intervals.icu clients.
func IntervalsFactory(baseURL string, timeout time.Duration) CalendarFactory {
	return func(apiKey string) CalendarClient {
		return intervals.NewClient(baseURL, apiKey, timeout)
	}
}
