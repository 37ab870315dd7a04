package service

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"slices"
	"sync"
	"testing"
	"time"

	"alcyxob/plan-coach/internal/config"
	"alcyxob/plan-coach/internal/domain"
	"alcyxob/plan-coach/internal/intervals"
)

func workoutsOn(days ...string) []domain.WorkoutProposal {
	items := make([]domain.WorkoutProposal, 0, len(days))
	for _, d := range days {
		items = append(items, domain.WorkoutProposal{Date: d, Title: "Session " + d}.WithDefaults())
	}
	return items
}

func TestReplaceDeletesOnlyWorkoutsInSpan(t *testing.T) {
	cal := &stubCalendar{events: []domain.RemoteEvent{
		{ID: 1, Category: domain.CategoryWorkout},
		{ID: 2, Category: domain.CategoryWorkout},
		{ID: 3, Category: domain.CategoryRaceA},
		{ID: 4, Category: domain.CategoryNote},
	}}
	engine := NewBulkReplaceEngine(config.DefaultAssistant(), nil, nil)

	outcome := engine.Replace(context.Background(), cal, "i42", workoutsOn("2025-06-05", "2025-06-03T18:00:00"))

	if len(cal.eventRanges) != 1 || cal.eventRanges[0] != (dateRange{"2025-06-03", "2025-06-05"}) {
		t.Fatalf("unexpected list ranges %+v", cal.eventRanges)
	}
	slices.Sort(cal.deleted)
	if !slices.Equal(cal.deleted, []int64{1, 2}) {
		t.Fatalf("expected workouts 1 and 2 deleted, got %v", cal.deleted)
	}
	if outcome.Deleted != 2 || outcome.DeleteFailed != 0 || outcome.Created != 2 || len(outcome.Failed) != 0 {
		t.Fatalf("unexpected outcome %+v", outcome)
	}
	if outcome.Span != (domain.Span{Start: "2025-06-03", End: "2025-06-05"}) {
		t.Fatalf("unexpected span %+v", outcome.Span)
	}
	// Creates run in plan order; only dates without a time get 09:00.
	if cal.created[0].StartDateLocal != "2025-06-05T09:00:00" || cal.created[1].StartDateLocal != "2025-06-03T18:00:00" {
		t.Fatalf("unexpected create order or times: %+v", cal.created)
	}
}

func TestReplaceWithoutItemsMakesNoCalls(t *testing.T) {
	cal := &stubCalendar{events: []domain.RemoteEvent{{ID: 1, Category: domain.CategoryWorkout}}}
	engine := NewBulkReplaceEngine(config.DefaultAssistant(), nil, nil)

	outcome := engine.Replace(context.Background(), cal, "i42", nil)

	if outcome.Created != 0 || outcome.Deleted != 0 || !outcome.Span.IsZero() {
		t.Fatalf("expected empty outcome, got %+v", outcome)
	}
	if len(cal.eventRanges) != 0 || len(cal.deleted) != 0 || len(cal.created) != 0 {
		t.Fatalf("expected no remote calls")
	}
}

func TestReplaceListFailureSkipsDeletesButCreates(t *testing.T) {
	cal := &stubCalendar{listErr: errBoom}
	engine := NewBulkReplaceEngine(config.DefaultAssistant(), nil, nil)

	outcome := engine.Replace(context.Background(), cal, "i42", workoutsOn("2025-06-03"))

	if outcome.Deleted != 0 || len(cal.deleted) != 0 {
		t.Fatalf("expected no deletes, got %v", cal.deleted)
	}
	if outcome.Created != 1 {
		t.Fatalf("expected create to proceed, got %+v", outcome)
	}
}

func TestReplaceCountsOnlySuccessfulCreates(t *testing.T) {
	cal := &stubCalendar{createStatus: map[string]int{"2025-06-04": 500}}
	engine := NewBulkReplaceEngine(config.DefaultAssistant(), nil, nil)

	items := workoutsOn("2025-06-03", "2025-06-04", "2025-06-05")
	outcome := engine.Replace(context.Background(), cal, "i42", items)

	if outcome.Created != 2 {
		t.Fatalf("expected 2 created, got %d", outcome.Created)
	}
	if len(outcome.Failed) != 1 || outcome.Failed[0].Date != "2025-06-04" {
		t.Fatalf("unexpected failed items %+v", outcome.Failed)
	}
	if len(cal.created) != 3 {
		t.Fatalf("expected every create attempted, got %d", len(cal.created))
	}
}

func TestReplaceDeleteFailuresDoNotAbort(t *testing.T) {
	cal := &stubCalendar{
		events: []domain.RemoteEvent{
			{ID: 1, Category: domain.CategoryWorkout},
			{ID: 2, Category: domain.CategoryWorkout},
		},
		deleteErr: map[int64]error{1: errBoom},
	}
	engine := NewBulkReplaceEngine(config.DefaultAssistant(), nil, nil)

	outcome := engine.Replace(context.Background(), cal, "i42", workoutsOn("2025-06-03"))

	if outcome.Deleted != 1 || outcome.DeleteFailed != 1 || outcome.Created != 1 {
		t.Fatalf("unexpected outcome %+v", outcome)
	}
}

func TestReplaceBoundsDeleteConcurrency(t *testing.T) {
	var events []domain.RemoteEvent
	for i := int64(1); i <= 25; i++ {
		events = append(events, domain.RemoteEvent{ID: i, Category: domain.CategoryWorkout})
	}
	cal := &stubCalendar{events: events, deleteDelay: 5 * time.Millisecond}
	cfg := config.DefaultAssistant()
	cfg.DeleteConcurrency = 3
	engine := NewBulkReplaceEngine(cfg, nil, nil)

	outcome := engine.Replace(context.Background(), cal, "i42", workoutsOn("2025-06-01", "2025-06-30"))

	if outcome.Deleted != 25 {
		t.Fatalf("expected all deletes joined, got %d", outcome.Deleted)
	}
	if cal.maxInflight > 3 {
		t.Fatalf("expected at most 3 concurrent deletes, saw %d", cal.maxInflight)
	}
	if cal.maxInflight < 2 {
		t.Fatalf("expected deletes to overlap, saw %d", cal.maxInflight)
	}
}

func TestReplaceRecordsRun(t *testing.T) {
	cal := &stubCalendar{
		events:       []domain.RemoteEvent{{ID: 7, Category: domain.CategoryWorkout}},
		createStatus: map[string]int{"2025-06-04": 422},
	}
	runs := &stubRunRepo{}
	engine := NewBulkReplaceEngine(config.DefaultAssistant(), runs, nil)

	engine.Replace(context.Background(), cal, "i42", workoutsOn("2025-06-03", "2025-06-04"))

	if len(runs.created) != 1 || !slices.Equal(runs.created[0].PlannedDeletes, []int64{7}) || len(runs.created[0].PlannedCreates) != 2 {
		t.Fatalf("unexpected planned run %+v", runs.created)
	}
	if runs.created[0].FinishedAt != nil {
		t.Fatalf("planned run must not be finished")
	}
	if len(runs.completed) != 1 {
		t.Fatalf("expected run to be completed")
	}
	done := runs.completed[0]
	if done.Deleted != 1 || done.Created != 1 || len(done.FailedCreates) != 1 || done.FinishedAt == nil {
		t.Fatalf("unexpected completed run %+v", done)
	}
}

func TestReplaceRecorderFailureDoesNotAbort(t *testing.T) {
	cal := &stubCalendar{}
	engine := NewBulkReplaceEngine(config.DefaultAssistant(), &stubRunRepo{createErr: errBoom}, nil)

	outcome := engine.Replace(context.Background(), cal, "i42", workoutsOn("2025-06-03"))

	if outcome.Created != 1 {
		t.Fatalf("expected replace to continue, got %+v", outcome)
	}
}

func TestReplaceRunsToCompletionWhenCallerCancels(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var mu sync.Mutex
	var deleted []string
	var created []domain.EventPayload
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		defer mu.Unlock()
		switch r.Method {
		case http.MethodGet:
			_, _ = io.WriteString(w, `[{"id":7,"category":"WORKOUT","start_date_local":"2025-08-02T09:00:00"}]`)
		case http.MethodDelete:
			deleted = append(deleted, r.URL.Path)
			cancel() // the client goes away in the middle of the delete phase
		case http.MethodPost:
			var payload domain.EventPayload
			_ = json.NewDecoder(r.Body).Decode(&payload)
			created = append(created, payload)
			_, _ = io.WriteString(w, `{"id":100}`)
		}
	}))
	defer srv.Close()

	engine := NewBulkReplaceEngine(config.DefaultAssistant(), nil, nil)
	outcome := engine.Replace(ctx, intervals.NewClient(srv.URL, "key", 0), "i1", workoutsOn("2025-08-01", "2025-08-03"))

	if ctx.Err() == nil {
		t.Fatalf("expected the caller context to be cancelled during the delete")
	}
	if outcome.Deleted != 1 || outcome.Created != 2 || len(outcome.Failed) != 0 {
		t.Fatalf("expected the replace to finish, got %+v", outcome)
	}
	mu.Lock()
	defer mu.Unlock()
	if len(deleted) != 1 || deleted[0] != "/athlete/i1/events/7" {
		t.Fatalf("unexpected deletes %v", deleted)
	}
	if len(created) != 2 {
		t.Fatalf("expected both workouts created, got %+v", created)
	}
}
