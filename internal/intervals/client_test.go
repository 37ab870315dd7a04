package intervals

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"alcyxob/plan-coach/internal/domain"
)

type recordedRequest struct {
	method string
	path   string
	query  map[string]string
	user   string
	pass   string
	body   string
}

func newTestServer(t *testing.T, status int, response string, rec *recordedRequest) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		user, pass, _ := r.BasicAuth()
		query := map[string]string{}
		for key := range r.URL.Query() {
			query[key] = r.URL.Query().Get(key)
		}
		*rec = recordedRequest{method: r.Method, path: r.URL.Path, query: query, user: user, pass: pass, body: string(body)}
		w.WriteHeader(status)
		_, _ = io.WriteString(w, response)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestListEventsSendsRangeAndBasicAuth(t *testing.T) {
	var rec recordedRequest
	srv := newTestServer(t, http.StatusOK, `[{"id":11,"category":"WORKOUT","start_date_local":"2025-06-03T09:00:00","name":"Z2"},{"id":12,"category":"RACE_A","start_date_local":"2025-06-04T08:00:00","name":"Race"}]`, &rec)
	client := NewClient(srv.URL, "secret", 0)

	events, err := client.ListEvents(context.Background(), "i42", "2025-06-03", "2025-06-05")
	if err != nil {
		t.Fatalf("ListEvents: %v", err)
	}
	if rec.method != http.MethodGet || rec.path != "/athlete/i42/events" {
		t.Fatalf("unexpected request %s %s", rec.method, rec.path)
	}
	if rec.query["oldest"] != "2025-06-03" || rec.query["newest"] != "2025-06-05" {
		t.Fatalf("unexpected range query: %v", rec.query)
	}
	if rec.user != "API_KEY" || rec.pass != "secret" {
		t.Fatalf("unexpected basic auth %q/%q", rec.user, rec.pass)
	}
	if len(events) != 2 || !events[0].IsWorkout() || events[1].IsWorkout() {
		t.Fatalf("unexpected events: %+v", events)
	}
}

func TestListActivitiesReturnsStatusErrorOnNon2xx(t *testing.T) {
	var rec recordedRequest
	srv := newTestServer(t, http.StatusUnauthorized, `{"error":"bad key"}`, &rec)
	client := NewClient(srv.URL, "wrong", 0)

	activities, err := client.ListActivities(context.Background(), "i42", "2025-06-01", "2025-06-07")
	if err == nil {
		t.Fatalf("expected error, got %+v", activities)
	}
	if !strings.Contains(err.Error(), "401") {
		t.Fatalf("expected status in error, got %v", err)
	}
	if activities != nil {
		t.Fatalf("expected nil activities on failure")
	}
}

func TestGetActivityStreamsUsesDefaultTypes(t *testing.T) {
	var rec recordedRequest
	srv := newTestServer(t, http.StatusOK, `[{"type":"watts","data":[100,120]}]`, &rec)
	client := NewClient(srv.URL, "secret", 0)

	streams, err := client.GetActivityStreams(context.Background(), "i999", nil)
	if err != nil {
		t.Fatalf("GetActivityStreams: %v", err)
	}
	if rec.path != "/activity/i999/streams" || rec.query["types"] != "latlng,heartrate,watts,time" {
		t.Fatalf("unexpected request %s %v", rec.path, rec.query)
	}
	if len(streams) != 1 || streams[0].Type != "watts" || len(streams[0].Data) != 2 {
		t.Fatalf("unexpected streams: %+v", streams)
	}
}

func TestCreateEventPostsPayload(t *testing.T) {
	var rec recordedRequest
	srv := newTestServer(t, http.StatusOK, `{"id":77}`, &rec)
	client := NewClient(srv.URL, "secret", 0)

	payload := domain.NewWorkoutPayload(domain.WorkoutProposal{Date: "2025-07-01", Title: "Endurance", DurationSeconds: 5400}, "")
	result, err := client.CreateEvent(context.Background(), "i42", payload)
	if err != nil {
		t.Fatalf("CreateEvent: %v", err)
	}
	if !result.OK() || result.Body != `{"id":77}` {
		t.Fatalf("unexpected result %+v", result)
	}
	if rec.method != http.MethodPost || rec.path != "/athlete/i42/events" {
		t.Fatalf("unexpected request %s %s", rec.method, rec.path)
	}

	var sent map[string]any
	if err := json.Unmarshal([]byte(rec.body), &sent); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if sent["category"] != "WORKOUT" || sent["start_date_local"] != "2025-07-01T09:00:00" || sent["type"] != "Ride" {
		t.Fatalf("unexpected payload: %v", sent)
	}
	if sent["duration"] != float64(5400) || sent["name"] != "Endurance" {
		t.Fatalf("expected duration and name in body, got %v", sent)
	}
}

func TestCreateEventTransportFailureReportsStatusZero(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	url := srv.URL
	srv.Close()

	client := NewClient(url, "secret", 0)
	result, err := client.CreateEvent(context.Background(), "i42", domain.EventPayload{Name: "x"})
	if err == nil {
		t.Fatalf("expected transport error")
	}
	if result.StatusCode != 0 || result.Body == "" {
		t.Fatalf("expected status 0 with error text, got %+v", result)
	}
}

func TestDeleteEventDistinguishesNotFound(t *testing.T) {
	var rec recordedRequest
	srv := newTestServer(t, http.StatusNotFound, `not found`, &rec)
	client := NewClient(srv.URL, "secret", 0)

	err := client.DeleteEvent(context.Background(), "i42", 5)
	if !IsNotFound(err) {
		t.Fatalf("expected not found, got %v", err)
	}
	if rec.method != http.MethodDelete || rec.path != "/athlete/i42/events/5" {
		t.Fatalf("unexpected request %s %s", rec.method, rec.path)
	}
}
