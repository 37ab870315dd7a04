package domain

import (
	"encoding/json"
	"testing"
)

func TestSpanOfUsesMinAndMaxDay(t *testing.T) {
	items := []WorkoutProposal{
		{Date: "2025-06-03"},
		{Date: "2025-06-05"},
		{Date: "2025-06-04T17:30:00"},
	}
	span, ok := SpanOf(items)
	if !ok {
		t.Fatalf("expected span")
	}
	if span.Start != "2025-06-03" || span.End != "2025-06-05" {
		t.Fatalf("unexpected span %+v", span)
	}
}

func TestSpanOfSingleDay(t *testing.T) {
	span, ok := SpanOf([]WorkoutProposal{{Date: "2025-06-04"}, {Date: "2025-06-04T18:00:00"}})
	if !ok || span.Start != "2025-06-04" || span.End != "2025-06-04" {
		t.Fatalf("unexpected span %+v", span)
	}
}

func TestSpanOfEmpty(t *testing.T) {
	if _, ok := SpanOf(nil); ok {
		t.Fatalf("expected no span for empty list")
	}
}

func TestStartDateLocalNormalization(t *testing.T) {
	cases := []struct {
		date string
		want string
	}{
		{"2025-07-01", "2025-07-01T09:00:00"},
		{"2025-07-01T14:00:00", "2025-07-01T14:00:00"},
	}
	for _, tc := range cases {
		got := WorkoutProposal{Date: tc.date}.StartDateLocal("")
		if got != tc.want {
			t.Errorf("StartDateLocal(%q) = %q, want %q", tc.date, got, tc.want)
		}
	}
}

func TestNewWorkoutPayloadAppliesDefaults(t *testing.T) {
	payload := NewWorkoutPayload(WorkoutProposal{Date: "2025-07-01", Title: " Z2 ", DurationSeconds: 5400}, "07:30:00")
	if payload.Category != CategoryWorkout || payload.StartDateLocal != "2025-07-01T07:30:00" {
		t.Fatalf("unexpected payload %+v", payload)
	}
	if payload.Type != SportRide || payload.Duration != 5400 || payload.MovingTime != 5400 || payload.Name != "Z2" {
		t.Fatalf("defaults not applied: %+v", payload)
	}
}

func TestWithDefaultsKeepsZeroDuration(t *testing.T) {
	if got := (WorkoutProposal{Date: "2025-07-01", Title: "Rest"}).WithDefaults(); got.DurationSeconds != 0 {
		t.Fatalf("explicit zero duration must be kept, got %d", got.DurationSeconds)
	}
	if got := (WorkoutProposal{Date: "2025-07-01", Title: "Bad", DurationSeconds: -5}).WithDefaults(); got.DurationSeconds != DefaultDurationSeconds {
		t.Fatalf("negative duration must fall back to the default, got %d", got.DurationSeconds)
	}
}

func TestWorkoutPayloadWireKeys(t *testing.T) {
	body, err := json.Marshal(NewWorkoutPayload(WorkoutProposal{Date: "2025-08-01", Title: "E", DurationSeconds: 7200}, ""))
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var sent map[string]any
	if err := json.Unmarshal(body, &sent); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	for _, key := range []string{"category", "start_date_local", "name", "description", "type", "duration"} {
		if _, ok := sent[key]; !ok {
			t.Errorf("payload is missing %q: %s", key, body)
		}
	}
	if sent["duration"] != float64(7200) {
		t.Fatalf("unexpected duration %v", sent["duration"])
	}
}
