package service

import (
	"context"
	"testing"

	"alcyxob/plan-coach/internal/config"
	"alcyxob/plan-coach/internal/domain"
)

func newTestSelector(cfg config.AssistantConfig) *ContextSelector {
	s := NewContextSelector(cfg, nil)
	s.now = fixedClock("2025-06-10")
	return s
}

func TestForTextHistoryKeyword(t *testing.T) {
	load := 55.0
	cal := &stubCalendar{activities: []domain.Activity{{ID: "a1", StartDateLocal: "2025-06-09T07:30:00", Name: "Morning Ride", Type: "Ride", Load: &load}}}
	s := newTestSelector(config.DefaultAssistant())

	bundle := s.ForText(context.Background(), cal, "i42", "Wie lief die letzte Woche?")

	if len(cal.activityRanges) != 1 || cal.activityRanges[0] != (dateRange{"2025-06-03", "2025-06-10"}) {
		t.Fatalf("unexpected activity ranges %+v", cal.activityRanges)
	}
	if len(bundle.History) != 1 || bundle.History[0].Date != "2025-06-09" || *bundle.History[0].Load != 55 {
		t.Fatalf("unexpected history %+v", bundle.History)
	}
}

func TestForTextFutureAndMonthKeywords(t *testing.T) {
	cal := &stubCalendar{}
	s := newTestSelector(config.DefaultAssistant())

	s.ForText(context.Background(), cal, "i42", "What is on my calendar")
	s.ForText(context.Background(), cal, "i42", "Show the calendar for the next month")

	want := []dateRange{{"2025-06-10", "2025-06-24"}, {"2025-06-10", "2025-08-09"}}
	if len(cal.eventRanges) != 2 || cal.eventRanges[0] != want[0] || cal.eventRanges[1] != want[1] {
		t.Fatalf("unexpected event ranges %+v", cal.eventRanges)
	}
	if len(cal.activityRanges) != 0 {
		t.Fatalf("future questions must not fetch history")
	}
}

func TestForTextWithoutKeywordsFetchesNothing(t *testing.T) {
	cal := &stubCalendar{}
	s := newTestSelector(config.DefaultAssistant())

	bundle := s.ForText(context.Background(), cal, "i42", "Hello coach")

	if !bundle.Empty() || len(cal.eventRanges) != 0 || len(cal.activityRanges) != 0 {
		t.Fatalf("expected no context, got %+v", bundle)
	}
}

func TestForAudioHistoryIsConfigurable(t *testing.T) {
	cal := &stubCalendar{}
	cfg := config.DefaultAssistant()
	cfg.AudioIncludesHistory = false
	newTestSelector(cfg).ForAudio(context.Background(), cal, "i42")

	if len(cal.eventRanges) != 1 || len(cal.activityRanges) != 0 {
		t.Fatalf("expected future only, got events %v activities %v", cal.eventRanges, cal.activityRanges)
	}

	cal = &stubCalendar{}
	newTestSelector(config.DefaultAssistant()).ForAudio(context.Background(), cal, "i42")
	if len(cal.eventRanges) != 1 || len(cal.activityRanges) != 1 {
		t.Fatalf("expected future and history, got events %v activities %v", cal.eventRanges, cal.activityRanges)
	}
}

func TestContextReadFailureDegradesToEmpty(t *testing.T) {
	cal := &stubCalendar{listErr: errBoom}
	s := newTestSelector(config.DefaultAssistant())

	bundle := s.ForText(context.Background(), cal, "i42", "letzte Woche und nächste Woche")

	if bundle.History == nil || bundle.Planned == nil || !bundle.Empty() {
		t.Fatalf("expected requested but empty ranges, got %+v", bundle)
	}
}
