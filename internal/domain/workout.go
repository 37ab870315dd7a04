package domain

import (
	"strings"
	"time"
)

// SportType mirrors the activity types understood by the calendar service.
type SportType string

const (
	SportRide           SportType = "Ride"
	SportRun            SportType = "Run"
	SportSwim           SportType = "Swim"
	SportVirtualRide    SportType = "VirtualRide"
	SportWalk           SportType = "Walk"
	SportWeightTraining SportType = "WeightTraining"
)

const (
	DefaultSportType       = SportRide
	DefaultDurationSeconds = 3600
	DefaultStartTime       = "09:00:00"
	DateLayout             = "2006-01-02"
)

// WorkoutProposal is one planned training unit suggested by the assistant
// but not yet written to the calendar.
type WorkoutProposal struct {
	Date            string    `bson:"date" json:"date"` // YYYY-MM-DD, optionally with THH:MM:SS
	Title           string    `bson:"title" json:"title"`
	Description     string    `bson:"description,omitempty" json:"description,omitempty"`
	SportType       SportType `bson:"sportType" json:"sport_type"`
	DurationSeconds int       `bson:"durationSeconds" json:"duration_seconds"`
}

// WithDefaults fills the sport type and trims text fields. A zero duration
// is a valid value and is kept; only negative durations are reset. Callers
// that can tell a missing duration apart set DefaultDurationSeconds first.
func (w WorkoutProposal) WithDefaults() WorkoutProposal {
	w.Date = strings.TrimSpace(w.Date)
	w.Title = strings.TrimSpace(w.Title)
	if w.SportType == "" {
		w.SportType = DefaultSportType
	}
	if w.DurationSeconds < 0 {
		w.DurationSeconds = DefaultDurationSeconds
	}
	return w
}

// HasTime reports whether Date already carries a time-of-day component.
func (w WorkoutProposal) HasTime() bool {
	return strings.Contains(w.Date, "T")
}

// Day returns the calendar date part of Date.
func (w WorkoutProposal) Day() string {
	if i := strings.IndexByte(w.Date, 'T'); i >= 0 {
		return w.Date[:i]
	}
	return w.Date
}

// StartDateLocal resolves Date to the local start timestamp sent to the
// calendar. Dates without a time get defaultTime appended.
func (w WorkoutProposal) StartDateLocal(defaultTime string) string {
	if w.HasTime() {
		return w.Date
	}
	if defaultTime == "" {
		defaultTime = DefaultStartTime
	}
	return w.Date + "T" + defaultTime
}

// Span is an inclusive range of calendar days.
type Span struct {
	Start string `bson:"start" json:"start"`
	End   string `bson:"end" json:"end"`
}

// IsZero reports whether the span is unset.
func (s Span) IsZero() bool {
	return s.Start == "" && s.End == ""
}

// SpanOf returns the inclusive day range covered by items. ok is false for
// an empty list.
func SpanOf(items []WorkoutProposal) (span Span, ok bool) {
	for i, item := range items {
		day := item.Day()
		if i == 0 {
			span = Span{Start: day, End: day}
			continue
		}
		// YYYY-MM-DD compares correctly as a string
		if day < span.Start {
			span.Start = day
		}
		if day > span.End {
			span.End = day
		}
	}
	return span, len(items) > 0
}

// ValidDay reports whether day parses as YYYY-MM-DD.
func ValidDay(day string) bool {
	_, err := time.Parse(DateLayout, day)
	return err == nil
}
