package service

import (
	"context"
	"strings"
	"time"

	"alcyxob/plan-coach/internal/config"
	"alcyxob/plan-coach/internal/domain"

	"go.uber.org/zap"
)

// ActivitySummary is the projection of a completed activity sent to the model.
type ActivitySummary struct {
	Date string   `json:"date"`
	Name string   `json:"name"`
	Type string   `json:"type"`
	Load *float64 `json:"load,omitempty"`
}

// EventSummary is the projection of a planned calendar entry sent to the model.
type EventSummary struct {
	Date     string               `json:"date"`
	Name     string               `json:"name"`
	Category domain.EventCategory `json:"category"`
	Load     *float64             `json:"load,omitempty"`
}

// ContextBundle is the calendar data attached to a prompt. Nil slices mean the
// range was not requested.
type ContextBundle struct {
	History []ActivitySummary `json:"history,omitempty"`
	Planned []EventSummary    `json:"planned,omitempty"`
}

// Empty reports whether there is nothing to attach.
func (b ContextBundle) Empty() bool {
	return len(b.History) == 0 && len(b.Planned) == 0
}

// ContextSelector picks which calendar ranges to fetch for a user turn.
type ContextSelector struct {
	cfg    config.AssistantConfig
	logger *zap.Logger
	now    func() time.Time
}

// NewContextSelector creates a selector from the assistant settings.
func NewContextSelector(cfg config.AssistantConfig, logger *zap.Logger) *ContextSelector {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ContextSelector{cfg: cfg.WithDefaults(), logger: logger, now: time.Now}
}

// ForText selects context by keyword. History and future groups are independent.
func (s *ContextSelector) ForText(ctx context.Context, cal CalendarClient, athleteID, text string) ContextBundle {
	lower := strings.ToLower(text)
	var bundle ContextBundle
	if containsAny(lower, s.cfg.HistoryKeywords) {
		bundle.History = s.history(ctx, cal, athleteID)
	}
	if containsAny(lower, s.cfg.FutureKeywords) {
		days := s.cfg.FutureDays
		if containsAny(lower, s.cfg.MonthKeywords) {
			days = s.cfg.MonthDays
		}
		bundle.Planned = s.planned(ctx, cal, athleteID, days)
	}
	return bundle
}

// ForAudio selects context for a voice turn, whose content cannot be inspected.
func (s *ContextSelector) ForAudio(ctx context.Context, cal CalendarClient, athleteID string) ContextBundle {
	bundle := ContextBundle{Planned: s.planned(ctx, cal, athleteID, s.cfg.FutureDays)}
	if s.cfg.AudioIncludesHistory {
		bundle.History = s.history(ctx, cal, athleteID)
	}
	return bundle
}

func (s *ContextSelector) history(ctx context.Context, cal CalendarClient, athleteID string) []ActivitySummary {
	today := s.today()
	from := today.AddDate(0, 0, -s.cfg.HistoryDays).Format(domain.DateLayout)
	activities, err := cal.ListActivities(ctx, athleteID, from, today.Format(domain.DateLayout))
	if err != nil {
		// Missing context only makes the answer less informed.
		s.logger.Warn("[ContextSelector] listing activities failed", zap.String("athleteId", athleteID), zap.Error(err))
		return []ActivitySummary{}
	}
	out := make([]ActivitySummary, 0, len(activities))
	for _, a := range activities {
		out = append(out, ActivitySummary{Date: dayOf(a.StartDateLocal), Name: a.Name, Type: a.Type, Load: a.Load})
	}
	return out
}

func (s *ContextSelector) planned(ctx context.Context, cal CalendarClient, athleteID string, days int) []EventSummary {
	today := s.today()
	to := today.AddDate(0, 0, days).Format(domain.DateLayout)
	events, err := cal.ListEvents(ctx, athleteID, today.Format(domain.DateLayout), to)
	if err != nil {
		s.logger.Warn("[ContextSelector] listing events failed", zap.String("athleteId", athleteID), zap.Error(err))
		return []EventSummary{}
	}
	out := make([]EventSummary, 0, len(events))
	for _, e := range events {
		out = append(out, EventSummary{Date: dayOf(e.StartDateLocal), Name: e.Name, Category: e.Category, Load: e.Load})
	}
	return out
}

func (s *ContextSelector) today() time.Time {
	now := s.now()
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
}

func containsAny(text string, keywords []string) bool {
	for _, k := range keywords {
		if k != "" && strings.Contains(text, strings.ToLower(k)) {
			return true
		}
	}
	return false
}

func dayOf(startDateLocal string) string {
	if len(startDateLocal) >= len(domain.DateLayout) {
		return startDateLocal[:len(domain.DateLayout)]
	}
	return startDateLocal
}
