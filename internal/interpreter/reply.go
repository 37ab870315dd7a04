// Package interpreter turns the model's free-text reply into an intent.
package interpreter

import (
	"encoding/json"
	"strconv"
	"strings"

	"alcyxob/plan-coach/internal/domain"
)

// Intent is what the assistant wants to happen after a reply.
type Intent string

const (
	IntentChat    Intent = "chat"
	IntentPropose Intent = "propose"
	IntentCreate  Intent = "create"
)

// Reply is the structured reading of one model reply.
type Reply struct {
	Intent Intent
	// Text is shown to the athlete: the chat message, the plan summary or
	// the create confirmation.
	Text     string
	Workouts []domain.WorkoutProposal // IntentPropose
	Workout  domain.WorkoutProposal   // IntentCreate
}

type rawWorkout struct {
	Date            string          `json:"date"`
	Title           string          `json:"title"`
	Name            string          `json:"name"`
	Description     string          `json:"description"`
	SportType       string          `json:"sport_type"`
	Type            string          `json:"type"`
	DurationSeconds json.RawMessage `json:"duration_seconds"`
	Duration        json.RawMessage `json:"duration"`
}

type rawReply struct {
	Intent   string       `json:"intent"`
	Summary  string       `json:"summary"`
	Reply    string       `json:"reply"`
	Message  string       `json:"message"`
	Workouts []rawWorkout `json:"workouts"`

	rawWorkout

	// Single-event shape of the first assistant version.
	Datum        string `json:"datum"`
	Titel        string `json:"titel"`
	TrainingText string `json:"training_text"`
	UserAntwort  string `json:"user_antwort"`
}

// Interpret reads raw. It never fails: anything that is not a usable JSON
// object between the first '{' and the last '}' is returned as chat.
func Interpret(raw string) Reply {
	chat := Reply{Intent: IntentChat, Text: raw}

	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")
	if start < 0 || end <= start {
		return chat
	}

	var parsed rawReply
	if err := json.Unmarshal([]byte(raw[start:end+1]), &parsed); err != nil {
		return chat
	}

	switch resolveIntent(parsed) {
	case IntentPropose:
		workouts := make([]domain.WorkoutProposal, 0, len(parsed.Workouts))
		for _, w := range parsed.Workouts {
			if proposal, ok := w.proposal(); ok {
				workouts = append(workouts, proposal)
			}
		}
		text := firstNonEmpty(parsed.Summary, parsed.Reply, parsed.Message)
		if len(workouts) == 0 {
			if text == "" {
				return chat
			}
			return Reply{Intent: IntentChat, Text: text}
		}
		return Reply{Intent: IntentPropose, Text: text, Workouts: workouts}

	case IntentCreate:
		single := parsed.rawWorkout
		single.Date = firstNonEmpty(single.Date, parsed.Datum)
		single.Title = firstNonEmpty(single.Title, single.Name, parsed.Titel)
		single.Description = firstNonEmpty(single.Description, parsed.TrainingText)
		proposal, ok := single.proposal()
		text := firstNonEmpty(parsed.Reply, parsed.UserAntwort, parsed.Message, parsed.Summary)
		if !ok {
			if text == "" {
				return chat
			}
			return Reply{Intent: IntentChat, Text: text}
		}
		return Reply{Intent: IntentCreate, Text: text, Workout: proposal}

	default:
		text := firstNonEmpty(parsed.Reply, parsed.Message, parsed.Summary, parsed.UserAntwort)
		if text == "" {
			return chat
		}
		return Reply{Intent: IntentChat, Text: text}
	}
}

func resolveIntent(r rawReply) Intent {
	switch Intent(strings.ToLower(strings.TrimSpace(r.Intent))) {
	case IntentPropose:
		return IntentPropose
	case IntentCreate:
		return IntentCreate
	case IntentChat:
		return IntentChat
	}
	if len(r.Workouts) > 0 {
		return IntentPropose
	}
	if r.Date != "" || r.Datum != "" {
		return IntentCreate
	}
	return IntentChat
}

func (w rawWorkout) proposal() (domain.WorkoutProposal, bool) {
	duration, ok := firstInt(w.DurationSeconds, w.Duration)
	if !ok {
		duration = domain.DefaultDurationSeconds
	}
	p := domain.WorkoutProposal{
		Date:            w.Date,
		Title:           firstNonEmpty(w.Title, w.Name),
		Description:     w.Description,
		SportType:       domain.SportType(firstNonEmpty(w.SportType, w.Type)),
		DurationSeconds: duration,
	}.WithDefaults()
	if p.Title == "" || !domain.ValidDay(p.Day()) {
		return domain.WorkoutProposal{}, false
	}
	return p, true
}

// firstInt accepts numbers or numeric strings; models emit both. ok is
// false when none of values holds a number.
func firstInt(values ...json.RawMessage) (int, bool) {
	for _, v := range values {
		if len(v) == 0 || string(v) == "null" {
			continue
		}
		var n float64
		if err := json.Unmarshal(v, &n); err == nil {
			return int(n), true
		}
		var s string
		if err := json.Unmarshal(v, &s); err == nil {
			if n, err := strconv.Atoi(strings.TrimSpace(s)); err == nil {
				return n, true
			}
		}
	}
	return 0, false
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if s := strings.TrimSpace(v); s != "" {
			return s
		}
	}
	return ""
}
