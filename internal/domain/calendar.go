package domain

// EventCategory tags an entry on the remote calendar.
type EventCategory string

const (
	CategoryWorkout EventCategory = "WORKOUT"
	CategoryRaceA   EventCategory = "RACE_A"
	CategoryRaceB   EventCategory = "RACE_B"
	CategoryRaceC   EventCategory = "RACE_C"
	CategoryNote    EventCategory = "NOTE"
)

// RemoteEvent is an entry already stored by the calendar service.
type RemoteEvent struct {
	ID             int64         `json:"id"`
	Category       EventCategory `json:"category"`
	StartDateLocal string        `json:"start_date_local"`
	Name           string        `json:"name"`
	Description    string        `json:"description,omitempty"`
	Type           string        `json:"type,omitempty"`
	Load           *float64      `json:"icu_training_load,omitempty"`
}

// IsWorkout reports whether the event may be replaced by a confirmed plan.
// Races and notes never are.
func (e RemoteEvent) IsWorkout() bool {
	return e.Category == CategoryWorkout
}

// Activity is a completed session recorded by the calendar service.
type Activity struct {
	ID             string   `json:"id"`
	StartDateLocal string   `json:"start_date_local"`
	Name           string   `json:"name"`
	Type           string   `json:"type"`
	Load           *float64 `json:"icu_training_load,omitempty"`
	MovingTime     int      `json:"moving_time,omitempty"`
	Distance       float64  `json:"distance,omitempty"`
}

// Stream is one recorded channel of an activity; Data is parallel to the
// other streams of the same activity.
type Stream struct {
	Type string `json:"type"`
	Data []any  `json:"data"`
}

// EventPayload is the body of a create-event call.
type EventPayload struct {
	Category       EventCategory `json:"category"`
	StartDateLocal string        `json:"start_date_local"`
	Name           string        `json:"name"`
	Description    string        `json:"description"`
	Type           SportType     `json:"type"`
	Duration       int           `json:"duration"`
	MovingTime     int           `json:"moving_time"` // same as Duration; used for load estimation
}

// NewWorkoutPayload builds the create payload for a proposal.
func NewWorkoutPayload(w WorkoutProposal, defaultStartTime string) EventPayload {
	w = w.WithDefaults()
	return EventPayload{
		Category:       CategoryWorkout,
		StartDateLocal: w.StartDateLocal(defaultStartTime),
		Name:           w.Title,
		Description:    w.Description,
		Type:           w.SportType,
		Duration:       w.DurationSeconds,
		MovingTime:     w.DurationSeconds,
	}
}

// Credentials identify an athlete on the calendar service.
type Credentials struct {
	AthleteID string
	APIKey    string
}

// Complete reports whether both values are present.
func (c Credentials) Complete() bool {
	return c.AthleteID != "" && c.APIKey != ""
}
