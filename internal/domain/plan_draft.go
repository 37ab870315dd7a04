package domain

import "time"

// PlanDraft is a batch of proposed workouts waiting for the athlete's
// confirmation before anything is written to the calendar.
type PlanDraft struct {
	Items         []WorkoutProposal `bson:"items" json:"items"`
	Summary       string            `bson:"summary,omitempty" json:"summary,omitempty"`
	CreatedAtTurn int               `bson:"createdAtTurn" json:"createdAtTurn"`
	ProposedAt    time.Time         `bson:"proposedAt" json:"proposedAt"`
}

// Span returns the inclusive day range the draft would replace.
func (d PlanDraft) Span() (Span, bool) {
	return SpanOf(d.Items)
}

// PlanDraftStore holds at most one pending draft for a session.
// It is not safe for concurrent use; callers serialize turns per session.
type PlanDraftStore struct {
	Pending *PlanDraft `bson:"pending,omitempty" json:"pending,omitempty"`
}

// Propose stores draft, silently replacing any draft still pending.
func (s *PlanDraftStore) Propose(draft PlanDraft) {
	items := make([]WorkoutProposal, len(draft.Items))
	copy(items, draft.Items)
	draft.Items = items
	s.Pending = &draft
}

// Peek returns the pending draft, if any.
func (s PlanDraftStore) Peek() (PlanDraft, bool) {
	if s.Pending == nil {
		return PlanDraft{}, false
	}
	return *s.Pending, true
}

// Clear discards the pending draft.
func (s *PlanDraftStore) Clear() {
	s.Pending = nil
}
