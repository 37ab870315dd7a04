package domain

import (
	"slices"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// TurnRole identifies the author of a conversation turn.
type TurnRole string

const (
	RoleUser      TurnRole = "user"
	RoleAssistant TurnRole = "assistant"
)

// Modality is how the user supplied a turn.
type Modality string

const (
	ModalityText  Modality = "text"
	ModalityAudio Modality = "audio"
)

// ConversationTurn is one entry of the append-only transcript.
type ConversationTurn struct {
	Index     int       `bson:"index" json:"index"`
	Role      TurnRole  `bson:"role" json:"role"`
	Modality  Modality  `bson:"modality" json:"modality"`
	Content   string    `bson:"content,omitempty" json:"content,omitempty"`
	AudioRef  string    `bson:"audioRef,omitempty" json:"-"` // object key of the stored clip
	MIMEType  string    `bson:"mimeType,omitempty" json:"mimeType,omitempty"`
	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
}

// Session is the state carried between turns of one conversation.
// It belongs to exactly one athlete.
type Session struct {
	ID        string             `bson:"_id" json:"id"`
	AthleteID primitive.ObjectID `bson:"athleteId" json:"athleteId"`
	Turns     []ConversationTurn `bson:"turns" json:"turns"`
	Drafts    PlanDraftStore     `bson:"drafts" json:"drafts"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// NextTurnIndex is the index the next appended turn will get.
func (s Session) NextTurnIndex() int {
	return len(s.Turns)
}

// Append returns a copy of the session with turn appended. The receiver's
// transcript is not modified.
func (s Session) Append(turn ConversationTurn) Session {
	turn.Index = len(s.Turns)
	if turn.CreatedAt.IsZero() {
		turn.CreatedAt = time.Now().UTC()
	}
	s.Turns = append(slices.Clip(s.Turns), turn)
	s.UpdatedAt = turn.CreatedAt
	return s
}

// Turn returns the turn at index.
func (s Session) Turn(index int) (ConversationTurn, bool) {
	if index < 0 || index >= len(s.Turns) {
		return ConversationTurn{}, false
	}
	return s.Turns[index], true
}
