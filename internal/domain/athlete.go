package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Athlete is a registered user of the assistant together with the
// credentials used to reach their training calendar.
type Athlete struct {
	ID                 primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name               string             `bson:"name" json:"name"`
	Email              string             `bson:"email" json:"email"`    // Unique
	PasswordHash       string             `bson:"passwordHash" json:"-"` // Never exposed
	IntervalsAthleteID string             `bson:"intervalsAthleteId,omitempty" json:"intervalsAthleteId,omitempty"`
	IntervalsAPIKey    string             `bson:"intervalsApiKey,omitempty" json:"-"`
	CreatedAt          time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt          time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// Credentials returns the athlete's calendar credentials, falling back to
// fallback for any value the athlete has not set.
func (a *Athlete) Credentials(fallback Credentials) Credentials {
	creds := fallback
	if a == nil {
		return creds
	}
	if a.IntervalsAthleteID != "" {
		creds.AthleteID = a.IntervalsAthleteID
	}
	if a.IntervalsAPIKey != "" {
		creds.APIKey = a.IntervalsAPIKey
	}
	return creds
}
