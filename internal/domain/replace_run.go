package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ReplaceRun records what a bulk replace intended to do and what it did,
// so a run interrupted between deleting and creating can be reported.
type ReplaceRun struct {
	ID             primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	AthleteID      string             `bson:"athleteId" json:"athleteId"` // calendar athlete id
	Span           Span               `bson:"span" json:"span"`
	PlannedDeletes []int64            `bson:"plannedDeletes" json:"plannedDeletes"`
	PlannedCreates []WorkoutProposal  `bson:"plannedCreates" json:"plannedCreates"`
	Deleted        int                `bson:"deleted" json:"deleted"`
	DeleteFailed   int                `bson:"deleteFailed" json:"deleteFailed"`
	Created        int                `bson:"created" json:"created"`
	FailedCreates  []WorkoutProposal  `bson:"failedCreates,omitempty" json:"failedCreates,omitempty"`
	StartedAt      time.Time          `bson:"startedAt" json:"startedAt"`
	FinishedAt     *time.Time         `bson:"finishedAt,omitempty" json:"finishedAt,omitempty"`
}
