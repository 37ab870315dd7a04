package llm

import (
	"fmt"
	"time"
)

const replyFormat = `Reply in one of these ways:
1. A normal answer in plain text for questions, analysis or small talk.
2. When the athlete wants one or more workouts planned, exactly one JSON object:
{
  "intent": "propose",
  "summary": "short explanation for the athlete",
  "workouts": [
    {"date": "YYYY-MM-DD", "title": "short name", "description": "workout text in intervals.icu syntax",
     "sport_type": "Ride|Run|Swim|WeightTraining", "duration_seconds": 3600}
  ]
}
The athlete confirms the plan afterwards; never claim it is already uploaded.
Existing WORKOUT entries in the planned date range will be replaced. Races and notes stay.`

// SystemInstruction builds the coach instruction for a turn. calendarContext
// is a compact JSON document of recent activities and planned events, or
// empty when nothing was fetched.
func SystemInstruction(today time.Time, calendarContext string) string {
	s := fmt.Sprintf("You are an experienced endurance coach (cycling first). Today is %s (%s).\n\n%s",
		today.Format("2006-01-02"), today.Weekday(), replyFormat)
	if calendarContext != "" {
		s += "\n\nAthlete calendar context (JSON):\n" + calendarContext
	}
	return s
}

// AudioInstruction is sent as the text part alongside a voice clip.
const AudioInstruction = "The athlete sent this voice message. Understand it and answer as instructed."
