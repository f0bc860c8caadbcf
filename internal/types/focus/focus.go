package focus

import "time"

// Session is an immutable record of one finished focus block. Completed
// sessions are never edited or deleted.
type Session struct {
	ID        string    `json:"id" firestore:"id"`
	Duration  int       `json:"duration" firestore:"duration"` // minutes
	StartTime time.Time `json:"startTime" firestore:"startTime"`
	EndTime   time.Time `json:"endTime" firestore:"endTime"`
	XPEarned  int       `json:"xpEarned" firestore:"xpEarned"`
	Completed bool      `json:"completed" firestore:"completed"`
}

type CompleteSessionRequest struct {
	DurationMinutes int `json:"durationMinutes"`
	XPEarned        int `json:"xpEarned"`
}
