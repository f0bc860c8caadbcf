package habit

import "time"

// DefaultXPPerCompletion is granted when a habit without an explicit
// reward is checked off for the day.
const DefaultXPPerCompletion = 15

const DefaultColor = "#8b5cf6"

type Habit struct {
	ID              string `json:"id" firestore:"id"`
	Title           string `json:"title" firestore:"title"`
	Description     string `json:"description,omitempty" firestore:"description"`
	Frequency       string `json:"frequency" firestore:"frequency"`
	Color           string `json:"color,omitempty" firestore:"color"`
	XPPerCompletion int    `json:"xpPerCompletion" firestore:"xpPerCompletion"`

	CurrentStreak int `json:"currentStreak" firestore:"currentStreak"`
	LongestStreak int `json:"longestStreak" firestore:"longestStreak"`

	// CompletedDates holds one timestamp per day the habit was checked off.
	// "Same day" is decided by the date-key in the user's timezone, never
	// by comparing raw instants.
	CompletedDates []time.Time `json:"completedDates" firestore:"completedDates"`

	CreatedAt time.Time `json:"createdAt" firestore:"createdAt"`
}

func (h *Habit) Clone() *Habit {
	if h == nil {
		return nil
	}
	cp := *h
	if h.CompletedDates != nil {
		cp.CompletedDates = make([]time.Time, len(h.CompletedDates))
		copy(cp.CompletedDates, h.CompletedDates)
	}
	return &cp
}

type CreateHabitRequest struct {
	Title           string `json:"title"`
	Description     string `json:"description,omitempty"`
	Color           string `json:"color,omitempty"`
	XPPerCompletion int    `json:"xpPerCompletion,omitempty"`
}
