package progression

import (
	"time"

	"questifyAPI/internal/types/appstate"
	"questifyAPI/internal/types/quest"
)

const dateKeyLayout = "2006-01-02"

// DateKey returns the calendar-day identifier for t in the given zone.
// Habit completions, rollover and mood entries all compare days through
// this one function so "today" means the same thing everywhere.
func DateKey(t time.Time, loc *time.Location) string {
	if loc == nil {
		loc = time.UTC
	}
	return t.In(loc).Format(dateKeyLayout)
}

// EndOfDay returns the last second of t's calendar day in the given zone.
// Daily quests get their due date re-anchored here on rollover.
func EndOfDay(t time.Time, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.UTC
	}
	tt := t.In(loc)
	return time.Date(tt.Year(), tt.Month(), tt.Day(), 23, 59, 59, 0, loc)
}

// ApplyDailyReset re-opens every daily quest once per calendar day: status
// back to pending, completedAt cleared, due date re-anchored to the end of
// today, subtasks unchecked. Non-daily quests pass through untouched.
// Returns the input unchanged (false) when there is no user or the reset
// already ran today, which makes it safe to call on every snapshot access.
func ApplyDailyReset(s *appstate.AppState, now time.Time, loc *time.Location) (*appstate.AppState, bool) {
	if s == nil || s.User == nil {
		return s, false
	}
	todayKey := DateKey(now, loc)
	if s.LastDailyReset == todayKey {
		return s, false
	}

	next := s.Clone()
	due := EndOfDay(now, loc)
	for i := range next.Quests {
		q := &next.Quests[i]
		if !q.IsDaily {
			continue
		}
		q.Status = quest.StatusPending
		q.CompletedAt = nil
		d := due
		q.DueDate = &d
		for j := range q.Subtasks {
			q.Subtasks[j].Completed = false
		}
	}
	next.LastDailyReset = todayKey
	next.UpdatedAt = now
	return next, true
}
