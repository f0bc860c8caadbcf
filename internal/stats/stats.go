package stats

import (
	"time"

	"questifyAPI/internal/progression"
	"questifyAPI/internal/types/appstate"
)

// DayActivity aggregates what happened on one local calendar day.
type DayActivity struct {
	QuestsCompleted int `json:"questsCompleted"`
	HabitsTicked    int `json:"habitsTicked"`
	FocusMinutes    int `json:"focusMinutes"`
}

// UserStats is the read-only dashboard block, derived entirely from the
// snapshot. Nothing here is stored.
type UserStats struct {
	Level         int `json:"level"`
	XP            int `json:"xp"`
	XPToNextLevel int `json:"xpToNextLevel"`
	TotalXP       int `json:"totalXP"`

	QuestsTotal     int `json:"questsTotal"`
	QuestsCompleted int `json:"questsCompleted"`
	QuestsPending   int `json:"questsPending"`

	FocusSessions int `json:"focusSessions"`
	FocusMinutes  int `json:"focusMinutes"`

	BestCurrentStreak int `json:"bestCurrentStreak"`
	BestLongestStreak int `json:"bestLongestStreak"`

	BadgesUnlocked int `json:"badgesUnlocked"`
	BadgesTotal    int `json:"badgesTotal"`

	MoodToday string `json:"moodToday,omitempty"`

	// Last7Days maps local day keys (oldest first in DayKeys) to that
	// day's activity, today included.
	DayKeys   []string               `json:"dayKeys"`
	Last7Days map[string]DayActivity `json:"last7Days"`
}

// Compute derives the stats block for a snapshot in the user's timezone.
func Compute(st *appstate.AppState, now time.Time, loc *time.Location) *UserStats {
	out := &UserStats{
		Last7Days: make(map[string]DayActivity),
	}
	if st == nil {
		return out
	}

	if st.User != nil {
		out.Level = st.User.Level
		out.XP = st.User.XP
		out.XPToNextLevel = st.User.XPToNextLevel
		out.TotalXP = st.User.TotalXP
	}

	out.DayKeys = make([]string, 0, 7)
	for i := 6; i >= 0; i-- {
		key := progression.DateKey(now.AddDate(0, 0, -i), loc)
		out.DayKeys = append(out.DayKeys, key)
		out.Last7Days[key] = DayActivity{}
	}
	inWindow := func(t time.Time) (string, bool) {
		key := progression.DateKey(t, loc)
		_, ok := out.Last7Days[key]
		return key, ok
	}

	out.QuestsTotal = len(st.Quests)
	for i := range st.Quests {
		q := &st.Quests[i]
		if q.CompletedAt != nil {
			out.QuestsCompleted++
			if key, ok := inWindow(*q.CompletedAt); ok {
				day := out.Last7Days[key]
				day.QuestsCompleted++
				out.Last7Days[key] = day
			}
		} else {
			out.QuestsPending++
		}
	}

	for i := range st.Habits {
		h := &st.Habits[i]
		if h.CurrentStreak > out.BestCurrentStreak {
			out.BestCurrentStreak = h.CurrentStreak
		}
		if h.LongestStreak > out.BestLongestStreak {
			out.BestLongestStreak = h.LongestStreak
		}
		for _, done := range h.CompletedDates {
			if key, ok := inWindow(done); ok {
				day := out.Last7Days[key]
				day.HabitsTicked++
				out.Last7Days[key] = day
			}
		}
	}

	for i := range st.FocusSessions {
		fs := &st.FocusSessions[i]
		if !fs.Completed {
			continue
		}
		out.FocusSessions++
		out.FocusMinutes += fs.Duration
		if key, ok := inWindow(fs.EndTime); ok {
			day := out.Last7Days[key]
			day.FocusMinutes += fs.Duration
			out.Last7Days[key] = day
		}
	}

	out.BadgesTotal = len(st.Badges)
	for i := range st.Badges {
		if !st.Badges[i].IsLocked {
			out.BadgesUnlocked++
		}
	}

	out.MoodToday = st.MoodByDate[progression.DateKey(now, loc)]

	return out
}
