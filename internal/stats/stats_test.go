package stats_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"questifyAPI/internal/progression"
	"questifyAPI/internal/stats"
	"questifyAPI/internal/types/appstate"
	"questifyAPI/internal/types/focus"
	"questifyAPI/internal/types/habit"
	"questifyAPI/internal/types/quest"
	"questifyAPI/internal/types/user"
)

func TestCompute_NilSnapshot(t *testing.T) {
	got := stats.Compute(nil, time.Now(), time.UTC)
	require.NotNil(t, got)
	assert.Zero(t, got.Level)
	assert.Zero(t, got.QuestsTotal)
	assert.Empty(t, got.Last7Days)
}

func TestCompute_SevenDayWindow(t *testing.T) {
	loc := time.UTC
	now := time.Date(2024, 3, 15, 18, 0, 0, 0, loc)

	u := &user.User{ID: "user-1", Name: "Tester", TotalXP: 140}
	progression.ApplyTotalXP(u)
	st := appstate.New(u, now)

	completedToday := now.Add(-2 * time.Hour)
	completedOld := now.AddDate(0, 0, -8)
	st.Quests = []quest.Quest{
		{ID: "q-1", Title: "Ship release", CompletedAt: &completedToday},
		{ID: "q-2", Title: "Old win", CompletedAt: &completedOld},
		{ID: "q-3", Title: "Still open"},
	}

	st.Habits = []habit.Habit{{
		ID:            "h-1",
		Title:         "Stretch",
		CurrentStreak: 3,
		LongestStreak: 9,
		CompletedDates: []time.Time{
			now.AddDate(0, 0, -3),
			now.AddDate(0, 0, -10),
		},
	}}

	st.FocusSessions = []focus.Session{
		{ID: "f-1", Duration: 25, Completed: true, EndTime: now.Add(-time.Hour)},
		{ID: "f-2", Duration: 50, Completed: false, EndTime: now},
		{ID: "f-3", Duration: 30, Completed: true, EndTime: now.AddDate(0, 0, -2)},
	}

	require.NotEmpty(t, st.Badges)
	st.Badges[0].IsLocked = false
	st.MoodByDate = map[string]string{progression.DateKey(now, loc): "good"}

	got := stats.Compute(st, now, loc)

	assert.Equal(t, u.Level, got.Level)
	assert.Equal(t, u.XP, got.XP)
	assert.Equal(t, 140, got.TotalXP)

	assert.Equal(t, 3, got.QuestsTotal)
	assert.Equal(t, 2, got.QuestsCompleted)
	assert.Equal(t, 1, got.QuestsPending)

	assert.Equal(t, 2, got.FocusSessions, "abandoned sessions do not count")
	assert.Equal(t, 55, got.FocusMinutes)

	assert.Equal(t, 3, got.BestCurrentStreak)
	assert.Equal(t, 9, got.BestLongestStreak)

	assert.Equal(t, 1, got.BadgesUnlocked)
	assert.Equal(t, len(st.Badges), got.BadgesTotal)
	assert.Equal(t, "good", got.MoodToday)

	require.Len(t, got.DayKeys, 7)
	assert.Equal(t, progression.DateKey(now.AddDate(0, 0, -6), loc), got.DayKeys[0])
	assert.Equal(t, progression.DateKey(now, loc), got.DayKeys[6])

	today := got.Last7Days[got.DayKeys[6]]
	assert.Equal(t, 1, today.QuestsCompleted)
	assert.Equal(t, 25, today.FocusMinutes)

	threeBack := got.Last7Days[progression.DateKey(now.AddDate(0, 0, -3), loc)]
	assert.Equal(t, 1, threeBack.HabitsTicked)

	// Activity older than the window never leaks into the buckets.
	var questsInWindow, ticksInWindow int
	for _, day := range got.Last7Days {
		questsInWindow += day.QuestsCompleted
		ticksInWindow += day.HabitsTicked
	}
	assert.Equal(t, 1, questsInWindow)
	assert.Equal(t, 1, ticksInWindow)
}

func TestCompute_BucketsFollowTimezone(t *testing.T) {
	// 23:30 UTC on March 14 is already March 15 east of Greenwich.
	plus3 := time.FixedZone("UTC+3", 3*60*60)
	now := time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC)
	done := time.Date(2024, 3, 14, 23, 30, 0, 0, time.UTC)

	u := &user.User{ID: "user-1"}
	st := appstate.New(u, now)
	st.FocusSessions = []focus.Session{
		{ID: "f-1", Duration: 25, Completed: true, EndTime: done},
	}

	utcStats := stats.Compute(st, now, time.UTC)
	assert.Equal(t, 25, utcStats.Last7Days["2024-03-14"].FocusMinutes)
	assert.Zero(t, utcStats.Last7Days["2024-03-15"].FocusMinutes)

	plusStats := stats.Compute(st, now, plus3)
	assert.Equal(t, 25, plusStats.Last7Days["2024-03-15"].FocusMinutes)
	assert.Zero(t, plusStats.Last7Days["2024-03-14"].FocusMinutes)
}

func TestCompute_NoMoodLoggedToday(t *testing.T) {
	now := time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC)
	st := appstate.New(&user.User{ID: "user-1"}, now)
	st.MoodByDate = map[string]string{"2024-03-14": "tired"}

	got := stats.Compute(st, now, time.UTC)
	assert.Empty(t, got.MoodToday)
}
