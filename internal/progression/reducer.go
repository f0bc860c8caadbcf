package progression

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"questifyAPI/internal/types/appstate"
	"questifyAPI/internal/types/focus"
	"questifyAPI/internal/types/habit"
	"questifyAPI/internal/types/quest"
	"questifyAPI/internal/types/user"
)

// The reducers below are the application core: each takes the current
// snapshot plus an action payload and returns the next snapshot and an
// outcome. They never mutate their input (clone first, then swap), never
// do I/O and never fail. Invalid references and absent users are silent
// no-ops returning the input pointer unchanged.

// CreateQuest appends a new pending quest. The XP reward is frozen here,
// from the normalized difficulty, and never recomputed on completion.
func CreateQuest(s *appstate.AppState, req quest.CreateQuestRequest, now time.Time) (*appstate.AppState, Outcome) {
	if s == nil || s.User == nil {
		return s, NoOutcome()
	}
	title := strings.TrimSpace(req.Title)
	if title == "" {
		return s, NoOutcome()
	}

	next := s.Clone()
	d := req.Difficulty.Normalize()
	q := quest.Quest{
		ID:          uuid.NewString(),
		Title:       title,
		Description: strings.TrimSpace(req.Description),
		Difficulty:  d,
		Status:      quest.StatusPending,
		XPReward:    d.XPReward(),
		IsDaily:     req.IsDaily,
		CreatedAt:   now,
	}
	if req.DueDate != nil {
		due := *req.DueDate
		q.DueDate = &due
	}
	if len(req.Tags) > 0 {
		q.Tags = append([]string(nil), req.Tags...)
	}
	for _, st := range req.Subtasks {
		st = strings.TrimSpace(st)
		if st == "" {
			continue
		}
		q.Subtasks = append(q.Subtasks, quest.Subtask{ID: uuid.NewString(), Title: st})
	}

	next.Quests = append(next.Quests, q)
	next.UpdatedAt = now
	return next, NoOutcome()
}

// CompleteQuest marks a pending quest completed, pays out its frozen
// reward and re-evaluates level and badges. Completing an already
// completed quest is a no-op, so the reward cannot be farmed.
func CompleteQuest(s *appstate.AppState, questID string, now time.Time) (*appstate.AppState, Outcome) {
	if s == nil || s.User == nil {
		return s, NoOutcome()
	}
	cur := s.QuestByID(questID)
	if cur == nil || cur.Status == quest.StatusCompleted {
		return s, NoOutcome()
	}

	next := s.Clone()
	q := next.QuestByID(questID)
	q.Status = quest.StatusCompleted
	at := now
	q.CompletedAt = &at

	levelBefore := next.User.Level
	next.User.TotalXP += q.XPReward
	ApplyTotalXP(next.User)
	unlocked := unlockBadges(next, now)
	next.UpdatedAt = now

	out := Outcome{
		Kind:           OutcomeQuestCompleted,
		XPGained:       q.XPReward,
		LevelBefore:    levelBefore,
		LevelAfter:     next.User.Level,
		UnlockedBadges: unlocked,
	}
	if next.User.Level > levelBefore {
		out.Kind = OutcomeLevelUp
		out.LeveledUp = true
		out.Message = fmt.Sprintf("Level up! You reached level %d", next.User.Level)
	} else {
		out.Message = fmt.Sprintf("Quest complete! %d XP to level %d", next.User.XPToNextLevel-next.User.XP, next.User.Level+1)
	}
	return next, out
}

// ToggleHabit checks a habit off for today, or undoes today's check-off
// when it is already done. Undo reverses the same-day grant so a
// complete-undo pair nets zero XP; the longest streak and any badges it
// unlocked stay, since both are monotonic.
func ToggleHabit(s *appstate.AppState, habitID string, now time.Time, loc *time.Location) (*appstate.AppState, Outcome) {
	if s == nil || s.User == nil {
		return s, NoOutcome()
	}
	if s.HabitByID(habitID) == nil {
		return s, NoOutcome()
	}
	todayKey := DateKey(now, loc)

	next := s.Clone()
	h := next.HabitByID(habitID)

	doneIdx := -1
	for i := range h.CompletedDates {
		if DateKey(h.CompletedDates[i], loc) == todayKey {
			doneIdx = i
			break
		}
	}

	levelBefore := next.User.Level
	xpBefore := next.User.TotalXP
	var out Outcome

	if doneIdx >= 0 {
		h.CompletedDates = append(h.CompletedDates[:doneIdx], h.CompletedDates[doneIdx+1:]...)
		if h.CurrentStreak > 0 {
			h.CurrentStreak--
		}
		next.User.TotalXP -= h.XPPerCompletion
		if next.User.TotalXP < 0 {
			next.User.TotalXP = 0
		}
		ApplyTotalXP(next.User)
		out = Outcome{
			Kind:    OutcomeHabitUndone,
			Message: "Habit unchecked",
		}
	} else {
		h.CompletedDates = append(h.CompletedDates, now)
		h.CurrentStreak++
		if h.CurrentStreak > h.LongestStreak {
			h.LongestStreak = h.CurrentStreak
		}
		next.User.TotalXP += h.XPPerCompletion
		ApplyTotalXP(next.User)
		out = Outcome{
			Kind:           OutcomeHabitCompleted,
			Message:        fmt.Sprintf("%d day streak! +%d XP", h.CurrentStreak, h.XPPerCompletion),
			Streak:         h.CurrentStreak,
			UnlockedBadges: unlockBadges(next, now),
		}
	}

	out.XPGained = next.User.TotalXP - xpBefore
	out.LevelBefore = levelBefore
	out.LevelAfter = next.User.Level
	if next.User.Level > levelBefore {
		out.Kind = OutcomeLevelUp
		out.LeveledUp = true
		out.Message = fmt.Sprintf("Level up! You reached level %d", next.User.Level)
	}
	next.UpdatedAt = now
	return next, out
}

// CreateHabit appends a new habit with zero streaks and an empty
// completion history.
func CreateHabit(s *appstate.AppState, req habit.CreateHabitRequest, now time.Time) (*appstate.AppState, Outcome) {
	if s == nil || s.User == nil {
		return s, NoOutcome()
	}
	title := strings.TrimSpace(req.Title)
	if title == "" {
		return s, NoOutcome()
	}

	next := s.Clone()
	h := habit.Habit{
		ID:              uuid.NewString(),
		Title:           title,
		Description:     strings.TrimSpace(req.Description),
		Frequency:       "daily",
		Color:           req.Color,
		XPPerCompletion: req.XPPerCompletion,
		CompletedDates:  []time.Time{},
		CreatedAt:       now,
	}
	if h.Color == "" {
		h.Color = habit.DefaultColor
	}
	if h.XPPerCompletion <= 0 {
		h.XPPerCompletion = habit.DefaultXPPerCompletion
	}

	next.Habits = append(next.Habits, h)
	next.UpdatedAt = now
	return next, NoOutcome()
}

// CompleteFocusSession records a finished focus block and grants its XP.
// The record is immutable: end = now, start = now minus the duration.
func CompleteFocusSession(s *appstate.AppState, durationMinutes, xpEarned int, now time.Time) (*appstate.AppState, Outcome) {
	if s == nil || s.User == nil {
		return s, NoOutcome()
	}
	if durationMinutes <= 0 {
		return s, NoOutcome()
	}
	if xpEarned < 0 {
		xpEarned = 0
	}

	next := s.Clone()
	next.FocusSessions = append(next.FocusSessions, focusSession(durationMinutes, xpEarned, now))

	levelBefore := next.User.Level
	next.User.TotalXP += xpEarned
	ApplyTotalXP(next.User)
	unlocked := unlockBadges(next, now)
	next.UpdatedAt = now

	out := Outcome{
		Kind:           OutcomeFocusCompleted,
		Message:        fmt.Sprintf("Focus session done! +%d XP", xpEarned),
		XPGained:       xpEarned,
		LevelBefore:    levelBefore,
		LevelAfter:     next.User.Level,
		UnlockedBadges: unlocked,
	}
	if next.User.Level > levelBefore {
		out.Kind = OutcomeLevelUp
		out.LeveledUp = true
		out.Message = fmt.Sprintf("Level up! You reached level %d", next.User.Level)
	}
	return next, out
}

// UpdateProfile applies plain field edits to the user. Empty or nil
// fields are left alone; the timezone string is stored as given and
// validated where it is resolved.
func UpdateProfile(s *appstate.AppState, req user.UpdateProfileRequest, now time.Time) (*appstate.AppState, Outcome) {
	if s == nil || s.User == nil {
		return s, NoOutcome()
	}

	next := s.Clone()
	u := next.User
	if req.Name != nil {
		if name := strings.TrimSpace(*req.Name); name != "" {
			u.Name = name
		}
	}
	if req.Class != nil {
		u.Class = strings.TrimSpace(*req.Class)
	}
	if req.DailyGoal != nil && *req.DailyGoal >= 0 {
		u.DailyGoal = *req.DailyGoal
	}
	if req.WeeklySchedule != nil {
		u.WeeklySchedule = make(map[string]int, len(req.WeeklySchedule))
		for k, v := range req.WeeklySchedule {
			u.WeeklySchedule[k] = v
		}
	}
	if req.Timezone != nil {
		u.Timezone = strings.TrimSpace(*req.Timezone)
	}
	next.UpdatedAt = now
	return next, NoOutcome()
}

// UpdateQuest edits quest details. The XP reward re-freezes only when the
// difficulty of a still-pending quest changes; completed quests keep what
// they already paid out. A completed quest may be reverted to pending,
// which clears completedAt but never claws the granted XP back.
func UpdateQuest(s *appstate.AppState, questID string, req quest.UpdateQuestRequest, now time.Time) (*appstate.AppState, Outcome) {
	if s == nil || s.User == nil {
		return s, NoOutcome()
	}
	if s.QuestByID(questID) == nil {
		return s, NoOutcome()
	}

	next := s.Clone()
	q := next.QuestByID(questID)

	if req.Status != nil && *req.Status == quest.StatusPending && q.Status == quest.StatusCompleted {
		q.Status = quest.StatusPending
		q.CompletedAt = nil
	}
	if req.Title != nil {
		if title := strings.TrimSpace(*req.Title); title != "" {
			q.Title = title
		}
	}
	if req.Description != nil {
		q.Description = strings.TrimSpace(*req.Description)
	}
	if req.Difficulty != nil {
		d := req.Difficulty.Normalize()
		if d != q.Difficulty {
			q.Difficulty = d
			if q.Status == quest.StatusPending {
				q.XPReward = d.XPReward()
			}
		}
	}
	if req.ClearDueDate {
		q.DueDate = nil
	} else if req.DueDate != nil {
		due := *req.DueDate
		q.DueDate = &due
	}
	if req.IsDaily != nil {
		q.IsDaily = *req.IsDaily
	}
	if req.Tags != nil {
		q.Tags = append([]string(nil), req.Tags...)
	}
	if req.Subtasks != nil {
		subs := make([]quest.Subtask, 0, len(req.Subtasks))
		for _, st := range req.Subtasks {
			st.Title = strings.TrimSpace(st.Title)
			if st.Title == "" {
				continue
			}
			if st.ID == "" {
				st.ID = uuid.NewString()
			}
			subs = append(subs, st)
		}
		q.Subtasks = subs
	}

	next.UpdatedAt = now
	return next, NoOutcome()
}

// DeleteQuest removes a quest outright. The only way a quest leaves the
// collection.
func DeleteQuest(s *appstate.AppState, questID string, now time.Time) (*appstate.AppState, Outcome) {
	if s == nil || s.User == nil {
		return s, NoOutcome()
	}
	idx := -1
	for i := range s.Quests {
		if s.Quests[i].ID == questID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return s, NoOutcome()
	}

	next := s.Clone()
	next.Quests = append(next.Quests[:idx], next.Quests[idx+1:]...)
	next.UpdatedAt = now
	return next, NoOutcome()
}

// ToggleSubtask flips one subtask's completed flag. No XP is involved;
// subtasks are a checklist, not a reward source.
func ToggleSubtask(s *appstate.AppState, questID, subtaskID string, now time.Time) (*appstate.AppState, Outcome) {
	if s == nil || s.User == nil {
		return s, NoOutcome()
	}
	cur := s.QuestByID(questID)
	if cur == nil {
		return s, NoOutcome()
	}
	found := false
	for i := range cur.Subtasks {
		if cur.Subtasks[i].ID == subtaskID {
			found = true
			break
		}
	}
	if !found {
		return s, NoOutcome()
	}

	next := s.Clone()
	q := next.QuestByID(questID)
	for i := range q.Subtasks {
		if q.Subtasks[i].ID == subtaskID {
			q.Subtasks[i].Completed = !q.Subtasks[i].Completed
			break
		}
	}
	next.UpdatedAt = now
	return next, NoOutcome()
}

// SetMood records today's mood label, overwriting any earlier entry for
// the same day.
func SetMood(s *appstate.AppState, mood string, now time.Time, loc *time.Location) (*appstate.AppState, Outcome) {
	if s == nil || s.User == nil {
		return s, NoOutcome()
	}
	mood = strings.TrimSpace(mood)
	if mood == "" {
		return s, NoOutcome()
	}

	next := s.Clone()
	if next.MoodByDate == nil {
		next.MoodByDate = map[string]string{}
	}
	next.MoodByDate[DateKey(now, loc)] = mood
	next.UpdatedAt = now
	return next, NoOutcome()
}

// CompleteOnboarding stamps the onboarding flag and the initial profile
// choices in one step.
func CompleteOnboarding(s *appstate.AppState, req user.OnboardingRequest, now time.Time) (*appstate.AppState, Outcome) {
	if s == nil || s.User == nil {
		return s, NoOutcome()
	}

	next := s.Clone()
	next.IsOnboarded = true
	if class := strings.TrimSpace(req.Class); class != "" {
		next.User.Class = class
	}
	if req.DailyGoal > 0 {
		next.User.DailyGoal = req.DailyGoal
	}
	if tz := strings.TrimSpace(req.Timezone); tz != "" {
		next.User.Timezone = tz
	}
	next.UpdatedAt = now
	return next, NoOutcome()
}

// Logout resets to the anonymous default snapshot. Only the default badge
// catalog survives; everything personal is gone.
func Logout(s *appstate.AppState, now time.Time) (*appstate.AppState, Outcome) {
	next := appstate.Default()
	next.UpdatedAt = now
	return next, NoOutcome()
}

func focusSession(durationMinutes, xpEarned int, now time.Time) focus.Session {
	return focus.Session{
		ID:        uuid.NewString(),
		Duration:  durationMinutes,
		StartTime: now.Add(-time.Duration(durationMinutes) * time.Minute),
		EndTime:   now,
		XPEarned:  xpEarned,
		Completed: true,
	}
}
