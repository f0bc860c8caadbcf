package progression

import (
	"time"

	"questifyAPI/internal/types/appstate"
	"questifyAPI/internal/types/badge"
)

// EvaluateBadges returns a new snapshot with every newly satisfied badge
// unlocked, plus the list of badges that flipped. Runs after every action
// that can move a counted quantity. Unlocks are monotonic: a badge never
// re-locks and an existing unlockedAt is never overwritten.
func EvaluateBadges(s *appstate.AppState, now time.Time) (*appstate.AppState, []badge.Badge) {
	if s == nil || s.User == nil {
		return s, nil
	}
	next := s.Clone()
	unlocked := unlockBadges(next, now)
	if len(unlocked) == 0 {
		return s, nil
	}
	next.UpdatedAt = now
	return next, unlocked
}

// unlockBadges mutates a snapshot the caller already owns (a fresh clone
// inside a reducer) and reports the newly unlocked badges.
func unlockBadges(s *appstate.AppState, now time.Time) []badge.Badge {
	if s.User == nil {
		return nil
	}
	completedQuests := s.CompletedQuestCount()
	completedSessions := s.CompletedFocusSessionCount()
	bestStreak := s.BestLongestStreak()

	var unlocked []badge.Badge
	for i := range s.Badges {
		b := &s.Badges[i]
		if !b.IsLocked {
			continue
		}

		met := false
		switch b.Requirement.Kind {
		case badge.ReqQuestCount:
			met = completedQuests >= b.Requirement.Threshold
		case badge.ReqHabitStreak:
			met = bestStreak >= b.Requirement.Threshold
		case badge.ReqFocusSessionCount:
			met = completedSessions >= b.Requirement.Threshold
		case badge.ReqUserLevel:
			met = s.User.Level >= b.Requirement.Threshold
		}
		if !met {
			continue
		}

		b.IsLocked = false
		if b.UnlockedAt == nil {
			at := now
			b.UnlockedAt = &at
		}
		unlocked = append(unlocked, *b.Clone())
	}
	return unlocked
}
