package progression

import "questifyAPI/internal/types/badge"

type OutcomeKind string

const (
	OutcomeNone           OutcomeKind = "none"
	OutcomeQuestCompleted OutcomeKind = "quest_completed"
	OutcomeLevelUp        OutcomeKind = "level_up"
	OutcomeHabitCompleted OutcomeKind = "habit_completed"
	OutcomeHabitUndone    OutcomeKind = "habit_undone"
	OutcomeFocusCompleted OutcomeKind = "focus_completed"
)

// Outcome describes what an action did so the presentation layer can
// report it. No-op actions return the zero-value kind "none"; silent
// state edits (create, update, delete) do too.
type Outcome struct {
	Kind           OutcomeKind   `json:"kind"`
	Message        string        `json:"message,omitempty"`
	XPGained       int           `json:"xpGained,omitempty"`
	LevelBefore    int           `json:"levelBefore,omitempty"`
	LevelAfter     int           `json:"levelAfter,omitempty"`
	LeveledUp      bool          `json:"leveledUp,omitempty"`
	Streak         int           `json:"streak,omitempty"`
	UnlockedBadges []badge.Badge `json:"unlockedBadges,omitempty"`
}

func NoOutcome() Outcome {
	return Outcome{Kind: OutcomeNone}
}
