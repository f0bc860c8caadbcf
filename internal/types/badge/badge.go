package badge

import "time"

type RequirementKind string

const (
	ReqQuestCount        RequirementKind = "quest_count"
	ReqHabitStreak       RequirementKind = "habit_streak"
	ReqFocusSessionCount RequirementKind = "focus_session_count"
	ReqUserLevel         RequirementKind = "user_level"
)

// Requirement is the machine-checkable unlock condition: a counter kind
// plus the threshold it must reach. Structured instead of free text so the
// unlock sweep is an exhaustive switch, not string parsing.
type Requirement struct {
	Kind      RequirementKind `json:"kind" firestore:"kind"`
	Threshold int             `json:"threshold" firestore:"threshold"`
}

type Badge struct {
	ID          string      `json:"id" firestore:"id"`
	Name        string      `json:"name" firestore:"name"`
	Description string      `json:"description" firestore:"description"`
	Icon        string      `json:"icon,omitempty" firestore:"icon"`
	Requirement Requirement `json:"requirement" firestore:"requirement"`
	// IsLocked only ever transitions true -> false; nothing re-locks a badge.
	IsLocked   bool       `json:"isLocked" firestore:"isLocked"`
	UnlockedAt *time.Time `json:"unlockedAt,omitempty" firestore:"unlockedAt"`
}

func (b *Badge) Clone() *Badge {
	if b == nil {
		return nil
	}
	cp := *b
	if b.UnlockedAt != nil {
		at := *b.UnlockedAt
		cp.UnlockedAt = &at
	}
	return &cp
}

// Defaults returns the badge catalog every fresh snapshot starts with.
func Defaults() []Badge {
	return []Badge{
		{
			ID:          "first-quest",
			Name:        "First Steps",
			Description: "Complete your first quest",
			Icon:        "footprints",
			Requirement: Requirement{Kind: ReqQuestCount, Threshold: 1},
			IsLocked:    true,
		},
		{
			ID:          "week-streak",
			Name:        "Week Warrior",
			Description: "Keep a habit streak alive for 7 days",
			Icon:        "flame",
			Requirement: Requirement{Kind: ReqHabitStreak, Threshold: 7},
			IsLocked:    true,
		},
		{
			ID:          "quest-50",
			Name:        "Quest Veteran",
			Description: "Complete 50 quests",
			Icon:        "swords",
			Requirement: Requirement{Kind: ReqQuestCount, Threshold: 50},
			IsLocked:    true,
		},
		{
			ID:          "focus-100",
			Name:        "Deep Worker",
			Description: "Finish 100 focus sessions",
			Icon:        "brain",
			Requirement: Requirement{Kind: ReqFocusSessionCount, Threshold: 100},
			IsLocked:    true,
		},
		{
			ID:          "level-50",
			Name:        "Halfway to Legend",
			Description: "Reach level 50",
			Icon:        "crown",
			Requirement: Requirement{Kind: ReqUserLevel, Threshold: 50},
			IsLocked:    true,
		},
	}
}
