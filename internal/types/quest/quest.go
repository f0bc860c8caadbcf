package quest

import "time"

type Difficulty string

type Status string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyNormal Difficulty = "normal"
	DifficultyHard   Difficulty = "hard"

	StatusPending   Status = "pending"
	StatusCompleted Status = "completed"
)

// XPReward returns the XP paid for completing a quest of the given
// difficulty. Unrecognized difficulties pay the normal reward.
func (d Difficulty) XPReward() int {
	switch d {
	case DifficultyEasy:
		return 10
	case DifficultyHard:
		return 50
	default:
		return 25
	}
}

// Normalize maps unknown difficulty values to normal instead of letting
// them flow through unchecked. Intentional defaulting, not an accident.
func (d Difficulty) Normalize() Difficulty {
	switch d {
	case DifficultyEasy, DifficultyNormal, DifficultyHard:
		return d
	}
	return DifficultyNormal
}

type Subtask struct {
	ID        string `json:"id" firestore:"id"`
	Title     string `json:"title" firestore:"title"`
	Completed bool   `json:"completed" firestore:"completed"`
}

type Quest struct {
	ID          string     `json:"id" firestore:"id"`
	Title       string     `json:"title" firestore:"title"`
	Description string     `json:"description,omitempty" firestore:"description"`
	Difficulty  Difficulty `json:"difficulty" firestore:"difficulty"`
	Status      Status     `json:"status" firestore:"status"`
	// XPReward is frozen at creation time so later difficulty edits never
	// change what a completion already paid out.
	XPReward    int        `json:"xpReward" firestore:"xpReward"`
	DueDate     *time.Time `json:"dueDate,omitempty" firestore:"dueDate"`
	IsDaily     bool       `json:"isDaily" firestore:"isDaily"`
	Subtasks    []Subtask  `json:"subtasks,omitempty" firestore:"subtasks"`
	Tags        []string   `json:"tags,omitempty" firestore:"tags"`
	CreatedAt   time.Time  `json:"createdAt" firestore:"createdAt"`
	CompletedAt *time.Time `json:"completedAt,omitempty" firestore:"completedAt"`
}

func (q *Quest) Clone() *Quest {
	if q == nil {
		return nil
	}
	cp := *q
	if q.Subtasks != nil {
		cp.Subtasks = make([]Subtask, len(q.Subtasks))
		copy(cp.Subtasks, q.Subtasks)
	}
	if q.Tags != nil {
		cp.Tags = make([]string, len(q.Tags))
		copy(cp.Tags, q.Tags)
	}
	if q.DueDate != nil {
		due := *q.DueDate
		cp.DueDate = &due
	}
	if q.CompletedAt != nil {
		done := *q.CompletedAt
		cp.CompletedAt = &done
	}
	return &cp
}
