package appstate

import (
	"time"

	"questifyAPI/internal/types/badge"
	"questifyAPI/internal/types/focus"
	"questifyAPI/internal/types/habit"
	"questifyAPI/internal/types/quest"
	"questifyAPI/internal/types/user"
)

// KeyPrefix namespaces snapshot keys in the local stores so a schema bump
// can change the prefix without colliding with old rows.
const KeyPrefix = "questify:v1:"

func Key(userID string) string {
	return KeyPrefix + userID
}

// AppState is the whole progression state of one user. It is treated as an
// immutable value: reducers clone it, mutate the clone and swap the pointer,
// so readers never see a half-applied action.
type AppState struct {
	User          *user.User      `json:"user" firestore:"user"`
	Quests        []quest.Quest   `json:"quests" firestore:"quests"`
	Habits        []habit.Habit   `json:"habits" firestore:"habits"`
	FocusSessions []focus.Session `json:"focusSessions" firestore:"focusSessions"`
	Badges        []badge.Badge   `json:"badges" firestore:"badges"`

	IsOnboarded bool `json:"isOnboarded" firestore:"isOnboarded"`

	// LastDailyReset is the date key ("2006-01-02", user timezone) of the
	// last completed rollover. Empty on brand-new snapshots.
	LastDailyReset string `json:"lastDailyReset,omitempty" firestore:"lastDailyReset"`

	// MoodByDate maps a date key to the mood label the user logged that day.
	MoodByDate map[string]string `json:"moodByDate,omitempty" firestore:"moodByDate"`

	UpdatedAt time.Time `json:"updatedAt" firestore:"updatedAt"`
}

// Default returns the anonymous snapshot: no user, empty collections, the
// default badge catalog. Logout resets to this.
func Default() *AppState {
	return &AppState{
		Quests:        []quest.Quest{},
		Habits:        []habit.Habit{},
		FocusSessions: []focus.Session{},
		Badges:        badge.Defaults(),
		MoodByDate:    map[string]string{},
	}
}

// New returns the starting snapshot for a freshly signed-up user: level 1,
// zero XP, the default badge catalog and nothing else.
func New(u *user.User, now time.Time) *AppState {
	if u != nil {
		if u.Level == 0 {
			u.Level = 1
		}
		if u.CreatedAt.IsZero() {
			u.CreatedAt = now
		}
	}
	s := Default()
	s.User = u
	s.UpdatedAt = now
	return s
}

// Clone deep-copies the snapshot. Every reducer starts from a Clone so the
// previously published pointer stays valid for concurrent readers.
func (s *AppState) Clone() *AppState {
	if s == nil {
		return nil
	}
	cp := *s
	cp.User = s.User.Clone()
	if s.Quests != nil {
		cp.Quests = make([]quest.Quest, 0, len(s.Quests))
		for i := range s.Quests {
			cp.Quests = append(cp.Quests, *s.Quests[i].Clone())
		}
	}
	if s.Habits != nil {
		cp.Habits = make([]habit.Habit, 0, len(s.Habits))
		for i := range s.Habits {
			cp.Habits = append(cp.Habits, *s.Habits[i].Clone())
		}
	}
	if s.FocusSessions != nil {
		cp.FocusSessions = make([]focus.Session, len(s.FocusSessions))
		copy(cp.FocusSessions, s.FocusSessions)
	}
	if s.Badges != nil {
		cp.Badges = make([]badge.Badge, 0, len(s.Badges))
		for i := range s.Badges {
			cp.Badges = append(cp.Badges, *s.Badges[i].Clone())
		}
	}
	if s.MoodByDate != nil {
		cp.MoodByDate = make(map[string]string, len(s.MoodByDate))
		for k, v := range s.MoodByDate {
			cp.MoodByDate[k] = v
		}
	}
	return &cp
}

// QuestByID returns a pointer into the snapshot's quest slice, or nil.
func (s *AppState) QuestByID(id string) *quest.Quest {
	for i := range s.Quests {
		if s.Quests[i].ID == id {
			return &s.Quests[i]
		}
	}
	return nil
}

// HabitByID returns a pointer into the snapshot's habit slice, or nil.
func (s *AppState) HabitByID(id string) *habit.Habit {
	for i := range s.Habits {
		if s.Habits[i].ID == id {
			return &s.Habits[i]
		}
	}
	return nil
}

// CompletedQuestCount counts quests whose status is completed.
func (s *AppState) CompletedQuestCount() int {
	n := 0
	for i := range s.Quests {
		if s.Quests[i].Status == quest.StatusCompleted {
			n++
		}
	}
	return n
}

// CompletedFocusSessionCount counts finished focus sessions.
func (s *AppState) CompletedFocusSessionCount() int {
	n := 0
	for i := range s.FocusSessions {
		if s.FocusSessions[i].Completed {
			n++
		}
	}
	return n
}

// BestLongestStreak returns the highest longest-streak across all habits.
func (s *AppState) BestLongestStreak() int {
	best := 0
	for i := range s.Habits {
		if s.Habits[i].LongestStreak > best {
			best = s.Habits[i].LongestStreak
		}
	}
	return best
}
