package user

import "time"

// User is the authenticated owner of a snapshot. The progression fields
// (Level, XP, XPToNextLevel, TotalXP) are recomputed together after every
// XP grant; nothing writes them individually.
type User struct {
	ID    string `json:"id" firestore:"id"`
	Name  string `json:"name" firestore:"name"`
	Email string `json:"email" firestore:"email"`

	Level         int `json:"level" firestore:"level"`
	XP            int `json:"xp" firestore:"xp"`
	XPToNextLevel int `json:"xpToNextLevel" firestore:"xpToNextLevel"`
	TotalXP       int `json:"totalXP" firestore:"totalXP"`

	Class          string         `json:"class,omitempty" firestore:"class"`
	DailyGoal      int            `json:"dailyGoal,omitempty" firestore:"dailyGoal"`
	WeeklySchedule map[string]int `json:"weeklySchedule,omitempty" firestore:"weeklySchedule"`
	// Timezone is the IANA zone name the client reports, e.g. "Europe/Sofia".
	// Daily rollover and habit date-keys are computed in this zone, not UTC.
	Timezone string `json:"timezone,omitempty" firestore:"timezone"`

	CreatedAt time.Time `json:"createdAt" firestore:"createdAt"`
}

func (u *User) Clone() *User {
	if u == nil {
		return nil
	}
	cp := *u
	if u.WeeklySchedule != nil {
		cp.WeeklySchedule = make(map[string]int, len(u.WeeklySchedule))
		for k, v := range u.WeeklySchedule {
			cp.WeeklySchedule[k] = v
		}
	}
	return &cp
}

type UpdateProfileRequest struct {
	Name           *string        `json:"name,omitempty"`
	Class          *string        `json:"class,omitempty"`
	DailyGoal      *int           `json:"dailyGoal,omitempty"`
	WeeklySchedule map[string]int `json:"weeklySchedule,omitempty"`
	Timezone       *string        `json:"timezone,omitempty"`
}

type OnboardingRequest struct {
	Class     string `json:"class"`
	DailyGoal int    `json:"dailyGoal"`
	Timezone  string `json:"timezone"`
}
