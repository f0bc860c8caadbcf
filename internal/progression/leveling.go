package progression

import "questifyAPI/internal/types/user"

// XPForLevel returns the XP needed to advance from level to level+1.
// Linear curve: level 1 to 2 costs 100, level 2 to 3 costs 200, and so on.
// No upper bound.
func XPForLevel(level int) int {
	if level < 1 {
		level = 1
	}
	return 100 * level
}

// LevelFromTotalXP converts lifetime XP into (level, xpWithinLevel,
// xpToNextLevel) by consuming the curve from level 1 upward. Negative
// input is clamped to zero, so the result always has level >= 1 and
// 0 <= xpWithinLevel < xpToNextLevel.
func LevelFromTotalXP(totalXP int) (level, xpWithinLevel, xpToNextLevel int) {
	if totalXP < 0 {
		totalXP = 0
	}
	level = 1
	for totalXP >= XPForLevel(level) {
		totalXP -= XPForLevel(level)
		level++
	}
	return level, totalXP, XPForLevel(level)
}

// ApplyTotalXP recomputes Level, XP and XPToNextLevel from TotalXP. Runs
// after every XP change so the four fields never drift apart.
func ApplyTotalXP(u *user.User) {
	if u == nil {
		return
	}
	if u.TotalXP < 0 {
		u.TotalXP = 0
	}
	u.Level, u.XP, u.XPToNextLevel = LevelFromTotalXP(u.TotalXP)
}
