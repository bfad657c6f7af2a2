package domain

import "math"

// Level derives the display level from lifetime experience.
// Level n requires n*100 more experience than level n-1: 0-99 is 1, 100-299 is 2,
// 300-599 is 3 and so on.
func Level(exp int) int {
	level := 1
	required := 0
	for {
		required += level * 100
		if exp < required {
			return level
		}
		level++
	}
}

// ExperienceForNextLevel is the experience span of the given level.
func ExperienceForNextLevel(level int) int {
	return level * 100
}

// LevelProgress returns the percentage toward the next level, clamped to [0, 100].
func LevelProgress(exp, level int) float64 {
	floor := (level - 1) * 100
	span := level*100 - floor
	if span <= 0 {
		return 0
	}
	progress := float64(exp-floor) / float64(span) * 100
	return math.Min(math.Max(progress, 0), 100)
}

// Accuracy returns the rounded percentage of correct answers.
func Accuracy(correct, total int) int {
	if total <= 0 {
		return 0
	}
	return int(math.Floor(float64(correct)/float64(total)*100 + 0.5))
}

// NewProfile attaches derived level data to a user.
func NewProfile(u User) Profile {
	level := Level(u.Experience)
	return Profile{
		User:              u,
		Level:             level,
		NextLevelExp:      ExperienceForNextLevel(level),
		LevelProgressPerc: LevelProgress(u.Experience, level),
	}
}
