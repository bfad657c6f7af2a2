package app

const (
	basePoints         = 10
	speedWindowSeconds = 30
	speedStepSeconds   = 3
	maxSpeedBonus      = 10
	streakStep         = 5
	streakBonusPoints  = 5
)

// CalculatePoints scores one answered exercise.
// A correct answer earns the base, a speed bonus of one point per three seconds
// left in a thirty second window (at most ten), and five points for every five
// consecutive perfect rounds.
func CalculatePoints(correct bool, elapsedSeconds, streak int) int {
	if !correct {
		return 0
	}
	if elapsedSeconds < 0 {
		elapsedSeconds = 0
	}
	if streak < 0 {
		streak = 0
	}

	speed := 0
	if elapsedSeconds < speedWindowSeconds {
		speed = (speedWindowSeconds - elapsedSeconds) / speedStepSeconds
	}
	if speed > maxSpeedBonus {
		speed = maxSpeedBonus
	}

	return basePoints + speed + (streak/streakStep)*streakBonusPoints
}
