package domain

// levelThresholds holds the highest answered-quiz count that still maps to
// each level. Counts beyond the last entry are level 10.
var levelThresholds = [...]int{5, 12, 20, 30, 45, 60, 80, 100, 125}

// MaxLevel is the highest reachable level.
const MaxLevel = len(levelThresholds) + 1

// LevelForCount maps a cumulative completed-quiz count to a level in 1..10.
// Negative counts clamp to level 1 so the function stays total and monotonic.
func LevelForCount(totalQuizzesAnswered int) int {
	for i, max := range levelThresholds {
		if totalQuizzesAnswered <= max {
			return i + 1
		}
	}
	return MaxLevel
}
