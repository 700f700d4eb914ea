package progression

import "math"

// XPPerLevelUnit scales the quadratic level curve.
const XPPerLevelUnit = 100

// XPForLevel returns the total XP needed to reach level L: 100·(L−1)².
func XPForLevel(level int) int {
	if level <= 1 {
		return 0
	}
	n := level - 1
	return XPPerLevelUnit * n * n
}

// Level returns floor(sqrt(xp/100)) + 1. The float estimate is corrected
// in integers so exact boundaries land on the higher level.
func Level(xp int) int {
	if xp <= 0 {
		return 1
	}
	k := int(math.Sqrt(float64(xp) / XPPerLevelUnit))
	for XPPerLevelUnit*(k+1)*(k+1) <= xp {
		k++
	}
	for k > 0 && XPPerLevelUnit*k*k > xp {
		k--
	}
	return k + 1
}

// LevelInfo describes where a total XP sits on the level curve.
type LevelInfo struct {
	Level     int     `json:"level"`
	XPInLevel int     `json:"xp_in_level"`
	XPForNext int     `json:"xp_for_next"`
	Progress  float64 `json:"level_progress"`
}

// Describe returns the level, XP earned inside it, the XP width of the
// level and the fractional progress toward the next one, in [0,1).
func Describe(xp int) LevelInfo {
	xp = max(0, xp)
	l := Level(xp)
	lo, hi := XPForLevel(l), XPForLevel(l+1)
	span := hi - lo
	return LevelInfo{
		Level:     l,
		XPInLevel: xp - lo,
		XPForNext: span,
		Progress:  float64(xp-lo) / float64(span),
	}
}

// LevelProgress returns Describe(xp).Progress.
func LevelProgress(xp int) float64 {
	return Describe(xp).Progress
}
