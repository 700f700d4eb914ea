package spacedrep

import (
	"math"
	"time"
)

const (
	// InitialEase is the ease factor of a card that has never been graded.
	InitialEase = 2.5
	// MinEase is the floor the ease factor never drops below.
	MinEase = 1.3

	// FirstInterval and SecondInterval are the fixed intervals (days) after
	// the first and second successful review.
	FirstInterval  = 1
	SecondInterval = 6

	// PassingQuality is the lowest quality that counts as a successful recall.
	PassingQuality Quality = 3
)

// Quality is the SM-2 recall grade, 0 (blackout) to 5 (perfect).
type Quality int

// QualityFor is the single mapping from an answer outcome to SM-2 quality:
// incorrect is 0; correct with 0, 1, 2 or 3 hints is 5, 4, 3 or 2.
func QualityFor(correct bool, hintsUsed int) Quality {
	if !correct {
		return 0
	}
	hintsUsed = min(max(hintsUsed, 0), 3)
	return Quality(5 - hintsUsed)
}

// NextEase applies the SM-2 ease adjustment for quality q.
func NextEase(ease float64, q Quality) float64 {
	d := float64(5 - q)
	return math.Max(MinEase, ease+0.1-d*(0.08+d*0.02))
}

// Grade applies one review of quality q at time at to prev and returns the
// new card state. Ease is adjusted first; a failing grade resets the
// repetition count, a passing one grows the interval using the new ease.
func Grade(prev CardState, q Quality, at time.Time) CardState {
	q = min(max(q, 0), 5)
	next := prev
	if next.Ease == 0 {
		next.Ease = InitialEase
	}
	next.Ease = NextEase(next.Ease, q)

	if q < PassingQuality {
		next.Repetitions = 0
		next.IntervalDays = FirstInterval
	} else {
		next.Repetitions++
		switch next.Repetitions {
		case 1:
			next.IntervalDays = FirstInterval
		case 2:
			next.IntervalDays = SecondInterval
		default:
			next.IntervalDays = int(math.Round(float64(prev.IntervalDays) * next.Ease))
		}
	}

	next.LastReviewed = at
	next.Due = at.AddDate(0, 0, next.IntervalDays)
	return next
}
