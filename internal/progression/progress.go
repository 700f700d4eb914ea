package progression

import (
	"math"
	"time"

	"github.com/abhisek/learnlens/internal/store"
)

// Progress is the per-user progression ledger.
type Progress struct {
	XP            int
	Streak        int
	LongestStreak int
	LastActive    time.Time
	TotalAnswered int
	TotalCorrect  int
	HintsUsed     int
}

// Outcome is the part of an answer event the ledger consumes.
type Outcome struct {
	Correct   bool
	HintsUsed int
	BaseXP    int
	At        time.Time
}

// Apply returns the ledger after one answer and the XP it earned. p is not
// modified.
func (p Progress) Apply(o Outcome) (Progress, int) {
	next := p
	delta := AwardXP(o.Correct, o.HintsUsed, o.BaseXP)
	next.XP += delta
	next.Streak = NextStreak(p.Streak, p.LastActive, o.At)
	next.LongestStreak = max(p.LongestStreak, next.Streak)
	if o.At.After(p.LastActive) {
		next.LastActive = o.At
	}
	next.TotalAnswered++
	if o.Correct {
		next.TotalCorrect++
	}
	next.HintsUsed += max(0, o.HintsUsed)
	return next, delta
}

// Level returns the level derived from XP.
func (p Progress) Level() int {
	return Level(p.XP)
}

// Accuracy returns the percentage of correct answers, rounded to one
// decimal place, or 0 with no answers.
func (p Progress) Accuracy() float64 {
	if p.TotalAnswered == 0 {
		return 0
	}
	pct := float64(p.TotalCorrect) / float64(p.TotalAnswered) * 100
	return math.Round(pct*10) / 10
}

// ToData converts the ledger to its cache row.
func (p Progress) ToData(userID string) store.UserProgressData {
	return store.UserProgressData{
		UserID:        userID,
		XP:            p.XP,
		Streak:        p.Streak,
		LongestStreak: p.LongestStreak,
		LastActive:    p.LastActive,
		TotalAnswered: p.TotalAnswered,
		TotalCorrect:  p.TotalCorrect,
		HintsUsed:     p.HintsUsed,
	}
}

// FromData rebuilds a ledger from its cache row. A nil row is the empty
// ledger.
func FromData(d *store.UserProgressData) Progress {
	if d == nil {
		return Progress{}
	}
	return Progress{
		XP:            d.XP,
		Streak:        d.Streak,
		LongestStreak: d.LongestStreak,
		LastActive:    d.LastActive,
		TotalAnswered: d.TotalAnswered,
		TotalCorrect:  d.TotalCorrect,
		HintsUsed:     d.HintsUsed,
	}
}
