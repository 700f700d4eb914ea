package progression

import "time"

// utcDay truncates t to the start of its UTC calendar day.
func utcDay(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// NextStreak returns the streak after activity at now, given the previous
// streak and the time of the last activity. Days are UTC calendar days: the
// same day keeps the streak, the following day extends it, anything else
// (including no previous activity) starts over at 1.
func NextStreak(streak int, lastActive, now time.Time) int {
	if lastActive.IsZero() || streak <= 0 {
		return 1
	}
	last, today := utcDay(lastActive), utcDay(now)
	switch {
	case today.Equal(last):
		return streak
	case today.Equal(last.AddDate(0, 0, 1)):
		return streak + 1
	default:
		return 1
	}
}
