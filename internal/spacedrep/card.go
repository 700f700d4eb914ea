package spacedrep

import (
	"time"

	"github.com/abhisek/learnlens/internal/mastery"
)

// CardState holds the SM-2 state for a single question of one user.
type CardState struct {
	QuestionID   string        `json:"question_id"`
	Topic        mastery.Topic `json:"-"`
	Repetitions  int           `json:"repetitions"`
	IntervalDays int           `json:"interval_days"`
	Ease         float64       `json:"ease"`
	Due          time.Time     `json:"due"`
	LastReviewed time.Time     `json:"last_reviewed"`
}

// NewCard returns the state of a question that has not been graded yet.
func NewCard(questionID string, topic mastery.Topic) CardState {
	return CardState{QuestionID: questionID, Topic: topic, Ease: InitialEase}
}

// IsDue returns true if the card is due for review (at or past its due time).
func (c *CardState) IsDue(now time.Time) bool {
	return !now.Before(c.Due)
}

// OverdueDays returns how many days past due the card is. Returns 0 if not yet due.
func (c *CardState) OverdueDays(now time.Time) float64 {
	if now.Before(c.Due) {
		return 0
	}
	return now.Sub(c.Due).Hours() / 24.0
}

// PastGrace returns true once the card is overdue by more than half its
// interval.
func (c *CardState) PastGrace(now time.Time) bool {
	if !c.IsDue(now) {
		return false
	}
	graceHours := float64(c.IntervalDays) * 0.5 * 24.0
	threshold := c.Due.Add(time.Duration(graceHours * float64(time.Hour)))
	return now.After(threshold)
}

// ReviewStatus describes a card's review status for display.
type ReviewStatus string

const (
	ReviewNotDue  ReviewStatus = "not_due"
	ReviewDue     ReviewStatus = "due"
	ReviewOverdue ReviewStatus = "overdue"
)

// Status returns the review status for display.
func (c *CardState) Status(now time.Time) ReviewStatus {
	switch {
	case c.PastGrace(now):
		return ReviewOverdue
	case c.IsDue(now):
		return ReviewDue
	default:
		return ReviewNotDue
	}
}

// DaysUntilReview returns the number of days until the next review.
// Returns 0 if already due.
func (c *CardState) DaysUntilReview(now time.Time) int {
	if c.IsDue(now) {
		return 0
	}
	return int(c.Due.Sub(now).Hours()/24.0) + 1
}
