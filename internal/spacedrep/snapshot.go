package spacedrep

import (
	"github.com/abhisek/learnlens/internal/mastery"
	"github.com/abhisek/learnlens/internal/store"
)

// ToData converts a card to its cache row.
func ToData(userID string, c CardState) store.CardScheduleData {
	return store.CardScheduleData{
		UserID:       userID,
		QuestionID:   c.QuestionID,
		DocumentID:   c.Topic.DocumentID,
		Topic:        c.Topic.Name,
		Repetitions:  c.Repetitions,
		IntervalDays: c.IntervalDays,
		Ease:         c.Ease,
		Due:          c.Due,
		LastReviewed: c.LastReviewed,
	}
}

// FromData converts a cache row back to a card.
func FromData(d store.CardScheduleData) CardState {
	return CardState{
		QuestionID:   d.QuestionID,
		Topic:        mastery.Topic{DocumentID: d.DocumentID, Name: d.Topic},
		Repetitions:  d.Repetitions,
		IntervalDays: d.IntervalDays,
		Ease:         d.Ease,
		Due:          d.Due,
		LastReviewed: d.LastReviewed,
	}
}

// SnapshotData exports every card for persistence.
func (s *Scheduler) SnapshotData(userID string) []store.CardScheduleData {
	all := s.All()
	out := make([]store.CardScheduleData, len(all))
	for i, c := range all {
		out[i] = ToData(userID, c)
	}
	return out
}

// NewSchedulerFromData rebuilds a scheduler from cache rows.
func NewSchedulerFromData(rows []store.CardScheduleData) *Scheduler {
	s := NewScheduler()
	for _, r := range rows {
		s.Put(FromData(r))
	}
	return s
}
