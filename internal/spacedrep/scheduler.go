package spacedrep

import (
	"sort"
	"time"

	"github.com/abhisek/learnlens/internal/mastery"
)

// MasteryLookup returns the current mastery score of a topic. The due queue
// uses it to put weaker topics first among cards due at the same time.
type MasteryLookup func(topic mastery.Topic) float64

// Scheduler tracks card state for every graded question of one user. It is
// not safe for concurrent use; the engine serializes access per user.
type Scheduler struct {
	cards map[string]*CardState
}

// NewScheduler creates an empty scheduler.
func NewScheduler() *Scheduler {
	return &Scheduler{cards: make(map[string]*CardState)}
}

// Get returns the card for a question, or false if it was never graded.
func (s *Scheduler) Get(questionID string) (CardState, bool) {
	c, ok := s.cards[questionID]
	if !ok {
		return CardState{}, false
	}
	return *c, true
}

// Put stores c, replacing any previous state for its question.
func (s *Scheduler) Put(c CardState) {
	cp := c
	s.cards[c.QuestionID] = &cp
}

// Grade applies a review of quality q to a question and returns the new
// state. Ungraded questions start from NewCard.
func (s *Scheduler) Grade(questionID string, topic mastery.Topic, q Quality, at time.Time) CardState {
	prev, ok := s.Get(questionID)
	if !ok {
		prev = NewCard(questionID, topic)
	}
	next := Grade(prev, q, at)
	s.Put(next)
	return next
}

// DueQueue returns the cards due at or before now, ordered by due time,
// then by lower owning-topic mastery, then by question id. It does not
// modify any state.
func (s *Scheduler) DueQueue(now time.Time, lookup MasteryLookup) []CardState {
	type dueCard struct {
		card    CardState
		mastery float64
	}
	var due []dueCard
	for _, c := range s.cards {
		if !c.IsDue(now) {
			continue
		}
		dc := dueCard{card: *c}
		if lookup != nil {
			dc.mastery = lookup(c.Topic)
		}
		due = append(due, dc)
	}

	sort.Slice(due, func(i, j int) bool {
		a, b := due[i], due[j]
		if !a.card.Due.Equal(b.card.Due) {
			return a.card.Due.Before(b.card.Due)
		}
		if a.mastery != b.mastery {
			return a.mastery < b.mastery
		}
		return a.card.QuestionID < b.card.QuestionID
	})

	out := make([]CardState, len(due))
	for i, d := range due {
		out[i] = d.card
	}
	return out
}

// All returns every card ordered by question id.
func (s *Scheduler) All() []CardState {
	out := make([]CardState, 0, len(s.cards))
	for _, c := range s.cards {
		out = append(out, *c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].QuestionID < out[j].QuestionID })
	return out
}

// Len returns the number of graded questions.
func (s *Scheduler) Len() int {
	return len(s.cards)
}

// Clone returns a deep copy of the scheduler.
func (s *Scheduler) Clone() *Scheduler {
	c := &Scheduler{cards: make(map[string]*CardState, len(s.cards))}
	for k, v := range s.cards {
		cp := *v
		c.cards[k] = &cp
	}
	return c
}
