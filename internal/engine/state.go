package engine

import (
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/abhisek/learnlens/internal/event"
	"github.com/abhisek/learnlens/internal/mastery"
	"github.com/abhisek/learnlens/internal/progression"
	"github.com/abhisek/learnlens/internal/spacedrep"
	"github.com/abhisek/learnlens/internal/store"
)

// userState is everything the engine holds for one user. mu guards every
// field; writers hold it for the whole validate, persist, apply sequence.
type userState struct {
	mu sync.RWMutex

	loaded   bool
	mastery  *mastery.Model
	cards    *spacedrep.Scheduler
	progress progression.Progress
	events   []event.AnswerEvent
	pending  map[string]int // question id -> highest hint level revealed
}

func newUserState() *userState {
	return &userState{
		mastery: mastery.NewModel(),
		cards:   spacedrep.NewScheduler(),
		pending: make(map[string]int),
	}
}

// lastAt returns the timestamp of the user's latest event, or zero.
func (us *userState) lastAt() time.Time {
	if len(us.events) == 0 {
		return time.Time{}
	}
	return us.events[len(us.events)-1].Timestamp
}

// effects is what one event does to the three projections.
type effects struct {
	mastery  mastery.TopicMastery
	card     spacedrep.CardState
	progress progression.Progress
	xp       int
}

// compute derives the effects of ev without touching us.
func (us *userState) compute(ev event.AnswerEvent, defaultBaseXP int) effects {
	topic := mastery.Topic{DocumentID: ev.DocumentID, Name: ev.Topic}

	prev, seen := us.mastery.Get(topic)
	if !seen {
		prev = mastery.TopicMastery{Topic: topic}
	}
	tm := mastery.Step(prev, seen, ev.Correct, ev.HintsUsed, ev.Timestamp)

	card, ok := us.cards.Get(ev.QuestionID)
	if !ok {
		card = spacedrep.NewCard(ev.QuestionID, topic)
	}
	card = spacedrep.Grade(card, spacedrep.QualityFor(ev.Correct, ev.HintsUsed), ev.Timestamp)

	prog, xp := us.progress.Apply(progression.Outcome{
		Correct:   ev.Correct,
		HintsUsed: ev.HintsUsed,
		BaseXP:    progression.BaseXP(ev.Difficulty, defaultBaseXP),
		At:        ev.Timestamp,
	})

	return effects{mastery: tm, card: card, progress: prog, xp: xp}
}

// commit applies previously computed effects of ev.
func (us *userState) commit(ev event.AnswerEvent, fx effects) {
	us.mastery.Put(fx.mastery)
	us.cards.Put(fx.card)
	us.progress = fx.progress
	us.events = append(us.events, ev)
	delete(us.pending, ev.QuestionID)
}

// projection returns the cache rows an event with effects fx writes.
func projection(userID string, fx effects) store.ProjectionData {
	return store.ProjectionData{
		Mastery:  mastery.ToData(userID, fx.mastery),
		Card:     spacedrep.ToData(userID, fx.card),
		Progress: fx.progress.ToData(userID),
	}
}

// snapshotData exports every projection of the user.
func (us *userState) snapshotData(userID string) *store.UserProjectionData {
	data := &store.UserProjectionData{
		Mastery: us.mastery.SnapshotData(userID),
		Cards:   us.cards.SnapshotData(userID),
	}
	if len(us.events) > 0 {
		p := us.progress.ToData(userID)
		data.Progress = &p
	}
	return data
}

// replay rebuilds a user's state from events in sequence order.
func replay(events []event.AnswerEvent, defaultBaseXP int) *userState {
	us := newUserState()
	for _, ev := range events {
		us.commit(ev, us.compute(ev, defaultBaseXP))
	}
	us.loaded = true
	return us
}

// diff lists every difference between two projection sets. want is the
// replayed truth.
func diff(got, want *store.UserProjectionData) []string {
	var out []string

	gm := make(map[string]store.TopicMasteryData, len(got.Mastery))
	for _, m := range got.Mastery {
		gm[m.DocumentID+"/"+m.Topic] = m
	}
	for _, w := range want.Mastery {
		key := w.DocumentID + "/" + w.Topic
		g, ok := gm[key]
		delete(gm, key)
		switch {
		case !ok:
			out = append(out, fmt.Sprintf("mastery %s missing", key))
		case math.Abs(g.Score-w.Score) > 1e-9 || g.Answered != w.Answered || g.Correct != w.Correct ||
			!g.LastAnsweredAt.Equal(w.LastAnsweredAt):
			out = append(out, fmt.Sprintf("mastery %s: score %.4f/%d/%d, want %.4f/%d/%d",
				key, g.Score, g.Correct, g.Answered, w.Score, w.Correct, w.Answered))
		}
	}
	for key := range gm {
		out = append(out, fmt.Sprintf("mastery %s unexpected", key))
	}

	gc := make(map[string]store.CardScheduleData, len(got.Cards))
	for _, c := range got.Cards {
		gc[c.QuestionID] = c
	}
	for _, w := range want.Cards {
		g, ok := gc[w.QuestionID]
		delete(gc, w.QuestionID)
		switch {
		case !ok:
			out = append(out, fmt.Sprintf("card %s missing", w.QuestionID))
		case g.Repetitions != w.Repetitions || g.IntervalDays != w.IntervalDays ||
			math.Abs(g.Ease-w.Ease) > 1e-9 || !g.Due.Equal(w.Due) || !g.LastReviewed.Equal(w.LastReviewed):
			out = append(out, fmt.Sprintf("card %s: rep %d interval %d ease %.2f, want rep %d interval %d ease %.2f",
				w.QuestionID, g.Repetitions, g.IntervalDays, g.Ease, w.Repetitions, w.IntervalDays, w.Ease))
		}
	}
	for id := range gc {
		out = append(out, fmt.Sprintf("card %s unexpected", id))
	}

	switch {
	case got.Progress == nil && want.Progress == nil:
	case got.Progress == nil:
		out = append(out, "progress missing")
	case want.Progress == nil:
		out = append(out, "progress unexpected")
	default:
		g, w := *got.Progress, *want.Progress
		g.LastActive, w.LastActive = time.Time{}, time.Time{}
		if g != w || !got.Progress.LastActive.Equal(want.Progress.LastActive) {
			out = append(out, fmt.Sprintf("progress: xp %d streak %d answered %d, want xp %d streak %d answered %d",
				g.XP, g.Streak, g.TotalAnswered, w.XP, w.Streak, w.TotalAnswered))
		}
	}
	return out
}
