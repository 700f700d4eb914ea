package dashboard

import (
	"context"
	"time"

	"github.com/abhisek/learnlens/internal/event"
	"github.com/abhisek/learnlens/internal/mastery"
	"github.com/abhisek/learnlens/internal/progression"
	"github.com/abhisek/learnlens/internal/question"
	"github.com/abhisek/learnlens/internal/spacedrep"
)

// Snapshot is a consistent copy of one user's state taken under a single
// read lock. Every field reflects the same set of recorded events.
type Snapshot struct {
	UserID    string
	Now       time.Time
	Mastery   []mastery.TopicMastery // score descending
	Cards     []spacedrep.CardState  // every graded question
	Due       []spacedrep.CardState  // due queue order
	Progress  progression.Progress
	Recent    []event.AnswerEvent // newest last
	Questions []question.Question // the user's registered questions
}

// Source provides snapshots. recent bounds the number of events copied.
type Source interface {
	Snapshot(ctx context.Context, userID string, now time.Time, recent int) (*Snapshot, error)
}
