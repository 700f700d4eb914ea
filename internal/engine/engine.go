package engine

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/abhisek/learnlens/internal/dashboard"
	"github.com/abhisek/learnlens/internal/event"
	"github.com/abhisek/learnlens/internal/mastery"
	"github.com/abhisek/learnlens/internal/progression"
	"github.com/abhisek/learnlens/internal/question"
	"github.com/abhisek/learnlens/internal/spacedrep"
	"github.com/abhisek/learnlens/internal/store"
)

// Repos are the persistence dependencies of the engine.
type Repos struct {
	Events      store.EventRepo
	Projections store.ProjectionRepo
	Questions   store.QuestionRepo
}

// Engine owns every user's projections. Each user is a single writer:
// recording holds the user's lock across validation, persistence and the
// in-memory swap, so readers never see a partially applied event.
type Engine struct {
	registry *question.Registry
	recorder *event.Recorder
	repos    Repos
	logger   *zap.Logger
	baseXP   int
	now      func() time.Time

	mu    sync.Mutex
	users map[string]*userState
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the logger used for reconciliation reports.
func WithLogger(l *zap.Logger) Option {
	return func(e *Engine) { e.logger = l }
}

// WithBaseXP sets the base XP for questions without a known difficulty.
func WithBaseXP(xp int) Option {
	return func(e *Engine) { e.baseXP = xp }
}

// WithClock sets the clock used for events without a timestamp.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// New creates an engine. Call Load before serving to restore state from
// the store; users not loaded up front are replayed on first access.
func New(registry *question.Registry, repos Repos, opts ...Option) *Engine {
	e := &Engine{
		registry: registry,
		repos:    repos,
		logger:   zap.NewNop(),
		baseXP:   progression.DefaultBaseXP,
		now:      func() time.Time { return time.Now().UTC() },
		users:    make(map[string]*userState),
	}
	for _, opt := range opts {
		opt(e)
	}
	e.recorder = event.NewRecorder(registry, event.WithClock(e.now))
	return e
}

// Registry returns the question registry.
func (e *Engine) Registry() *question.Registry {
	return e.registry
}

// Result is the outcome of recording one answer.
type Result struct {
	Event          event.AnswerEvent     `json:"event"`
	Topic          string                `json:"topic"`
	Mastery        float64               `json:"mastery"`
	NextDifficulty question.Difficulty   `json:"next_difficulty"`
	Card           spacedrep.CardState   `json:"schedule"`
	XPEarned       int                   `json:"xp_earned"`
	Level          progression.LevelInfo `json:"level"`
	LevelUp        bool                  `json:"level_up"`
	Streak         int                   `json:"streak"`
}

// Record validates sub, appends the event and updates mastery, schedule and
// progression as one unit. On any error nothing changes, in memory or on
// disk.
func (e *Engine) Record(ctx context.Context, sub event.Submission) (*Result, error) {
	us, err := e.lockUser(ctx, sub.UserID)
	if err != nil {
		return nil, err
	}
	defer us.mu.Unlock()

	ev, err := e.recorder.Record(sub, us.lastAt(), us.pending[sub.QuestionID])
	if err != nil {
		return nil, err
	}

	fx := us.compute(ev, e.baseXP)
	seq, err := e.repos.Events.AppendAnswerEvent(ctx, ev.ToData(), projection(ev.UserID, fx))
	if err != nil {
		return nil, fmt.Errorf("append answer event: %w", err)
	}
	ev.Sequence = seq

	levelBefore := us.progress.Level()
	us.commit(ev, fx)

	return &Result{
		Event:          ev,
		Topic:          fx.mastery.Topic.String(),
		Mastery:        fx.mastery.Score,
		NextDifficulty: mastery.AdaptiveDifficulty(fx.mastery.Score),
		Card:           fx.card,
		XPEarned:       fx.xp,
		Level:          progression.Describe(fx.progress.XP),
		LevelUp:        fx.progress.Level() > levelBefore,
		Streak:         fx.progress.Streak,
	}, nil
}

// RequestHint reveals a hint and raises the pending hint level of the
// question. The level is folded into the next answer for that question.
func (e *Engine) RequestHint(ctx context.Context, req event.HintRequest) (event.HintGrant, error) {
	us, err := e.lockUser(ctx, req.UserID)
	if err != nil {
		return event.HintGrant{}, err
	}
	defer us.mu.Unlock()

	grant, err := e.recorder.Hint(req, us.pending[req.QuestionID])
	if err != nil {
		return event.HintGrant{}, err
	}
	us.pending[req.QuestionID] = grant.Level
	return grant, nil
}

// RegisterQuestions validates and persists questions, then makes them
// available for answering. The registry stays locked until the store has
// accepted the batch, so memory and disk agree on every question's owner.
func (e *Engine) RegisterQuestions(ctx context.Context, qs ...question.Question) error {
	return e.registry.Commit(qs, func(prepared []question.Question) error {
		now := e.now()
		for i := range prepared {
			if prepared[i].CreatedAt.IsZero() {
				prepared[i].CreatedAt = now
			}
		}
		if e.repos.Questions == nil {
			return nil
		}
		data := make([]store.QuestionData, len(prepared))
		for i, q := range prepared {
			data[i] = q.ToData()
		}
		if err := e.repos.Questions.SaveQuestions(ctx, data); err != nil {
			return fmt.Errorf("save questions: %w", err)
		}
		return nil
	})
}

// DueQueue returns the user's cards due at now in review order.
func (e *Engine) DueQueue(ctx context.Context, userID string, now time.Time) ([]spacedrep.CardState, error) {
	us, err := e.rlockUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	defer us.mu.RUnlock()
	return us.cards.DueQueue(now, us.mastery.Score), nil
}

// Progress returns the user's progression ledger.
func (e *Engine) Progress(ctx context.Context, userID string) (progression.Progress, error) {
	us, err := e.rlockUser(ctx, userID)
	if err != nil {
		return progression.Progress{}, err
	}
	defer us.mu.RUnlock()
	return us.progress, nil
}

// Stats returns the lightweight XP, streak and level view.
func (e *Engine) Stats(ctx context.Context, userID string) (*dashboard.Summary, error) {
	p, err := e.Progress(ctx, userID)
	if err != nil {
		return nil, err
	}
	return dashboard.Summarize(p), nil
}

// Mastery returns the user's topic mastery, highest score first.
func (e *Engine) Mastery(ctx context.Context, userID string) ([]mastery.TopicMastery, error) {
	us, err := e.rlockUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	defer us.mu.RUnlock()
	return us.mastery.All(), nil
}

// Snapshot copies a consistent view of the user under one read lock. recent
// bounds the number of trailing events included.
func (e *Engine) Snapshot(ctx context.Context, userID string, now time.Time, recent int) (*dashboard.Snapshot, error) {
	us, err := e.rlockUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	defer us.mu.RUnlock()

	snap := &dashboard.Snapshot{
		UserID:    userID,
		Now:       now,
		Mastery:   us.mastery.All(),
		Cards:     us.cards.All(),
		Due:       us.cards.DueQueue(now, us.mastery.Score),
		Progress:  us.progress,
		Questions: e.registry.ForUser(userID),
	}
	if recent > 0 {
		from := max(0, len(us.events)-recent)
		snap.Recent = append([]event.AnswerEvent(nil), us.events[from:]...)
	}
	return snap, nil
}

// Events returns a copy of the user's recorded events in sequence order.
func (e *Engine) Events(ctx context.Context, userID string) ([]event.AnswerEvent, error) {
	us, err := e.rlockUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	defer us.mu.RUnlock()
	return append([]event.AnswerEvent(nil), us.events...), nil
}

// slot returns the state holder of a user, creating an unloaded one.
func (e *Engine) slot(userID string) *userState {
	e.mu.Lock()
	defer e.mu.Unlock()
	us, ok := e.users[userID]
	if !ok {
		us = newUserState()
		e.users[userID] = us
	}
	return us
}

// lockUser returns the loaded state of a user with its write lock held.
func (e *Engine) lockUser(ctx context.Context, userID string) (*userState, error) {
	us := e.slot(userID)
	us.mu.Lock()
	if !us.loaded {
		if err := e.loadInto(ctx, us, userID); err != nil {
			us.mu.Unlock()
			return nil, err
		}
	}
	return us, nil
}

// existing returns the state holder of a user without creating one.
func (e *Engine) existing(userID string) (*userState, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	us, ok := e.users[userID]
	return us, ok
}

// rlockUser returns the loaded state of a user with its read lock held. A
// user with no state and no recorded events reads as an empty state that
// is not kept.
func (e *Engine) rlockUser(ctx context.Context, userID string) (*userState, error) {
	us, ok := e.existing(userID)
	if !ok {
		events, err := e.userEvents(ctx, userID)
		if err != nil {
			return nil, err
		}
		if len(events) == 0 {
			us = replay(nil, e.baseXP)
			us.mu.RLock()
			return us, nil
		}
		us = e.slot(userID)
	}
	us.mu.RLock()
	if us.loaded {
		return us, nil
	}
	us.mu.RUnlock()

	us, err := e.lockUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	us.mu.Unlock()
	us.mu.RLock()
	return us, nil
}

// loadInto replays the user's log into us. The caller holds us.mu.
func (e *Engine) loadInto(ctx context.Context, us *userState, userID string) error {
	events, err := e.userEvents(ctx, userID)
	if err != nil {
		return err
	}
	fresh := replay(events, e.baseXP)
	us.mastery, us.cards, us.progress, us.events = fresh.mastery, fresh.cards, fresh.progress, fresh.events
	us.loaded = true
	return nil
}

func (e *Engine) userEvents(ctx context.Context, userID string) ([]event.AnswerEvent, error) {
	rows, err := e.repos.Events.QueryAnswerEvents(ctx, store.QueryOpts{UserID: userID})
	if err != nil {
		return nil, fmt.Errorf("load events for %q: %w", userID, err)
	}
	events := make([]event.AnswerEvent, len(rows))
	for i, r := range rows {
		events[i] = event.FromData(r)
	}
	return events, nil
}
