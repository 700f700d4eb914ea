package engine

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/abhisek/learnlens/internal/question"
)

// LoadReport summarizes a Load.
type LoadReport struct {
	Questions int
	Users     int
	Healed    []*InconsistentStateError
}

// Load restores questions into the registry and rebuilds every user with
// events by replaying the log, healing any cache that disagrees.
func (e *Engine) Load(ctx context.Context) (*LoadReport, error) {
	report := &LoadReport{}

	if e.repos.Questions != nil {
		rows, err := e.repos.Questions.AllQuestions(ctx)
		if err != nil {
			return nil, fmt.Errorf("load questions: %w", err)
		}
		qs := make([]question.Question, len(rows))
		for i, r := range rows {
			qs[i] = question.FromData(r)
		}
		if err := e.registry.Register(qs...); err != nil {
			return nil, fmt.Errorf("register stored questions: %w", err)
		}
		report.Questions = len(qs)
	}

	users, err := e.repos.Events.Users(ctx)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	for _, u := range users {
		inc, err := e.Reconcile(ctx, u)
		if err != nil {
			return nil, err
		}
		if inc != nil {
			report.Healed = append(report.Healed, inc)
		}
	}
	report.Users = len(users)

	e.logger.Info("engine loaded",
		zap.Int("questions", report.Questions),
		zap.Int("users", report.Users),
		zap.Int("healed", len(report.Healed)))
	return report, nil
}

// Reconcile replays the user's log from empty state and compares the result
// with both the live projections and the persisted caches. Any mismatch is
// logged, the live state replaced and the caches rewritten; the returned
// InconsistentStateError describes what was healed. A nil error with a nil
// report means everything agreed.
func (e *Engine) Reconcile(ctx context.Context, userID string) (*InconsistentStateError, error) {
	us := e.slot(userID)
	us.mu.Lock()
	defer us.mu.Unlock()

	events, err := e.userEvents(ctx, userID)
	if err != nil {
		return nil, err
	}
	fresh := replay(events, e.baseXP)
	want := fresh.snapshotData(userID)

	var diffs []string
	if us.loaded {
		for _, d := range diff(us.snapshotData(userID), want) {
			diffs = append(diffs, "live "+d)
		}
	}
	cached, err := e.repos.Projections.Load(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("load cached projections for %q: %w", userID, err)
	}
	cacheDiffs := diff(cached, want)
	for _, d := range cacheDiffs {
		diffs = append(diffs, "cache "+d)
	}

	if len(cacheDiffs) > 0 {
		if err := e.repos.Projections.Replace(ctx, userID, want); err != nil {
			return nil, fmt.Errorf("rewrite projections for %q: %w", userID, err)
		}
	}
	pending := us.pending
	us.mastery, us.cards, us.progress, us.events = fresh.mastery, fresh.cards, fresh.progress, fresh.events
	us.pending = pending
	us.loaded = true

	if len(diffs) == 0 {
		return nil, nil
	}
	inc := &InconsistentStateError{UserID: userID, Diffs: diffs}
	e.logger.Warn("healed inconsistent state",
		zap.String("user", userID),
		zap.Strings("diffs", diffs))
	return inc, nil
}
