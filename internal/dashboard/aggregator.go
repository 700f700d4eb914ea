package dashboard

import (
	"context"
	"fmt"
	"time"
)

// Defaults for the dashboard windows.
const (
	DefaultRecentEvents  = 50
	DefaultRecentQuizzes = 10
	DefaultReviewLimit   = 20
)

// Options bounds the dashboard lists.
type Options struct {
	RecentEvents  int
	RecentQuizzes int
	ReviewLimit   int
}

func (o Options) withDefaults() Options {
	if o.RecentEvents <= 0 {
		o.RecentEvents = DefaultRecentEvents
	}
	if o.RecentQuizzes <= 0 {
		o.RecentQuizzes = DefaultRecentQuizzes
	}
	if o.ReviewLimit <= 0 {
		o.ReviewLimit = DefaultReviewLimit
	}
	return o
}

// Aggregator builds read-only views from a Source.
type Aggregator struct {
	source Source
	opts   Options
	now    func() time.Time
}

// NewAggregator creates an aggregator reading from source.
func NewAggregator(source Source, opts Options) *Aggregator {
	return &Aggregator{
		source: source,
		opts:   opts.withDefaults(),
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// WithClock returns a copy of the aggregator using now as its clock.
func (a *Aggregator) WithClock(now func() time.Time) *Aggregator {
	cp := *a
	cp.now = now
	return &cp
}

// Dashboard returns the full view for a user.
func (a *Aggregator) Dashboard(ctx context.Context, userID string) (*Dashboard, error) {
	snap, err := a.source.Snapshot(ctx, userID, a.now(), a.opts.RecentEvents)
	if err != nil {
		return nil, fmt.Errorf("snapshot %q: %w", userID, err)
	}
	return Build(snap, a.opts), nil
}

// Stats returns the lightweight view for a user.
func (a *Aggregator) Stats(ctx context.Context, userID string) (*Summary, error) {
	snap, err := a.source.Snapshot(ctx, userID, a.now(), 0)
	if err != nil {
		return nil, fmt.Errorf("snapshot %q: %w", userID, err)
	}
	return Summarize(snap.Progress), nil
}

// Review returns the due queue of a user, capped at the review limit.
func (a *Aggregator) Review(ctx context.Context, userID string) ([]ReviewItem, error) {
	snap, err := a.source.Snapshot(ctx, userID, a.now(), 0)
	if err != nil {
		return nil, fmt.Errorf("snapshot %q: %w", userID, err)
	}
	return Build(snap, a.opts).ReviewQueue, nil
}
