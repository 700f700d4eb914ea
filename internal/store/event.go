package store

import (
	"context"
	"database/sql"
	"fmt"

	"entgo.io/ent/dialect"
	entsql "entgo.io/ent/dialect/sql"
)

// execer is satisfied by *sql.DB and *sql.Tx.
type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// eventRepo implements EventRepo on the answer_events table.
type eventRepo struct {
	db  *sql.DB
	seq *sequenceCounter
}

// answerEventFields are the answer_events columns written on append, in
// scan order.
var answerEventFields = columns(answerEventsColumns[1:])

func (r *eventRepo) AppendAnswerEvent(ctx context.Context, data AnswerEventData, proj ProjectionData) (int64, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin append: %w", err)
	}
	defer tx.Rollback()

	seq, err := r.seq.Next(ctx, tx)
	if err != nil {
		return 0, err
	}

	var score any
	if data.Score != nil {
		score = *data.Score
	}
	query, args := entsql.Dialect(dialect.SQLite).
		Insert(tableAnswerEvents).
		Columns(answerEventFields...).
		Values(
			seq, data.EventID, data.UserID, data.QuestionID, data.QuizID,
			data.DocumentID, data.Topic, data.Difficulty, data.UserAnswer,
			data.Correct, score, data.HintsUsed, toNanos(data.Timestamp),
		).
		Query()
	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		return 0, fmt.Errorf("insert answer event: %w", err)
	}

	if err := upsertMastery(ctx, tx, proj.Mastery); err != nil {
		return 0, err
	}
	if err := upsertCard(ctx, tx, proj.Card); err != nil {
		return 0, err
	}
	if err := upsertProgress(ctx, tx, proj.Progress); err != nil {
		return 0, err
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit append: %w", err)
	}
	return seq, nil
}

func (r *eventRepo) QueryAnswerEvents(ctx context.Context, opts QueryOpts) ([]AnswerEventData, error) {
	b := entsql.Dialect(dialect.SQLite)
	sel := b.Select(answerEventFields...).From(b.Table(tableAnswerEvents))

	var preds []*entsql.Predicate
	if opts.UserID != "" {
		preds = append(preds, entsql.EQ("user_id", opts.UserID))
	}
	if opts.After > 0 {
		preds = append(preds, entsql.GT("sequence", opts.After))
	}
	if !opts.From.IsZero() {
		preds = append(preds, entsql.GTE("timestamp", toNanos(opts.From)))
	}
	if !opts.To.IsZero() {
		preds = append(preds, entsql.LTE("timestamp", toNanos(opts.To)))
	}
	if len(preds) > 0 {
		sel.Where(entsql.And(preds...))
	}

	// With a limit keep the newest events, then flip back to ascending.
	if opts.Limit > 0 {
		sel.OrderBy(entsql.Desc("sequence")).Limit(opts.Limit)
	} else {
		sel.OrderBy(entsql.Asc("sequence"))
	}

	query, args := sel.Query()
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query answer events: %w", err)
	}
	defer rows.Close()

	var out []AnswerEventData
	for rows.Next() {
		var (
			d     AnswerEventData
			score sql.NullFloat64
			ts    int64
		)
		if err := rows.Scan(
			&d.Sequence, &d.EventID, &d.UserID, &d.QuestionID, &d.QuizID,
			&d.DocumentID, &d.Topic, &d.Difficulty, &d.UserAnswer,
			&d.Correct, &score, &d.HintsUsed, &ts,
		); err != nil {
			return nil, fmt.Errorf("scan answer event: %w", err)
		}
		if score.Valid {
			v := score.Float64
			d.Score = &v
		}
		d.Timestamp = fromNanos(ts)
		out = append(out, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate answer events: %w", err)
	}

	if opts.Limit > 0 {
		for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
			out[i], out[j] = out[j], out[i]
		}
	}
	return out, nil
}

func (r *eventRepo) Users(ctx context.Context) ([]string, error) {
	b := entsql.Dialect(dialect.SQLite)
	query, args := b.Select("user_id").
		From(b.Table(tableAnswerEvents)).
		Distinct().
		OrderBy("user_id").
		Query()

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query users: %w", err)
	}
	defer rows.Close()

	var users []string
	for rows.Next() {
		var u string
		if err := rows.Scan(&u); err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		users = append(users, u)
	}
	return users, rows.Err()
}
