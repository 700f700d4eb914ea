package store

import (
	"context"
	"database/sql"
	"fmt"

	"entgo.io/ent/dialect"
	entsql "entgo.io/ent/dialect/sql"
)

// projectionRepo implements ProjectionRepo on the three cache tables.
type projectionRepo struct {
	db *sql.DB
}

func upsertMastery(ctx context.Context, x execer, d TopicMasteryData) error {
	query, args := entsql.Dialect(dialect.SQLite).
		Insert(tableTopicMastery).
		Columns(columns(topicMasteryColumns)...).
		Values(d.UserID, d.DocumentID, d.Topic, d.Score, d.Answered, d.Correct, toNanos(d.LastAnsweredAt)).
		OnConflict(
			entsql.ConflictColumns("user_id", "document_id", "topic"),
			entsql.ResolveWithNewValues(),
		).
		Query()
	if _, err := x.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("upsert topic mastery: %w", err)
	}
	return nil
}

func upsertCard(ctx context.Context, x execer, d CardScheduleData) error {
	query, args := entsql.Dialect(dialect.SQLite).
		Insert(tableCardSchedules).
		Columns(columns(cardSchedulesColumns)...).
		Values(d.UserID, d.QuestionID, d.DocumentID, d.Topic, d.Repetitions,
			d.IntervalDays, d.Ease, toNanos(d.Due), toNanos(d.LastReviewed)).
		OnConflict(
			entsql.ConflictColumns("user_id", "question_id"),
			entsql.ResolveWithNewValues(),
		).
		Query()
	if _, err := x.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("upsert card schedule: %w", err)
	}
	return nil
}

func upsertProgress(ctx context.Context, x execer, d UserProgressData) error {
	query, args := entsql.Dialect(dialect.SQLite).
		Insert(tableUserProgress).
		Columns(columns(userProgressColumns)...).
		Values(d.UserID, d.XP, d.Streak, d.LongestStreak, toNanos(d.LastActive),
			d.TotalAnswered, d.TotalCorrect, d.HintsUsed).
		OnConflict(
			entsql.ConflictColumns("user_id"),
			entsql.ResolveWithNewValues(),
		).
		Query()
	if _, err := x.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("upsert user progress: %w", err)
	}
	return nil
}

func (r *projectionRepo) Load(ctx context.Context, userID string) (*UserProjectionData, error) {
	out := &UserProjectionData{}
	b := entsql.Dialect(dialect.SQLite)

	query, args := b.Select(columns(topicMasteryColumns)...).
		From(b.Table(tableTopicMastery)).
		Where(entsql.EQ("user_id", userID)).
		OrderBy("document_id", "topic").
		Query()
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query topic mastery: %w", err)
	}
	for rows.Next() {
		var (
			d  TopicMasteryData
			ts int64
		)
		if err := rows.Scan(&d.UserID, &d.DocumentID, &d.Topic, &d.Score, &d.Answered, &d.Correct, &ts); err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan topic mastery: %w", err)
		}
		d.LastAnsweredAt = fromNanos(ts)
		out.Mastery = append(out.Mastery, d)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate topic mastery: %w", err)
	}

	query, args = b.Select(columns(cardSchedulesColumns)...).
		From(b.Table(tableCardSchedules)).
		Where(entsql.EQ("user_id", userID)).
		OrderBy("question_id").
		Query()
	rows, err = r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query card schedules: %w", err)
	}
	for rows.Next() {
		var (
			d             CardScheduleData
			due, reviewed int64
		)
		if err := rows.Scan(&d.UserID, &d.QuestionID, &d.DocumentID, &d.Topic, &d.Repetitions,
			&d.IntervalDays, &d.Ease, &due, &reviewed); err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan card schedule: %w", err)
		}
		d.Due = fromNanos(due)
		d.LastReviewed = fromNanos(reviewed)
		out.Cards = append(out.Cards, d)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate card schedules: %w", err)
	}

	query, args = b.Select(columns(userProgressColumns)...).
		From(b.Table(tableUserProgress)).
		Where(entsql.EQ("user_id", userID)).
		Query()
	var (
		p    UserProgressData
		last int64
	)
	err = r.db.QueryRowContext(ctx, query, args...).Scan(&p.UserID, &p.XP, &p.Streak, &p.LongestStreak,
		&last, &p.TotalAnswered, &p.TotalCorrect, &p.HintsUsed)
	switch {
	case err == sql.ErrNoRows:
	case err != nil:
		return nil, fmt.Errorf("query user progress: %w", err)
	default:
		p.LastActive = fromNanos(last)
		out.Progress = &p
	}
	return out, nil
}

func (r *projectionRepo) Replace(ctx context.Context, userID string, data *UserProjectionData) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin replace: %w", err)
	}
	defer tx.Rollback()

	b := entsql.Dialect(dialect.SQLite)
	for _, table := range []string{tableTopicMastery, tableCardSchedules, tableUserProgress} {
		query, args := b.Delete(table).Where(entsql.EQ("user_id", userID)).Query()
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("clear %s: %w", table, err)
		}
	}

	if data != nil {
		for _, m := range data.Mastery {
			if err := upsertMastery(ctx, tx, m); err != nil {
				return err
			}
		}
		for _, c := range data.Cards {
			if err := upsertCard(ctx, tx, c); err != nil {
				return err
			}
		}
		if data.Progress != nil {
			if err := upsertProgress(ctx, tx, *data.Progress); err != nil {
				return err
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit replace: %w", err)
	}
	return nil
}
