package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"entgo.io/ent/dialect"
	entsql "entgo.io/ent/dialect/sql"
)

// questionRepo implements QuestionRepo on the questions table.
type questionRepo struct {
	db *sql.DB
}

func (r *questionRepo) SaveQuestions(ctx context.Context, qs []QuestionData) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin save questions: %w", err)
	}
	defer tx.Rollback()

	for _, q := range qs {
		options, err := json.Marshal(q.Options)
		if err != nil {
			return fmt.Errorf("marshal options for %q: %w", q.ID, err)
		}
		hints, err := json.Marshal(q.Hints)
		if err != nil {
			return fmt.Errorf("marshal hints for %q: %w", q.ID, err)
		}
		query, args := entsql.Dialect(dialect.SQLite).
			Insert(tableQuestions).
			Columns(columns(questionsColumns)...).
			Values(q.ID, q.UserID, q.DocumentID, q.QuizID, q.Topic, q.Text, q.Type,
				string(options), q.CorrectAnswer, q.Difficulty, string(hints), toNanos(q.CreatedAt)).
			OnConflict(
				entsql.ConflictColumns("id"),
				entsql.ResolveWithNewValues(),
			).
			Query()
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("save question %q: %w", q.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit save questions: %w", err)
	}
	return nil
}

func (r *questionRepo) AllQuestions(ctx context.Context) ([]QuestionData, error) {
	b := entsql.Dialect(dialect.SQLite)
	query, args := b.Select(columns(questionsColumns)...).
		From(b.Table(tableQuestions)).
		OrderBy("id").
		Query()

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query questions: %w", err)
	}
	defer rows.Close()

	var out []QuestionData
	for rows.Next() {
		var (
			q              QuestionData
			options, hints sql.NullString
			created        int64
		)
		if err := rows.Scan(&q.ID, &q.UserID, &q.DocumentID, &q.QuizID, &q.Topic, &q.Text, &q.Type,
			&options, &q.CorrectAnswer, &q.Difficulty, &hints, &created); err != nil {
			return nil, fmt.Errorf("scan question: %w", err)
		}
		if err := unmarshalList(options, &q.Options); err != nil {
			return nil, fmt.Errorf("decode options for %q: %w", q.ID, err)
		}
		if err := unmarshalList(hints, &q.Hints); err != nil {
			return nil, fmt.Errorf("decode hints for %q: %w", q.ID, err)
		}
		q.CreatedAt = fromNanos(created)
		out = append(out, q)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate questions: %w", err)
	}
	return out, nil
}

func unmarshalList(s sql.NullString, dst *[]string) error {
	if !s.Valid || s.String == "" || s.String == "null" {
		return nil
	}
	return json.Unmarshal([]byte(s.String), dst)
}
