package store

import (
	"context"
	"fmt"
	"time"

	"entgo.io/ent/dialect"
	"entgo.io/ent/dialect/sql/schema"
	"entgo.io/ent/schema/field"
)

const (
	tableAnswerEvents  = "answer_events"
	tableQuestions     = "questions"
	tableTopicMastery  = "topic_mastery"
	tableCardSchedules = "card_schedules"
	tableUserProgress  = "user_progress"
)

var (
	answerEventsColumns = []*schema.Column{
		{Name: "id", Type: field.TypeInt, Increment: true},
		{Name: "sequence", Type: field.TypeInt64, Unique: true},
		{Name: "event_id", Type: field.TypeString, Unique: true},
		{Name: "user_id", Type: field.TypeString},
		{Name: "question_id", Type: field.TypeString},
		{Name: "quiz_id", Type: field.TypeString},
		{Name: "document_id", Type: field.TypeString},
		{Name: "topic", Type: field.TypeString},
		{Name: "difficulty", Type: field.TypeString},
		{Name: "user_answer", Type: field.TypeString, Size: 2147483647},
		{Name: "correct", Type: field.TypeBool},
		{Name: "score", Type: field.TypeFloat64, Nullable: true},
		{Name: "hints_used", Type: field.TypeInt},
		{Name: "timestamp", Type: field.TypeInt64},
	}
	answerEventsTable = &schema.Table{
		Name:       tableAnswerEvents,
		Columns:    answerEventsColumns,
		PrimaryKey: []*schema.Column{answerEventsColumns[0]},
		Indexes: []*schema.Index{
			{Name: "answerevent_user_id_sequence", Columns: []*schema.Column{answerEventsColumns[3], answerEventsColumns[1]}},
			{Name: "answerevent_timestamp", Columns: []*schema.Column{answerEventsColumns[13]}},
		},
	}

	questionsColumns = []*schema.Column{
		{Name: "id", Type: field.TypeString},
		{Name: "user_id", Type: field.TypeString},
		{Name: "document_id", Type: field.TypeString},
		{Name: "quiz_id", Type: field.TypeString},
		{Name: "topic", Type: field.TypeString},
		{Name: "text", Type: field.TypeString, Size: 2147483647},
		{Name: "type", Type: field.TypeString},
		{Name: "options", Type: field.TypeJSON, Nullable: true},
		{Name: "correct_answer", Type: field.TypeString, Size: 2147483647},
		{Name: "difficulty", Type: field.TypeString},
		{Name: "hints", Type: field.TypeJSON, Nullable: true},
		{Name: "created_at", Type: field.TypeInt64},
	}
	questionsTable = &schema.Table{
		Name:       tableQuestions,
		Columns:    questionsColumns,
		PrimaryKey: []*schema.Column{questionsColumns[0]},
		Indexes: []*schema.Index{
			{Name: "question_user_id", Columns: []*schema.Column{questionsColumns[1]}},
		},
	}

	topicMasteryColumns = []*schema.Column{
		{Name: "user_id", Type: field.TypeString},
		{Name: "document_id", Type: field.TypeString},
		{Name: "topic", Type: field.TypeString},
		{Name: "score", Type: field.TypeFloat64},
		{Name: "answered", Type: field.TypeInt},
		{Name: "correct", Type: field.TypeInt},
		{Name: "last_answered_at", Type: field.TypeInt64},
	}
	topicMasteryTable = &schema.Table{
		Name:       tableTopicMastery,
		Columns:    topicMasteryColumns,
		PrimaryKey: topicMasteryColumns[0:3],
	}

	cardSchedulesColumns = []*schema.Column{
		{Name: "user_id", Type: field.TypeString},
		{Name: "question_id", Type: field.TypeString},
		{Name: "document_id", Type: field.TypeString},
		{Name: "topic", Type: field.TypeString},
		{Name: "repetitions", Type: field.TypeInt},
		{Name: "interval_days", Type: field.TypeInt},
		{Name: "ease", Type: field.TypeFloat64},
		{Name: "due", Type: field.TypeInt64},
		{Name: "last_reviewed", Type: field.TypeInt64},
	}
	cardSchedulesTable = &schema.Table{
		Name:       tableCardSchedules,
		Columns:    cardSchedulesColumns,
		PrimaryKey: cardSchedulesColumns[0:2],
		Indexes: []*schema.Index{
			{Name: "cardschedule_user_id_due", Columns: []*schema.Column{cardSchedulesColumns[0], cardSchedulesColumns[7]}},
		},
	}

	userProgressColumns = []*schema.Column{
		{Name: "user_id", Type: field.TypeString},
		{Name: "xp", Type: field.TypeInt},
		{Name: "streak", Type: field.TypeInt},
		{Name: "longest_streak", Type: field.TypeInt},
		{Name: "last_active", Type: field.TypeInt64},
		{Name: "total_answered", Type: field.TypeInt},
		{Name: "total_correct", Type: field.TypeInt},
		{Name: "hints_used", Type: field.TypeInt},
	}
	userProgressTable = &schema.Table{
		Name:       tableUserProgress,
		Columns:    userProgressColumns,
		PrimaryKey: []*schema.Column{userProgressColumns[0]},
	}

	tables = []*schema.Table{
		answerEventsTable,
		questionsTable,
		topicMasteryTable,
		cardSchedulesTable,
		userProgressTable,
	}
)

// migrate creates or upgrades every table the store manages.
func migrate(ctx context.Context, drv dialect.Driver) error {
	m, err := schema.NewMigrate(drv)
	if err != nil {
		return fmt.Errorf("new migrate: %w", err)
	}
	if err := m.Create(ctx, tables...); err != nil {
		return fmt.Errorf("create tables: %w", err)
	}
	return nil
}

// Timestamps are stored as UTC unix nanoseconds; 0 means unset.
func toNanos(t time.Time) int64 {
	if t.IsZero() {
		return 0
	}
	return t.UnixNano()
}

func fromNanos(n int64) time.Time {
	if n == 0 {
		return time.Time{}
	}
	return time.Unix(0, n).UTC()
}

// columns returns the column names of a table in declaration order.
func columns(cols []*schema.Column) []string {
	out := make([]string, len(cols))
	for i, c := range cols {
		out[i] = c.Name
	}
	return out
}
