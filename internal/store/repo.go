package store

import (
	"context"
	"time"
)

// QueryOpts configures event queries with filtering and pagination.
type QueryOpts struct {
	UserID string    // restrict to one user ("" = all users)
	Limit  int       // max results (0 = unlimited); with Limit the newest events are kept
	After  int64     // sequence > After
	From   time.Time // timestamp >= From
	To     time.Time // timestamp <= To
}

// AnswerEventData is the persisted form of one answer event.
type AnswerEventData struct {
	EventID    string
	Sequence   int64
	UserID     string
	QuestionID string
	QuizID     string
	DocumentID string
	Topic      string
	Difficulty string
	UserAnswer string
	Correct    bool
	Score      *float64
	HintsUsed  int
	Timestamp  time.Time
}

// TopicMasteryData is the cached mastery row for one (user, topic).
type TopicMasteryData struct {
	UserID         string
	DocumentID     string
	Topic          string
	Score          float64
	Answered       int
	Correct        int
	LastAnsweredAt time.Time
}

// CardScheduleData is the cached SM-2 state of one question for one user.
type CardScheduleData struct {
	UserID       string
	QuestionID   string
	DocumentID   string
	Topic        string
	Repetitions  int
	IntervalDays int
	Ease         float64
	Due          time.Time
	LastReviewed time.Time
}

// UserProgressData is the cached progression snapshot of one user.
type UserProgressData struct {
	UserID        string
	XP            int
	Streak        int
	LongestStreak int
	LastActive    time.Time
	TotalAnswered int
	TotalCorrect  int
	HintsUsed     int
}

// ProjectionData holds the rows one answer event changes. All three are
// written in the same transaction as the event.
type ProjectionData struct {
	Mastery  TopicMasteryData
	Card     CardScheduleData
	Progress UserProgressData
}

// UserProjectionData is every cached row of one user.
type UserProjectionData struct {
	Mastery  []TopicMasteryData
	Cards    []CardScheduleData
	Progress *UserProgressData
}

// QuestionData is the persisted form of a registered question.
type QuestionData struct {
	ID            string
	UserID        string
	DocumentID    string
	QuizID        string
	Topic         string
	Text          string
	Type          string
	Options       []string
	CorrectAnswer string
	Difficulty    string
	Hints         []string
	CreatedAt     time.Time
}

// EventRepo provides append and query access to the answer event log.
type EventRepo interface {
	// AppendAnswerEvent assigns the next global sequence number, stores the
	// event and upserts its projection rows atomically.
	AppendAnswerEvent(ctx context.Context, data AnswerEventData, proj ProjectionData) (int64, error)

	// QueryAnswerEvents returns events in ascending sequence order.
	QueryAnswerEvents(ctx context.Context, opts QueryOpts) ([]AnswerEventData, error)

	// Users returns every user id that has at least one event.
	Users(ctx context.Context) ([]string, error)
}

// ProjectionRepo manages the per-user caches derived from the event log.
type ProjectionRepo interface {
	// Load returns the cached rows for a user. Missing rows yield empty slices
	// and a nil Progress.
	Load(ctx context.Context, userID string) (*UserProjectionData, error)

	// Replace swaps every cached row of a user for data in one transaction.
	Replace(ctx context.Context, userID string, data *UserProjectionData) error
}

// QuestionRepo persists registered questions.
type QuestionRepo interface {
	SaveQuestions(ctx context.Context, qs []QuestionData) error
	AllQuestions(ctx context.Context) ([]QuestionData, error)
}
