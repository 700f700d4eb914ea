package event

import (
	"time"

	"github.com/abhisek/learnlens/internal/question"
	"github.com/abhisek/learnlens/internal/store"
)

// ScoreThreshold is the partial score at or above which an answer counts as
// correct when no explicit correctness is given.
const ScoreThreshold = 0.5

// AnswerEvent is one graded answer. Events are immutable once recorded and
// carry everything needed to replay them without the question registry.
type AnswerEvent struct {
	ID         string              `json:"id"`
	Sequence   int64               `json:"sequence"`
	UserID     string              `json:"user_id"`
	QuestionID string              `json:"question_id"`
	QuizID     string              `json:"quiz_id"`
	DocumentID string              `json:"document_id"`
	Topic      string              `json:"topic"`
	Difficulty question.Difficulty `json:"difficulty"`
	UserAnswer string              `json:"user_answer"`
	Correct    bool                `json:"correct"`
	Score      *float64            `json:"score,omitempty"`
	HintsUsed  int                 `json:"hints_used"`
	Timestamp  time.Time           `json:"timestamp"`
}

// Submission is an answer as handed over by the grading collaborator.
// Correct wins over Score when both are set.
type Submission struct {
	UserID     string    `json:"user_id" validate:"required"`
	QuestionID string    `json:"question_id" validate:"required"`
	UserAnswer string    `json:"user_answer"`
	Correct    *bool     `json:"correct,omitempty"`
	Score      *float64  `json:"score,omitempty" validate:"omitempty,gte=0,lte=1"`
	HintsUsed  int       `json:"hints_used"`
	Timestamp  time.Time `json:"timestamp"`
}

// HintRequest asks for the hint at Level (1..3) of a question.
type HintRequest struct {
	UserID     string `json:"user_id" validate:"required"`
	QuestionID string `json:"question_id" validate:"required"`
	Level      int    `json:"level"`
}

// HintGrant is the answer to a hint request.
type HintGrant struct {
	QuestionID string `json:"question_id"`
	Level      int    `json:"hint_level"`
	Text       string `json:"hint"`
	Remaining  int    `json:"hints_remaining"`
}

// ToData converts an event to its persisted form.
func (e AnswerEvent) ToData() store.AnswerEventData {
	return store.AnswerEventData{
		EventID:    e.ID,
		Sequence:   e.Sequence,
		UserID:     e.UserID,
		QuestionID: e.QuestionID,
		QuizID:     e.QuizID,
		DocumentID: e.DocumentID,
		Topic:      e.Topic,
		Difficulty: string(e.Difficulty),
		UserAnswer: e.UserAnswer,
		Correct:    e.Correct,
		Score:      e.Score,
		HintsUsed:  e.HintsUsed,
		Timestamp:  e.Timestamp,
	}
}

// FromData converts a persisted event back.
func FromData(d store.AnswerEventData) AnswerEvent {
	return AnswerEvent{
		ID:         d.EventID,
		Sequence:   d.Sequence,
		UserID:     d.UserID,
		QuestionID: d.QuestionID,
		QuizID:     d.QuizID,
		DocumentID: d.DocumentID,
		Topic:      d.Topic,
		Difficulty: question.Difficulty(d.Difficulty),
		UserAnswer: d.UserAnswer,
		Correct:    d.Correct,
		Score:      d.Score,
		HintsUsed:  d.HintsUsed,
		Timestamp:  d.Timestamp,
	}
}
