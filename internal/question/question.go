package question

import "time"

// Type is the answer format of a question.
type Type string

const (
	TypeMCQ         Type = "mcq"
	TypeShortAnswer Type = "short_answer"
)

// Difficulty is the tier a question was generated at.
type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
)

// MaxHints is the number of graduated hints a question can carry.
const MaxHints = 3

// Question is one generated quiz item. Content is owned by the generation
// collaborator; the registry only checks that the record is well formed.
type Question struct {
	ID            string     `json:"id" validate:"required"`
	UserID        string     `json:"user_id" validate:"required"`
	DocumentID    string     `json:"document_id" validate:"required"`
	QuizID        string     `json:"quiz_id" validate:"required"`
	Topic         string     `json:"topic" validate:"required"`
	Text          string     `json:"text" validate:"required"`
	Type          Type       `json:"type" validate:"oneof=mcq short_answer"`
	Options       []string   `json:"options,omitempty" validate:"omitempty,min=2,dive,required"`
	CorrectAnswer string     `json:"correct_answer" validate:"required"`
	Difficulty    Difficulty `json:"difficulty" validate:"omitempty,oneof=easy medium hard"`
	Hints         []string   `json:"hints,omitempty" validate:"max=3"`
	CreatedAt     time.Time  `json:"created_at"`
}

// Hint returns the pre-generated hint for level 1..3, or "" if the
// generator did not supply one.
func (q Question) Hint(level int) string {
	if level < 1 || level > len(q.Hints) {
		return ""
	}
	return q.Hints[level-1]
}
