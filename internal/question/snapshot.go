package question

import "github.com/abhisek/learnlens/internal/store"

// ToData converts a question to its persisted form.
func (q Question) ToData() store.QuestionData {
	return store.QuestionData{
		ID:            q.ID,
		UserID:        q.UserID,
		DocumentID:    q.DocumentID,
		QuizID:        q.QuizID,
		Topic:         q.Topic,
		Text:          q.Text,
		Type:          string(q.Type),
		Options:       q.Options,
		CorrectAnswer: q.CorrectAnswer,
		Difficulty:    string(q.Difficulty),
		Hints:         q.Hints,
		CreatedAt:     q.CreatedAt,
	}
}

// FromData converts a persisted question back.
func FromData(d store.QuestionData) Question {
	return Question{
		ID:            d.ID,
		UserID:        d.UserID,
		DocumentID:    d.DocumentID,
		QuizID:        d.QuizID,
		Topic:         d.Topic,
		Text:          d.Text,
		Type:          Type(d.Type),
		Options:       d.Options,
		CorrectAnswer: d.CorrectAnswer,
		Difficulty:    Difficulty(d.Difficulty),
		Hints:         d.Hints,
		CreatedAt:     d.CreatedAt,
	}
}
