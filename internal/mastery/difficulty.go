package mastery

import "github.com/abhisek/learnlens/internal/question"

// Thresholds on the mastery score used to pick the next question difficulty.
const (
	EasyBelow   = 30.0
	MediumBelow = 70.0
)

// AdaptiveDifficulty maps a topic mastery score to the difficulty the
// question generator should target next.
func AdaptiveDifficulty(score float64) question.Difficulty {
	switch {
	case score < EasyBelow:
		return question.DifficultyEasy
	case score < MediumBelow:
		return question.DifficultyMedium
	default:
		return question.DifficultyHard
	}
}
