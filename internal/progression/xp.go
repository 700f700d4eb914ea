package progression

import "github.com/abhisek/learnlens/internal/question"

const (
	// DefaultBaseXP is the base award when a question's difficulty is unknown.
	DefaultBaseXP = 10
	// HintXPPenalty is deducted from a correct answer's award per hint used.
	HintXPPenalty = 2
)

var difficultyBaseXP = map[question.Difficulty]int{
	question.DifficultyEasy:   10,
	question.DifficultyMedium: 15,
	question.DifficultyHard:   20,
}

// BaseXP returns the base award for a question difficulty, or fallback
// when the difficulty is not one of easy, medium or hard.
func BaseXP(d question.Difficulty, fallback int) int {
	if xp, ok := difficultyBaseXP[d]; ok {
		return xp
	}
	return fallback
}

// AwardXP returns the XP earned by one answer. Incorrect answers earn
// nothing; correct ones lose HintXPPenalty per hint but never go negative.
func AwardXP(correct bool, hintsUsed, baseXP int) int {
	if !correct {
		return 0
	}
	return max(0, baseXP-HintXPPenalty*max(0, hintsUsed))
}
