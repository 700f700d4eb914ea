package question

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const validBatch = `{
  "questions": [
    {
      "id": "q1",
      "document_id": "bio-101",
      "quiz_id": "quiz-7",
      "topic": "Cell Biology",
      "text": "What organelle produces ATP?",
      "type": "mcq",
      "options": ["Nucleus", "Mitochondria", "Ribosome"],
      "correct_answer": "Mitochondria",
      "difficulty": "easy",
      "hints": ["It is often called the powerhouse."]
    },
    {
      "id": "q2",
      "document_id": "bio-101",
      "quiz_id": "quiz-7",
      "topic": "Cell Biology",
      "text": "Explain osmosis.",
      "type": "short_answer",
      "correct_answer": "Diffusion of water across a membrane"
    }
  ]
}`

func TestParseBatch_Valid(t *testing.T) {
	qs, err := ParseBatch([]byte(validBatch), "u1")
	require.NoError(t, err)
	require.Len(t, qs, 2)

	assert.Equal(t, "u1", qs[0].UserID)
	assert.Equal(t, TypeMCQ, qs[0].Type)
	assert.Equal(t, []string{"Nucleus", "Mitochondria", "Ribosome"}, qs[0].Options)
	assert.Equal(t, DifficultyEasy, qs[0].Difficulty)
	assert.Equal(t, "It is often called the powerhouse.", qs[0].Hint(1))
}

func TestParseBatch_Rejects(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{"not json", `{"questions": [`},
		{"missing questions", `{}`},
		{"empty list", `{"questions": []}`},
		{"unknown type", `{"questions": [{"id":"q","document_id":"d","quiz_id":"z","topic":"t","text":"x","type":"essay","correct_answer":"a"}]}`},
		{"missing answer", `{"questions": [{"id":"q","document_id":"d","quiz_id":"z","topic":"t","text":"x","type":"mcq"}]}`},
		{"four hints", `{"questions": [{"id":"q","document_id":"d","quiz_id":"z","topic":"t","text":"x","type":"short_answer","correct_answer":"a","hints":["1","2","3","4"]}]}`},
		{"foreign user", `{"questions": [{"id":"q","user_id":"u2","document_id":"d","quiz_id":"z","topic":"t","text":"x","type":"short_answer","correct_answer":"a"}]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseBatch([]byte(tt.raw), "u1")
			var be *BatchError
			require.ErrorAs(t, err, &be)
		})
	}
}
