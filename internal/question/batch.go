package question

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

// BatchSchema is the JSON Schema a generated question batch must satisfy
// before it is decoded.
var BatchSchema = map[string]any{
	"type":     "object",
	"required": []string{"questions"},
	"properties": map[string]any{
		"questions": map[string]any{
			"type":     "array",
			"minItems": 1,
			"items": map[string]any{
				"type":     "object",
				"required": []string{"id", "document_id", "quiz_id", "topic", "text", "type", "correct_answer"},
				"properties": map[string]any{
					"id":             map[string]any{"type": "string", "minLength": 1},
					"user_id":        map[string]any{"type": "string"},
					"document_id":    map[string]any{"type": "string", "minLength": 1},
					"quiz_id":        map[string]any{"type": "string", "minLength": 1},
					"topic":          map[string]any{"type": "string", "minLength": 1},
					"text":           map[string]any{"type": "string", "minLength": 1},
					"type":           map[string]any{"type": "string", "enum": []string{"mcq", "short_answer"}},
					"correct_answer": map[string]any{"type": "string", "minLength": 1},
					"difficulty":     map[string]any{"type": "string", "enum": []string{"easy", "medium", "hard"}},
					"options": map[string]any{
						"type":  "array",
						"items": map[string]any{"type": "string"},
					},
					"hints": map[string]any{
						"type":     "array",
						"maxItems": MaxHints,
						"items":    map[string]any{"type": "string"},
					},
				},
			},
		},
	},
}

// BatchError reports a batch rejected by the schema or by decoding.
type BatchError struct {
	Err error
}

func (e *BatchError) Error() string {
	return fmt.Sprintf("invalid question batch: %v", e.Err)
}

func (e *BatchError) Unwrap() error { return e.Err }

type batch struct {
	Questions []Question `json:"questions"`
}

var (
	compileOnce sync.Once
	compiled    *jsonschema.Schema
	compileErr  error
)

// ParseBatch validates raw generator output against BatchSchema and decodes
// it. Questions without a user id are assigned userID; a question naming a
// different user is rejected.
func ParseBatch(raw []byte, userID string) ([]Question, error) {
	var parsed any
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return nil, &BatchError{Err: fmt.Errorf("invalid JSON: %w", err)}
	}

	sch, err := batchSchema()
	if err != nil {
		return nil, err
	}
	if err := sch.Validate(parsed); err != nil {
		return nil, &BatchError{Err: fmt.Errorf("schema validation failed: %w", err)}
	}

	var b batch
	if err := json.Unmarshal(raw, &b); err != nil {
		return nil, &BatchError{Err: fmt.Errorf("decode: %w", err)}
	}
	for i := range b.Questions {
		switch b.Questions[i].UserID {
		case "":
			b.Questions[i].UserID = userID
		case userID:
		default:
			return nil, &BatchError{Err: fmt.Errorf("question %q belongs to user %q, not %q",
				b.Questions[i].ID, b.Questions[i].UserID, userID)}
		}
	}
	return b.Questions, nil
}

func batchSchema() (*jsonschema.Schema, error) {
	compileOnce.Do(func() {
		// The compiler wants a generic JSON value, not Go maps of typed slices.
		defBytes, err := json.Marshal(BatchSchema)
		if err != nil {
			compileErr = fmt.Errorf("marshal batch schema: %w", err)
			return
		}
		var def any
		if err := json.Unmarshal(defBytes, &def); err != nil {
			compileErr = fmt.Errorf("parse batch schema: %w", err)
			return
		}

		c := jsonschema.NewCompiler()
		const url = "schema://question-batch.json"
		if err := c.AddResource(url, def); err != nil {
			compileErr = fmt.Errorf("add resource: %w", err)
			return
		}
		compiled, compileErr = c.Compile(url)
	})
	return compiled, compileErr
}
