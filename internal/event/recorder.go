package event

import (
	"errors"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/abhisek/learnlens/internal/question"
)

// QuestionLookup resolves a question id to its record.
type QuestionLookup interface {
	Lookup(id string) (question.Question, error)
}

// Recorder validates submissions and hint requests and builds events. It
// holds no per-user state; the caller supplies the user's last event time
// and pending hint level.
type Recorder struct {
	questions QuestionLookup
	validate  *validator.Validate
	now       func() time.Time
	newID     func() string
}

// Option configures a Recorder.
type Option func(*Recorder)

// WithClock sets the clock used for submissions without a timestamp.
func WithClock(now func() time.Time) Option {
	return func(r *Recorder) { r.now = now }
}

// WithIDGenerator sets the event id generator.
func WithIDGenerator(newID func() string) Option {
	return func(r *Recorder) { r.newID = newID }
}

// NewRecorder creates a recorder resolving questions through questions.
func NewRecorder(questions QuestionLookup, opts ...Option) *Recorder {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(jsonFieldName)

	r := &Recorder{
		questions: questions,
		validate:  v,
		now:       func() time.Time { return time.Now().UTC() },
		newID:     func() string { return uuid.New().String() },
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Now returns the recorder clock.
func (r *Recorder) Now() time.Time {
	return r.now()
}

// Record builds the event for sub. last is the timestamp of the user's most
// recent event (zero if none); pendingHints is the highest hint level
// revealed for the question since it was last answered. The returned event
// has no sequence number yet.
func (r *Recorder) Record(sub Submission, last time.Time, pendingHints int) (AnswerEvent, error) {
	if err := r.check(sub); err != nil {
		return AnswerEvent{}, err
	}
	if sub.HintsUsed < 0 {
		return AnswerEvent{}, &ValidationError{Field: "hints_used", Err: ErrInvalidHintLevel}
	}

	var correct bool
	switch {
	case sub.Correct != nil:
		correct = *sub.Correct
	case sub.Score != nil:
		correct = *sub.Score >= ScoreThreshold
	default:
		return AnswerEvent{}, &ValidationError{Field: "correct", Err: ErrMissingCorrectness}
	}

	q, err := r.resolve(sub.UserID, sub.QuestionID)
	if err != nil {
		return AnswerEvent{}, err
	}

	ts := sub.Timestamp
	if ts.IsZero() {
		ts = r.now()
	}
	ts = ts.UTC()
	if ts.Before(last) {
		return AnswerEvent{}, &OutOfOrderError{UserID: sub.UserID, Last: last, Got: ts}
	}

	hints := min(max(sub.HintsUsed, pendingHints), question.MaxHints)

	var score *float64
	if sub.Score != nil {
		s := *sub.Score
		score = &s
	}

	return AnswerEvent{
		ID:         r.newID(),
		UserID:     sub.UserID,
		QuestionID: q.ID,
		QuizID:     q.QuizID,
		DocumentID: q.DocumentID,
		Topic:      q.Topic,
		Difficulty: q.Difficulty,
		UserAnswer: sub.UserAnswer,
		Correct:    correct,
		Score:      score,
		HintsUsed:  hints,
		Timestamp:  ts,
	}, nil
}

// Hint validates a hint request. pending is the level already revealed for
// the question; the grant's Level is the new pending level.
func (r *Recorder) Hint(req HintRequest, pending int) (HintGrant, error) {
	if err := r.check(req); err != nil {
		return HintGrant{}, err
	}
	if req.Level < 1 || req.Level > question.MaxHints {
		return HintGrant{}, &ValidationError{Field: "level", Err: ErrInvalidHintLevel}
	}
	q, err := r.resolve(req.UserID, req.QuestionID)
	if err != nil {
		return HintGrant{}, err
	}

	level := max(pending, req.Level)
	return HintGrant{
		QuestionID: q.ID,
		Level:      level,
		Text:       q.Hint(req.Level),
		Remaining:  question.MaxHints - level,
	}, nil
}

func (r *Recorder) resolve(userID, questionID string) (question.Question, error) {
	q, err := r.questions.Lookup(questionID)
	if err != nil {
		if errors.Is(err, question.ErrNotFound) {
			return question.Question{}, &ValidationError{Field: "question_id", Err: ErrUnknownQuestion}
		}
		return question.Question{}, err
	}
	if q.UserID != userID {
		return question.Question{}, &ValidationError{Field: "question_id", Err: ErrForeignQuestion}
	}
	return q, nil
}

func (r *Recorder) check(v any) error {
	err := r.validate.Struct(v)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		return &ValidationError{Field: fe.Field(), Err: fe}
	}
	return err
}

// jsonFieldName reports validation failures under their wire names.
func jsonFieldName(fld reflect.StructField) string {
	name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
	if name == "-" {
		return ""
	}
	return name
}
