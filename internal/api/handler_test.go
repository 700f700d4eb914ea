package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/learnlens/internal/dashboard"
	"github.com/abhisek/learnlens/internal/engine"
	"github.com/abhisek/learnlens/internal/event"
	"github.com/abhisek/learnlens/internal/question"
	"github.com/abhisek/learnlens/internal/store"
)

const batch = `{
  "questions": [
    {"id": "q1", "document_id": "chem", "quiz_id": "z1", "topic": "Bonds", "text": "What is a covalent bond?",
     "type": "short_answer", "correct_answer": "shared electrons", "difficulty": "hard",
     "hints": ["electrons", "sharing"]},
    {"id": "q2", "document_id": "chem", "quiz_id": "z1", "topic": "Bonds", "text": "Pick the ionic compound",
     "type": "mcq", "options": ["NaCl", "H2O"], "correct_answer": "NaCl"}
  ]
}`

func newServer(t *testing.T) http.Handler {
	t.Helper()
	name := strings.NewReplacer("/", "_").Replace(t.Name())
	s, err := store.Open(fmt.Sprintf("file:%s?mode=memory&cache=shared", name))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })

	now := time.Date(2025, 5, 1, 12, 0, 0, 0, time.UTC)
	clock := func() time.Time { return now }
	eng := engine.New(question.NewRegistry(), engine.Repos{
		Events:      s.EventRepo(),
		Projections: s.ProjectionRepo(),
		Questions:   s.QuestionRepo(),
	}, engine.WithClock(clock))
	agg := dashboard.NewAggregator(eng, dashboard.Options{}).WithClock(func() time.Time { return now.AddDate(0, 0, 2) })

	return NewRouter(NewHandler(eng, agg, nil, "test"), nil)
}

func do(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, v any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), v), rec.Body.String())
}

func TestHealth(t *testing.T) {
	rec := do(t, newServer(t), http.MethodGet, "/api/v1/health", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"ok"`)
}

func TestAnswerFlow(t *testing.T) {
	h := newServer(t)

	rec := do(t, h, http.MethodPost, "/api/v1/users/ana/questions", batch)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = do(t, h, http.MethodPost, "/api/v1/users/ana/hints", `{"question_id":"q1","level":1}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var grant event.HintGrant
	decode(t, rec, &grant)
	assert.Equal(t, "electrons", grant.Text)
	assert.Equal(t, 2, grant.Remaining)

	rec = do(t, h, http.MethodPost, "/api/v1/users/ana/answers", `{"question_id":"q1","user_answer":"sharing","correct":true}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var res struct {
		Event struct {
			HintsUsed int `json:"hints_used"`
		} `json:"event"`
		Mastery  float64 `json:"mastery"`
		XPEarned int     `json:"xp_earned"`
	}
	decode(t, rec, &res)
	assert.Equal(t, 1, res.Event.HintsUsed)
	assert.Equal(t, 90.0, res.Mastery)
	assert.Equal(t, 18, res.XPEarned)

	rec = do(t, h, http.MethodGet, "/api/v1/users/ana/stats", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var sum dashboard.Summary
	decode(t, rec, &sum)
	assert.Equal(t, dashboard.Summary{XP: 18, Streak: 1, Level: 1}, sum)

	rec = do(t, h, http.MethodGet, "/api/v1/users/ana/dashboard", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var d dashboard.Dashboard
	decode(t, rec, &d)
	assert.Equal(t, 1, d.DocumentsCount)
	require.Len(t, d.TopicMastery, 1)
	assert.Equal(t, "Bonds", d.TopicMastery[0].Topic)

	rec = do(t, h, http.MethodGet, "/api/v1/users/ana/review", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var review struct {
		Items []dashboard.ReviewItem `json:"items"`
	}
	decode(t, rec, &review)
	require.Len(t, review.Items, 1)
	assert.Equal(t, "q1", review.Items[0].QuestionID)
}

func TestErrorMapping(t *testing.T) {
	h := newServer(t)
	require.Equal(t, http.StatusCreated, do(t, h, http.MethodPost, "/api/v1/users/ana/questions", batch).Code)
	require.Equal(t, http.StatusCreated,
		do(t, h, http.MethodPost, "/api/v1/users/ana/answers", `{"question_id":"q2","correct":true,"timestamp":"2025-05-01T12:00:00Z"}`).Code)

	tests := []struct {
		name   string
		path   string
		body   string
		status int
	}{
		{"malformed json", "/api/v1/users/ana/answers", `{"question_id":`, http.StatusBadRequest},
		{"missing correctness", "/api/v1/users/ana/answers", `{"question_id":"q1"}`, http.StatusBadRequest},
		{"score out of range", "/api/v1/users/ana/answers", `{"question_id":"q1","score":1.5}`, http.StatusBadRequest},
		{"unknown question", "/api/v1/users/ana/answers", `{"question_id":"nope","correct":true}`, http.StatusNotFound},
		{"other user's question", "/api/v1/users/bo/answers", `{"question_id":"q1","correct":true}`, http.StatusBadRequest},
		{"body user mismatch", "/api/v1/users/ana/answers", `{"user_id":"bo","question_id":"q1","correct":true}`, http.StatusBadRequest},
		{"out of order", "/api/v1/users/ana/answers", `{"question_id":"q1","correct":true,"timestamp":"2025-04-01T00:00:00Z"}`, http.StatusConflict},
		{"hint level", "/api/v1/users/ana/hints", `{"question_id":"q1","level":4}`, http.StatusBadRequest},
		{"bad batch", "/api/v1/users/ana/questions", `{"questions":[]}`, http.StatusBadRequest},
		{"moved question", "/api/v1/users/ana/questions", strings.Replace(batch, `"topic": "Bonds", "text": "What`, `"topic": "Acids", "text": "What`, 1), http.StatusConflict},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, h, http.MethodPost, tt.path, tt.body)
			assert.Equal(t, tt.status, rec.Code, rec.Body.String())
			assert.Contains(t, rec.Body.String(), `"error"`)
		})
	}
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{&event.ValidationError{Field: "question_id", Err: event.ErrUnknownQuestion}, http.StatusNotFound},
		{&event.ValidationError{Field: "level", Err: event.ErrInvalidHintLevel}, http.StatusBadRequest},
		{fmt.Errorf("wrapped: %w", &event.OutOfOrderError{UserID: "u"}), http.StatusConflict},
		{&question.InvalidError{ID: "q", Field: "Text"}, http.StatusBadRequest},
		{errors.New("disk on fire"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		if got := statusFor(tt.err); got != tt.want {
			t.Errorf("statusFor(%v) = %d, want %d", tt.err, got, tt.want)
		}
	}
}

type failingViews struct{}

func (failingViews) Dashboard(context.Context, string) (*dashboard.Dashboard, error) {
	return nil, errors.New("secret detail")
}
func (failingViews) Stats(context.Context, string) (*dashboard.Summary, error) {
	return nil, errors.New("secret detail")
}
func (failingViews) Review(context.Context, string) ([]dashboard.ReviewItem, error) {
	return nil, errors.New("secret detail")
}

func TestInternalErrorHidesDetail(t *testing.T) {
	h := NewRouter(NewHandler(nil, failingViews{}, nil, "test"), nil)
	rec := do(t, h, http.MethodGet, "/api/v1/users/ana/dashboard", "")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotContains(t, rec.Body.String(), "secret")
}

func TestCORS(t *testing.T) {
	h := NewRouter(NewHandler(nil, failingViews{}, nil, "test"), []string{"http://app.test"})
	req := httptest.NewRequest(http.MethodGet, "/api/v1/health", nil)
	req.Header.Set("Origin", "http://app.test")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, "http://app.test", rec.Header().Get("Access-Control-Allow-Origin"))
}
