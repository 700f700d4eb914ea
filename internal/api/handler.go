package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/abhisek/learnlens/internal/dashboard"
	"github.com/abhisek/learnlens/internal/engine"
	"github.com/abhisek/learnlens/internal/event"
	"github.com/abhisek/learnlens/internal/question"
)

// maxBodyBytes caps request bodies; question batches are the largest.
const maxBodyBytes = 4 << 20

// Recorder is the write side of the engine.
type Recorder interface {
	Record(ctx context.Context, sub event.Submission) (*engine.Result, error)
	RequestHint(ctx context.Context, req event.HintRequest) (event.HintGrant, error)
	RegisterQuestions(ctx context.Context, qs ...question.Question) error
}

// Views is the read side used by the dashboard endpoints.
type Views interface {
	Dashboard(ctx context.Context, userID string) (*dashboard.Dashboard, error)
	Stats(ctx context.Context, userID string) (*dashboard.Summary, error)
	Review(ctx context.Context, userID string) ([]dashboard.ReviewItem, error)
}

// Handler serves the HTTP API.
type Handler struct {
	recorder Recorder
	views    Views
	logger   *zap.Logger
	version  string
}

// NewHandler creates a handler. A nil logger disables logging.
func NewHandler(recorder Recorder, views Views, logger *zap.Logger, version string) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{recorder: recorder, views: views, logger: logger, version: version}
}

func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok", "version": h.version})
}

// ImportQuestions registers a JSON question batch for the user.
func (h *Handler) ImportQuestions(w http.ResponseWriter, r *http.Request) {
	user := mux.Vars(r)["user"]
	raw, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		h.writeError(w, r, &requestError{err: fmt.Errorf("read body: %w", err)})
		return
	}
	qs, err := question.ParseBatch(raw, user)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	if err := h.recorder.RegisterQuestions(r.Context(), qs...); err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]int{"registered": len(qs)})
}

// SubmitAnswer records one graded answer.
func (h *Handler) SubmitAnswer(w http.ResponseWriter, r *http.Request) {
	var sub event.Submission
	if err := h.decodeForUser(w, r, &sub, &sub.UserID); err != nil {
		h.writeError(w, r, err)
		return
	}
	res, err := h.recorder.Record(r.Context(), sub)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, res)
}

// RequestHint reveals a hint for a question.
func (h *Handler) RequestHint(w http.ResponseWriter, r *http.Request) {
	var req event.HintRequest
	if err := h.decodeForUser(w, r, &req, &req.UserID); err != nil {
		h.writeError(w, r, err)
		return
	}
	grant, err := h.recorder.RequestHint(r.Context(), req)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, grant)
}

func (h *Handler) Dashboard(w http.ResponseWriter, r *http.Request) {
	d, err := h.views.Dashboard(r.Context(), mux.Vars(r)["user"])
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, d)
}

func (h *Handler) Stats(w http.ResponseWriter, r *http.Request) {
	s, err := h.views.Stats(r.Context(), mux.Vars(r)["user"])
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, s)
}

func (h *Handler) Review(w http.ResponseWriter, r *http.Request) {
	items, err := h.views.Review(r.Context(), mux.Vars(r)["user"])
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	if items == nil {
		items = []dashboard.ReviewItem{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": items})
}

// decodeForUser decodes the JSON body into dst and binds userField to the
// path user. A body naming another user is rejected.
func (h *Handler) decodeForUser(w http.ResponseWriter, r *http.Request, dst any, userField *string) error {
	user := mux.Vars(r)["user"]
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(dst); err != nil {
		return &requestError{err: fmt.Errorf("decode body: %w", err)}
	}
	if *userField != "" && *userField != user {
		return &requestError{err: fmt.Errorf("body user %q does not match path user %q", *userField, user)}
	}
	*userField = user
	return nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError maps err to a status code and writes {"error": ...}. Server
// errors are logged and their detail withheld.
func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	msg := err.Error()
	if status == http.StatusInternalServerError {
		h.logger.Error("request failed",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Error(err))
		msg = http.StatusText(status)
	}

	body := map[string]string{"error": msg}
	var ve *event.ValidationError
	if errors.As(err, &ve) {
		body["field"] = ve.Field
	}
	writeJSON(w, status, body)
}
