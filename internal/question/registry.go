package question

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/go-playground/validator/v10"
)

var (
	// ErrNotFound is returned when a question id is not registered.
	ErrNotFound = errors.New("question not found")

	// ErrIdentityChanged is returned when a re-registration tries to move a
	// question to another user, document or topic.
	ErrIdentityChanged = errors.New("question owner, document or topic cannot change")
)

// InvalidError describes a question record that failed validation.
type InvalidError struct {
	ID    string
	Field string
	Rule  string
}

func (e *InvalidError) Error() string {
	if e.Rule == "" {
		return fmt.Sprintf("question %q: invalid %s", e.ID, e.Field)
	}
	return fmt.Sprintf("question %q: field %s failed %q", e.ID, e.Field, e.Rule)
}

// Registry holds every question handed over by the generation collaborator.
// It is safe for concurrent use.
type Registry struct {
	mu        sync.RWMutex
	questions map[string]Question
	validate  *validator.Validate
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		questions: make(map[string]Question),
		validate:  validator.New(validator.WithRequiredStructEnabled()),
	}
}

// Register validates and stores questions. Either all of them are stored or
// none are.
func (r *Registry) Register(qs ...Question) error {
	return r.Commit(qs, nil)
}

// Commit prepares qs, hands the prepared copies to persist and stores them
// once persist succeeds. The write lock is held throughout, so the identity
// check, persistence and the in-memory update cannot interleave with another
// registration. persist may fill in fields of the prepared slice; what it
// leaves there is what gets stored. A nil persist stores directly.
func (r *Registry) Commit(qs []Question, persist func([]Question) error) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	prepared, err := r.prepare(qs)
	if err != nil {
		return err
	}
	if persist != nil {
		if err := persist(prepared); err != nil {
			return err
		}
	}
	for _, q := range prepared {
		r.questions[q.ID] = q
	}
	return nil
}

// prepare validates qs and returns normalized copies: difficulty defaults
// to medium and a re-registered question keeps its creation time. The
// caller holds r.mu.
func (r *Registry) prepare(qs []Question) ([]Question, error) {
	out := make([]Question, len(qs))
	copy(out, qs)
	for i := range out {
		if out[i].Difficulty == "" {
			out[i].Difficulty = DifficultyMedium
		}
		if err := r.check(out[i]); err != nil {
			return nil, err
		}
	}

	for i, q := range out {
		prev, ok := r.questions[q.ID]
		if !ok {
			continue
		}
		if prev.UserID != q.UserID || prev.DocumentID != q.DocumentID || prev.Topic != q.Topic {
			return nil, fmt.Errorf("question %q: %w", q.ID, ErrIdentityChanged)
		}
		if q.CreatedAt.IsZero() {
			out[i].CreatedAt = prev.CreatedAt
		}
	}
	return out, nil
}

func (r *Registry) check(q Question) error {
	if err := r.validate.Struct(q); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			return &InvalidError{ID: q.ID, Field: verrs[0].Field(), Rule: verrs[0].Tag()}
		}
		return fmt.Errorf("validate question %q: %w", q.ID, err)
	}
	if q.Type == TypeMCQ && len(q.Options) < 2 {
		return &InvalidError{ID: q.ID, Field: "Options", Rule: "mcq needs at least two options"}
	}
	return nil
}

// Get returns the question with the given id.
func (r *Registry) Get(id string) (Question, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	q, ok := r.questions[id]
	return q, ok
}

// Lookup is like Get but returns ErrNotFound for unknown ids.
func (r *Registry) Lookup(id string) (Question, error) {
	q, ok := r.Get(id)
	if !ok {
		return Question{}, fmt.Errorf("%q: %w", id, ErrNotFound)
	}
	return q, nil
}

// Len returns the number of registered questions.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.questions)
}

// ForUser returns a user's questions ordered by id.
func (r *Registry) ForUser(userID string) []Question {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []Question
	for _, q := range r.questions {
		if q.UserID == userID {
			out = append(out, q)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}
