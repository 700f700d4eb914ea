package store

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	s, err := Open(fmt.Sprintf("file:%s?mode=memory&cache=shared", name))
	if err != nil {
		t.Fatalf("open test store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

var t0 = time.Date(2025, 5, 1, 8, 30, 0, 123, time.UTC)

func sampleEvent(user, qid string, at time.Time) AnswerEventData {
	return AnswerEventData{
		EventID:    user + "-" + qid + "-" + at.Format("150405.000000000"),
		UserID:     user,
		QuestionID: qid,
		QuizID:     "quiz",
		DocumentID: "doc",
		Topic:      "Heaps",
		Difficulty: "medium",
		UserAnswer: "sift down",
		Correct:    true,
		HintsUsed:  1,
		Timestamp:  at,
	}
}

func sampleProjection(user, qid string, at time.Time) ProjectionData {
	return ProjectionData{
		Mastery:  TopicMasteryData{UserID: user, DocumentID: "doc", Topic: "Heaps", Score: 90, Answered: 1, Correct: 1, LastAnsweredAt: at},
		Card:     CardScheduleData{UserID: user, QuestionID: qid, DocumentID: "doc", Topic: "Heaps", Repetitions: 1, IntervalDays: 1, Ease: 2.5, Due: at.AddDate(0, 0, 1), LastReviewed: at},
		Progress: UserProgressData{UserID: user, XP: 13, Streak: 1, LongestStreak: 1, LastActive: at, TotalAnswered: 1, TotalCorrect: 1, HintsUsed: 1},
	}
}

func TestPragmasApplied(t *testing.T) {
	s := openTestStore(t)
	db := s.DB()

	tests := []struct {
		pragma string
		want   string
	}{
		// WAL mode falls back to "memory" for in-memory databases,
		// so journal_mode is covered by the file-based test.
		{"foreign_keys", "1"},
		{"synchronous", "1"}, // NORMAL = 1
	}

	for _, tt := range tests {
		var got string
		if err := db.QueryRow("PRAGMA " + tt.pragma).Scan(&got); err != nil {
			t.Errorf("PRAGMA %s: %v", tt.pragma, err)
			continue
		}
		if got != tt.want {
			t.Errorf("PRAGMA %s = %q, want %q", tt.pragma, got, tt.want)
		}
	}
}

func TestOpen_FileDatabaseUsesWAL(t *testing.T) {
	path := filepath.Join(t.TempDir(), "learnlens.db")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer s.Close()

	var mode string
	if err := s.DB().QueryRow("PRAGMA journal_mode").Scan(&mode); err != nil {
		t.Fatalf("journal_mode: %v", err)
	}
	if mode != "wal" {
		t.Errorf("journal_mode = %q, want wal", mode)
	}
}

func TestAppendAndQueryAnswerEvents(t *testing.T) {
	s := openTestStore(t)
	repo := s.EventRepo()
	ctx := context.Background()

	score := 0.75
	first := sampleEvent("u1", "q1", t0)
	first.Score = &score

	seq1, err := repo.AppendAnswerEvent(ctx, first, sampleProjection("u1", "q1", t0))
	if err != nil {
		t.Fatalf("append: %v", err)
	}
	seq2, err := repo.AppendAnswerEvent(ctx, sampleEvent("u2", "q9", t0.Add(time.Second)), sampleProjection("u2", "q9", t0))
	if err != nil {
		t.Fatalf("append: %v", err)
	}
	seq3, err := repo.AppendAnswerEvent(ctx, sampleEvent("u1", "q2", t0.Add(time.Minute)), sampleProjection("u1", "q2", t0))
	if err != nil {
		t.Fatalf("append: %v", err)
	}
	if !(seq1 < seq2 && seq2 < seq3) {
		t.Fatalf("sequences not increasing: %d %d %d", seq1, seq2, seq3)
	}

	got, err := repo.QueryAnswerEvents(ctx, QueryOpts{UserID: "u1"})
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("got %d events, want 2", len(got))
	}
	if got[0].Sequence != seq1 || got[1].Sequence != seq3 {
		t.Errorf("sequences = %d,%d want %d,%d", got[0].Sequence, got[1].Sequence, seq1, seq3)
	}
	if !got[0].Timestamp.Equal(t0) {
		t.Errorf("timestamp = %v, want %v", got[0].Timestamp, t0)
	}
	if got[0].Score == nil || *got[0].Score != 0.75 {
		t.Errorf("score = %v, want 0.75", got[0].Score)
	}
	if got[1].Score != nil {
		t.Errorf("score = %v, want nil", *got[1].Score)
	}
	if !got[0].Correct || got[0].HintsUsed != 1 || got[0].Difficulty != "medium" {
		t.Errorf("event = %+v", got[0])
	}

	latest, err := repo.QueryAnswerEvents(ctx, QueryOpts{Limit: 2})
	if err != nil {
		t.Fatalf("query limit: %v", err)
	}
	if len(latest) != 2 || latest[0].Sequence != seq2 || latest[1].Sequence != seq3 {
		t.Errorf("limit query = %+v", latest)
	}

	after, err := repo.QueryAnswerEvents(ctx, QueryOpts{After: seq1})
	if err != nil {
		t.Fatalf("query after: %v", err)
	}
	if len(after) != 2 {
		t.Errorf("after query returned %d events, want 2", len(after))
	}

	users, err := repo.Users(ctx)
	if err != nil {
		t.Fatalf("users: %v", err)
	}
	if len(users) != 2 || users[0] != "u1" || users[1] != "u2" {
		t.Errorf("users = %v", users)
	}
}

func TestAppendAnswerEvent_WritesProjection(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	proj := sampleProjection("u1", "q1", t0)
	if _, err := s.EventRepo().AppendAnswerEvent(ctx, sampleEvent("u1", "q1", t0), proj); err != nil {
		t.Fatalf("append: %v", err)
	}

	proj.Mastery.Score = 93
	proj.Mastery.Answered = 2
	proj.Progress.XP = 26
	if _, err := s.EventRepo().AppendAnswerEvent(ctx, sampleEvent("u1", "q1", t0.Add(time.Hour)), proj); err != nil {
		t.Fatalf("append: %v", err)
	}

	got, err := s.ProjectionRepo().Load(ctx, "u1")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(got.Mastery) != 1 || got.Mastery[0].Score != 93 || got.Mastery[0].Answered != 2 {
		t.Errorf("mastery = %+v", got.Mastery)
	}
	if len(got.Cards) != 1 {
		t.Fatalf("cards = %+v, want one", got.Cards)
	}
	if c := got.Cards[0]; c.Ease != 2.5 || !c.Due.Equal(proj.Card.Due) || !c.LastReviewed.Equal(t0) {
		t.Errorf("card = %+v, want %+v", c, proj.Card)
	}
	if got.Progress == nil || got.Progress.XP != 26 {
		t.Errorf("progress = %+v", got.Progress)
	}
}

func TestAppendAnswerEvent_DuplicateRollsBack(t *testing.T) {
	s := openTestStore(t)
	repo := s.EventRepo()
	ctx := context.Background()

	ev := sampleEvent("u1", "q1", t0)
	if _, err := repo.AppendAnswerEvent(ctx, ev, sampleProjection("u1", "q1", t0)); err != nil {
		t.Fatalf("append: %v", err)
	}

	proj := sampleProjection("u1", "q1", t0)
	proj.Progress.XP = 999
	if _, err := repo.AppendAnswerEvent(ctx, ev, proj); err == nil {
		t.Fatal("expected duplicate event id to fail")
	}

	got, err := s.ProjectionRepo().Load(ctx, "u1")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if got.Progress.XP != 13 {
		t.Errorf("XP = %d, want 13 (failed append must not touch caches)", got.Progress.XP)
	}

	next, err := repo.AppendAnswerEvent(ctx, sampleEvent("u1", "q2", t0), sampleProjection("u1", "q2", t0))
	if err != nil {
		t.Fatalf("append after failure: %v", err)
	}
	if next != 2 {
		t.Errorf("sequence after rollback = %d, want 2", next)
	}
}

func TestProjectionLoad_Empty(t *testing.T) {
	s := openTestStore(t)
	got, err := s.ProjectionRepo().Load(context.Background(), "nobody")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(got.Mastery) != 0 || len(got.Cards) != 0 || got.Progress != nil {
		t.Errorf("expected empty projection, got %+v", got)
	}
}

func TestProjectionReplace(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	repo := s.ProjectionRepo()

	if _, err := s.EventRepo().AppendAnswerEvent(ctx, sampleEvent("u1", "q1", t0), sampleProjection("u1", "q1", t0)); err != nil {
		t.Fatalf("append: %v", err)
	}

	progress := UserProgressData{UserID: "u1", XP: 50, Streak: 2, LongestStreak: 4}
	err := repo.Replace(ctx, "u1", &UserProjectionData{
		Mastery: []TopicMasteryData{
			{UserID: "u1", DocumentID: "doc", Topic: "Tries", Score: 40, Answered: 3, Correct: 1},
		},
		Progress: &progress,
	})
	if err != nil {
		t.Fatalf("replace: %v", err)
	}

	got, err := repo.Load(ctx, "u1")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(got.Mastery) != 1 || got.Mastery[0].Topic != "Tries" {
		t.Errorf("mastery = %+v", got.Mastery)
	}
	if len(got.Cards) != 0 {
		t.Errorf("cards = %+v, want none", got.Cards)
	}
	if got.Progress == nil || *got.Progress != progress {
		t.Errorf("progress = %+v, want %+v", got.Progress, progress)
	}
}

func TestQuestionsSaveAndAll(t *testing.T) {
	s := openTestStore(t)
	repo := s.QuestionRepo()
	ctx := context.Background()

	qs := []QuestionData{
		{ID: "q2", UserID: "u1", DocumentID: "d", QuizID: "z", Topic: "t", Text: "2+2?", Type: "mcq",
			Options: []string{"3", "4"}, CorrectAnswer: "4", Difficulty: "easy", Hints: []string{"count"}, CreatedAt: t0},
		{ID: "q1", UserID: "u1", DocumentID: "d", QuizID: "z", Topic: "t", Text: "Define a set.", Type: "short_answer",
			CorrectAnswer: "a collection", Difficulty: "medium"},
	}
	if err := repo.SaveQuestions(ctx, qs); err != nil {
		t.Fatalf("save: %v", err)
	}
	qs[1].Text = "Define a multiset."
	if err := repo.SaveQuestions(ctx, qs[1:]); err != nil {
		t.Fatalf("resave: %v", err)
	}

	got, err := repo.AllQuestions(ctx)
	if err != nil {
		t.Fatalf("all: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("got %d questions, want 2", len(got))
	}
	if got[0].ID != "q1" || got[0].Text != "Define a multiset." || got[0].Options != nil {
		t.Errorf("q1 = %+v", got[0])
	}
	if len(got[1].Options) != 2 || got[1].Hints[0] != "count" || !got[1].CreatedAt.Equal(t0) {
		t.Errorf("q2 = %+v", got[1])
	}
}

func TestSequenceCounter_Monotonic(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	var prev int64
	for i := 0; i < 5; i++ {
		seq, err := s.seq.Next(ctx, s.DB())
		if err != nil {
			t.Fatalf("next: %v", err)
		}
		if seq <= prev {
			t.Fatalf("sequence %d not greater than %d", seq, prev)
		}
		prev = seq
	}
}

func TestDefaultDBPath_Env(t *testing.T) {
	want := filepath.Join(t.TempDir(), "sub", "custom.db")
	t.Setenv("LEARNLENS_DB", want)

	got, err := DefaultDBPath()
	if err != nil {
		t.Fatalf("DefaultDBPath: %v", err)
	}
	if got != want {
		t.Errorf("DefaultDBPath() = %q, want %q", got, want)
	}
}

func TestDefaultDBPath_XDG(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("LEARNLENS_DB", "")
	t.Setenv("XDG_DATA_HOME", dir)

	got, err := DefaultDBPath()
	if err != nil {
		t.Fatalf("DefaultDBPath: %v", err)
	}
	if want := filepath.Join(dir, "learnlens", "learnlens.db"); got != want {
		t.Errorf("DefaultDBPath() = %q, want %q", got, want)
	}
}
