package mastery

import (
	"math"
	"testing"
	"time"
)

var t0 = time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)

func TestTarget(t *testing.T) {
	tests := []struct {
		correct bool
		hints   int
		want    float64
	}{
		{false, 0, 0},
		{false, 3, 0},
		{true, 0, 100},
		{true, 1, 90},
		{true, 2, 80},
		{true, 3, 70},
		{true, 7, 50},
	}
	for _, tt := range tests {
		if got := Target(tt.correct, tt.hints); got != tt.want {
			t.Errorf("Target(%v, %d) = %v, want %v", tt.correct, tt.hints, got, tt.want)
		}
	}
}

func TestUpdate_FirstEventSetsTarget(t *testing.T) {
	m := NewModel()
	topic := Topic{DocumentID: "doc", Name: "Recursion"}

	got := m.Update(topic, true, 2, t0)
	if got != 80 {
		t.Errorf("first score = %v, want 80", got)
	}
	tm, ok := m.Get(topic)
	if !ok {
		t.Fatal("expected entry after first event")
	}
	if tm.Answered != 1 || tm.Correct != 1 {
		t.Errorf("counts = %d/%d, want 1/1", tm.Correct, tm.Answered)
	}
	if !tm.LastAnsweredAt.Equal(t0) {
		t.Errorf("LastAnsweredAt = %v, want %v", tm.LastAnsweredAt, t0)
	}
}

func TestUpdate_SmoothsTowardTarget(t *testing.T) {
	m := NewModel()
	topic := Topic{DocumentID: "doc", Name: "Graphs"}
	m.Update(topic, true, 0, t0)

	got := m.Update(topic, false, 0, t0.Add(time.Minute))
	if math.Abs(got-70) > 1e-9 {
		t.Errorf("score after miss = %v, want 70", got)
	}
	got = m.Update(topic, true, 0, t0.Add(2*time.Minute))
	if math.Abs(got-79) > 1e-9 {
		t.Errorf("score after hit = %v, want 79", got)
	}
}

func TestUpdate_ConvergesAndFixes(t *testing.T) {
	for _, target := range []struct {
		correct bool
		hints   int
	}{{true, 0}, {true, 3}, {false, 0}} {
		m := NewModel()
		topic := Topic{Name: "t"}
		m.Update(topic, !target.correct, 0, t0)
		want := Target(target.correct, target.hints)

		prev := m.Score(topic)
		reached := false
		for i := 0; i < 200; i++ {
			got := m.Update(topic, target.correct, target.hints, t0)
			if got == want {
				reached = true
			} else if math.Abs(want-got) >= math.Abs(want-prev) {
				t.Fatalf("step %d did not move closer: %v -> %v (target %v)", i, prev, got, want)
			}
			if reached && got != want {
				t.Fatalf("score left target %v after reaching it: %v", want, got)
			}
			prev = got
		}
		if !reached {
			t.Errorf("never reached target %v, last %v", want, prev)
		}
	}
}

func TestUpdate_StaysInBounds(t *testing.T) {
	m := NewModel()
	topic := Topic{Name: "bounds"}
	seq := []struct {
		correct bool
		hints   int
	}{{true, 0}, {false, 0}, {true, 3}, {true, 9}, {false, 2}, {true, 1}, {true, 0}, {true, 0}}
	for i := 0; i < 50; i++ {
		ev := seq[i%len(seq)]
		got := m.Update(topic, ev.correct, ev.hints, t0)
		if got < 0 || got > 100 {
			t.Fatalf("score %v out of [0,100] at step %d", got, i)
		}
	}
}

func TestUpdate_LastAnsweredNeverMovesBack(t *testing.T) {
	m := NewModel()
	topic := Topic{Name: "t"}
	m.Update(topic, true, 0, t0.Add(time.Hour))
	m.Update(topic, true, 0, t0)
	tm, _ := m.Get(topic)
	if !tm.LastAnsweredAt.Equal(t0.Add(time.Hour)) {
		t.Errorf("LastAnsweredAt = %v, want %v", tm.LastAnsweredAt, t0.Add(time.Hour))
	}
}

func TestAll_SortedByScoreThenTopic(t *testing.T) {
	m := NewModel()
	m.Update(Topic{DocumentID: "d", Name: "b"}, true, 0, t0)
	m.Update(Topic{DocumentID: "d", Name: "a"}, true, 0, t0)
	m.Update(Topic{DocumentID: "d", Name: "c"}, false, 0, t0)

	all := m.All()
	var got []string
	for _, tm := range all {
		got = append(got, tm.Topic.Name)
	}
	want := []string{"a", "b", "c"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("All() order = %v, want %v", got, want)
		}
	}
}

func TestClone_IsIndependent(t *testing.T) {
	m := NewModel()
	topic := Topic{Name: "t"}
	m.Update(topic, true, 0, t0)

	c := m.Clone()
	c.Update(topic, false, 0, t0)

	if m.Score(topic) != 100 {
		t.Errorf("original changed to %v", m.Score(topic))
	}
	if math.Abs(c.Score(topic)-70) > 1e-9 {
		t.Errorf("clone score = %v, want 70", c.Score(topic))
	}
}

func TestScore_UnknownTopic(t *testing.T) {
	m := NewModel()
	if m.Score(Topic{Name: "nope"}) != 0 {
		t.Error("expected 0 for unknown topic")
	}
	if _, ok := m.Get(Topic{Name: "nope"}); ok {
		t.Error("expected no entry for unknown topic")
	}
}

func TestAdaptiveDifficulty(t *testing.T) {
	tests := []struct {
		score float64
		want  string
	}{
		{0, "easy"},
		{29.9, "easy"},
		{30, "medium"},
		{69.99, "medium"},
		{70, "hard"},
		{100, "hard"},
	}
	for _, tt := range tests {
		if got := AdaptiveDifficulty(tt.score); string(got) != tt.want {
			t.Errorf("AdaptiveDifficulty(%v) = %s, want %s", tt.score, got, tt.want)
		}
	}
}

func TestSnapshotRoundTrip(t *testing.T) {
	m := NewModel()
	m.Update(Topic{DocumentID: "d1", Name: "Sorting"}, true, 1, t0)
	m.Update(Topic{DocumentID: "d2", Name: "Sorting"}, false, 0, t0)

	rows := m.SnapshotData("u1")
	if len(rows) != 2 {
		t.Fatalf("rows = %d, want 2", len(rows))
	}
	for _, r := range rows {
		if r.UserID != "u1" {
			t.Errorf("UserID = %q, want u1", r.UserID)
		}
	}

	back := NewModelFromData(rows)
	if back.Len() != 2 {
		t.Fatalf("Len = %d, want 2", back.Len())
	}
	if back.Score(Topic{DocumentID: "d1", Name: "Sorting"}) != 90 {
		t.Errorf("d1 score = %v, want 90", back.Score(Topic{DocumentID: "d1", Name: "Sorting"}))
	}
}
