package spacedrep

import (
	"testing"
	"time"
)

func TestIsDue(t *testing.T) {
	c := &CardState{Due: t0}
	if c.IsDue(t0.Add(-time.Second)) {
		t.Error("expected not due before due time")
	}
	if !c.IsDue(t0) {
		t.Error("expected due at due time")
	}
	if !c.IsDue(t0.Add(time.Hour)) {
		t.Error("expected due after due time")
	}
}

func TestOverdueDays(t *testing.T) {
	c := &CardState{Due: t0}
	if got := c.OverdueDays(t0.Add(-time.Hour)); got != 0 {
		t.Errorf("OverdueDays() = %f, want 0", got)
	}
	got := c.OverdueDays(t0.Add(3 * 24 * time.Hour))
	if got < 2.99 || got > 3.01 {
		t.Errorf("OverdueDays() = %f, want ~3.0", got)
	}
}

func TestStatus(t *testing.T) {
	// 6-day interval -> 3 days of grace
	c := &CardState{IntervalDays: 6, Due: t0}
	tests := []struct {
		name string
		now  time.Time
		want ReviewStatus
	}{
		{"before due", t0.Add(-time.Hour), ReviewNotDue},
		{"at due", t0, ReviewDue},
		{"within grace", t0.Add(2 * 24 * time.Hour), ReviewDue},
		{"past grace", t0.Add(4 * 24 * time.Hour), ReviewOverdue},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := c.Status(tt.now); got != tt.want {
				t.Errorf("Status() = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestDaysUntilReview(t *testing.T) {
	c := &CardState{Due: t0.Add(36 * time.Hour)}
	if got := c.DaysUntilReview(t0); got != 2 {
		t.Errorf("DaysUntilReview() = %d, want 2", got)
	}
	if got := c.DaysUntilReview(t0.Add(48 * time.Hour)); got != 0 {
		t.Errorf("DaysUntilReview() = %d, want 0", got)
	}
}
