package render

import (
	"fmt"
	"strings"
	"time"

	"charm.land/lipgloss/v2"

	"github.com/abhisek/learnlens/internal/dashboard"
	"github.com/abhisek/learnlens/internal/spacedrep"
)

const barWidth = 20

// Dashboard renders the full progress view of user as terminal text.
func Dashboard(user string, d *dashboard.Dashboard) string {
	sections := []string{
		titleStyle.Render("LearnLens · " + user),
		Stats(d.Stats),
		section("Topic mastery", topics(d.TopicMastery)),
		section("Recent quizzes", quizzes(d.RecentQuizzes)),
		section("Review queue", Review(d.ReviewQueue)),
	}
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

// Stats renders the headline numbers and the level meter.
func Stats(s dashboard.Stats) string {
	line := strings.Join([]string{
		field("Level", fmt.Sprint(s.Level)),
		field("XP", fmt.Sprint(s.XP)),
		field("Streak", fmt.Sprintf("%d (best %d)", s.Streak, s.LongestStreak)),
		field("Accuracy", fmt.Sprintf("%.1f%%", s.Accuracy)),
		field("Answered", fmt.Sprint(s.TotalQuestions)),
		field("Hints", fmt.Sprint(s.HintsUsed)),
	}, "   ")
	meter := fmt.Sprintf("%s %s %s",
		labelStyle.Render("Next level"),
		Bar(s.LevelProgress, barWidth, lipgloss.NewStyle().Background(Teal)),
		labelStyle.Render(fmt.Sprintf("%d/%d", s.XPInLevel, s.XPForNext)))
	return panelStyle.Render(line + "\n" + meter)
}

// Review renders the due queue, most urgent first.
func Review(items []dashboard.ReviewItem) string {
	if len(items) == 0 {
		return labelStyle.Render("Nothing due.")
	}
	var b strings.Builder
	for i, it := range items {
		if i > 0 {
			b.WriteByte('\n')
		}
		status := labelStyle.Render(string(it.Status))
		if it.Status == spacedrep.ReviewOverdue {
			status = overdueStyle.Render(fmt.Sprintf("overdue %.1fd", it.OverdueDays))
		}
		fmt.Fprintf(&b, "%-10s %-18s %s  %s", it.QuestionID, truncate(it.Topic, 18), status, truncate(it.QuestionText, 48))
	}
	return b.String()
}

func topics(entries []dashboard.TopicEntry) string {
	if len(entries) == 0 {
		return labelStyle.Render("No answers yet.")
	}
	var b strings.Builder
	for i, e := range entries {
		if i > 0 {
			b.WriteByte('\n')
		}
		fmt.Fprintf(&b, "%-24s %s %5.1f  %d/%d  next: %s",
			truncate(e.Topic, 24), Bar(e.Mastery/100, barWidth, masteryColor(e.Mastery)),
			e.Mastery, e.Correct, e.Answered, e.NextDifficulty)
	}
	return b.String()
}

func quizzes(entries []dashboard.QuizEntry) string {
	if len(entries) == 0 {
		return labelStyle.Render("No quizzes yet.")
	}
	var b strings.Builder
	for i, q := range entries {
		if i > 0 {
			b.WriteByte('\n')
		}
		fmt.Fprintf(&b, "%-12s %-18s %3.0f%%  %d/%d answered  %s",
			truncate(q.QuizID, 12), truncate(q.Topic, 18), q.Score, q.Answered, q.TotalQuestions,
			labelStyle.Render(q.LastAnsweredAt.Local().Format(time.DateTime)))
	}
	return b.String()
}

func section(title, body string) string {
	return "\n" + valueStyle.Render(title) + "\n" + body
}

func field(label, value string) string {
	return labelStyle.Render(label+" ") + valueStyle.Render(value)
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
