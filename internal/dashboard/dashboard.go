package dashboard

import (
	"math"
	"sort"
	"time"

	"github.com/abhisek/learnlens/internal/event"
	"github.com/abhisek/learnlens/internal/mastery"
	"github.com/abhisek/learnlens/internal/progression"
	"github.com/abhisek/learnlens/internal/question"
	"github.com/abhisek/learnlens/internal/spacedrep"
)

// Dashboard is the full progress view of one user.
type Dashboard struct {
	Stats          Stats        `json:"stats"`
	TopicMastery   []TopicEntry `json:"topic_mastery"`
	RecentQuizzes  []QuizEntry  `json:"recent_quizzes"`
	ReviewQueue    []ReviewItem `json:"review_queue"`
	DocumentsCount int          `json:"documents_count"`
}

// Stats summarizes the progression ledger.
type Stats struct {
	XP               int        `json:"xp"`
	Level            int        `json:"level"`
	XPInLevel        int        `json:"xp_in_level"`
	XPForNext        int        `json:"xp_for_next"`
	LevelProgress    float64    `json:"level_progress"`
	Streak           int        `json:"streak"`
	LongestStreak    int        `json:"longest_streak"`
	Accuracy         float64    `json:"accuracy"`
	TotalQuestions   int        `json:"total_questions"`
	TotalCorrect     int        `json:"total_correct"`
	HintsUsed        int        `json:"hints_used"`
	QuizzesCompleted int        `json:"quizzes_completed"`
	LastActive       *time.Time `json:"last_active"`
}

// TopicEntry is one row of the topic mastery table.
type TopicEntry struct {
	Topic          string              `json:"topic"`
	DocumentID     string              `json:"document_id"`
	Mastery        float64             `json:"mastery"`
	// Answered counts the answers graded in this topic, so it is
	// Stats.TotalQuestions scoped to one topic. The total_questions key
	// predates the field name and API clients read it.
	Answered       int                 `json:"total_questions"`
	Correct        int                 `json:"correct"`
	NextDifficulty question.Difficulty `json:"next_difficulty"`
	LastAnsweredAt time.Time           `json:"last_answered_at"`
}

// QuizEntry summarizes the recent answers of one quiz.
type QuizEntry struct {
	QuizID         string    `json:"quiz_id"`
	DocumentID     string    `json:"document_id"`
	Topic          string    `json:"topic"`
	TotalQuestions int       `json:"total_questions"`
	Answered       int       `json:"answered"`
	Correct        int       `json:"correct"`
	Score          float64   `json:"score"`
	LastAnsweredAt time.Time `json:"last_answered_at"`
}

// ReviewItem is one due card with its question.
type ReviewItem struct {
	QuestionID   string                 `json:"question_id"`
	QuestionText string                 `json:"question_text"`
	QuestionType question.Type          `json:"question_type"`
	Topic        string                 `json:"topic"`
	Due          time.Time              `json:"due"`
	OverdueDays  float64                `json:"overdue_days"`
	Repetitions  int                    `json:"repetitions"`
	Status       spacedrep.ReviewStatus `json:"status"`
}

// Summary is the lightweight stats view.
type Summary struct {
	XP     int `json:"xp"`
	Streak int `json:"streak"`
	Level  int `json:"level"`
}

// Build composes the dashboard from one snapshot. It never modifies snap.
func Build(snap *Snapshot, opts Options) *Dashboard {
	opts = opts.withDefaults()

	byID := make(map[string]question.Question, len(snap.Questions))
	quizSize := make(map[string]int)
	docs := make(map[string]bool)
	for _, q := range snap.Questions {
		byID[q.ID] = q
		quizSize[q.QuizID]++
		docs[q.DocumentID] = true
	}

	return &Dashboard{
		Stats:          buildStats(snap, byID),
		TopicMastery:   buildTopics(snap.Mastery),
		RecentQuizzes:  buildRecentQuizzes(snap.Recent, quizSize, opts.RecentQuizzes),
		ReviewQueue:    buildReviewQueue(snap.Due, byID, snap.Now, opts.ReviewLimit),
		DocumentsCount: len(docs),
	}
}

// Summarize returns the lightweight stats of a ledger.
func Summarize(p progression.Progress) *Summary {
	return &Summary{XP: p.XP, Streak: p.Streak, Level: p.Level()}
}

func buildStats(snap *Snapshot, byID map[string]question.Question) Stats {
	p := snap.Progress
	info := progression.Describe(p.XP)
	s := Stats{
		XP:               p.XP,
		Level:            info.Level,
		XPInLevel:        info.XPInLevel,
		XPForNext:        info.XPForNext,
		LevelProgress:    round(info.Progress, 2),
		Streak:           p.Streak,
		LongestStreak:    p.LongestStreak,
		Accuracy:         p.Accuracy(),
		TotalQuestions:   p.TotalAnswered,
		TotalCorrect:     p.TotalCorrect,
		HintsUsed:        p.HintsUsed,
		QuizzesCompleted: completedQuizzes(snap.Cards, byID),
	}
	if !p.LastActive.IsZero() {
		last := p.LastActive
		s.LastActive = &last
	}
	return s
}

// completedQuizzes counts quizzes whose every registered question has been
// answered at least once.
func completedQuizzes(cards []spacedrep.CardState, byID map[string]question.Question) int {
	total := make(map[string]int)
	for _, q := range byID {
		total[q.QuizID]++
	}
	answered := make(map[string]int)
	for _, c := range cards {
		if q, ok := byID[c.QuestionID]; ok {
			answered[q.QuizID]++
		}
	}
	n := 0
	for quiz, size := range total {
		if answered[quiz] >= size {
			n++
		}
	}
	return n
}

func buildTopics(ms []mastery.TopicMastery) []TopicEntry {
	out := make([]TopicEntry, 0, len(ms))
	for _, tm := range ms {
		out = append(out, TopicEntry{
			Topic:          tm.Topic.Name,
			DocumentID:     tm.Topic.DocumentID,
			Mastery:        round(tm.Score, 1),
			Answered:       tm.Answered,
			Correct:        tm.Correct,
			NextDifficulty: mastery.AdaptiveDifficulty(tm.Score),
			LastAnsweredAt: tm.LastAnsweredAt,
		})
	}
	return out
}

// buildRecentQuizzes groups events by quiz. Within a quiz only the latest
// attempt of each question counts. Quizzes are ordered by their most recent
// answer, newest first.
func buildRecentQuizzes(events []event.AnswerEvent, quizSize map[string]int, limit int) []QuizEntry {
	groups := make(map[string]*QuizEntry)
	attempts := make(map[string]map[string]bool) // quiz -> question -> latest correct

	for _, ev := range events {
		g, ok := groups[ev.QuizID]
		if !ok {
			g = &QuizEntry{QuizID: ev.QuizID, DocumentID: ev.DocumentID, Topic: ev.Topic}
			groups[ev.QuizID] = g
			attempts[ev.QuizID] = make(map[string]bool)
		}
		attempts[ev.QuizID][ev.QuestionID] = ev.Correct
		if !ev.Timestamp.Before(g.LastAnsweredAt) {
			g.LastAnsweredAt = ev.Timestamp
		}
	}

	out := make([]QuizEntry, 0, len(groups))
	for id, g := range groups {
		for _, correct := range attempts[id] {
			g.Answered++
			if correct {
				g.Correct++
			}
		}
		g.TotalQuestions = max(quizSize[id], g.Answered)
		g.Score = round(float64(g.Correct)/float64(max(1, g.TotalQuestions))*100, 1)
		out = append(out, *g)
	}

	sort.Slice(out, func(i, j int) bool {
		if !out[i].LastAnsweredAt.Equal(out[j].LastAnsweredAt) {
			return out[i].LastAnsweredAt.After(out[j].LastAnsweredAt)
		}
		return out[i].QuizID < out[j].QuizID
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

func buildReviewQueue(due []spacedrep.CardState, byID map[string]question.Question, now time.Time, limit int) []ReviewItem {
	n := len(due)
	if limit > 0 && n > limit {
		n = limit
	}
	out := make([]ReviewItem, 0, n)
	for _, c := range due[:n] {
		q := byID[c.QuestionID]
		out = append(out, ReviewItem{
			QuestionID:   c.QuestionID,
			QuestionText: q.Text,
			QuestionType: q.Type,
			Topic:        c.Topic.Name,
			Due:          c.Due,
			OverdueDays:  round(c.OverdueDays(now), 2),
			Repetitions:  c.Repetitions,
			Status:       c.Status(now),
		})
	}
	return out
}

func round(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}
