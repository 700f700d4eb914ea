package mastery

import (
	"math"
	"sort"
	"time"
)

const (
	// LearningRate is the smoothing factor α applied per graded event.
	LearningRate = 0.3
	// HintPenalty is subtracted from a correct answer's target per hint used.
	HintPenalty = 10.0
	// HintedFloor is the lowest target a correct answer can have.
	HintedFloor = 50.0
	// MaxScore and MinScore bound every mastery score.
	MaxScore = 100.0
	MinScore = 0.0

	// snapEpsilon is the distance at which a score is considered to have
	// reached its target.
	snapEpsilon = 1e-6
)

// Topic identifies a topic label within one source document.
type Topic struct {
	DocumentID string
	Name       string
}

func (t Topic) String() string {
	if t.DocumentID == "" {
		return t.Name
	}
	return t.DocumentID + "/" + t.Name
}

// TopicMastery is the mastery aggregate for one topic.
type TopicMastery struct {
	Topic          Topic
	Score          float64
	Answered       int
	Correct        int
	LastAnsweredAt time.Time
}

// Accuracy returns the fraction of correct answers, or 0 with no answers.
func (tm TopicMastery) Accuracy() float64 {
	if tm.Answered == 0 {
		return 0
	}
	return float64(tm.Correct) / float64(tm.Answered)
}

// Target returns the score a single event pulls mastery toward.
func Target(correct bool, hintsUsed int) float64 {
	if !correct {
		return MinScore
	}
	return math.Max(HintedFloor, MaxScore-HintPenalty*float64(max(0, hintsUsed)))
}

// Blend moves old toward target by LearningRate and clamps the result.
func Blend(old, target float64) float64 {
	next := old + LearningRate*(target-old)
	if math.Abs(target-next) < snapEpsilon {
		next = target
	}
	return clamp(next, MinScore, MaxScore)
}

// Step applies one graded event to prev. seen reports whether prev holds
// any earlier event; the first event sets the score to the target directly.
func Step(prev TopicMastery, seen bool, correct bool, hintsUsed int, at time.Time) TopicMastery {
	next := prev
	target := Target(correct, hintsUsed)
	if seen {
		next.Score = Blend(prev.Score, target)
	} else {
		next.Score = target
	}
	next.Answered++
	if correct {
		next.Correct++
	}
	if at.After(next.LastAnsweredAt) {
		next.LastAnsweredAt = at
	}
	return next
}

// Model tracks mastery for every topic of one user. It is not safe for
// concurrent use; the engine serializes access per user.
type Model struct {
	topics map[Topic]*TopicMastery
}

// NewModel creates an empty model.
func NewModel() *Model {
	return &Model{topics: make(map[Topic]*TopicMastery)}
}

// Update applies one graded event to topic and returns the new score.
func (m *Model) Update(topic Topic, correct bool, hintsUsed int, at time.Time) float64 {
	prev, seen := m.Get(topic)
	if !seen {
		prev = TopicMastery{Topic: topic}
	}
	next := Step(prev, seen, correct, hintsUsed, at)
	m.Put(next)
	return next.Score
}

// Get returns the mastery entry for topic. Topics without events have none.
func (m *Model) Get(topic Topic) (TopicMastery, bool) {
	tm, ok := m.topics[topic]
	if !ok {
		return TopicMastery{}, false
	}
	return *tm, true
}

// Put stores tm, replacing any previous entry for its topic.
func (m *Model) Put(tm TopicMastery) {
	cp := tm
	m.topics[tm.Topic] = &cp
}

// Score returns the score of topic, or 0 if it has no events.
func (m *Model) Score(topic Topic) float64 {
	if tm, ok := m.topics[topic]; ok {
		return tm.Score
	}
	return 0
}

// Len returns the number of topics with at least one event.
func (m *Model) Len() int {
	return len(m.topics)
}

// All returns every entry sorted by score descending, then by topic.
func (m *Model) All() []TopicMastery {
	out := make([]TopicMastery, 0, len(m.topics))
	for _, tm := range m.topics {
		out = append(out, *tm)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Score != out[j].Score {
			return out[i].Score > out[j].Score
		}
		return out[i].Topic.String() < out[j].Topic.String()
	})
	return out
}

// Clone returns a deep copy of the model.
func (m *Model) Clone() *Model {
	c := &Model{topics: make(map[Topic]*TopicMastery, len(m.topics))}
	for k, v := range m.topics {
		cp := *v
		c.topics[k] = &cp
	}
	return c
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
