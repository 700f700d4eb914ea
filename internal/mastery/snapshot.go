package mastery

import "github.com/abhisek/learnlens/internal/store"

// ToData converts a mastery entry to its cache row.
func ToData(userID string, tm TopicMastery) store.TopicMasteryData {
	return store.TopicMasteryData{
		UserID:         userID,
		DocumentID:     tm.Topic.DocumentID,
		Topic:          tm.Topic.Name,
		Score:          tm.Score,
		Answered:       tm.Answered,
		Correct:        tm.Correct,
		LastAnsweredAt: tm.LastAnsweredAt,
	}
}

// FromData converts a cache row back to a mastery entry.
func FromData(d store.TopicMasteryData) TopicMastery {
	return TopicMastery{
		Topic:          Topic{DocumentID: d.DocumentID, Name: d.Topic},
		Score:          d.Score,
		Answered:       d.Answered,
		Correct:        d.Correct,
		LastAnsweredAt: d.LastAnsweredAt,
	}
}

// SnapshotData exports every entry of the model for persistence.
func (m *Model) SnapshotData(userID string) []store.TopicMasteryData {
	all := m.All()
	out := make([]store.TopicMasteryData, len(all))
	for i, tm := range all {
		out[i] = ToData(userID, tm)
	}
	return out
}

// NewModelFromData rebuilds a model from cache rows.
func NewModelFromData(rows []store.TopicMasteryData) *Model {
	m := NewModel()
	for _, r := range rows {
		m.Put(FromData(r))
	}
	return m
}
