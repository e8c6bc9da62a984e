package assessment

import "disciple-assessment-service/internal/domain"

// Answers records the latest value per item. It keeps no history; setting a
// key never touches other keys.
type Answers struct {
	values domain.AnswerMap
}

func NewAnswers() *Answers {
	return &Answers{values: make(domain.AnswerMap)}
}

// Set stores value for itemID, replacing any earlier value.
func (a *Answers) Set(itemID string, value int) {
	a.values[itemID] = value
}

// Get returns the recorded value for itemID.
func (a *Answers) Get(itemID string) (int, bool) {
	v, ok := a.values[itemID]
	return v, ok
}

// Len is the number of answered items.
func (a *Answers) Len() int {
	return len(a.values)
}

// Snapshot returns a copy of the current mapping.
func (a *Answers) Snapshot() domain.AnswerMap {
	return a.values.Clone()
}
