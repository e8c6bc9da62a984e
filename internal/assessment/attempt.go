package assessment

import (
	"fmt"
	"sync"
	"time"

	"disciple-assessment-service/internal/domain"
)

// Permuter produces the randomized item order for an attempt.
type Permuter interface {
	Permute(items []domain.Item) []domain.Item
}

// Attempt is one pass through the bank. The permutation and paging are fixed
// when the attempt is created and never recomputed; restarting means creating
// a new Attempt.
type Attempt struct {
	id        string
	userID    string
	bankID    string
	startedAt time.Time
	pageSize  int

	order  []domain.Item
	pages  [][]domain.Item
	items  map[string]struct{}
	scale  map[int]struct{}
	mu     sync.RWMutex
	answer *Answers
}

// Progress is a point-in-time view of an attempt.
type Progress struct {
	AttemptID string `json:"attempt_id"`
	Answered  int    `json:"answered"`
	Total     int    `json:"total"`
	PageCount int    `json:"page_count"`
	PageSize  int    `json:"page_size"`
}

// NewAttempt flattens the bank, permutes it once and pages the result.
func NewAttempt(id, userID string, bank domain.Bank, permuter Permuter, pageSize int, startedAt time.Time) *Attempt {
	if pageSize < 1 {
		pageSize = DefaultPageSize
	}
	order := permuter.Permute(bank.Items())

	items := make(map[string]struct{}, len(order))
	for _, item := range order {
		items[item.ID] = struct{}{}
	}
	scale := make(map[int]struct{}, len(bank.Scale))
	for _, label := range bank.Scale {
		scale[label.Value] = struct{}{}
	}

	return &Attempt{
		id:        id,
		userID:    userID,
		bankID:    bank.ID,
		startedAt: startedAt,
		pageSize:  pageSize,
		order:     order,
		pages:     Paginate(order, pageSize),
		items:     items,
		scale:     scale,
		answer:    NewAnswers(),
	}
}

func (a *Attempt) ID() string           { return a.id }
func (a *Attempt) UserID() string       { return a.userID }
func (a *Attempt) BankID() string       { return a.bankID }
func (a *Attempt) StartedAt() time.Time { return a.startedAt }
func (a *Attempt) PageSize() int        { return a.pageSize }
func (a *Attempt) PageCount() int       { return len(a.pages) }

// Total is the flattened item count the completeness check compares against.
func (a *Attempt) Total() int { return len(a.order) }

// Order returns a copy of the randomized sequence.
func (a *Attempt) Order() []domain.Item {
	out := make([]domain.Item, len(a.order))
	copy(out, a.order)
	return out
}

// Page returns the 1-based page n.
func (a *Attempt) Page(n int) ([]domain.Item, error) {
	if n < 1 || n > len(a.pages) {
		return nil, fmt.Errorf("%w: page %d of %d", domain.ErrPageOutOfRange, n, len(a.pages))
	}
	page := a.pages[n-1]
	out := make([]domain.Item, len(page))
	copy(out, page)
	return out, nil
}

// Answer records value for itemID, overwriting any earlier answer.
func (a *Attempt) Answer(itemID string, value int) error {
	if _, ok := a.items[itemID]; !ok {
		return fmt.Errorf("%w: %s", domain.ErrItemNotFound, itemID)
	}
	if _, ok := a.scale[value]; !ok {
		return fmt.Errorf("%w: %d", domain.ErrInvalidScaleValue, value)
	}
	a.mu.Lock()
	a.answer.Set(itemID, value)
	a.mu.Unlock()
	return nil
}

// Answers returns a snapshot of the answer map.
func (a *Attempt) Answers() domain.AnswerMap {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.answer.Snapshot()
}

// Value returns the recorded answer for itemID.
func (a *Attempt) Value(itemID string) (int, bool) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.answer.Get(itemID)
}

// Answered is the number of distinct items answered.
func (a *Attempt) Answered() int {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.answer.Len()
}

// Complete reports whether every item in the attempt has an answer.
func (a *Attempt) Complete() bool {
	return a.Answered() == a.Total()
}

// Unanswered lists item ids without an answer, in presentation order.
func (a *Attempt) Unanswered() []string {
	a.mu.RLock()
	defer a.mu.RUnlock()
	var missing []string
	for _, item := range a.order {
		if _, ok := a.answer.Get(item.ID); !ok {
			missing = append(missing, item.ID)
		}
	}
	return missing
}

// Score computes section scores from the current answers.
func (a *Attempt) Score() map[string]domain.SectionScore {
	return Score(a.Answers(), a.order)
}

// Progress summarizes answered/total and paging.
func (a *Attempt) Progress() Progress {
	return Progress{
		AttemptID: a.id,
		Answered:  a.Answered(),
		Total:     a.Total(),
		PageCount: a.PageCount(),
		PageSize:  a.pageSize,
	}
}
