package memory

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"disciple-assessment-service/internal/domain"
	"golang.org/x/sync/singleflight"
)

// BankLoader fetches question bank content from a backing store (embedded file, Postgres).
type BankLoader interface {
	LoadBank(ctx context.Context, bankID string) (domain.Bank, error)
}

// BankRepository keeps loaded banks for ttl plus up to 10% jitter. Concurrent
// misses for the same bank share one load. A ttl <= 0 disables caching and
// every call goes to the loader.
type BankRepository struct {
	loader BankLoader
	ttl    time.Duration
	clock  func() time.Time
	loads  singleflight.Group

	rndMu sync.Mutex
	rnd   *rand.Rand

	mu    sync.RWMutex
	banks map[string]cachedBank
}

type cachedBank struct {
	bank      domain.Bank
	expiresAt time.Time
}

func NewBankRepository(loader BankLoader, ttl time.Duration) *BankRepository {
	return &BankRepository{
		loader: loader,
		ttl:    ttl,
		clock:  time.Now,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
		banks:  make(map[string]cachedBank),
	}
}

func (r *BankRepository) GetBank(ctx context.Context, bankID string) (domain.Bank, error) {
	if b, ok := r.fresh(bankID); ok {
		return b, nil
	}

	v, err, _ := r.loads.Do(bankID, func() (interface{}, error) {
		if b, ok := r.fresh(bankID); ok {
			return b, nil
		}
		b, err := r.loader.LoadBank(ctx, bankID)
		if err != nil {
			return domain.Bank{}, err
		}
		r.keep(bankID, b)
		return b, nil
	})
	if err != nil {
		return domain.Bank{}, err
	}
	return v.(domain.Bank), nil
}

func (r *BankRepository) fresh(bankID string) (domain.Bank, bool) {
	if r.ttl <= 0 {
		return domain.Bank{}, false
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	entry, ok := r.banks[bankID]
	if !ok || !entry.expiresAt.After(r.clock()) {
		return domain.Bank{}, false
	}
	return entry.bank, true
}

func (r *BankRepository) keep(bankID string, b domain.Bank) {
	if r.ttl <= 0 {
		return
	}
	expiresAt := r.clock().Add(r.ttl + r.jitter())
	r.mu.Lock()
	r.banks[bankID] = cachedBank{bank: b, expiresAt: expiresAt}
	r.mu.Unlock()
}

// StaticBankLoader serves banks held in memory (the embedded default, a file, tests).
type StaticBankLoader struct {
	banks map[string]domain.Bank
}

func NewStaticBankLoader(banks ...domain.Bank) *StaticBankLoader {
	l := &StaticBankLoader{banks: make(map[string]domain.Bank, len(banks))}
	for _, b := range banks {
		l.banks[b.ID] = b
	}
	return l
}

// LoadBank returns the bank with bankID; an empty id selects the only bank when exactly one is held.
func (l *StaticBankLoader) LoadBank(_ context.Context, bankID string) (domain.Bank, error) {
	if b, ok := l.banks[bankID]; ok {
		return b, nil
	}
	if bankID == "" && len(l.banks) == 1 {
		for _, b := range l.banks {
			return b, nil
		}
	}
	return domain.Bank{}, domain.ErrBankUnavailable
}

func (r *BankRepository) jitter() time.Duration {
	r.rndMu.Lock()
	defer r.rndMu.Unlock()
	return time.Duration(r.rnd.Int63n(int64(r.ttl)/10 + 1))
}
