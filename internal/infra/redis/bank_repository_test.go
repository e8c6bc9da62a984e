package redis

import (
	"context"
	"testing"
	"time"

	"disciple-assessment-service/internal/domain"
	"disciple-assessment-service/internal/infra/memory"
	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func TestBankRepositoryCachesInRedis(t *testing.T) {
	mr := runMiniredis(t)
	client := newClient(mr)

	loader := &countingLoader{BankLoader: memory.NewStaticBankLoader(sampleBank())}
	repo := NewBankRepository(client, loader, time.Minute)

	b, err := repo.GetBank(context.Background(), "bank-1")
	if err != nil {
		t.Fatalf("get bank: %v", err)
	}
	if loader.calls != 1 {
		t.Fatalf("expected loader called once, got %d", loader.calls)
	}
	if !mr.Exists("assessment:bank:bank-1") {
		t.Fatalf("expected bank cached in redis")
	}

	// Second call should hit cache, loader not incremented.
	cached, _ := repo.GetBank(context.Background(), "bank-1")
	if loader.calls != 1 {
		t.Fatalf("expected cache hit, loader calls=%d", loader.calls)
	}
	if cached.Sections[0].Items[0].TextZH != b.Sections[0].Items[0].TextZH {
		t.Fatalf("cached bank lost content: %+v", cached.Sections[0].Items[0])
	}

	mr.FastForward(2 * time.Minute)
	_, _ = repo.GetBank(context.Background(), "bank-1")
	if loader.calls != 2 {
		t.Fatalf("expected reload after expiry, loader calls=%d", loader.calls)
	}
}

func TestBankRepositoryFallsThroughWhenRedisDown(t *testing.T) {
	mr := runMiniredis(t)
	client := newClient(mr)
	loader := &countingLoader{BankLoader: memory.NewStaticBankLoader(sampleBank())}
	repo := NewBankRepository(client, loader, time.Minute)

	mr.Close()
	if _, err := repo.GetBank(context.Background(), "bank-1"); err != nil {
		t.Fatalf("expected loader result despite redis outage, got %v", err)
	}
}

type countingLoader struct {
	memory.BankLoader
	calls int
}

func (l *countingLoader) LoadBank(ctx context.Context, bankID string) (domain.Bank, error) {
	l.calls++
	return l.BankLoader.LoadBank(ctx, bankID)
}

func sampleBank() domain.Bank {
	return domain.Bank{
		ID: "bank-1",
		Scale: []domain.ScaleLabel{
			{Value: 1, LabelEN: "Never", LabelZH: "从不"},
			{Value: 2}, {Value: 3}, {Value: 4},
			{Value: 5, LabelEN: "Always", LabelZH: "总是"},
		},
		Sections: []domain.Section{
			{
				ID:      "identity",
				Group:   domain.GroupBeing,
				TitleEN: "Identity: Rooted in Christ",
				TitleZH: "身份:扎根于基督",
				Items: []domain.Item{
					{ID: "identity-1", SectionID: "identity", TextEN: "I know I am loved.", TextZH: "我知道我被爱。"},
				},
			},
		},
	}
}

func runMiniredis(t *testing.T) *miniredis.Miniredis {
	t.Helper()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	t.Cleanup(mr.Close)
	return mr
}

func newClient(mr *miniredis.Miniredis) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr: mr.Addr(),
	})
}
