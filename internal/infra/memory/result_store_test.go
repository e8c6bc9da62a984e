package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"disciple-assessment-service/internal/domain"
)

func TestResultStoreNewestFirst(t *testing.T) {
	ctx := context.Background()
	store := NewResultStore()
	base := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

	var ids []string
	for i := 0; i < 3; i++ {
		id, err := store.Insert(ctx, domain.Result{
			UserID:      "u1",
			Answers:     domain.AnswerMap{"identity-1": i + 1},
			Scores:      map[string]float64{"identity": float64(i + 1)},
			CompletedAt: base.Add(time.Duration(i) * time.Hour),
		})
		if err != nil {
			t.Fatalf("insert: %v", err)
		}
		ids = append(ids, id)
	}

	list, _ := store.List(ctx, "u1")
	if len(list) != 3 || list[0].ID != ids[2] || list[2].ID != ids[0] {
		t.Fatalf("expected newest first, got %+v", list)
	}
	latest, ok, _ := store.Latest(ctx, "u1")
	if !ok || latest.ID != ids[2] {
		t.Fatalf("unexpected latest %+v", latest)
	}
	if n, _ := store.Count(ctx, "u1"); n != 3 {
		t.Fatalf("expected 3 results, got %d", n)
	}
}

func TestResultStoreNoDedupe(t *testing.T) {
	ctx := context.Background()
	store := NewResultStore()
	r := domain.Result{UserID: "u1", Scores: map[string]float64{"identity": 3}}

	first, _ := store.Insert(ctx, r)
	second, _ := store.Insert(ctx, r)
	if first == second {
		t.Fatalf("expected distinct ids per submission")
	}
	if n, _ := store.Count(ctx, "u1"); n != 2 {
		t.Fatalf("expected 2 records, got %d", n)
	}
}

func TestResultStoreScopedToUser(t *testing.T) {
	ctx := context.Background()
	store := NewResultStore()
	id, _ := store.Insert(ctx, domain.Result{UserID: "u1"})

	if _, err := store.Get(ctx, "u2", id); !errors.Is(err, domain.ErrResultNotFound) {
		t.Fatalf("expected not found for other user, got %v", err)
	}
	if _, ok, _ := store.Latest(ctx, "u2"); ok {
		t.Fatalf("expected no latest for other user")
	}
}
