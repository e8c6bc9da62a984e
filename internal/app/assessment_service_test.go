package app_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"disciple-assessment-service/internal/app"
	"disciple-assessment-service/internal/bank"
	"disciple-assessment-service/internal/domain"
	"disciple-assessment-service/internal/infra/memory"
)

type identityPermuter struct{}

func (identityPermuter) Permute(items []domain.Item) []domain.Item {
	return append([]domain.Item(nil), items...)
}

type failingResults struct {
	*memory.ResultStore
	inserts int
}

func (f *failingResults) Insert(context.Context, domain.Result) (string, error) {
	f.inserts++
	return "", errors.New("connection refused")
}

type fixture struct {
	svc      *app.AssessmentService
	results  app.ResultRepository
	attempts *memory.AttemptStore
	bank     domain.Bank
}

func newFixture(t *testing.T, results app.ResultRepository) fixture {
	t.Helper()
	b, err := bank.Default()
	if err != nil {
		t.Fatalf("default bank: %v", err)
	}
	if results == nil {
		results = memory.NewResultStore()
	}
	attempts := memory.NewAttemptStore(time.Hour)
	sink := app.NewResultSink(results, memory.NewFallbackStore(time.Hour), nil, nil)
	svc := app.NewAssessmentService(
		memory.NewBankRepository(memory.NewStaticBankLoader(b), time.Minute),
		attempts,
		results,
		sink,
		app.Options{BankID: b.ID, PageSize: 5, Permuter: identityPermuter{}},
	)
	return fixture{svc: svc, results: results, attempts: attempts, bank: b}
}

func answerAll(t *testing.T, f fixture, attemptID, userID string, skip map[string]bool) {
	t.Helper()
	for _, item := range f.bank.Items() {
		if skip[item.ID] {
			continue
		}
		value := 2
		if item.SectionID == "identity" {
			value = 4
		}
		if _, err := f.svc.Answer(context.Background(), attemptID, userID, item.ID, value); err != nil {
			t.Fatalf("answer %s: %v", item.ID, err)
		}
	}
}

func TestCompleteAttemptIsPersisted(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, nil)

	attempt, err := f.svc.Start(ctx, "user-1", 0)
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	if attempt.PageCount() != 10 {
		t.Fatalf("expected 10 pages, got %d", attempt.PageCount())
	}
	answerAll(t, f, attempt.ID(), "user-1", nil)

	sub, err := f.svc.Submit(ctx, attempt.ID(), "user-1", false)
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if !sub.Persisted || sub.Result.ID == "" || sub.Warning != "" {
		t.Fatalf("expected persisted result, got %+v", sub.Receipt)
	}
	if sub.Result.Scores["identity"] != 4 || sub.Result.Scores["word"] != 2 {
		t.Fatalf("unexpected scores %+v", sub.Result.Scores)
	}
	if sub.Summary == nil || sub.Summary.Overall != 2.2 {
		t.Fatalf("expected overall 2.2, got %+v", sub.Summary)
	}
	if _, ok := f.attempts.Get(attempt.ID()); ok {
		t.Fatalf("attempt should be discarded after submit")
	}

	latest, err := f.svc.Latest(ctx, "user-1")
	if err != nil || latest.ID != sub.Result.ID {
		t.Fatalf("expected latest %s, got %+v %v", sub.Result.ID, latest, err)
	}
}

func TestIncompleteSubmitNeedsConfirmation(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, nil)
	attempt, _ := f.svc.Start(ctx, "user-1", 0)
	answerAll(t, f, attempt.ID(), "user-1", map[string]bool{"identity-1": true, "word-5": true})

	sub, err := f.svc.Submit(ctx, attempt.ID(), "user-1", false)
	if !errors.Is(err, domain.ErrIncompleteAnswers) {
		t.Fatalf("expected ErrIncompleteAnswers, got %v", err)
	}
	if sub.Progress.Answered != 48 || sub.Progress.Total != 50 || len(sub.Unanswered) != 2 {
		t.Fatalf("unexpected progress %+v unanswered %v", sub.Progress, sub.Unanswered)
	}
	if n, _ := f.results.Count(ctx, "user-1"); n != 0 {
		t.Fatalf("nothing should be stored before confirmation, got %d", n)
	}

	sub, err = f.svc.Submit(ctx, attempt.ID(), "user-1", true)
	if err != nil {
		t.Fatalf("confirmed submit: %v", err)
	}
	identity := sub.Sections["identity"]
	if identity.Count != 4 || identity.Average != 4 {
		t.Fatalf("unanswered items must not count, got %+v", identity)
	}
}

func TestAnswerOverwritesAndValidates(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, nil)
	attempt, _ := f.svc.Start(ctx, "", 0)

	if _, err := f.svc.Answer(ctx, attempt.ID(), "", "identity-1", 1); err != nil {
		t.Fatalf("answer: %v", err)
	}
	progress, err := f.svc.Answer(ctx, attempt.ID(), "", "identity-1", 5)
	if err != nil {
		t.Fatalf("overwrite: %v", err)
	}
	if progress.Answered != 1 {
		t.Fatalf("overwrite must not add an answer, got %d", progress.Answered)
	}
	if _, err := f.svc.Answer(ctx, attempt.ID(), "", "identity-1", 6); !errors.Is(err, domain.ErrInvalidScaleValue) {
		t.Fatalf("expected ErrInvalidScaleValue, got %v", err)
	}
	if _, err := f.svc.Answer(ctx, attempt.ID(), "", "nope", 3); !errors.Is(err, domain.ErrItemNotFound) {
		t.Fatalf("expected ErrItemNotFound, got %v", err)
	}

	view, err := f.svc.Page(ctx, attempt.ID(), "", 1)
	if err != nil {
		t.Fatalf("page: %v", err)
	}
	if view.Answers["identity-1"] != 5 || len(view.Items) != 5 || view.IsLast {
		t.Fatalf("unexpected page view %+v", view)
	}
	if _, err := f.svc.Page(ctx, attempt.ID(), "", 11); !errors.Is(err, domain.ErrPageOutOfRange) {
		t.Fatalf("expected ErrPageOutOfRange, got %v", err)
	}
}

func TestAttemptIsScopedToOwner(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, nil)
	attempt, _ := f.svc.Start(ctx, "user-1", 0)

	if _, err := f.svc.Page(ctx, attempt.ID(), "user-2", 1); !errors.Is(err, domain.ErrAttemptNotFound) {
		t.Fatalf("expected ErrAttemptNotFound for another user, got %v", err)
	}
}

func TestRestartDiscardsAnswers(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, nil)
	attempt, _ := f.svc.Start(ctx, "user-1", 10)
	_, _ = f.svc.Answer(ctx, attempt.ID(), "user-1", "identity-1", 3)

	fresh, err := f.svc.Restart(ctx, attempt.ID(), "user-1")
	if err != nil {
		t.Fatalf("restart: %v", err)
	}
	if fresh.ID() == attempt.ID() || fresh.Answered() != 0 || fresh.PageSize() != 10 {
		t.Fatalf("unexpected restarted attempt id=%s answered=%d size=%d", fresh.ID(), fresh.Answered(), fresh.PageSize())
	}
	if _, err := f.svc.Page(ctx, attempt.ID(), "user-1", 1); !errors.Is(err, domain.ErrAttemptNotFound) {
		t.Fatalf("old attempt should be gone, got %v", err)
	}
}

func TestInsertFailureFallsBack(t *testing.T) {
	ctx := context.Background()
	results := &failingResults{ResultStore: memory.NewResultStore()}
	f := newFixture(t, results)
	attempt, _ := f.svc.Start(ctx, "user-1", 0)
	answerAll(t, f, attempt.ID(), "user-1", nil)

	sub, err := f.svc.Submit(ctx, attempt.ID(), "user-1", false)
	if err != nil {
		t.Fatalf("submit must not fail on store errors: %v", err)
	}
	if sub.Persisted || sub.FallbackKey == "" || sub.Warning == "" {
		t.Fatalf("expected fallback receipt, got %+v", sub.Receipt)
	}
	if results.inserts != 1 {
		t.Fatalf("expected exactly one insert attempt, got %d", results.inserts)
	}
	if sub.Summary == nil || sub.Summary.Overall != 2.2 {
		t.Fatalf("results view must still render, got %+v", sub.Summary)
	}

	kept, err := f.svc.Transient(ctx, sub.FallbackKey)
	if err != nil {
		t.Fatalf("transient: %v", err)
	}
	if kept.Scores["identity"] != 4 {
		t.Fatalf("unexpected transient scores %+v", kept.Scores)
	}
}

func TestAnonymousSubmitFallsBack(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, nil)
	attempt, _ := f.svc.Start(ctx, "", 0)
	answerAll(t, f, attempt.ID(), "", nil)

	sub, err := f.svc.Submit(ctx, attempt.ID(), "", false)
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if sub.Persisted || sub.FallbackKey == "" {
		t.Fatalf("expected fallback for anonymous submit, got %+v", sub.Receipt)
	}
	if _, err := f.svc.History(ctx, ""); !errors.Is(err, domain.ErrUnauthenticated) {
		t.Fatalf("expected ErrUnauthenticated, got %v", err)
	}
}

func TestEachSubmitCreatesNewResult(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, nil)
	var ids []string
	for i := 0; i < 2; i++ {
		attempt, _ := f.svc.Start(ctx, "user-1", 0)
		answerAll(t, f, attempt.ID(), "user-1", nil)
		sub, err := f.svc.Submit(ctx, attempt.ID(), "user-1", false)
		if err != nil {
			t.Fatalf("submit %d: %v", i, err)
		}
		ids = append(ids, sub.Result.ID)
	}

	history, err := f.svc.History(ctx, "user-1")
	if err != nil || len(history) != 2 {
		t.Fatalf("expected two results, got %d %v", len(history), err)
	}
	cmp, err := f.svc.Compare(ctx, "user-1", ids[0], ids[1])
	if err != nil {
		t.Fatalf("compare: %v", err)
	}
	for _, change := range cmp.Changes {
		if change.Diff != 0 {
			t.Fatalf("identical attempts should not differ: %+v", change)
		}
	}
}

func TestBankFailureIsFatal(t *testing.T) {
	ctx := context.Background()
	svc := app.NewAssessmentService(
		memory.NewBankRepository(memory.NewStaticBankLoader(), time.Minute),
		memory.NewAttemptStore(time.Hour),
		memory.NewResultStore(),
		app.NewResultSink(memory.NewResultStore(), memory.NewFallbackStore(time.Hour), nil, nil),
		app.Options{BankID: "missing"},
	)
	if _, err := svc.Start(ctx, "user-1", 0); !errors.Is(err, domain.ErrBankUnavailable) {
		t.Fatalf("expected ErrBankUnavailable, got %v", err)
	}
}
