package auth_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"disciple-assessment-service/internal/auth"
	"disciple-assessment-service/internal/domain"
	"disciple-assessment-service/internal/infra/memory"
	"golang.org/x/crypto/bcrypt"
)

func TestSignUpSignInRoundTrip(t *testing.T) {
	ctx := context.Background()
	svc, users := newTestService(time.Now)

	u, err := svc.SignUp(ctx, " Ann@Example.com ", "secret123", "Ann")
	if err != nil {
		t.Fatalf("sign up: %v", err)
	}
	if u.Email != "ann@example.com" || u.PasswordHash == "secret123" {
		t.Fatalf("unexpected user %+v", u)
	}
	if p, err := users.GetProfile(ctx, u.ID); err != nil || p.FullName != "Ann" {
		t.Fatalf("expected profile created, got %+v %v", p, err)
	}

	session, err := svc.SignIn(ctx, "ann@example.com", "secret123")
	if err != nil {
		t.Fatalf("sign in: %v", err)
	}
	current, err := svc.Current(ctx, session.Token)
	if err != nil {
		t.Fatalf("current: %v", err)
	}
	if current.UserID != u.ID || current.Email != u.Email {
		t.Fatalf("unexpected session %+v", current)
	}
}

func TestSignInRejectsBadCredentials(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(time.Now)
	if _, err := svc.SignUp(ctx, "ann@example.com", "secret123", "Ann"); err != nil {
		t.Fatalf("sign up: %v", err)
	}

	if _, err := svc.SignIn(ctx, "ann@example.com", "wrong-pass"); !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("expected invalid credentials, got %v", err)
	}
	if _, err := svc.SignIn(ctx, "bob@example.com", "secret123"); !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("expected invalid credentials for unknown user, got %v", err)
	}
	if _, err := svc.SignUp(ctx, "ann@example.com", "another1", "Ann 2"); !errors.Is(err, domain.ErrEmailTaken) {
		t.Fatalf("expected email taken, got %v", err)
	}
	if _, err := svc.SignUp(ctx, "carl@example.com", "123", "Carl"); !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("expected short password rejected, got %v", err)
	}
}

func TestSignOutRevokesToken(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(time.Now)
	_, _ = svc.SignUp(ctx, "ann@example.com", "secret123", "Ann")
	session, err := svc.SignIn(ctx, "ann@example.com", "secret123")
	if err != nil {
		t.Fatalf("sign in: %v", err)
	}

	if err := svc.SignOut(ctx, session.Token); err != nil {
		t.Fatalf("sign out: %v", err)
	}
	if _, err := svc.Current(ctx, session.Token); !errors.Is(err, domain.ErrUnauthenticated) {
		t.Fatalf("expected revoked token, got %v", err)
	}
}

func TestExpiredAndForeignTokens(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	svc, _ := newTestService(func() time.Time { return now })
	_, _ = svc.SignUp(ctx, "ann@example.com", "secret123", "Ann")
	session, _ := svc.SignIn(ctx, "ann@example.com", "secret123")

	now = now.Add(2 * time.Hour)
	if _, err := svc.Current(ctx, session.Token); !errors.Is(err, domain.ErrUnauthenticated) {
		t.Fatalf("expected expired token rejected, got %v", err)
	}

	other := auth.NewService(memory.NewUserStore(), memory.NewDenylist(), "other-secret", auth.Options{})
	if _, err := other.Current(ctx, "not-a-token"); !errors.Is(err, domain.ErrUnauthenticated) {
		t.Fatalf("expected garbage rejected, got %v", err)
	}
}

func newTestService(now func() time.Time) (*auth.Service, *memory.UserStore) {
	users := memory.NewUserStore()
	svc := auth.NewService(users, memory.NewDenylist(), "test-secret", auth.Options{
		TokenTTL:   time.Hour,
		BcryptCost: bcrypt.MinCost,
		Now:        func() time.Time { return now() },
	})
	return svc, users
}
