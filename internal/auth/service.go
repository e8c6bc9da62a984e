// Package auth is the sign-up/sign-in collaborator. The user id it hands out is
// used elsewhere only as an opaque partition key.
package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"disciple-assessment-service/internal/domain"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

const (
	issuer            = "disciple-assessment"
	minPasswordLength = 6
)

// UserRepository stores accounts. CreateUser also creates the profile row.
type UserRepository interface {
	CreateUser(ctx context.Context, u domain.User) (domain.User, error)
	UserByEmail(ctx context.Context, email string) (domain.User, error)
	UserByID(ctx context.Context, id string) (domain.User, error)
}

// Denylist records signed-out token ids.
type Denylist interface {
	Revoke(ctx context.Context, tokenID string, ttl time.Duration) error
	Revoked(ctx context.Context, tokenID string) (bool, error)
}

// Session is a signed-in user's bearer token and identity.
type Session struct {
	Token     string    `json:"access_token"`
	UserID    string    `json:"user_id"`
	Email     string    `json:"email"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Claims are the JWT claims issued at sign-in.
type Claims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

// Options tunes a Service. Zero values pick defaults.
type Options struct {
	TokenTTL   time.Duration
	BcryptCost int
	Now        func() time.Time
	Logger     *zap.Logger
}

type Service struct {
	users    UserRepository
	denylist Denylist
	secret   []byte
	ttl      time.Duration
	cost     int
	now      func() time.Time
	logger   *zap.Logger
}

func NewService(users UserRepository, denylist Denylist, secret string, opts Options) *Service {
	s := &Service{
		users:    users,
		denylist: denylist,
		secret:   []byte(secret),
		ttl:      opts.TokenTTL,
		cost:     opts.BcryptCost,
		now:      opts.Now,
		logger:   opts.Logger,
	}
	if s.ttl <= 0 {
		s.ttl = 8 * time.Hour
	}
	if s.cost == 0 {
		s.cost = bcrypt.DefaultCost
	}
	if s.now == nil {
		s.now = time.Now
	}
	if s.logger == nil {
		s.logger = zap.NewNop()
	}
	return s
}

// SignUp registers a new account.
func (s *Service) SignUp(ctx context.Context, email, password, fullName string) (domain.User, error) {
	email = normalizeEmail(email)
	if !strings.Contains(email, "@") {
		return domain.User{}, fmt.Errorf("%w: email", domain.ErrInvalidInput)
	}
	if len(password) < minPasswordLength {
		return domain.User{}, fmt.Errorf("%w: password must be at least %d characters", domain.ErrInvalidInput, minPasswordLength)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return domain.User{}, fmt.Errorf("hash password: %w", err)
	}
	u, err := s.users.CreateUser(ctx, domain.User{
		ID:           uuid.NewString(),
		Email:        email,
		PasswordHash: string(hash),
		FullName:     strings.TrimSpace(fullName),
		CreatedAt:    s.now().UTC(),
	})
	if err != nil {
		return domain.User{}, err
	}
	s.logger.Info("user signed up", zap.String("user_id", u.ID))
	return u, nil
}

// SignIn checks credentials and issues a session token.
func (s *Service) SignIn(ctx context.Context, email, password string) (Session, error) {
	u, err := s.users.UserByEmail(ctx, normalizeEmail(email))
	if errors.Is(err, domain.ErrUserNotFound) {
		return Session{}, domain.ErrInvalidCredentials
	}
	if err != nil {
		return Session{}, err
	}
	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) != nil {
		return Session{}, domain.ErrInvalidCredentials
	}
	return s.issue(u)
}

// SignOut revokes the token for the rest of its lifetime.
func (s *Service) SignOut(ctx context.Context, token string) error {
	claims, err := s.parse(token)
	if err != nil {
		return err
	}
	remaining := claims.ExpiresAt.Time.Sub(s.now())
	if remaining <= 0 {
		return nil
	}
	return s.denylist.Revoke(ctx, claims.ID, remaining)
}

// Current resolves a bearer token to its session.
func (s *Service) Current(ctx context.Context, token string) (Session, error) {
	claims, err := s.parse(token)
	if err != nil {
		return Session{}, err
	}
	revoked, err := s.denylist.Revoked(ctx, claims.ID)
	if err != nil {
		return Session{}, fmt.Errorf("check revocation: %w", err)
	}
	if revoked {
		return Session{}, domain.ErrUnauthenticated
	}
	return Session{
		Token:     token,
		UserID:    claims.Subject,
		Email:     claims.Email,
		ExpiresAt: claims.ExpiresAt.Time,
	}, nil
}

func (s *Service) issue(u domain.User) (Session, error) {
	now := s.now()
	expires := now.Add(s.ttl)
	claims := &Claims{
		Email: u.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   u.ID,
			Issuer:    issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expires),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return Session{}, fmt.Errorf("sign token: %w", err)
	}
	return Session{Token: signed, UserID: u.ID, Email: u.Email, ExpiresAt: expires.Truncate(time.Second)}, nil
}

func (s *Service) parse(token string) (*Claims, error) {
	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil || !parsed.Valid || claims.Subject == "" {
		return nil, domain.ErrUnauthenticated
	}
	return claims, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
