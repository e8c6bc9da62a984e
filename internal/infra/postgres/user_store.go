package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"disciple-assessment-service/internal/domain"
	"github.com/jackc/pgconn"
	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"
)

const uniqueViolation = "23505"

// UserStore keeps accounts in users and the editable profile in user_profiles.
type UserStore struct {
	pool *pgxpool.Pool
}

func NewUserStore(pool *pgxpool.Pool) *UserStore {
	return &UserStore{pool: pool}
}

// CreateUser inserts the account and its profile in one transaction.
func (s *UserStore) CreateUser(ctx context.Context, u domain.User) (domain.User, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return domain.User{}, fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx,
		`INSERT INTO users (id, email, password_hash, created_at) VALUES ($1, $2, $3, $4)`,
		u.ID, u.Email, u.PasswordHash, u.CreatedAt)
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return domain.User{}, domain.ErrEmailTaken
	}
	if err != nil {
		return domain.User{}, fmt.Errorf("insert user: %w", err)
	}
	_, err = tx.Exec(ctx,
		`INSERT INTO user_profiles (id, email, full_name, created_at, updated_at) VALUES ($1, $2, $3, $4, $4)`,
		u.ID, u.Email, u.FullName, u.CreatedAt)
	if err != nil {
		return domain.User{}, fmt.Errorf("insert profile: %w", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return domain.User{}, fmt.Errorf("commit: %w", err)
	}
	return u, nil
}

func (s *UserStore) UserByEmail(ctx context.Context, email string) (domain.User, error) {
	return s.queryUser(ctx, `WHERE lower(u.email) = lower($1)`, email)
}

func (s *UserStore) UserByID(ctx context.Context, id string) (domain.User, error) {
	return s.queryUser(ctx, `WHERE u.id = $1`, id)
}

func (s *UserStore) queryUser(ctx context.Context, where string, arg string) (domain.User, error) {
	var u domain.User
	err := s.pool.QueryRow(ctx, `
		SELECT u.id, u.email, u.password_hash, COALESCE(p.full_name, ''), u.created_at
		FROM users u LEFT JOIN user_profiles p ON p.id = u.id `+where, arg).
		Scan(&u.ID, &u.Email, &u.PasswordHash, &u.FullName, &u.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.User{}, domain.ErrUserNotFound
	}
	if err != nil {
		return domain.User{}, fmt.Errorf("query user: %w", err)
	}
	return u, nil
}

func (s *UserStore) GetProfile(ctx context.Context, userID string) (domain.Profile, error) {
	return scanProfile(s.pool.QueryRow(ctx,
		`SELECT id, email, full_name, created_at, updated_at FROM user_profiles WHERE id=$1`, userID))
}

func (s *UserStore) UpdateProfile(ctx context.Context, userID, fullName string, at time.Time) (domain.Profile, error) {
	return scanProfile(s.pool.QueryRow(ctx, `
		UPDATE user_profiles SET full_name=$2, updated_at=$3 WHERE id=$1
		RETURNING id, email, full_name, created_at, updated_at`, userID, fullName, at))
}

func scanProfile(row pgx.Row) (domain.Profile, error) {
	var p domain.Profile
	err := row.Scan(&p.UserID, &p.Email, &p.FullName, &p.CreatedAt, &p.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Profile{}, domain.ErrUserNotFound
	}
	if err != nil {
		return domain.Profile{}, fmt.Errorf("query profile: %w", err)
	}
	return p, nil
}
