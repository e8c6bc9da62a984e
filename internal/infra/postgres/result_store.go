package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"disciple-assessment-service/internal/domain"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"
)

// ResultStore persists completed attempts in assessment_results.
type ResultStore struct {
	pool *pgxpool.Pool
}

func NewResultStore(pool *pgxpool.Pool) *ResultStore {
	return &ResultStore{pool: pool}
}

const resultColumns = `id, user_id, answers, scores, completed_at, created_at`

func (s *ResultStore) Insert(ctx context.Context, r domain.Result) (string, error) {
	answers, err := json.Marshal(r.Answers)
	if err != nil {
		return "", fmt.Errorf("marshal answers: %w", err)
	}
	scores, err := json.Marshal(r.Scores)
	if err != nil {
		return "", fmt.Errorf("marshal scores: %w", err)
	}
	id := uuid.NewString()
	_, err = s.pool.Exec(ctx, `
		INSERT INTO assessment_results (id, user_id, answers, scores, completed_at)
		VALUES ($1, $2, $3, $4, $5)`,
		id, r.UserID, string(answers), string(scores), r.CompletedAt)
	if err != nil {
		return "", fmt.Errorf("insert result: %w", err)
	}
	return id, nil
}

func (s *ResultStore) List(ctx context.Context, userID string) ([]domain.Result, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT `+resultColumns+` FROM assessment_results WHERE user_id=$1 ORDER BY completed_at DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("list results: %w", err)
	}
	defer rows.Close()

	var out []domain.Result
	for rows.Next() {
		r, err := scanResult(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func (s *ResultStore) Latest(ctx context.Context, userID string) (domain.Result, bool, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT `+resultColumns+` FROM assessment_results WHERE user_id=$1 ORDER BY completed_at DESC LIMIT 1`, userID)
	r, err := scanResult(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Result{}, false, nil
	}
	if err != nil {
		return domain.Result{}, false, err
	}
	return r, true, nil
}

func (s *ResultStore) Get(ctx context.Context, userID, resultID string) (domain.Result, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT `+resultColumns+` FROM assessment_results WHERE id=$1 AND user_id=$2`, resultID, userID)
	r, err := scanResult(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Result{}, domain.ErrResultNotFound
	}
	return r, err
}

func (s *ResultStore) Count(ctx context.Context, userID string) (int, error) {
	var n int
	if err := s.pool.QueryRow(ctx, `SELECT count(*) FROM assessment_results WHERE user_id=$1`, userID).Scan(&n); err != nil {
		return 0, fmt.Errorf("count results: %w", err)
	}
	return n, nil
}

func scanResult(row pgx.Row) (domain.Result, error) {
	var (
		r                   domain.Result
		answers, scores     []byte
		completed, recorded time.Time
	)
	if err := row.Scan(&r.ID, &r.UserID, &answers, &scores, &completed, &recorded); err != nil {
		return domain.Result{}, err
	}
	if err := json.Unmarshal(answers, &r.Answers); err != nil {
		return domain.Result{}, fmt.Errorf("unmarshal answers: %w", err)
	}
	if err := json.Unmarshal(scores, &r.Scores); err != nil {
		return domain.Result{}, fmt.Errorf("unmarshal scores: %w", err)
	}
	r.CompletedAt = completed.UTC()
	r.CreatedAt = recorded.UTC()
	return r, nil
}
