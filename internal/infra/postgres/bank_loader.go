package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"disciple-assessment-service/internal/bank"
	"disciple-assessment-service/internal/domain"
	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"
)

// BankLoader loads question bank JSONB from Postgres.
type BankLoader struct {
	pool *pgxpool.Pool
}

func NewBankLoader(pool *pgxpool.Pool) *BankLoader {
	return &BankLoader{pool: pool}
}

func (l *BankLoader) LoadBank(ctx context.Context, bankID string) (domain.Bank, error) {
	var raw []byte
	err := l.pool.QueryRow(ctx, `SELECT data FROM question_banks WHERE id=$1`, bankID).Scan(&raw)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Bank{}, fmt.Errorf("%w: bank %q not found", domain.ErrBankUnavailable, bankID)
	}
	if err != nil {
		return domain.Bank{}, fmt.Errorf("%w: load bank: %v", domain.ErrBankUnavailable, err)
	}
	b, err := bank.Parse(raw)
	if err != nil {
		return domain.Bank{}, err
	}
	if b.ID == "" {
		b.ID = bankID
	}
	return b, nil
}

// SaveBank validates b and upserts it.
func (l *BankLoader) SaveBank(ctx context.Context, b domain.Bank) error {
	if err := bank.Validate(b); err != nil {
		return err
	}
	data, err := json.Marshal(b)
	if err != nil {
		return fmt.Errorf("marshal bank: %w", err)
	}
	_, err = l.pool.Exec(ctx, `
		INSERT INTO question_banks (id, data, updated_at) VALUES ($1, $2, now())
		ON CONFLICT (id) DO UPDATE SET data = EXCLUDED.data, updated_at = now()`,
		b.ID, string(data))
	if err != nil {
		return fmt.Errorf("save bank: %w", err)
	}
	return nil
}
