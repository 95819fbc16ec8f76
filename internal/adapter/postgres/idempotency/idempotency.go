package idempotency

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	portidem "github.com/alanyang/repair-desk/internal/port/idempotency"
)

var _ portidem.Store = (*Repository)(nil)

type Repository struct {
	pool *pgxpool.Pool
}

func New(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Check returns the stored result JSON for key and whether it exists.
func (r *Repository) Check(ctx context.Context, key string) ([]byte, bool, error) {
	var result []byte
	err := r.pool.QueryRow(ctx,
		`SELECT result_jsonb FROM processed_operations WHERE idempotency_key = $1`, key).Scan(&result)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("checking idempotency key: %w", err)
	}
	return result, true, nil
}

// Save records the result of operation under key. The first result wins.
func (r *Repository) Save(ctx context.Context, key, operation string, result []byte) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO processed_operations (idempotency_key, operation_type, result_jsonb)
		VALUES ($1, $2, $3)
		ON CONFLICT (idempotency_key) DO NOTHING`, key, operation, result)
	if err != nil {
		return fmt.Errorf("storing idempotency key: %w", err)
	}
	return nil
}
