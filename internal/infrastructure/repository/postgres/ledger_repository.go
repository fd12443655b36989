package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
)

// LedgerRepository stores processed match ids in the processed_matches table.
type LedgerRepository struct {
	db *sqlx.DB
}

func NewLedgerRepository(db *sqlx.DB) *LedgerRepository {
	return &LedgerRepository{db: db}
}

func (r *LedgerRepository) IsProcessed(ctx context.Context, matchID string) (bool, error) {
	var count int
	err := r.db.GetContext(ctx, &count,
		`SELECT COUNT(1) FROM processed_matches WHERE match_id = $1`, matchID)
	if err != nil {
		return false, fmt.Errorf("query processed match %s: %w", matchID, err)
	}
	return count > 0, nil
}

func (r *LedgerRepository) MarkProcessed(ctx context.Context, matchID string, processedAt string) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO processed_matches (match_id, processed_at)
		 VALUES ($1, $2)
		 ON CONFLICT (match_id) DO NOTHING`, matchID, processedAt)
	if err != nil {
		return fmt.Errorf("mark match %s processed: %w", matchID, err)
	}
	return nil
}

func (r *LedgerRepository) ListProcessed(ctx context.Context) (map[string]struct{}, error) {
	var ids []string
	err := r.db.SelectContext(ctx, &ids, `SELECT match_id FROM processed_matches`)
	if err != nil {
		return nil, fmt.Errorf("list processed matches: %w", err)
	}
	out := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		out[id] = struct{}{}
	}
	return out, nil
}
