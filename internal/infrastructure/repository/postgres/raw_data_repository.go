package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/sportsdesk/cricketwire/internal/domain/rawdata"
)

type RawDataRepository struct {
	db *sqlx.DB
}

func NewRawDataRepository(db *sqlx.DB) *RawDataRepository {
	return &RawDataRepository{db: db}
}

func (r *RawDataRepository) SaveMany(ctx context.Context, items []rawdata.Payload) error {
	if len(items) == 0 {
		return nil
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx save raw payloads: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	for _, item := range items {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO raw_payloads (source, entity_type, entity_key, match_id, payload, fetched_at)
			 VALUES ($1, $2, $3, NULLIF($4, ''), $5, $6)
			 ON CONFLICT (source, entity_type, entity_key)
			 DO UPDATE SET
			     match_id = EXCLUDED.match_id,
			     payload = EXCLUDED.payload,
			     fetched_at = EXCLUDED.fetched_at`,
			item.Source, item.EntityType, item.EntityKey, item.MatchID, item.Body, item.FetchedAt)
		if err != nil {
			return fmt.Errorf("save raw payload entity=%s key=%s: %w", item.EntityType, item.EntityKey, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit save raw payloads tx: %w", err)
	}

	return nil
}
