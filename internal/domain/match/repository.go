package match

import "context"

// ProcessedLedger tracks match ids that already produced a stored record.
type ProcessedLedger interface {
	IsProcessed(ctx context.Context, matchID string) (bool, error)
	MarkProcessed(ctx context.Context, matchID string, processedAt string) error
	ListProcessed(ctx context.Context) (map[string]struct{}, error)
}

// RecordStore persists canonical records and run summaries.
type RecordStore interface {
	SaveRecord(ctx context.Context, record Record, runDate string) error
	SaveDailySummary(ctx context.Context, summary DailySummary) error
}
