package memory

import (
	"context"
	"sync"
)

// LedgerRepository is the in-memory processed-match ledger used for tests
// and runs without a database.
type LedgerRepository struct {
	mu  sync.RWMutex
	ids map[string]string
}

func NewLedgerRepository() *LedgerRepository {
	return &LedgerRepository{ids: make(map[string]string)}
}

func (r *LedgerRepository) IsProcessed(_ context.Context, matchID string) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.ids[matchID]
	return ok, nil
}

func (r *LedgerRepository) MarkProcessed(_ context.Context, matchID string, processedAt string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.ids[matchID]; !ok {
		r.ids[matchID] = processedAt
	}
	return nil
}

func (r *LedgerRepository) ListProcessed(_ context.Context) (map[string]struct{}, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make(map[string]struct{}, len(r.ids))
	for id := range r.ids {
		out[id] = struct{}{}
	}
	return out, nil
}
