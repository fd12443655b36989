package memory

import (
	"context"
	"testing"
)

func TestLedgerRepository(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	repo := NewLedgerRepository()

	ok, err := repo.IsProcessed(ctx, "m1")
	if err != nil || ok {
		t.Fatalf("fresh ledger: ok=%v err=%v", ok, err)
	}

	if err := repo.MarkProcessed(ctx, "m1", "2023-11-19T12:00:00Z"); err != nil {
		t.Fatalf("MarkProcessed: %v", err)
	}
	if err := repo.MarkProcessed(ctx, "m1", "2023-11-20T12:00:00Z"); err != nil {
		t.Fatalf("re-mark must be idempotent: %v", err)
	}

	ok, err = repo.IsProcessed(ctx, "m1")
	if err != nil || !ok {
		t.Fatalf("after mark: ok=%v err=%v", ok, err)
	}

	ids, err := repo.ListProcessed(ctx)
	if err != nil {
		t.Fatalf("ListProcessed: %v", err)
	}
	if _, ok := ids["m1"]; !ok || len(ids) != 1 {
		t.Fatalf("listed ids: %v", ids)
	}
}
