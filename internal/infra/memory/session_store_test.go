package memory_test

import (
	"context"
	"testing"

	"github.com/aparna-hs/literally-invented/internal/domain"
	"github.com/aparna-hs/literally-invented/internal/engine"
	"github.com/aparna-hs/literally-invented/internal/game"
	"github.com/aparna-hs/literally-invented/internal/infra/memory"
)

func TestSessionStoreReusesSession(t *testing.T) {
	ctx := context.Background()
	judge := memory.NewJudge(memory.NewStaticKeys(testKeys()))
	store := memory.NewSessionStore(engine.NewReconciler(judge))

	first, err := store.GetOrCreate(ctx, 1, game.BluffVariant())
	if err != nil {
		t.Fatalf("get or create: %v", err)
	}
	second, err := store.GetOrCreate(ctx, 1, game.BluffVariant())
	if err != nil {
		t.Fatalf("get or create: %v", err)
	}
	if first != second {
		t.Fatalf("expected the same session across calls")
	}

	cached, ok := store.Get(1, domain.GameBluff)
	if !ok || cached != first {
		t.Fatalf("expected cached session via Get")
	}
	if _, ok := store.Get(2, domain.GameBluff); ok {
		t.Fatalf("unexpected session for another player")
	}
}

func TestSessionStoreDropForcesReconcile(t *testing.T) {
	ctx := context.Background()
	judge := memory.NewJudge(memory.NewStaticKeys(testKeys()))
	store := memory.NewSessionStore(engine.NewReconciler(judge))

	first, err := store.GetOrCreate(ctx, 1, game.BluffVariant())
	if err != nil {
		t.Fatalf("get or create: %v", err)
	}
	store.Drop(1, domain.GameBluff)

	second, err := store.GetOrCreate(ctx, 1, game.BluffVariant())
	if err != nil {
		t.Fatalf("get or create after drop: %v", err)
	}
	if first == second {
		t.Fatalf("expected a freshly reconciled session after drop")
	}
}
