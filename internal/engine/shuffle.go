package engine

import (
	"math/rand"

	"github.com/aparna-hs/literally-invented/internal/domain"
)

// shuffled returns a uniform random permutation of items (Fisher-Yates).
// The input slice is not modified.
func shuffled(rnd *rand.Rand, items []domain.Item) []domain.Item {
	out := make([]domain.Item, len(items))
	copy(out, items)
	for i := len(out) - 1; i > 0; i-- {
		j := rnd.Intn(i + 1)
		out[i], out[j] = out[j], out[i]
	}
	return out
}

// remaining filters the pool down to items not yet locked, preserving pool
// order. The caller shuffles the result; locked items never reappear.
func remaining(pool []domain.Item, locked map[string]struct{}) []domain.Item {
	out := make([]domain.Item, 0, len(pool))
	for _, item := range pool {
		if _, ok := locked[item.ID]; ok {
			continue
		}
		out = append(out, item)
	}
	return out
}
