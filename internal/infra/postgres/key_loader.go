package postgres

import (
	"context"
	"fmt"

	"github.com/aparna-hs/literally-invented/internal/domain"
	"github.com/jackc/pgx/v4/pgxpool"
)

// KeyLoader loads answer keys from Postgres. Usually sits behind the Redis
// (or in-memory) key cache.
type KeyLoader struct {
	pool *pgxpool.Pool
}

func NewKeyLoader(pool *pgxpool.Pool) *KeyLoader {
	return &KeyLoader{pool: pool}
}

func (l *KeyLoader) LoadKeys(ctx context.Context, gameID domain.GameID) (map[string]string, error) {
	rows, err := l.pool.Query(ctx, `SELECT item_id, answer FROM answer_keys WHERE game=$1`, string(gameID))
	if err != nil {
		return nil, fmt.Errorf("load keys: %w", err)
	}
	defer rows.Close()

	keys := make(map[string]string)
	for rows.Next() {
		var itemID, answer string
		if err := rows.Scan(&itemID, &answer); err != nil {
			return nil, fmt.Errorf("scan key: %w", err)
		}
		keys[itemID] = answer
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read keys: %w", err)
	}
	if len(keys) == 0 {
		return nil, domain.ErrUnknownGame
	}
	return keys, nil
}
