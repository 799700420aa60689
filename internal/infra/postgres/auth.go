package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/aparna-hs/literally-invented/internal/domain"
	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"
)

// Auth resolves credentials against the users table. The lookup is a direct
// equality match on username and password, kept as-is from the original
// schema; hardening it is out of scope here.
type Auth struct {
	pool *pgxpool.Pool
}

func NewAuth(pool *pgxpool.Pool) *Auth {
	return &Auth{pool: pool}
}

func (a *Auth) Authenticate(ctx context.Context, username, password string) (domain.Player, error) {
	var player domain.Player
	err := a.pool.QueryRow(ctx, `
		SELECT id, username, display_name, created_at
		FROM users WHERE username=$1 AND password=$2`,
		username, password).
		Scan(&player.ID, &player.Username, &player.DisplayName, &player.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Player{}, domain.ErrInvalidCredentials
	}
	if err != nil {
		return domain.Player{}, fmt.Errorf("authenticate: %w", err)
	}
	return player, nil
}
