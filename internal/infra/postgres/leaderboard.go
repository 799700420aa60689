package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/aparna-hs/literally-invented/internal/domain"
	"github.com/jackc/pgx/v4/pgxpool"
)

// Scoreboard aggregates the leaderboard in one joined query: finalized level
// scores plus in-progress points for levels a player has not finished. One
// query is the single aggregation contract; no per-player RPC fan-out.
type Scoreboard struct {
	pool *pgxpool.Pool
}

func NewScoreboard(pool *pgxpool.Pool) *Scoreboard {
	return &Scoreboard{pool: pool}
}

const leaderboardQuery = `
SELECT u.id, u.display_name,
       COALESCE(f.total, 0) + COALESCE(p.partial, 0) AS total_score,
       COALESCE(f.levels, 0) AS completed_levels
FROM users u
LEFT JOIN (
    SELECT user_id, SUM(score) AS total, COUNT(*) AS levels
    FROM scores
    GROUP BY user_id
) f ON f.user_id = u.id
LEFT JOIN (
    SELECT ia.user_id,
           SUM(CASE WHEN ia.game = 'timeline' THEN 50 ELSE 10 END) AS partial
    FROM item_answers ia
    WHERE ia.correct
      AND NOT EXISTS (
          SELECT 1 FROM scores s
          WHERE s.user_id = ia.user_id
            AND s.level = CASE ia.game
                WHEN 'matching' THEN 1
                WHEN 'timeline' THEN 2
                WHEN 'crossword' THEN 3
                ELSE 4
            END
      )
    GROUP BY ia.user_id
) p ON p.user_id = u.id
ORDER BY total_score DESC, u.display_name ASC`

func (sb *Scoreboard) Leaderboard(ctx context.Context) (domain.Leaderboard, error) {
	rows, err := sb.pool.Query(ctx, leaderboardQuery)
	if err != nil {
		return domain.Leaderboard{}, fmt.Errorf("leaderboard: %w", err)
	}
	defer rows.Close()

	lb := domain.Leaderboard{UpdatedAt: time.Now()}
	for rows.Next() {
		var entry domain.LeaderboardEntry
		if err := rows.Scan(&entry.UserID, &entry.DisplayName, &entry.TotalScore, &entry.CompletedLevels); err != nil {
			return domain.Leaderboard{}, fmt.Errorf("scan entry: %w", err)
		}
		lb.Entries = append(lb.Entries, entry)
	}
	if err := rows.Err(); err != nil {
		return domain.Leaderboard{}, fmt.Errorf("read entries: %w", err)
	}
	return lb, nil
}
