package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/aparna-hs/literally-invented/internal/domain"
	"github.com/aparna-hs/literally-invented/internal/engine"
	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"
)

// KeySource fetches a game's answer key, typically through a cache layer.
type KeySource interface {
	LoadKeys(ctx context.Context, gameID domain.GameID) (map[string]string, error)
}

// Judge is the authoritative Postgres-backed judge. Validated per-item
// verdicts live in item_answers (insert-once, so re-submitting a resolved
// item is a no-op), finalized results in scores, timeline attempt counts in
// attempts, and unvalidated drafts in draft_progress.
type Judge struct {
	pool *pgxpool.Pool
	keys KeySource
}

func NewJudge(pool *pgxpool.Pool, keys KeySource) *Judge {
	return &Judge{pool: pool, keys: keys}
}

func (j *Judge) CheckItem(ctx context.Context, playerID int64, gameID domain.GameID, itemID, value string) (domain.SubmitResult, error) {
	keys, err := j.keys.LoadKeys(ctx, gameID)
	if err != nil {
		return domain.SubmitResult{}, fmt.Errorf("load keys: %w", err)
	}
	expected, ok := keys[itemID]
	if !ok {
		return domain.SubmitResult{}, domain.ErrUnknownItem
	}
	correct := answersMatch(gameID, expected, value)

	if gameID == domain.GameTimeline {
		if err := j.bumpAttempts(ctx, playerID, gameID); err != nil {
			return domain.SubmitResult{}, err
		}
	}
	if correct || gameID.SingleShot() {
		_, err = j.pool.Exec(ctx, `
			INSERT INTO item_answers (user_id, game, item_id, submitted, correct)
			VALUES ($1, $2, $3, $4, $5)
			ON CONFLICT (user_id, game, item_id) DO NOTHING`,
			playerID, string(gameID), itemID, value, correct)
		if err != nil {
			return domain.SubmitResult{}, fmt.Errorf("record answer: %w", err)
		}
	}

	correctCount, err := j.correctCount(ctx, playerID, gameID)
	if err != nil {
		return domain.SubmitResult{}, err
	}
	return domain.SubmitResult{
		ItemID:       itemID,
		Correct:      correct,
		Score:        correctCount * gameID.PointsPerItem(),
		CorrectCount: correctCount,
		TotalCount:   len(keys),
	}, nil
}

func (j *Judge) SubmitBatch(ctx context.Context, playerID int64, gameID domain.GameID, answers map[string]string) (domain.BatchResult, error) {
	keys, err := j.keys.LoadKeys(ctx, gameID)
	if err != nil {
		return domain.BatchResult{}, fmt.Errorf("load keys: %w", err)
	}

	tx, err := j.pool.Begin(ctx)
	if err != nil {
		return domain.BatchResult{}, fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback(ctx)

	results := make(map[string]bool, len(keys))
	for itemID, expected := range keys {
		correct := answersMatch(gameID, expected, answers[itemID])
		results[itemID] = correct
		if _, err := tx.Exec(ctx, `
			INSERT INTO item_answers (user_id, game, item_id, submitted, correct)
			VALUES ($1, $2, $3, $4, $5)
			ON CONFLICT (user_id, game, item_id) DO NOTHING`,
			playerID, string(gameID), itemID, answers[itemID], correct); err != nil {
			return domain.BatchResult{}, fmt.Errorf("record answer: %w", err)
		}
	}
	if err := tx.Commit(ctx); err != nil {
		return domain.BatchResult{}, fmt.Errorf("commit: %w", err)
	}

	correctCount, err := j.correctCount(ctx, playerID, gameID)
	if err != nil {
		return domain.BatchResult{}, err
	}
	return domain.BatchResult{
		Results:      results,
		Score:        correctCount * gameID.PointsPerItem(),
		CorrectCount: correctCount,
		TotalCount:   len(keys),
	}, nil
}

func (j *Judge) Finalize(ctx context.Context, playerID int64, gameID domain.GameID) (domain.FinalResult, error) {
	if existing, err := j.FinalizedScore(ctx, playerID, gameID); err != nil {
		return domain.FinalResult{}, err
	} else if existing != nil {
		return *existing, nil
	}

	keys, err := j.keys.LoadKeys(ctx, gameID)
	if err != nil {
		return domain.FinalResult{}, fmt.Errorf("load keys: %w", err)
	}
	correctCount, err := j.correctCount(ctx, playerID, gameID)
	if err != nil {
		return domain.FinalResult{}, err
	}
	attempts, err := j.attemptCount(ctx, playerID, gameID)
	if err != nil {
		return domain.FinalResult{}, err
	}

	final := domain.FinalResult{
		Score:        correctCount * gameID.PointsPerItem(),
		CorrectCount: correctCount,
		TotalCount:   len(keys),
		Perfect:      correctCount == len(keys),
		Attempts:     attempts,
		CompletedAt:  time.Now(),
	}

	// Insert-if-absent keeps finalize idempotent even under a concurrent
	// duplicate call; whoever loses the race reads the winner's row.
	tag, err := j.pool.Exec(ctx, `
		INSERT INTO scores (user_id, level, score, correct_count, total_count, perfect, attempts, completed_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (user_id, level) DO NOTHING`,
		playerID, gameID.Level(), final.Score, final.CorrectCount, final.TotalCount, final.Perfect, final.Attempts, final.CompletedAt)
	if err != nil {
		return domain.FinalResult{}, fmt.Errorf("store score: %w", err)
	}
	if tag.RowsAffected() == 0 {
		if existing, err := j.FinalizedScore(ctx, playerID, gameID); err == nil && existing != nil {
			return *existing, nil
		}
	}
	return final, nil
}

func (j *Judge) FinalizedScore(ctx context.Context, playerID int64, gameID domain.GameID) (*domain.FinalResult, error) {
	var final domain.FinalResult
	err := j.pool.QueryRow(ctx, `
		SELECT score, correct_count, total_count, perfect, attempts, completed_at
		FROM scores WHERE user_id=$1 AND level=$2`,
		playerID, gameID.Level()).
		Scan(&final.Score, &final.CorrectCount, &final.TotalCount, &final.Perfect, &final.Attempts, &final.CompletedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("finalized score: %w", err)
	}
	return &final, nil
}

func (j *Judge) PartialProgress(ctx context.Context, playerID int64, gameID domain.GameID) (engine.Progress, error) {
	rows, err := j.pool.Query(ctx, `
		SELECT item_id, submitted, correct, answered_at
		FROM item_answers WHERE user_id=$1 AND game=$2
		ORDER BY answered_at`,
		playerID, string(gameID))
	if err != nil {
		return engine.Progress{}, fmt.Errorf("partial progress: %w", err)
	}
	defer rows.Close()

	var progress engine.Progress
	for rows.Next() {
		var rec domain.AnswerRecord
		if err := rows.Scan(&rec.ItemID, &rec.Submitted, &rec.Correct, &rec.AnsweredAt); err != nil {
			return engine.Progress{}, fmt.Errorf("scan record: %w", err)
		}
		progress.Records = append(progress.Records, rec)
		if rec.Correct {
			progress.CorrectCount++
		}
	}
	if err := rows.Err(); err != nil {
		return engine.Progress{}, fmt.Errorf("read records: %w", err)
	}
	progress.Score = progress.CorrectCount * gameID.PointsPerItem()

	if progress.Attempts, err = j.attemptCount(ctx, playerID, gameID); err != nil {
		return engine.Progress{}, err
	}

	var raw []byte
	err = j.pool.QueryRow(ctx, `SELECT data FROM draft_progress WHERE user_id=$1 AND game=$2`,
		playerID, string(gameID)).Scan(&raw)
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return engine.Progress{}, fmt.Errorf("draft progress: %w", err)
	}
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &progress.Draft); err != nil {
			return engine.Progress{}, fmt.Errorf("unmarshal draft: %w", err)
		}
	}
	return progress, nil
}

func (j *Judge) SaveProgress(ctx context.Context, playerID int64, gameID domain.GameID, partial map[string]string) error {
	raw, err := json.Marshal(partial)
	if err != nil {
		return fmt.Errorf("marshal draft: %w", err)
	}
	_, err = j.pool.Exec(ctx, `
		INSERT INTO draft_progress (user_id, game, data, updated_at)
		VALUES ($1, $2, $3, now())
		ON CONFLICT (user_id, game) DO UPDATE SET data=EXCLUDED.data, updated_at=now()`,
		playerID, string(gameID), raw)
	if err != nil {
		return fmt.Errorf("save draft: %w", err)
	}
	return nil
}

func (j *Judge) bumpAttempts(ctx context.Context, playerID int64, gameID domain.GameID) error {
	_, err := j.pool.Exec(ctx, `
		INSERT INTO attempts (user_id, game, count) VALUES ($1, $2, 1)
		ON CONFLICT (user_id, game) DO UPDATE SET count = attempts.count + 1`,
		playerID, string(gameID))
	if err != nil {
		return fmt.Errorf("bump attempts: %w", err)
	}
	return nil
}

func (j *Judge) attemptCount(ctx context.Context, playerID int64, gameID domain.GameID) (int, error) {
	var count int
	err := j.pool.QueryRow(ctx, `SELECT count FROM attempts WHERE user_id=$1 AND game=$2`,
		playerID, string(gameID)).Scan(&count)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("attempt count: %w", err)
	}
	return count, nil
}

func (j *Judge) correctCount(ctx context.Context, playerID int64, gameID domain.GameID) (int, error) {
	var count int
	err := j.pool.QueryRow(ctx, `
		SELECT COUNT(*) FROM item_answers WHERE user_id=$1 AND game=$2 AND correct`,
		playerID, string(gameID)).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("correct count: %w", err)
	}
	return count, nil
}

// answersMatch applies the per-game comparison rule: crossword words are
// case-insensitive, everything else is exact.
func answersMatch(gameID domain.GameID, expected, submitted string) bool {
	if submitted == "" {
		return false
	}
	if gameID == domain.GameCrossword {
		return strings.EqualFold(expected, submitted)
	}
	return expected == submitted
}
