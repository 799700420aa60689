package migrations

import (
	"context"

	"github.com/uptrace/bun"
)

func init() {
	Migrations.MustRegister(
		func(ctx context.Context, db *bun.DB) error {
			_, err := db.Exec(createTablesSQL)
			return err
		},
		func(ctx context.Context, db *bun.DB) error {
			_, err := db.Exec(`
				DROP TABLE IF EXISTS draft_progress;
				DROP TABLE IF EXISTS attempts;
				DROP TABLE IF EXISTS item_answers;
				DROP TABLE IF EXISTS scores;
				DROP TABLE IF EXISTS answer_keys;
				DROP TABLE IF EXISTS users`)
			return err
		},
	)
}
