package integration

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/aparna-hs/literally-invented/internal/app"
	"github.com/aparna-hs/literally-invented/internal/domain"
	"github.com/aparna-hs/literally-invented/internal/engine"
	"github.com/aparna-hs/literally-invented/internal/infra/memory"
	"github.com/aparna-hs/literally-invented/internal/infra/postgres"
	infraredis "github.com/aparna-hs/literally-invented/internal/infra/redis"
	"github.com/aparna-hs/literally-invented/migrations"
	"github.com/jackc/pgx/v4/pgxpool"
	goredis "github.com/redis/go-redis/v9"
	tc "github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"
	"github.com/uptrace/bun/migrate"
)

func TestBluffGameEndToEnd(t *testing.T) {
	ctx := context.Background()
	requireDocker(t)

	pgURL, pgCleanup := startPostgres(t, ctx)
	defer pgCleanup()
	redisURL, redisCleanup := startRedis(t, ctx)
	defer redisCleanup()

	applyMigrations(t, ctx, pgURL)

	pool, err := pgxpool.Connect(ctx, pgURL)
	if err != nil {
		t.Fatalf("connect pg: %v", err)
	}
	defer pool.Close()

	redisClient, err := redisClientFromURL(redisURL)
	if err != nil {
		t.Fatalf("redis client: %v", err)
	}

	keys := infraredis.NewKeyCache(redisClient, postgres.NewKeyLoader(pool), 5*time.Minute)
	judge := postgres.NewJudge(pool, keys)
	auth := postgres.NewAuth(pool)
	board := postgres.NewScoreboard(pool)

	var sessions app.SessionRepository = memory.NewSessionStore(engine.NewReconciler(judge))
	sessions = infraredis.NewSessionStore(sessions, redisClient, 5*time.Minute)
	service := app.NewGameService(sessions, judge, auth, board)

	player, err := service.Login(ctx, "aparna", "coffee123")
	if err != nil {
		t.Fatalf("login: %v", err)
	}

	snap, decision, err := service.Resume(ctx, player.ID, domain.GameBluff)
	if err != nil {
		t.Fatalf("resume: %v", err)
	}
	if decision.Verdict != engine.VerdictAllowed {
		t.Fatalf("expected allowed, got %s (%s)", decision.Verdict, decision.Reason)
	}
	if snap.Phase != domain.PhaseInProgress || len(snap.Pending) != 13 {
		t.Fatalf("expected fresh session with 13 pending, got phase=%s pending=%d", snap.Phase, len(snap.Pending))
	}

	answers := bluffAnswers()
	for _, item := range snap.Pending {
		res, after, err := service.Submit(ctx, player.ID, domain.GameBluff, item.ID, answers[item.ID])
		if err != nil {
			t.Fatalf("submit %s: %v", item.ID, err)
		}
		if !res.Correct {
			t.Fatalf("expected %s to be judged correct", item.ID)
		}
		snap = after
	}

	if snap.Phase != domain.PhaseCompleted {
		t.Fatalf("expected completed after final item, got %s", snap.Phase)
	}
	if snap.Final == nil || snap.Final.Score != 130 || snap.Final.CorrectCount != 13 {
		t.Fatalf("unexpected final result: %+v", snap.Final)
	}

	// A reload after completion must land on the terminal state, not a
	// fresh session.
	sessions.Drop(player.ID, domain.GameBluff)
	snap, decision, err = service.Resume(ctx, player.ID, domain.GameBluff)
	if err != nil {
		t.Fatalf("resume after completion: %v", err)
	}
	if decision.Verdict != engine.VerdictDenied {
		t.Fatalf("expected replay denied, got %s", decision.Verdict)
	}
	if snap.Phase != domain.PhaseCompleted || snap.Score != 130 {
		t.Fatalf("expected completed snapshot with score 130, got phase=%s score=%d", snap.Phase, snap.Score)
	}

	lb, err := service.Leaderboard(ctx)
	if err != nil {
		t.Fatalf("leaderboard: %v", err)
	}
	if len(lb.Entries) == 0 || lb.Entries[0].TotalScore != 130 || lb.Entries[0].CompletedLevels != 1 {
		t.Fatalf("expected aparna leading with 130 and one completed level, got %+v", lb.Entries)
	}
}

func TestTimelineAttemptBudgetEndToEnd(t *testing.T) {
	ctx := context.Background()
	requireDocker(t)

	pgURL, pgCleanup := startPostgres(t, ctx)
	defer pgCleanup()

	applyMigrations(t, ctx, pgURL)

	pool, err := pgxpool.Connect(ctx, pgURL)
	if err != nil {
		t.Fatalf("connect pg: %v", err)
	}
	defer pool.Close()

	keys := memory.NewKeyCache(postgres.NewKeyLoader(pool), 5*time.Minute)
	judge := postgres.NewJudge(pool, keys)
	sessions := memory.NewSessionStore(engine.NewReconciler(judge))
	service := app.NewGameService(sessions, judge, postgres.NewAuth(pool), postgres.NewScoreboard(pool))

	player, err := service.Login(ctx, "raiid", "retro456")
	if err != nil {
		t.Fatalf("login: %v", err)
	}

	if _, _, err := service.Resume(ctx, player.ID, domain.GameTimeline); err != nil {
		t.Fatalf("resume: %v", err)
	}

	for i := 0; i < 2; i++ {
		res, snap, err := service.Submit(ctx, player.ID, domain.GameTimeline, "timeline-order", "5,4,3,2,1")
		if err != nil {
			t.Fatalf("attempt %d: %v", i+1, err)
		}
		if res.Correct {
			t.Fatalf("reversed ordering judged correct on attempt %d", i+1)
		}
		if snap.Phase != domain.PhaseInProgress {
			t.Fatalf("expected in-progress after attempt %d, got %s", i+1, snap.Phase)
		}
	}

	res, snap, err := service.Submit(ctx, player.ID, domain.GameTimeline, "timeline-order", "1,2,3,4,5")
	if err != nil {
		t.Fatalf("final attempt: %v", err)
	}
	if !res.Correct {
		t.Fatalf("correct ordering judged incorrect")
	}
	if snap.Phase != domain.PhaseCompleted || snap.Final == nil || snap.Final.Score != 50 {
		t.Fatalf("expected completed with score 50, got phase=%s final=%+v", snap.Phase, snap.Final)
	}
	if snap.Final.Attempts != 3 {
		t.Fatalf("expected 3 attempts recorded, got %d", snap.Final.Attempts)
	}
}

func applyMigrations(t *testing.T, ctx context.Context, dsn string) {
	t.Helper()
	sqldb := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(dsn)))
	db := bun.NewDB(sqldb, pgdialect.New())
	defer db.Close()

	migrator := migrate.NewMigrator(db, migrations.Migrations)
	if err := migrator.Init(ctx); err != nil {
		t.Fatalf("migrator init: %v", err)
	}
	if _, err := migrator.Migrate(ctx); err != nil {
		t.Fatalf("migrate: %v", err)
	}
}

func bluffAnswers() map[string]string {
	return map[string]string{
		"1-22":  "true",
		"2-26":  "true",
		"3-29":  "false",
		"4-54":  "true",
		"5-48":  "false",
		"6-74":  "true",
		"7-21":  "false",
		"8-19":  "true",
		"9-39":  "true",
		"10-47": "false",
		"11-35": "true",
		"12-32": "false",
		"13-41": "true",
	}
}

func startPostgres(t *testing.T, ctx context.Context) (string, func()) {
	t.Helper()
	req := tc.ContainerRequest{
		Image:        "postgres:15-alpine",
		Env:          map[string]string{"POSTGRES_USER": "game", "POSTGRES_PASSWORD": "gamepass", "POSTGRES_DB": "gamedb"},
		ExposedPorts: []string{"5432/tcp"},
		WaitingFor:   wait.ForListeningPort("5432/tcp").WithStartupTimeout(60 * time.Second),
	}
	container, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		if strings.Contains(err.Error(), "Cannot connect to the Docker daemon") {
			t.Skipf("docker not available: %v", err)
		}
		t.Fatalf("start postgres: %v", err)
	}
	host, err := container.Host(ctx)
	if err != nil {
		t.Fatalf("host: %v", err)
	}
	port, err := container.MappedPort(ctx, "5432/tcp")
	if err != nil {
		t.Fatalf("port: %v", err)
	}
	dsn := fmt.Sprintf("postgres://game:gamepass@%s:%s/gamedb?sslmode=disable", host, port.Port())
	return dsn, func() {
		_ = container.Terminate(ctx)
	}
}

func startRedis(t *testing.T, ctx context.Context) (string, func()) {
	t.Helper()
	req := tc.ContainerRequest{
		Image:        "redis:7-alpine",
		ExposedPorts: []string{"6379/tcp"},
		WaitingFor:   wait.ForListeningPort("6379/tcp").WithStartupTimeout(30 * time.Second),
	}
	container, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		if strings.Contains(err.Error(), "Cannot connect to the Docker daemon") {
			t.Skipf("docker not available: %v", err)
		}
		t.Fatalf("start redis: %v", err)
	}
	host, err := container.Host(ctx)
	if err != nil {
		t.Fatalf("redis host: %v", err)
	}
	port, err := container.MappedPort(ctx, "6379/tcp")
	if err != nil {
		t.Fatalf("redis port: %v", err)
	}
	url := fmt.Sprintf("redis://%s:%s", host, port.Port())
	return url, func() {
		_ = container.Terminate(ctx)
	}
}

func redisClientFromURL(url string) (*goredis.Client, error) {
	opts, err := goredis.ParseURL(url)
	if err != nil {
		return nil, err
	}
	return goredis.NewClient(&goredis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	}), nil
}

func requireDocker(t *testing.T) {
	t.Helper()
	if _, err := tc.NewDockerProvider(); err != nil {
		t.Skipf("docker not available: %v", err)
	}
}
