package cli

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aparna-hs/literally-invented/internal/app"
	"github.com/aparna-hs/literally-invented/internal/config"
	"github.com/aparna-hs/literally-invented/internal/domain"
	"github.com/aparna-hs/literally-invented/internal/engine"
	"github.com/aparna-hs/literally-invented/internal/infra/memory"
	"github.com/aparna-hs/literally-invented/internal/infra/postgres"
	redisinfra "github.com/aparna-hs/literally-invented/internal/infra/redis"
	transport "github.com/aparna-hs/literally-invented/internal/transport/http"
	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
)

// NewStartCmd builds the CLI subcommand to start the server.
func NewStartCmd(configPath, port *string) *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Start the game server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd.Context(), *configPath, *port)
		},
	}
}

func runServer(ctx context.Context, configPath, portFlag string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	if cfg.Postgres.URL != "" {
		if err := runMigrationsWithConfig(ctx, cfg); err != nil {
			return err
		}
	}

	finalPort := portFlag
	if finalPort == "" {
		finalPort = cfg.Server.Port
	}
	if finalPort == "" {
		finalPort = "8080"
	}

	var redisClient *redis.Client
	if cfg.Redis.Addr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
	}
	redisTTL := config.TTLDuration(cfg.Redis.TTL, 10*time.Minute)
	keysTTL := config.TTLDuration(cfg.Keys.TTL, 10*time.Minute)

	var pool *pgxpool.Pool
	if cfg.Postgres.URL != "" {
		pool, err = pgxpool.Connect(ctx, cfg.Postgres.URL)
		if err != nil {
			return err
		}
	}

	var judge engine.Judge
	var auth app.Authenticator
	var leaderboard app.LeaderboardSource
	if pool != nil {
		loader := postgres.NewKeyLoader(pool)
		var keys postgres.KeySource
		if redisClient != nil {
			keys = redisinfra.NewKeyCache(redisClient, loader, keysTTL)
		} else {
			keys = memory.NewKeyCache(loader, keysTTL)
		}
		judge = postgres.NewJudge(pool, keys)
		auth = postgres.NewAuth(pool)
		leaderboard = postgres.NewScoreboard(pool)
	} else {
		memJudge := memory.NewJudge(memory.NewStaticKeys(demoAnswerKeys()))
		memAuth := memory.NewAuth(demoPlayers())
		judge = memJudge
		auth = memAuth
		leaderboard = memory.NewScoreboard(memJudge, memAuth)
	}

	reconciler := engine.NewReconciler(judge)
	var sessions app.SessionRepository = memory.NewSessionStore(reconciler)
	if redisClient != nil {
		sessions = redisinfra.NewSessionStore(sessions, redisClient, redisTTL)
	}
	service := app.NewGameService(sessions, judge, auth, leaderboard)

	submitTimeout := config.TTLDuration(cfg.Submit.Timeout, 10*time.Second)
	handler := transport.NewHandler(service, submitTimeout)

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})
	mux.HandleFunc("/login", handler.Login)
	mux.HandleFunc("/leaderboard", handler.Leaderboard)
	mux.HandleFunc("/ws", handler.ServeWS)

	server := &http.Server{
		Addr:         ":" + finalPort,
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	go func() {
		log.Printf("starting game service on :%s", finalPort)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Printf("failed to start server: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-stop:
		log.Println("shutting down server...")
	case <-ctx.Done():
		log.Println("context canceled, shutting down server...")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

// demoAnswerKeys mirrors the seeded answer_keys rows; used when no Postgres
// URL is configured.
func demoAnswerKeys() map[domain.GameID]map[string]string {
	return map[domain.GameID]map[string]string{
		domain.GameMatching: {
			"1":  "board-games",
			"2":  "retro-games",
			"3":  "dancing",
			"4":  "randr",
			"5":  "christmas",
			"6":  "weekly-bytes",
			"7":  "lunch-learn",
			"8":  "whiteboarding",
			"9":  "football",
			"10": "servicing-innovation",
		},
		domain.GameTimeline: {
			"timeline-order": "1,2,3,4,5",
		},
		domain.GameCrossword: {
			"1-across":  "MAYA",
			"2-down":    "ARJUN",
			"3-across":  "DENIS",
			"3-down":    "DEEPA",
			"4-across":  "PRIYESH",
			"5-down":    "SHALU",
			"6-across":  "KAREN",
			"7-down":    "AMITAV",
			"8-down":    "SANDRA",
			"9-across":  "NAMRATA",
			"9-down":    "NEHA",
			"10-across": "NICOLE",
			"11-across": "UJJWALA",
			"12-across": "RITIKA",
		},
		domain.GameBluff: {
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
		},
	}
}

// demoPlayers mirrors the seeded users rows.
func demoPlayers() []memory.Credential {
	return []memory.Credential{
		{Player: domain.Player{ID: 1, Username: "aparna", DisplayName: "Aparna"}, Password: "coffee123"},
		{Player: domain.Player{ID: 2, Username: "raiid", DisplayName: "Raiid"}, Password: "retro456"},
		{Player: domain.Player{ID: 3, Username: "ana", DisplayName: "Ana"}, Password: "salsa789"},
		{Player: domain.Player{ID: 4, Username: "harshad", DisplayName: "Harshad"}, Password: "randr321"},
		{Player: domain.Player{ID: 5, Username: "christian", DisplayName: "Christian"}, Password: "bytes654"},
	}
}
