package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/moonscan/tokenrank/internal/config"
	httpapi "github.com/moonscan/tokenrank/internal/interfaces/http"
	"github.com/moonscan/tokenrank/internal/metrics"
	"github.com/moonscan/tokenrank/internal/persistence"
	"github.com/moonscan/tokenrank/internal/persistence/postgres"
	"github.com/moonscan/tokenrank/internal/reputation"
	"github.com/moonscan/tokenrank/internal/scan"
	"github.com/moonscan/tokenrank/internal/score"
)

const (
	appName = "tokenrank"
	version = "v0.4.0"
)

func main() {
	// Optional .env for local runs; a missing file is fine.
	_ = godotenv.Load()

	zerolog.TimeFieldFormat = time.RFC3339
	if term.IsTerminal(int(os.Stderr.Fd())) {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})
	}

	rootCmd := &cobra.Command{
		Use:     appName,
		Short:   "Score and rank newly discovered tokens",
		Version: version,
		Long: `tokenrank scores newly discovered tokens across on-chain health, social
momentum, wallet conviction, and scam risk, then classifies each into a
risk tier. Run 'tokenrank serve' for the API or 'tokenrank score' for a
one-shot offline pass over a candidate file.`,
	}
	rootCmd.PersistentFlags().String("config", "config/scoring.yaml", "Scoring config file")
	rootCmd.PersistentFlags().String("log-level", "info", "Log level (trace|debug|info|warn|error)")

	scoreCmd := &cobra.Command{
		Use:   "score [candidates.json]",
		Short: "Score candidates from a JSON file and print the records",
		Long:  "Offline scoring pass: reads a JSON array of candidates, scores them with the configured engine, and prints the records to stdout. No archive, no network.",
		Args:  cobra.ExactArgs(1),
		RunE:  runScore,
	}
	scoreCmd.Flags().Int("workers", 8, "Concurrent scoring workers")

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the scoring API server",
		Long:  "Starts the HTTP API with live score streaming. POSTGRES_DSN enables the score archive; REDIS_ADDR enables the reputation cache. Periodic reputation refresh needs both.",
		RunE:  runServe,
	}

	rootCmd.AddCommand(scoreCmd)
	rootCmd.AddCommand(serveCmd)

	if err := rootCmd.Execute(); err != nil {
		log.Error().Err(err).Msg("command failed")
		os.Exit(1)
	}
}

func setup(cmd *cobra.Command) (*config.ScoringConfig, error) {
	levelStr, _ := cmd.Flags().GetString("log-level")
	level, err := zerolog.ParseLevel(levelStr)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", levelStr, err)
	}
	zerolog.SetGlobalLevel(level)

	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(path)
	if err != nil {
		return nil, fmt.Errorf("load scoring config: %w", err)
	}
	log.Info().Str("config", path).Msg("scoring config loaded")
	return cfg, nil
}

func runScore(cmd *cobra.Command, args []string) error {
	cfg, err := setup(cmd)
	if err != nil {
		return err
	}

	raw, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("read candidates: %w", err)
	}
	var candidates []scan.Candidate
	if err := json.Unmarshal(raw, &candidates); err != nil {
		return fmt.Errorf("parse candidates: %w", err)
	}

	workers, _ := cmd.Flags().GetInt("workers")
	scanner := scan.NewScanner(score.NewEngine(cfg), metrics.NewRegistry(), scan.WithWorkers(workers))

	results := scanner.ScorePass(cmd.Context(), candidates)

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(results)
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := setup(cmd)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	reg := metrics.NewRegistry()
	opts := []scan.Option{}

	var db *sqlx.DB
	var scores *postgres.ScoreStore
	if dsn := os.Getenv("POSTGRES_DSN"); dsn != "" {
		var err error
		db, err = sqlx.Connect("postgres", dsn)
		if err != nil {
			return fmt.Errorf("connect postgres: %w", err)
		}
		defer db.Close()
		db.SetMaxOpenConns(16)
		db.SetMaxIdleConns(4)
		db.SetConnMaxLifetime(5 * time.Minute)

		scores = postgres.NewScoreStore(db, 5*time.Second)
		opts = append(opts, scan.WithArchive(scores))
		log.Info().Msg("score archive enabled")
	} else {
		log.Warn().Msg("POSTGRES_DSN not set, running without archive")
	}

	// The cache serves snapshot reads regardless of the archive; only the
	// periodic recompute needs the closed-trade history in Postgres.
	if addr := os.Getenv("REDIS_ADDR"); addr != "" {
		redisDB := 0
		if v := os.Getenv("REDIS_DB"); v != "" {
			if n, err := strconv.Atoi(v); err == nil {
				redisDB = n
			}
		}
		client := reputation.NewRedisClient(addr, os.Getenv("REDIS_PASSWORD"), redisDB)
		if err := client.Ping(ctx).Err(); err != nil {
			return fmt.Errorf("connect redis: %w", err)
		}
		cache := reputation.NewRedisStatsCache(client, cfg.Reputation.CacheTTL())
		opts = append(opts, scan.WithStatsCache(cache))
		log.Info().Str("addr", addr).Msg("reputation cache enabled")

		if db != nil {
			trades := postgres.NewTradeStore(db, 5*time.Second)
			refresher := reputation.NewRefresher(cfg.Reputation, trades, cache)
			if err := refresher.Start(ctx); err != nil {
				return fmt.Errorf("start reputation refresher: %w", err)
			}
			defer refresher.Stop()
		} else {
			log.Warn().Msg("POSTGRES_DSN not set, reputation snapshots will not be refreshed")
		}
	}

	scanner := scan.NewScanner(score.NewEngine(cfg), reg, opts...)

	// A nil *postgres.ScoreStore must stay a nil interface so the read
	// endpoints report the archive as unconfigured.
	var scoreStore persistence.ScoreStore
	if scores != nil {
		scoreStore = scores
	}
	server := httpapi.NewServer(httpapi.DefaultServerConfig(), scanner, scoreStore, reg)
	scanner.SetPublisher(server.Hub())

	log.Info().Str("version", version).Msg("tokenrank starting")
	return server.Start(ctx)
}
