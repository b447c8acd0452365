// Command fraudscore scores one batch of transactions and exits.
//
// The process contract is what the external review workflow parses:
// on success the single token "SUCCESS" is written to stdout and the
// process exits 0; on failure an "ERROR: ..." line is written and the
// process exits 1. All diagnostics go to stderr.
package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"

	_ "github.com/lib/pq" // PostgreSQL driver

	"github.com/hackgenix/fraudscore/internal/config"
	"github.com/hackgenix/fraudscore/internal/logging"
	"github.com/hackgenix/fraudscore/internal/pipeline"
	"github.com/hackgenix/fraudscore/internal/scoring"
	"github.com/hackgenix/fraudscore/internal/traces"
)

// Build info - set by ldflags
var (
	Version   = "dev"
	Commit    = "unknown"
	BuildTime = "unknown"
)

func main() {
	logger := logging.New(os.Getenv("LOG_LEVEL"), "text")

	logger.Info("starting fraudscore",
		"version", Version,
		"commit", Commit,
		"build_time", BuildTime,
	)

	cfg, err := config.Load()
	if err != nil {
		fail(logger, err)
	}

	ctx := context.Background()

	shutdownTraces, err := traces.Init(ctx, cfg.OTLPEndpoint, logger)
	if err != nil {
		fail(logger, err)
	}
	defer func() { _ = shutdownTraces(ctx) }()

	var opts []pipeline.Option
	var db *sql.DB
	if cfg.DatabaseURL != "" {
		db, err = sql.Open("postgres", cfg.DatabaseURL)
		if err == nil {
			err = db.Ping()
		}
		if err != nil {
			// The audit store is supplemental; a bad database must not
			// block the batch contract.
			logger.Warn("batch audit store unavailable", "error", err)
		} else {
			defer func() { _ = db.Close() }()
			opts = append(opts, pipeline.WithStore(scoring.NewPostgresStore(db)))
		}
	}

	runner := pipeline.NewRunner(cfg.ModelPath, cfg.InputPath, cfg.OutputPath, opts...)
	if _, err := runner.Run(ctx); err != nil {
		fail(logger, err)
	}

	fmt.Println("SUCCESS")
}

// fail emits the failure token on stdout and terminates non-zero.
func fail(logger *slog.Logger, err error) {
	logger.Error("run failed", "error", err)
	fmt.Printf("ERROR: %s\n", err)
	os.Exit(1)
}
