package main

import (
	"context"
	"database/sql"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/pressly/goose/v3"

	"legalbot/internal/infra"
	"legalbot/migrations"
)

func main() {
	_ = godotenv.Load()

	timeout := flag.Duration("timeout", 2*time.Minute, "overall migration deadline")
	flag.Usage = func() {
		fmt.Fprintln(os.Stderr, "usage: migrate [-timeout d] up|down|status|version|redo|reset")
		flag.PrintDefaults()
	}
	flag.Parse()

	command := "up"
	if flag.NArg() > 0 {
		command = flag.Arg(0)
	}

	dbURL := strings.TrimSpace(os.Getenv("DATABASE_URL"))
	if dbURL == "" {
		exitWithError(fmt.Errorf("DATABASE_URL is required"))
	}

	logger := infra.NewLogger("cli", os.Getenv("LOG_LEVEL")).With().Str("cmd", "migrate").Str("command", command).Logger()

	db, err := sql.Open("postgres", dbURL)
	if err != nil {
		exitWithError(fmt.Errorf("open database: %w", err))
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		exitWithError(fmt.Errorf("ping database: %w", err))
	}

	goose.SetBaseFS(migrations.FS)
	if err := goose.SetDialect("postgres"); err != nil {
		exitWithError(err)
	}
	if err := goose.RunContext(ctx, command, db, ".", flag.Args()[min(1, flag.NArg()):]...); err != nil {
		exitWithError(fmt.Errorf("goose %s: %w", command, err))
	}
	logger.Info().Msg("migrations done")
}

func exitWithError(err error) {
	fmt.Fprintln(os.Stderr, err)
	os.Exit(1)
}
