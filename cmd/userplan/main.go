package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"

	"legalbot/internal/adapter/repo"
	"legalbot/internal/domain"
	"legalbot/internal/entitlement"
	"legalbot/internal/infra"
	"legalbot/internal/plans"
)

func main() {
	_ = godotenv.Load()

	var (
		idFlag   int64
		planFlag string
	)
	flag.Int64Var(&idFlag, "id", 0, "telegram user id to update")
	flag.StringVar(&planFlag, "plan", string(domain.TierPremium), "plan to assign (free, premium, enterprise)")
	flag.Parse()

	if idFlag <= 0 {
		exitWithError(errors.New("-id is required"))
	}
	tier, err := domain.ParseTier(planFlag)
	if err != nil {
		exitWithError(err)
	}

	dbURL := strings.TrimSpace(os.Getenv("DATABASE_URL"))
	if dbURL == "" {
		exitWithError(errors.New("DATABASE_URL is required"))
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := pgxpool.New(ctx, dbURL)
	if err != nil {
		exitWithError(fmt.Errorf("failed to connect database: %w", err))
	}
	defer pool.Close()

	logger := infra.NewLogger("cli", os.Getenv("LOG_LEVEL")).With().Str("cmd", "userplan").Logger()
	runner := infra.NewSQLRunner(pool, logger)

	registry, err := plans.Default()
	if err != nil {
		exitWithError(err)
	}
	svc := entitlement.NewService(repo.NewAccountRepository(runner), repo.NewUsageRepository(runner), registry, entitlement.Options{Logger: &logger})

	if err := svc.SetPlan(ctx, idFlag, tier); err != nil {
		if errors.Is(err, domain.ErrUnknownUser) {
			exitWithError(fmt.Errorf("user %d has never talked to the bot", idFlag))
		}
		exitWithError(fmt.Errorf("failed to update user plan: %w", err))
	}

	snap, err := svc.Account(ctx, idFlag)
	if err != nil {
		exitWithError(fmt.Errorf("failed to reload account: %w", err))
	}
	fmt.Printf("User %d updated to plan %s\n", idFlag, snap.Plan.Name)
	fmt.Printf("usage this month=%d\n", snap.Used)
}

func exitWithError(err error) {
	fmt.Fprintln(os.Stderr, err)
	os.Exit(1)
}
