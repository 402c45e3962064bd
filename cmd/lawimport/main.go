package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"

	"legalbot/internal/adapter/repo"
	"legalbot/internal/domain"
	"legalbot/internal/infra"
	"legalbot/internal/legal"
	"legalbot/internal/providers/genai"
)

type entry struct {
	Title   string   `json:"title"`
	Content string   `json:"content"`
	Type    string   `json:"type"`
	Tags    []string `json:"tags"`
}

func main() {
	_ = godotenv.Load()

	fileFlag := flag.String("file", "-", "JSON array of {title, content, type, tags}; - reads stdin")
	flag.Parse()

	var in io.Reader = os.Stdin
	if *fileFlag != "-" {
		f, err := os.Open(*fileFlag)
		if err != nil {
			exitWithError(err)
		}
		defer f.Close()
		in = f
	}

	var entries []entry
	if err := json.NewDecoder(in).Decode(&entries); err != nil {
		exitWithError(fmt.Errorf("decode input: %w", err))
	}
	if len(entries) == 0 {
		exitWithError(errors.New("no documents to import"))
	}

	dbURL := strings.TrimSpace(os.Getenv("DATABASE_URL"))
	if dbURL == "" {
		exitWithError(errors.New("DATABASE_URL is required"))
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	pool, err := pgxpool.New(ctx, dbURL)
	if err != nil {
		exitWithError(fmt.Errorf("failed to connect database: %w", err))
	}
	defer pool.Close()

	logger := infra.NewLogger("cli", os.Getenv("LOG_LEVEL")).With().Str("cmd", "lawimport").Logger()
	analyzer := legal.NewAnalyzer(repo.NewLegalRepository(infra.NewSQLRunner(pool, logger)), genai.Disabled{}, legal.Options{Logger: &logger})

	var imported, skipped int
	for i, e := range entries {
		doc, err := analyzer.AddDocument(ctx, domain.LegalDocument{Title: e.Title, Content: e.Content, Type: e.Type, Tags: e.Tags})
		if errors.Is(err, domain.ErrInvalidInput) {
			logger.Warn().Int("index", i).Msg("skipping entry without title or content")
			skipped++
			continue
		}
		if err != nil {
			exitWithError(fmt.Errorf("entry %d: %w", i, err))
		}
		logger.Debug().Str("id", doc.ID.String()).Str("title", doc.Title).Msg("imported")
		imported++
	}

	total, err := analyzer.Count(ctx)
	if err != nil {
		exitWithError(err)
	}
	fmt.Printf("imported=%d skipped=%d total=%d\n", imported, skipped, total)
}

func exitWithError(err error) {
	fmt.Fprintln(os.Stderr, err)
	os.Exit(1)
}
