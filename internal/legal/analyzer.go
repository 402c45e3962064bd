// Package legal answers legal questions against the reference corpus and drafts or reviews documents.
package legal

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	lru "github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/rs/zerolog"

	"legalbot/internal/domain"
	"legalbot/internal/providers/genai"
	"legalbot/internal/providers/prompt"
)

const (
	// MaxReferences bounds every corpus search.
	MaxReferences = 5
	// MaxDocumentRunes bounds uploaded content sent to the model.
	MaxDocumentRunes = 10000
)

type Options struct {
	CacheSize int
	CacheTTL  time.Duration
	Clock     func() time.Time
	Logger    *zerolog.Logger
}

// Analyzer owns the corpus search cache and all model calls.
type Analyzer struct {
	repo   domain.LegalRepository
	gen    genai.Generator
	cache  *lru.LRU[string, []domain.LegalReference]
	now    func() time.Time
	logger zerolog.Logger
}

func NewAnalyzer(repo domain.LegalRepository, gen genai.Generator, opts Options) *Analyzer {
	size := opts.CacheSize
	if size <= 0 {
		size = 256
	}
	ttl := opts.CacheTTL
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	a := &Analyzer{
		repo:   repo,
		gen:    gen,
		cache:  lru.NewLRU[string, []domain.LegalReference](size, nil, ttl),
		now:    time.Now,
		logger: zerolog.Nop(),
	}
	if opts.Clock != nil {
		a.now = opts.Clock
	}
	if opts.Logger != nil {
		a.logger = opts.Logger.With().Str("component", "legal").Logger()
	}
	return a
}

func cacheKey(query string, limit int) string {
	return fmt.Sprintf("%d|%s", limit, strings.Join(strings.Fields(strings.ToLower(query)), " "))
}

// SearchReferences runs a full-text search. Results are cached per normalized query.
func (a *Analyzer) SearchReferences(ctx context.Context, query string, limit int) ([]domain.LegalReference, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, nil
	}
	if limit <= 0 || limit > MaxReferences {
		limit = MaxReferences
	}
	key := cacheKey(query, limit)
	if refs, ok := a.cache.Get(key); ok {
		return refs, nil
	}
	refs, err := a.repo.Search(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("search references: %w", err)
	}
	a.cache.Add(key, refs)
	return refs, nil
}

// Answer consults the corpus and the model. The plan decides how much context is shared.
func (a *Analyzer) Answer(ctx context.Context, question string, plan domain.PlanDefinition) (string, error) {
	refs, err := a.SearchReferences(ctx, question, MaxReferences)
	if err != nil {
		return "", err
	}
	legalContext := prompt.LegalContext(refs, plan.Allows(domain.CapabilityFullLegalContext))
	a.logger.Debug().Int("references", len(refs)).Str("plan", string(plan.Tier)).Msg("consulting model")

	return a.gen.Generate(ctx, genai.Request{
		Operation:   "consult",
		System:      prompt.SystemLegalAssistant,
		Prompt:      prompt.Consult(question, legalContext),
		Temperature: 0.3,
		MaxTokens:   2048,
	})
}

// AnalyzeDocument reviews extracted document text, truncated to MaxDocumentRunes.
func (a *Analyzer) AnalyzeDocument(ctx context.Context, fileName, content string) (string, error) {
	return a.gen.Generate(ctx, genai.Request{
		Operation:   "analyze",
		System:      prompt.SystemLegalAssistant,
		Prompt:      prompt.Analysis(fileName, prompt.Truncate(content, MaxDocumentRunes)),
		Temperature: 0.2,
		MaxTokens:   2048,
	})
}

// DraftDocument generates a document of the given kind from the user's details.
func (a *Analyzer) DraftDocument(ctx context.Context, kind domain.DocumentKind, details string) (string, error) {
	if strings.TrimSpace(details) == "" {
		return "", fmt.Errorf("%w: empty document details", domain.ErrInvalidInput)
	}
	return a.gen.Generate(ctx, genai.Request{
		Operation:   "draft",
		System:      prompt.SystemLegalAssistant,
		Prompt:      prompt.Draft(kind, details),
		Temperature: 0.4,
		MaxTokens:   4096,
	})
}

// AddDocument validates and stores a corpus entry, then drops cached searches.
func (a *Analyzer) AddDocument(ctx context.Context, doc domain.LegalDocument) (*domain.LegalDocument, error) {
	doc.Title = strings.TrimSpace(doc.Title)
	doc.Content = strings.TrimSpace(doc.Content)
	doc.Type = strings.ToLower(strings.TrimSpace(doc.Type))
	if doc.Title == "" || doc.Content == "" {
		return nil, fmt.Errorf("%w: title and content are required", domain.ErrInvalidInput)
	}
	if doc.Type == "" {
		doc.Type = "lei"
	}
	tags := make([]string, 0, len(doc.Tags))
	for _, tag := range doc.Tags {
		if tag = strings.ToLower(strings.TrimSpace(tag)); tag != "" {
			tags = append(tags, tag)
		}
	}
	doc.Tags = tags
	if doc.ID == uuid.Nil {
		doc.ID = uuid.New()
	}
	if doc.AddedAt.IsZero() {
		doc.AddedAt = a.now().UTC()
	}

	if err := a.repo.Insert(ctx, &doc); err != nil {
		return nil, err
	}
	a.cache.Purge()
	a.logger.Info().Str("doc_id", doc.ID.String()).Str("title", doc.Title).Msg("legal document added")
	return &doc, nil
}

// Count returns the corpus size.
func (a *Analyzer) Count(ctx context.Context) (int, error) {
	return a.repo.Count(ctx)
}
