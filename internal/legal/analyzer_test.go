package legal

import (
	"context"
	"errors"
	"strings"
	"testing"

	"legalbot/internal/adapter/repo"
	"legalbot/internal/domain"
	"legalbot/internal/plans"
	"legalbot/internal/providers/genai"
)

type fakeGenerator struct {
	requests []genai.Request
	reply    string
	err      error
}

func (f *fakeGenerator) Generate(_ context.Context, req genai.Request) (string, error) {
	f.requests = append(f.requests, req)
	return f.reply, f.err
}

type countingRepo struct {
	domain.LegalRepository
	searches int
}

func (c *countingRepo) Search(ctx context.Context, query string, limit int) ([]domain.LegalReference, error) {
	c.searches++
	return c.LegalRepository.Search(ctx, query, limit)
}

func seed(t *testing.T, a *Analyzer, n int) {
	t.Helper()
	for i := 0; i < n; i++ {
		_, err := a.AddDocument(context.Background(), domain.LegalDocument{
			Title:   "Contrato artigo " + string(rune('A'+i)),
			Content: "Regras sobre rescisão de contrato de trabalho e aviso prévio.",
			Tags:    []string{" Trabalhista "},
		})
		if err != nil {
			t.Fatalf("AddDocument error: %v", err)
		}
	}
}

func TestAnswerLimitsContextForFreePlan(t *testing.T) {
	store := repo.NewMemoryStore()
	gen := &fakeGenerator{reply: "ok"}
	a := NewAnalyzer(store.Legal, gen, Options{})
	seed(t, a, 4)
	reg := plans.MustDefault()

	free, _ := reg.Lookup(domain.TierFree)
	if _, err := a.Answer(context.Background(), "rescisão de contrato", free); err != nil {
		t.Fatalf("Answer error: %v", err)
	}
	premium, _ := reg.Lookup(domain.TierPremium)
	if _, err := a.Answer(context.Background(), "rescisão de contrato", premium); err != nil {
		t.Fatalf("Answer error: %v", err)
	}

	if len(gen.requests) != 2 {
		t.Fatalf("requests = %d, want 2", len(gen.requests))
	}
	freePrompt, premiumPrompt := gen.requests[0].Prompt, gen.requests[1].Prompt
	if !strings.Contains(freePrompt, "Assine o Premium") || strings.Contains(freePrompt, "aviso prévio") {
		t.Fatalf("free prompt should be limited: %q", freePrompt)
	}
	if strings.Contains(premiumPrompt, "Assine o Premium") || !strings.Contains(premiumPrompt, "aviso prévio") {
		t.Fatalf("premium prompt should carry excerpts: %q", premiumPrompt)
	}
	if gen.requests[0].Operation != "consult" {
		t.Fatalf("operation = %q", gen.requests[0].Operation)
	}
}

func TestSearchIsCachedUntilCorpusChanges(t *testing.T) {
	store := repo.NewMemoryStore()
	counting := &countingRepo{LegalRepository: store.Legal}
	a := NewAnalyzer(counting, &fakeGenerator{}, Options{})
	seed(t, a, 1)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		if _, err := a.SearchReferences(ctx, "  Rescisão   contrato ", 5); err != nil {
			t.Fatalf("SearchReferences error: %v", err)
		}
	}
	if counting.searches != 1 {
		t.Fatalf("searches = %d, want 1", counting.searches)
	}

	seed(t, a, 1)
	refs, _ := a.SearchReferences(ctx, "rescisão contrato", 5)
	if counting.searches != 2 || len(refs) != 2 {
		t.Fatalf("searches = %d refs = %d, want a fresh search with 2 refs", counting.searches, len(refs))
	}
}

func TestAddDocumentValidates(t *testing.T) {
	a := NewAnalyzer(repo.NewMemoryStore().Legal, &fakeGenerator{}, Options{})
	_, err := a.AddDocument(context.Background(), domain.LegalDocument{Title: " ", Content: "x"})
	if !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("AddDocument err = %v, want ErrInvalidInput", err)
	}

	doc, err := a.AddDocument(context.Background(), domain.LegalDocument{Title: "CF/88", Content: "Art. 5º", Tags: []string{"", " Constitucional"}})
	if err != nil {
		t.Fatalf("AddDocument error: %v", err)
	}
	if doc.Type != "lei" || doc.AddedAt.IsZero() || len(doc.Tags) != 1 || doc.Tags[0] != "constitucional" {
		t.Fatalf("document = %+v", doc)
	}
}

func TestAnalyzeDocumentTruncates(t *testing.T) {
	gen := &fakeGenerator{reply: "análise"}
	a := NewAnalyzer(repo.NewMemoryStore().Legal, gen, Options{})
	content := strings.Repeat("a", MaxDocumentRunes+50)

	if _, err := a.AnalyzeDocument(context.Background(), "x.txt", content); err != nil {
		t.Fatalf("AnalyzeDocument error: %v", err)
	}
	if strings.Contains(gen.requests[0].Prompt, strings.Repeat("a", MaxDocumentRunes+1)) {
		t.Fatalf("content was not truncated")
	}
	if !strings.Contains(gen.requests[0].Prompt, "[conteúdo truncado]") {
		t.Fatalf("truncation marker missing")
	}
}

func TestDraftDocumentRejectsEmptyDetails(t *testing.T) {
	gen := &fakeGenerator{reply: "doc"}
	a := NewAnalyzer(repo.NewMemoryStore().Legal, gen, Options{})
	kind, _ := domain.LookupDocumentKind("peticao")

	if _, err := a.DraftDocument(context.Background(), kind, "  "); !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("DraftDocument err = %v, want ErrInvalidInput", err)
	}
	if len(gen.requests) != 0 {
		t.Fatalf("generator called for empty details")
	}
}

func TestProviderFailurePropagates(t *testing.T) {
	_, failure := genai.Disabled{}.Generate(context.Background(), genai.Request{})
	gen := &fakeGenerator{err: failure}
	a := NewAnalyzer(repo.NewMemoryStore().Legal, gen, Options{})
	reg := plans.MustDefault()
	_, err := a.Answer(context.Background(), "lei", reg.Default())
	if !errors.Is(err, domain.ErrProviderFailure) {
		t.Fatalf("Answer err = %v, want ErrProviderFailure", err)
	}
}
