package repo

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"legalbot/internal/domain"
)

// MemoryStore keeps accounts, usage and legal documents in process. Each table has its own mutex.
// It backs STORE_DRIVER=memory and the service tests.
type MemoryStore struct {
	Accounts *AccountMemory
	Usage    *UsageMemory
	Legal    *LegalMemory
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		Accounts: &AccountMemory{rows: map[int64]domain.UserAccount{}},
		Usage:    &UsageMemory{rows: map[usageKey]int{}},
		Legal:    &LegalMemory{},
	}
}

// Collect implements domain.StatsRepository over the three tables.
func (m *MemoryStore) Collect(ctx context.Context, period domain.PeriodKey) (*domain.SystemStats, error) {
	stats := &domain.SystemStats{
		Period:      period,
		UsersByTier: make(map[domain.Tier]int, len(domain.Tiers)),
	}
	for _, tier := range domain.Tiers {
		stats.UsersByTier[tier] = 0
	}

	m.Accounts.mu.RLock()
	for _, acct := range m.Accounts.rows {
		stats.UsersByTier[acct.Plan]++
		stats.TotalUsers++
	}
	m.Accounts.mu.RUnlock()

	m.Usage.mu.Lock()
	for key, count := range m.Usage.rows {
		if key.period == period {
			stats.MonthlyUsage += count
		}
	}
	m.Usage.mu.Unlock()

	n, err := m.Legal.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("count legal documents: %w", err)
	}
	stats.LegalDocuments = n
	return stats, nil
}

type AccountMemory struct {
	mu   sync.RWMutex
	rows map[int64]domain.UserAccount
}

func (a *AccountMemory) InsertIfAbsent(_ context.Context, acct domain.UserAccount) (bool, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if _, ok := a.rows[acct.TelegramID]; ok {
		return false, nil
	}
	a.rows[acct.TelegramID] = acct
	return true, nil
}

func (a *AccountMemory) Get(_ context.Context, telegramID int64) (*domain.UserAccount, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	acct, ok := a.rows[telegramID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &acct, nil
}

func (a *AccountMemory) UpdatePlan(_ context.Context, telegramID int64, tier domain.Tier) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	acct, ok := a.rows[telegramID]
	if !ok {
		return fmt.Errorf("%w: %d", domain.ErrUnknownUser, telegramID)
	}
	acct.Plan = tier
	a.rows[telegramID] = acct
	return nil
}

func (a *AccountMemory) ListIDs(_ context.Context) ([]int64, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	ids := make([]int64, 0, len(a.rows))
	for id := range a.rows {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids, nil
}

type usageKey struct {
	telegramID int64
	period     domain.PeriodKey
}

type UsageMemory struct {
	mu   sync.Mutex
	rows map[usageKey]int
}

func (u *UsageMemory) Get(_ context.Context, telegramID int64, period domain.PeriodKey) (int, error) {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.rows[usageKey{telegramID, period}], nil
}

func (u *UsageMemory) Increment(_ context.Context, telegramID int64, period domain.PeriodKey) (int, error) {
	u.mu.Lock()
	defer u.mu.Unlock()
	key := usageKey{telegramID, period}
	u.rows[key]++
	return u.rows[key], nil
}

func (u *UsageMemory) TryIncrement(_ context.Context, telegramID int64, period domain.PeriodKey, limit int) (int, bool, error) {
	u.mu.Lock()
	defer u.mu.Unlock()
	key := usageKey{telegramID, period}
	if u.rows[key] >= limit {
		return u.rows[key], false, nil
	}
	u.rows[key]++
	return u.rows[key], true, nil
}

type LegalMemory struct {
	mu   sync.RWMutex
	docs []domain.LegalDocument
}

// Search ranks documents by how many query words appear in their title, content or tags.
func (l *LegalMemory) Search(_ context.Context, query string, limit int) ([]domain.LegalReference, error) {
	terms := strings.Fields(strings.ToLower(query))
	if len(terms) == 0 || limit <= 0 {
		return nil, nil
	}

	l.mu.RLock()
	defer l.mu.RUnlock()
	var refs []domain.LegalReference
	for _, doc := range l.docs {
		haystack := strings.ToLower(doc.Title + " " + doc.Content + " " + strings.Join(doc.Tags, " "))
		hits := 0
		for _, term := range terms {
			if len(term) > 2 && strings.Contains(haystack, term) {
				hits++
			}
		}
		if hits > 0 {
			refs = append(refs, domain.LegalReference{LegalDocument: doc, Rank: float32(hits) / float32(len(terms))})
		}
	}
	sort.SliceStable(refs, func(i, j int) bool { return refs[i].Rank > refs[j].Rank })
	if len(refs) > limit {
		refs = refs[:limit]
	}
	return refs, nil
}

func (l *LegalMemory) Insert(_ context.Context, doc *domain.LegalDocument) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	cp := *doc
	cp.Tags = append([]string(nil), doc.Tags...)
	l.docs = append(l.docs, cp)
	return nil
}

// Count honors cancellation like the Postgres store.
func (l *LegalMemory) Count(ctx context.Context) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.docs), nil
}

var (
	_ domain.AccountRepository = (*AccountMemory)(nil)
	_ domain.UsageRepository   = (*UsageMemory)(nil)
	_ domain.LegalRepository   = (*LegalMemory)(nil)
	_ domain.StatsRepository   = (*MemoryStore)(nil)
)
