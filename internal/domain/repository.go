package domain

import "context"

// AccountRepository persists user accounts.
type AccountRepository interface {
	// InsertIfAbsent creates the account unless one already exists for the id.
	InsertIfAbsent(ctx context.Context, acct UserAccount) (bool, error)
	Get(ctx context.Context, telegramID int64) (*UserAccount, error)
	// UpdatePlan returns ErrUnknownUser when the id was never registered.
	UpdatePlan(ctx context.Context, telegramID int64, tier Tier) error
	ListIDs(ctx context.Context) ([]int64, error)
}

// UsageRepository persists monthly usage counters. All mutations are atomic at the store level.
type UsageRepository interface {
	Get(ctx context.Context, telegramID int64, period PeriodKey) (int, error)
	Increment(ctx context.Context, telegramID int64, period PeriodKey) (int, error)
	// TryIncrement increments only while the stored count is below limit.
	TryIncrement(ctx context.Context, telegramID int64, period PeriodKey, limit int) (int, bool, error)
}

// LegalRepository stores and searches the legal reference corpus.
type LegalRepository interface {
	Search(ctx context.Context, query string, limit int) ([]LegalReference, error)
	Insert(ctx context.Context, doc *LegalDocument) error
	Count(ctx context.Context) (int, error)
}

// StatsRepository aggregates counters for the admin surface.
type StatsRepository interface {
	Collect(ctx context.Context, period PeriodKey) (*SystemStats, error)
}
