package repo

import (
	"context"
	"fmt"

	"legalbot/internal/domain"
	"legalbot/internal/infra"
	"legalbot/internal/sqlinline"
)

// UsageRepositoryPG keeps one counter row per (user, month, year). Every write is a single upsert.
type UsageRepositoryPG struct {
	sql infra.SQLExecutor
}

func NewUsageRepository(sql infra.SQLExecutor) *UsageRepositoryPG {
	return &UsageRepositoryPG{sql: sql}
}

func (r *UsageRepositoryPG) Get(ctx context.Context, telegramID int64, period domain.PeriodKey) (int, error) {
	var count int
	err := r.sql.QueryRow(ctx, sqlinline.QSelectUsageCount, telegramID, period.Month, period.Year).Scan(&count)
	if err != nil {
		if infra.IsNoRows(err) {
			return 0, nil
		}
		return 0, fmt.Errorf("select usage %d %s: %w", telegramID, period, err)
	}
	return count, nil
}

func (r *UsageRepositoryPG) Increment(ctx context.Context, telegramID int64, period domain.PeriodKey) (int, error) {
	var count int
	err := r.sql.QueryRow(ctx, sqlinline.QIncrementUsage, telegramID, period.Month, period.Year).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("increment usage %d %s: %w", telegramID, period, err)
	}
	return count, nil
}

func (r *UsageRepositoryPG) TryIncrement(ctx context.Context, telegramID int64, period domain.PeriodKey, limit int) (int, bool, error) {
	var count int
	err := r.sql.QueryRow(ctx, sqlinline.QTryIncrementUsage, telegramID, period.Month, period.Year, limit).Scan(&count)
	if err == nil {
		return count, true, nil
	}
	if !infra.IsNoRows(err) {
		return 0, false, fmt.Errorf("reserve usage %d %s: %w", telegramID, period, err)
	}
	count, err = r.Get(ctx, telegramID, period)
	return count, false, err
}

var _ domain.UsageRepository = (*UsageRepositoryPG)(nil)
