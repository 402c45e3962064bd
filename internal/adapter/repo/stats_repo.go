package repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"

	"legalbot/internal/domain"
	"legalbot/internal/infra"
)

const (
	markerStatsByTier = "--sql 3eed1ef6-c101-46f3-9ed2-4b0da4c9d2d1\n"
	markerStatsUsage  = "--sql 8def351c-5d7c-4fde-84bb-cf54e40aa147\n"
	markerStatsLegal  = "--sql 90c1d214-6b5e-4d28-9901-f91289f5065d\n"
)

var psql = squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)

// StatsRepositoryPG builds the admin aggregates with squirrel and runs them through the audited executor.
type StatsRepositoryPG struct {
	sql infra.SQLExecutor
}

func NewStatsRepository(sql infra.SQLExecutor) *StatsRepositoryPG {
	return &StatsRepositoryPG{sql: sql}
}

func (r *StatsRepositoryPG) Collect(ctx context.Context, period domain.PeriodKey) (*domain.SystemStats, error) {
	stats := &domain.SystemStats{
		Period:      period,
		UsersByTier: make(map[domain.Tier]int, len(domain.Tiers)),
	}
	for _, tier := range domain.Tiers {
		stats.UsersByTier[tier] = 0
	}

	query, args, err := psql.Select("plan", "count(*)").
		Prefix(markerStatsByTier).
		From("accounts").
		GroupBy("plan").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build tier stats: %w", err)
	}
	rows, err := r.sql.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("tier stats: %w", err)
	}
	for rows.Next() {
		var (
			plan  string
			count int
		)
		if err := rows.Scan(&plan, &count); err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan tier stats: %w", err)
		}
		stats.UsersByTier[domain.Tier(plan)] += count
		stats.TotalUsers += count
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("tier stats: %w", err)
	}

	query, args, err = psql.Select("COALESCE(SUM(count), 0)").
		Prefix(markerStatsUsage).
		From("usage_records").
		Where(squirrel.Eq{"month": period.Month, "year": period.Year}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build usage stats: %w", err)
	}
	if err := r.sql.QueryRow(ctx, query, args...).Scan(&stats.MonthlyUsage); err != nil {
		return nil, fmt.Errorf("usage stats: %w", err)
	}

	query, args, err = psql.Select("count(*)").
		Prefix(markerStatsLegal).
		From("legal_documents").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build legal stats: %w", err)
	}
	if err := r.sql.QueryRow(ctx, query, args...).Scan(&stats.LegalDocuments); err != nil {
		return nil, fmt.Errorf("legal stats: %w", err)
	}

	return stats, nil
}

var _ domain.StatsRepository = (*StatsRepositoryPG)(nil)
