package repo

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"legalbot/internal/domain"
	"legalbot/internal/infra"
)

func newMockRunner(t *testing.T) (pgxmock.PgxPoolIface, *infra.SQLRunner) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(func() {
		assert.NoError(t, mock.ExpectationsWereMet())
		mock.Close()
	})
	return mock, infra.NewSQLRunner(mock, zerolog.Nop())
}

func q(fragment string) string {
	return regexp.QuoteMeta(fragment)
}

func TestAccountInsertIfAbsent(t *testing.T) {
	mock, runner := newMockRunner(t)
	repo := NewAccountRepository(runner)
	joined := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

	mock.ExpectExec(q("on conflict (telegram_id) do nothing")).
		WithArgs(int64(42), "ana", "Ana", "free", joined).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectExec(q("on conflict (telegram_id) do nothing")).
		WithArgs(int64(42), "ana", "Ana", "free", joined).
		WillReturnResult(pgxmock.NewResult("INSERT", 0))

	acct := domain.UserAccount{TelegramID: 42, Username: "ana", FirstName: "Ana", Plan: domain.TierFree, JoinedAt: joined}
	created, err := repo.InsertIfAbsent(context.Background(), acct)
	require.NoError(t, err)
	assert.True(t, created)

	created, err = repo.InsertIfAbsent(context.Background(), acct)
	require.NoError(t, err)
	assert.False(t, created)
}

func TestAccountGet(t *testing.T) {
	mock, runner := newMockRunner(t)
	repo := NewAccountRepository(runner)
	joined := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

	mock.ExpectQuery(q("from accounts")).
		WithArgs(int64(42)).
		WillReturnRows(pgxmock.NewRows([]string{"telegram_id", "username", "first_name", "plan", "joined_at"}).
			AddRow(int64(42), "ana", "Ana", "premium", joined))
	mock.ExpectQuery(q("from accounts")).
		WithArgs(int64(7)).
		WillReturnError(pgx.ErrNoRows)

	acct, err := repo.Get(context.Background(), 42)
	require.NoError(t, err)
	assert.Equal(t, domain.TierPremium, acct.Plan)
	assert.Equal(t, joined, acct.JoinedAt)

	_, err = repo.Get(context.Background(), 7)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestAccountUpdatePlanUnknownUser(t *testing.T) {
	mock, runner := newMockRunner(t)
	repo := NewAccountRepository(runner)

	mock.ExpectQuery(q("update accounts")).
		WithArgs(int64(42), "premium").
		WillReturnRows(pgxmock.NewRows([]string{"telegram_id"}).AddRow(int64(42)))
	mock.ExpectQuery(q("update accounts")).
		WithArgs(int64(9), "premium").
		WillReturnError(pgx.ErrNoRows)

	require.NoError(t, repo.UpdatePlan(context.Background(), 42, domain.TierPremium))
	err := repo.UpdatePlan(context.Background(), 9, domain.TierPremium)
	assert.ErrorIs(t, err, domain.ErrUnknownUser)
}

func TestAccountListIDs(t *testing.T) {
	mock, runner := newMockRunner(t)
	repo := NewAccountRepository(runner)

	mock.ExpectQuery(q("select telegram_id")).
		WillReturnRows(pgxmock.NewRows([]string{"telegram_id"}).AddRow(int64(1)).AddRow(int64(2)))

	ids, err := repo.ListIDs(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []int64{1, 2}, ids)
}

func TestUsageGetDefaultsToZero(t *testing.T) {
	mock, runner := newMockRunner(t)
	repo := NewUsageRepository(runner)
	period := domain.PeriodKey{Month: 5, Year: 2024}

	mock.ExpectQuery(q("from usage_records")).
		WithArgs(int64(42), 5, 2024).
		WillReturnError(pgx.ErrNoRows)

	n, err := repo.Get(context.Background(), 42, period)
	require.NoError(t, err)
	assert.Equal(t, 0, n)
}

func TestUsageIncrementUpserts(t *testing.T) {
	mock, runner := newMockRunner(t)
	repo := NewUsageRepository(runner)
	period := domain.PeriodKey{Month: 5, Year: 2024}

	mock.ExpectQuery(q("count = usage_records.count + 1")).
		WithArgs(int64(42), 5, 2024).
		WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(4))

	n, err := repo.Increment(context.Background(), 42, period)
	require.NoError(t, err)
	assert.Equal(t, 4, n)
}

func TestUsageTryIncrementAtLimit(t *testing.T) {
	mock, runner := newMockRunner(t)
	repo := NewUsageRepository(runner)
	period := domain.PeriodKey{Month: 5, Year: 2024}

	mock.ExpectQuery(q("where usage_records.count < $4::int")).
		WithArgs(int64(42), 5, 2024, 10).
		WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(10))
	mock.ExpectQuery(q("where usage_records.count < $4::int")).
		WithArgs(int64(42), 5, 2024, 10).
		WillReturnError(pgx.ErrNoRows)
	mock.ExpectQuery(q("select count")).
		WithArgs(int64(42), 5, 2024).
		WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(10))

	n, ok, err := repo.TryIncrement(context.Background(), 42, period, 10)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 10, n)

	n, ok, err = repo.TryIncrement(context.Background(), 42, period, 10)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, 10, n)
}

func TestUsagePropagatesStoreErrors(t *testing.T) {
	mock, runner := newMockRunner(t)
	repo := NewUsageRepository(runner)
	boom := errors.New("connection reset")

	mock.ExpectQuery(q("from usage_records")).
		WithArgs(int64(42), 5, 2024).
		WillReturnError(boom)

	_, err := repo.Get(context.Background(), 42, domain.PeriodKey{Month: 5, Year: 2024})
	assert.ErrorIs(t, err, boom)
}

func TestLegalSearchAndInsert(t *testing.T) {
	mock, runner := newMockRunner(t)
	repo := NewLegalRepository(runner)
	id := uuid.New()
	added := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)

	mock.ExpectQuery(q("plainto_tsquery('portuguese', $1::text)")).
		WithArgs("rescisão contrato", 5).
		WillReturnRows(pgxmock.NewRows([]string{"id", "title", "content", "doc_type", "tags", "added_at", "rank"}).
			AddRow(id, "CLT Art. 477", "Na extinção do contrato...", "lei", []string{"trabalhista"}, added, float32(0.8)))

	refs, err := repo.Search(context.Background(), "rescisão contrato", 5)
	require.NoError(t, err)
	require.Len(t, refs, 1)
	assert.Equal(t, id, refs[0].ID)
	assert.Equal(t, "CLT Art. 477", refs[0].Title)
	assert.Equal(t, []string{"trabalhista"}, refs[0].Tags)

	mock.ExpectExec(q("insert into legal_documents")).
		WithArgs(id, "Lei 8.078", "Código de Defesa do Consumidor", "lei", []string{}, added).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	err = repo.Insert(context.Background(), &domain.LegalDocument{
		ID: id, Title: "Lei 8.078", Content: "Código de Defesa do Consumidor", Type: "lei", AddedAt: added,
	})
	require.NoError(t, err)
}

func TestStatsCollect(t *testing.T) {
	mock, runner := newMockRunner(t)
	repo := NewStatsRepository(runner)

	mock.ExpectQuery(q("SELECT plan, count(*) FROM accounts GROUP BY plan")).
		WillReturnRows(pgxmock.NewRows([]string{"plan", "count"}).
			AddRow("free", 8).
			AddRow("premium", 2))
	mock.ExpectQuery(q("FROM usage_records WHERE month = $1 AND year = $2")).
		WithArgs(6, 2024).
		WillReturnRows(pgxmock.NewRows([]string{"sum"}).AddRow(31))
	mock.ExpectQuery(q("FROM legal_documents")).
		WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(12))

	stats, err := repo.Collect(context.Background(), domain.PeriodKey{Month: 6, Year: 2024})
	require.NoError(t, err)
	assert.Equal(t, 10, stats.TotalUsers)
	assert.Equal(t, 8, stats.UsersByTier[domain.TierFree])
	assert.Equal(t, 0, stats.UsersByTier[domain.TierEnterprise])
	assert.Equal(t, 31, stats.MonthlyUsage)
	assert.Equal(t, 12, stats.LegalDocuments)
}
