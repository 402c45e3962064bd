package repo

import (
	"context"
	"fmt"

	"legalbot/internal/domain"
	"legalbot/internal/infra"
	"legalbot/internal/sqlinline"
)

// AccountRepositoryPG implements domain.AccountRepository backed by PostgreSQL.
type AccountRepositoryPG struct {
	sql infra.SQLExecutor
}

func NewAccountRepository(sql infra.SQLExecutor) *AccountRepositoryPG {
	return &AccountRepositoryPG{sql: sql}
}

// InsertIfAbsent never touches an existing row, so plan and joined_at keep their first values.
func (r *AccountRepositoryPG) InsertIfAbsent(ctx context.Context, acct domain.UserAccount) (bool, error) {
	tag, err := r.sql.Exec(ctx, sqlinline.QInsertAccountIfAbsent,
		acct.TelegramID,
		acct.Username,
		acct.FirstName,
		string(acct.Plan),
		acct.JoinedAt,
	)
	if err != nil {
		return false, fmt.Errorf("insert account %d: %w", acct.TelegramID, err)
	}
	return tag.RowsAffected() == 1, nil
}

func (r *AccountRepositoryPG) Get(ctx context.Context, telegramID int64) (*domain.UserAccount, error) {
	var (
		acct domain.UserAccount
		plan string
	)
	err := r.sql.QueryRow(ctx, sqlinline.QSelectAccount, telegramID).
		Scan(&acct.TelegramID, &acct.Username, &acct.FirstName, &plan, &acct.JoinedAt)
	if err != nil {
		if infra.IsNoRows(err) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("select account %d: %w", telegramID, err)
	}
	acct.Plan = domain.Tier(plan)
	return &acct, nil
}

func (r *AccountRepositoryPG) UpdatePlan(ctx context.Context, telegramID int64, tier domain.Tier) error {
	var id int64
	err := r.sql.QueryRow(ctx, sqlinline.QUpdateAccountPlan, telegramID, string(tier)).Scan(&id)
	if err != nil {
		if infra.IsNoRows(err) {
			return fmt.Errorf("%w: %d", domain.ErrUnknownUser, telegramID)
		}
		return fmt.Errorf("update plan %d: %w", telegramID, err)
	}
	return nil
}

func (r *AccountRepositoryPG) ListIDs(ctx context.Context) ([]int64, error) {
	rows, err := r.sql.Query(ctx, sqlinline.QSelectAccountIDs)
	if err != nil {
		return nil, fmt.Errorf("list accounts: %w", err)
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan account id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

var _ domain.AccountRepository = (*AccountRepositoryPG)(nil)
