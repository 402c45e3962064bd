package entitlement

import (
	"context"
	"errors"
	"time"

	"legalbot/internal/domain"
)

// Snapshot is an account view with defaults filled in for unregistered users.
type Snapshot struct {
	TelegramID int64
	Registered bool
	Username   string
	FirstName  string
	// JoinedAt is zero when unknown.
	JoinedAt   time.Time
	Plan       domain.PlanDefinition
	Period     domain.PeriodKey
	Used       int
	MayConsume bool
}

// Remaining returns the calls left this month, or -1 for unlimited plans.
func (s Snapshot) Remaining() int {
	if s.Plan.Unlimited() {
		return -1
	}
	if left := s.Plan.Limit() - s.Used; left > 0 {
		return left
	}
	return 0
}

// Account never fails on a missing account; it substitutes the default tier and zero usage.
func (s *Service) Account(ctx context.Context, telegramID int64) (Snapshot, error) {
	snap := Snapshot{TelegramID: telegramID, Period: s.CurrentPeriod()}

	tier := domain.DefaultTier
	acct, err := s.accounts.Get(ctx, telegramID)
	switch {
	case err == nil:
		snap.Registered = true
		snap.Username = acct.Username
		snap.FirstName = acct.FirstName
		snap.JoinedAt = acct.JoinedAt
		tier = acct.Plan
	case errors.Is(err, domain.ErrNotFound):
	default:
		return Snapshot{}, err
	}

	plan, err := s.plans.Lookup(tier)
	if err != nil {
		return Snapshot{}, err
	}
	snap.Plan = plan

	if snap.Used, err = s.GetUsage(ctx, telegramID, snap.Period); err != nil {
		return Snapshot{}, err
	}
	snap.MayConsume = plan.Unlimited() || snap.Used < plan.Limit()
	return snap, nil
}
