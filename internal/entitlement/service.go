// Package entitlement decides whether a user may perform a metered or gated action
// and records consumption once the action completes.
package entitlement

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"legalbot/internal/domain"
	"legalbot/internal/observability"
	"legalbot/internal/plans"
)

// Options tunes a Service. Zero values pick production defaults.
type Options struct {
	Clock   func() time.Time
	Logger  *zerolog.Logger
	Metrics *observability.Metrics
}

// Service combines the account registry, the usage counter and the plan table.
type Service struct {
	accounts domain.AccountRepository
	usage    domain.UsageRepository
	plans    *plans.Registry
	now      func() time.Time
	logger   zerolog.Logger
	metrics  *observability.Metrics
}

func NewService(accounts domain.AccountRepository, usage domain.UsageRepository, registry *plans.Registry, opts Options) *Service {
	s := &Service{
		accounts: accounts,
		usage:    usage,
		plans:    registry,
		now:      time.Now,
		logger:   zerolog.Nop(),
		metrics:  opts.Metrics,
	}
	if opts.Clock != nil {
		s.now = opts.Clock
	}
	if opts.Logger != nil {
		s.logger = opts.Logger.With().Str("component", "entitlement").Logger()
	}
	return s
}

// Plans exposes the immutable plan table.
func (s *Service) Plans() *plans.Registry { return s.plans }

// CurrentPeriodKey returns the UTC month containing now.
func CurrentPeriodKey(now time.Time) domain.PeriodKey {
	return domain.PeriodOf(now)
}

// CurrentPeriod is CurrentPeriodKey for the service clock.
func (s *Service) CurrentPeriod() domain.PeriodKey {
	return CurrentPeriodKey(s.now())
}

// RegisterIfAbsent creates the account on first sight. Existing accounts are left untouched.
func (s *Service) RegisterIfAbsent(ctx context.Context, telegramID int64, handle, firstName string) error {
	created, err := s.accounts.InsertIfAbsent(ctx, domain.UserAccount{
		TelegramID: telegramID,
		Username:   handle,
		FirstName:  firstName,
		Plan:       domain.DefaultTier,
		JoinedAt:   s.now().UTC(),
	})
	if err != nil {
		return fmt.Errorf("register user: %w", err)
	}
	if created {
		s.logger.Info().Int64("user_id", telegramID).Msg("user registered")
	}
	return nil
}

// GetPlan returns the stored tier, or the default tier for unknown users. It never creates a record.
func (s *Service) GetPlan(ctx context.Context, telegramID int64) (domain.Tier, error) {
	acct, err := s.accounts.Get(ctx, telegramID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.DefaultTier, nil
		}
		return "", fmt.Errorf("get plan: %w", err)
	}
	return acct.Plan, nil
}

// GetAccount returns domain.ErrNotFound for users that never registered.
func (s *Service) GetAccount(ctx context.Context, telegramID int64) (*domain.UserAccount, error) {
	return s.accounts.Get(ctx, telegramID)
}

// SetPlan changes the tier of a registered user. Unregistered users yield domain.ErrUnknownUser.
func (s *Service) SetPlan(ctx context.Context, telegramID int64, tier domain.Tier) error {
	if !tier.Valid() {
		return fmt.Errorf("%w: %q", domain.ErrUnknownTier, tier)
	}
	if err := s.accounts.UpdatePlan(ctx, telegramID, tier); err != nil {
		return fmt.Errorf("set plan: %w", err)
	}
	s.logger.Info().Int64("user_id", telegramID).Str("plan", string(tier)).Msg("plan changed")
	return nil
}

// GetUsage returns the count for the period, 0 when nothing was recorded.
func (s *Service) GetUsage(ctx context.Context, telegramID int64, period domain.PeriodKey) (int, error) {
	n, err := s.usage.Get(ctx, telegramID, period)
	if err != nil {
		return 0, fmt.Errorf("get usage: %w", err)
	}
	return n, nil
}

// Increment atomically adds one consumption event to the period.
func (s *Service) Increment(ctx context.Context, telegramID int64, period domain.PeriodKey) error {
	if _, err := s.usage.Increment(ctx, telegramID, period); err != nil {
		return fmt.Errorf("increment usage: %w", err)
	}
	s.metrics.UsageRecorded()
	return nil
}

func (s *Service) planOf(ctx context.Context, telegramID int64) (domain.PlanDefinition, error) {
	tier, err := s.GetPlan(ctx, telegramID)
	if err != nil {
		return domain.PlanDefinition{}, err
	}
	return s.plans.Lookup(tier)
}

// MayConsume reports whether the user's plan still has room this month. It has no side effects.
func (s *Service) MayConsume(ctx context.Context, telegramID int64) (bool, error) {
	plan, err := s.planOf(ctx, telegramID)
	if err != nil {
		return false, err
	}
	return s.mayConsume(ctx, telegramID, plan)
}

func (s *Service) mayConsume(ctx context.Context, telegramID int64, plan domain.PlanDefinition) (bool, error) {
	if plan.Unlimited() {
		return true, nil
	}
	used, err := s.GetUsage(ctx, telegramID, s.CurrentPeriod())
	if err != nil {
		return false, err
	}
	if used >= plan.Limit() {
		s.logger.Debug().Int64("user_id", telegramID).Int("used", used).Int("limit", plan.Limit()).Msg("monthly limit reached")
		s.metrics.Denied("monthly_limit")
		return false, nil
	}
	return true, nil
}

// MayPerform additionally requires the capability flag of the user's plan.
func (s *Service) MayPerform(ctx context.Context, telegramID int64, capability domain.Capability) (bool, error) {
	plan, err := s.planOf(ctx, telegramID)
	if err != nil {
		return false, err
	}
	if !plan.Allows(capability) {
		s.logger.Debug().Int64("user_id", telegramID).Str("capability", string(capability)).Msg("capability not in plan")
		s.metrics.Denied("capability")
		return false, nil
	}
	return s.mayConsume(ctx, telegramID, plan)
}

// Record bills one completed action to the current period.
func (s *Service) Record(ctx context.Context, telegramID int64) error {
	return s.Increment(ctx, telegramID, s.CurrentPeriod())
}

// Reserve checks and records in one store operation. Metered plans use a conditional
// increment so concurrent requests cannot exceed the limit.
func (s *Service) Reserve(ctx context.Context, telegramID int64) (bool, error) {
	plan, err := s.planOf(ctx, telegramID)
	if err != nil {
		return false, err
	}
	period := s.CurrentPeriod()
	if plan.Unlimited() {
		if err := s.Increment(ctx, telegramID, period); err != nil {
			return false, err
		}
		return true, nil
	}
	_, ok, err := s.usage.TryIncrement(ctx, telegramID, period, plan.Limit())
	if err != nil {
		return false, fmt.Errorf("reserve usage: %w", err)
	}
	if !ok {
		s.metrics.Denied("monthly_limit")
		return false, nil
	}
	s.metrics.UsageRecorded()
	return true, nil
}
