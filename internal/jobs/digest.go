// Package jobs runs scheduled background work.
package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
)

// DigestSender delivers the admin digest.
type DigestSender interface {
	SendDigest(ctx context.Context) error
}

type Scheduler struct {
	cron    *cron.Cron
	logger  zerolog.Logger
	timeout time.Duration
}

// NewDigestScheduler schedules sender on a standard five-field cron expression, evaluated in UTC.
func NewDigestScheduler(schedule string, sender DigestSender, logger zerolog.Logger) (*Scheduler, error) {
	s := &Scheduler{
		cron:    cron.New(cron.WithLocation(time.UTC)),
		logger:  logger.With().Str("component", "digest").Logger(),
		timeout: 2 * time.Minute,
	}
	if _, err := s.cron.AddFunc(schedule, func() { s.run(sender) }); err != nil {
		return nil, fmt.Errorf("digest schedule %q: %w", schedule, err)
	}
	return s, nil
}

func (s *Scheduler) run(sender DigestSender) {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()
	s.logger.Info().Msg("sending admin digest")
	if err := sender.SendDigest(ctx); err != nil {
		s.logger.Error().Err(err).Msg("admin digest failed")
	}
}

func (s *Scheduler) Start() { s.cron.Start() }

// Next returns the next scheduled run.
func (s *Scheduler) Next() time.Time {
	entries := s.cron.Entries()
	if len(entries) == 0 {
		return time.Time{}
	}
	return entries[0].Next
}

// Stop waits for a running digest to finish or for ctx to expire.
func (s *Scheduler) Stop(ctx context.Context) error {
	done := s.cron.Stop()
	select {
	case <-done.Done():
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
