package modules

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"legalbot/internal/bot"
)

type BroadcastReport struct {
	Recipients int
	Sent       int
	Failed     int
}

// Broadcast sends message to every registered user, paced to the configured rate.
// Delivery failures are counted, not returned.
func (a *Admin) Broadcast(ctx context.Context, message string) (BroadcastReport, error) {
	ids, err := a.deps.Accounts.ListIDs(ctx)
	if err != nil {
		return BroadcastReport{}, fmt.Errorf("list recipients: %w", err)
	}
	rps := a.deps.Broadcast.RatePerSec
	if rps <= 0 {
		rps = 25
	}
	workers := a.deps.Broadcast.Concurrency
	if workers <= 0 {
		workers = 4
	}

	// The run outlives the per-update timeout; budget it from the recipient count instead.
	budget := time.Duration(len(ids)/rps+30) * time.Second
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), budget)
	defer cancel()

	limiter := rate.NewLimiter(rate.Limit(rps), 1)
	var sent, failed atomic.Int64
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for _, id := range ids {
		g.Go(func() error {
			if err := limiter.Wait(gctx); err != nil {
				return err
			}
			if _, err := a.deps.Sender.Send(gctx, id, bot.Text(message)); err != nil {
				failed.Add(1)
				a.deps.Metrics.Broadcast("failed")
				a.logger.Debug().Err(err).Int64("user_id", id).Msg("broadcast delivery failed")
				return nil
			}
			sent.Add(1)
			a.deps.Metrics.Broadcast("sent")
			return nil
		})
	}
	err = g.Wait()
	report := BroadcastReport{Recipients: len(ids), Sent: int(sent.Load()), Failed: int(failed.Load())}
	if err != nil {
		return report, fmt.Errorf("broadcast interrupted after %d messages: %w", report.Sent+report.Failed, err)
	}
	return report, nil
}
