// Package modules holds the bot's command groups.
package modules

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"legalbot/internal/bot"
	"legalbot/internal/conversation"
	"legalbot/internal/domain"
	"legalbot/internal/entitlement"
	"legalbot/internal/legal"
	"legalbot/internal/observability"
)

const (
	contactEmail = "contato@juridicalbot.com"

	limitExceededText = "❌ Você excedeu seu limite de consultas gratuitas deste mês. " +
		"Assine o plano Premium para consultas ilimitadas.\n\n" +
		"Use /planos para ver os planos disponíveis."
)

type BroadcastOptions struct {
	RatePerSec  int
	Concurrency int
}

// Deps is everything the modules share.
type Deps struct {
	Sender        bot.Sender
	Entitlement   *entitlement.Service
	Legal         *legal.Analyzer
	Conversations *conversation.Machine
	Accounts      domain.AccountRepository
	Stats         domain.StatsRepository
	AdminIDs      []int64
	Broadcast     BroadcastOptions
	Clock         func() time.Time
	Logger        *zerolog.Logger
	Metrics       *observability.Metrics
}

func (d Deps) now() time.Time {
	if d.Clock != nil {
		return d.Clock()
	}
	return time.Now()
}

func (d Deps) logger(module string) zerolog.Logger {
	if d.Logger == nil {
		return zerolog.Nop()
	}
	return d.Logger.With().Str("module", module).Logger()
}

// All returns the modules in registration order. Conversation handlers of the creator and
// admin modules must see text before the consult keyword matcher.
func All(d Deps) []bot.Module {
	return []bot.Module{
		NewUtility(d),
		NewSubscription(d),
		NewCreator(d),
		NewAdmin(d),
		NewConsult(d),
		NewAnalyzer(d),
	}
}

func reply(ctx context.Context, s bot.Sender, ev bot.Event, r bot.Reply) error {
	_, err := s.Send(ctx, ev.ChatID, r)
	return err
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return "N/A"
	}
	return t.UTC().Format("02/01/2006")
}
