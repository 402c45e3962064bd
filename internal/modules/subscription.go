package modules

import (
	"context"
	"fmt"
	"strings"

	"legalbot/internal/bot"
	"legalbot/internal/domain"
)

const subscriptionPrefix = "subscription_"

// Subscription serves /planos, /minhaconta and the plan buttons.
type Subscription struct {
	deps Deps
}

func NewSubscription(d Deps) *Subscription { return &Subscription{deps: d} }

func (s *Subscription) Name() string { return "subscription" }

func (s *Subscription) Register(r *bot.Registry) error {
	if err := r.Command("planos", s.plans); err != nil {
		return err
	}
	if err := r.Command("minhaconta", s.account); err != nil {
		return err
	}
	return r.Callback(subscriptionPrefix, s.choose)
}

func (s *Subscription) plans(ctx context.Context, ev bot.Event) error {
	sb := &strings.Builder{}
	sb.WriteString("📋 *Planos de Assinatura*\n")
	var keyboard [][]bot.Button
	for _, plan := range s.deps.Entitlement.Plans().All() {
		fmt.Fprintf(sb, "\n%s *%s* - %s\n", plan.Emoji, plan.Name, plan.PriceLabel)
		for _, f := range plan.Features {
			fmt.Fprintf(sb, "• %s\n", f)
		}
		label := fmt.Sprintf("%s %s (%s)", plan.Emoji, plan.Name, plan.PriceLabel)
		if !plan.Unlimited() {
			label = fmt.Sprintf("%s Plano %s (%d consultas/mês)", plan.Emoji, plan.Name, plan.Limit())
		}
		keyboard = append(keyboard, []bot.Button{{Text: label, Data: subscriptionPrefix + string(plan.Tier)}})
	}
	r := bot.Markdown(sb.String())
	r.Keyboard = keyboard
	return reply(ctx, s.deps.Sender, ev, r)
}

func (s *Subscription) account(ctx context.Context, ev bot.Event) error {
	snap, err := s.deps.Entitlement.Account(ctx, ev.UserID)
	if err != nil {
		return err
	}
	sb := &strings.Builder{}
	sb.WriteString("👤 *Minha Conta*\n\n")
	fmt.Fprintf(sb, "📊 *Plano Atual:* %s %s\n", snap.Plan.Emoji, snap.Plan.Name)
	fmt.Fprintf(sb, "📈 *Consultas este mês:* %d\n", snap.Used)
	if left := snap.Remaining(); left >= 0 {
		fmt.Fprintf(sb, "⏳ *Restantes:* %d de %d\n", left, snap.Plan.Limit())
	} else {
		sb.WriteString("♾️ *Consultas:* ilimitadas\n")
	}
	fmt.Fprintf(sb, "📅 *Membro desde:* %s\n", formatDate(snap.JoinedAt))
	if !snap.Registered {
		sb.WriteString("\nUse /start para ativar sua conta.")
	}
	return reply(ctx, s.deps.Sender, ev, bot.Markdown(sb.String()))
}

func (s *Subscription) choose(ctx context.Context, ev bot.Event) error {
	if err := s.deps.Sender.AnswerCallback(ctx, ev.CallbackID, ""); err != nil {
		return err
	}
	tier, err := domain.ParseTier(strings.TrimPrefix(ev.CallbackData, subscriptionPrefix))
	if err != nil {
		return s.deps.Sender.Edit(ctx, ev.ChatID, ev.MessageID, bot.Text("❌ Plano desconhecido. Use /planos para ver os planos disponíveis."))
	}
	if tier == domain.TierFree {
		return s.deps.Sender.Edit(ctx, ev.ChatID, ev.MessageID,
			bot.Text("✅ Você já está no plano Free! Use /minhaconta para ver seu uso."))
	}
	plan, err := s.deps.Entitlement.Plans().Lookup(tier)
	if err != nil {
		return err
	}
	text := fmt.Sprintf("💳 *Plano %s*\n\nPara assinar o plano %s, entre em contato conosco para "+
		"finalizar o pagamento e ativação.\n\n📧 %s", plan.Name, tier, contactEmail)
	return s.deps.Sender.Edit(ctx, ev.ChatID, ev.MessageID, bot.Markdown(text))
}
