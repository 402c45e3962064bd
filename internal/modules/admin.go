package modules

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"legalbot/internal/bot"
	"legalbot/internal/conversation"
	"legalbot/internal/domain"
)

const (
	adminDeniedText = "❌ Acesso restrito a administradores."

	adminPanelText = `🛠️ *Painel Administrativo*

📊 /stats - Estatísticas do sistema
📢 /broadcast [mensagem] - Enviar mensagem para todos os usuários
👤 /userinfo [id] - Informações detalhadas de usuário

🔧 *Ferramentas da Base Legal:*
📚 /addlaw tipo | título | conteúdo | tags - Adicionar documento à base
🔍 /buscar [termo] - Buscar na base legal`

	userInfoUsageText      = "👤 Uso: /userinfo [id_do_usuario]"
	userNotFoundText       = "❌ Usuário não encontrado."
	userInvalidIDText      = "❌ ID de usuário inválido. Deve ser numérico."
	addLawUsageText        = "📚 Uso: /addlaw tipo | título | conteúdo | tag1,tag2\n\nExemplo: /addlaw lei | Lei 8.078/1990 | Código de Defesa do Consumidor... | consumidor"
	broadcastUsageText     = "📢 Uso: /broadcast [sua mensagem]\n\nExemplo: /broadcast Nova atualização disponível!"
	broadcastRetryText     = "Digite CONFIRMAR para enviar ou CANCELAR para abortar."
	broadcastCancelledText = "❌ Broadcast cancelado."
	broadcastDoneFormat    = "📢 Broadcast concluído!\n\n✅ Enviadas: %d\n❌ Falhas: %d"
	broadcastAbortedFormat = "⚠️ Broadcast interrompido.\n\n✅ Enviadas: %d\n❌ Falhas: %d\n📭 Não enviadas: %d"

	// reportTimeout bounds the final broadcast report, sent after the update deadline may have passed.
	reportTimeout = 15 * time.Second

	dataMessage = "message"
)

// Admin holds the commands reserved to ADMIN_IDS.
type Admin struct {
	deps   Deps
	admins map[int64]bool
	logger zerolog.Logger
}

func NewAdmin(d Deps) *Admin {
	admins := make(map[int64]bool, len(d.AdminIDs))
	for _, id := range d.AdminIDs {
		admins[id] = true
	}
	return &Admin{deps: d, admins: admins, logger: d.logger("admin")}
}

func (a *Admin) Name() string { return "admin_tools" }

func (a *Admin) Register(r *bot.Registry) error {
	for name, h := range map[string]bot.HandlerFunc{
		"admin":     a.panel,
		"stats":     a.stats,
		"broadcast": a.broadcast,
		"userinfo":  a.userInfo,
		"addlaw":    a.addLaw,
	} {
		if err := r.Command(name, a.restricted(h)); err != nil {
			return err
		}
	}
	r.Conversation(a.confirmBroadcast)
	return nil
}

func (a *Admin) IsAdmin(userID int64) bool { return a.admins[userID] }

func (a *Admin) restricted(h bot.HandlerFunc) bot.HandlerFunc {
	return func(ctx context.Context, ev bot.Event) error {
		if !a.IsAdmin(ev.UserID) {
			a.logger.Warn().Int64("user_id", ev.UserID).Str("command", ev.Command).Msg("unauthorized admin command")
			return reply(ctx, a.deps.Sender, ev, bot.Text(adminDeniedText))
		}
		return h(ctx, ev)
	}
}

func (a *Admin) panel(ctx context.Context, ev bot.Event) error {
	return reply(ctx, a.deps.Sender, ev, bot.Markdown(adminPanelText))
}

func (a *Admin) stats(ctx context.Context, ev bot.Event) error {
	text, err := a.StatsText(ctx)
	if err != nil {
		a.logger.Error().Err(err).Msg("collect stats failed")
		return reply(ctx, a.deps.Sender, ev, bot.Text("❌ Erro ao coletar estatísticas: "+err.Error()))
	}
	return reply(ctx, a.deps.Sender, ev, bot.Markdown(text))
}

// StatsText renders the current month's system statistics.
func (a *Admin) StatsText(ctx context.Context) (string, error) {
	stats, err := a.deps.Stats.Collect(ctx, a.deps.Entitlement.CurrentPeriod())
	if err != nil {
		return "", err
	}
	return FormatStats(stats, a.deps.Entitlement.Plans().All(), a.deps.now()), nil
}

func (a *Admin) userInfo(ctx context.Context, ev bot.Event) error {
	fields := strings.Fields(ev.Args)
	if len(fields) == 0 {
		return reply(ctx, a.deps.Sender, ev, bot.Text(userInfoUsageText))
	}
	target, err := strconv.ParseInt(fields[0], 10, 64)
	if err != nil {
		return reply(ctx, a.deps.Sender, ev, bot.Text(userInvalidIDText))
	}
	acct, err := a.deps.Entitlement.GetAccount(ctx, target)
	if errors.Is(err, domain.ErrNotFound) {
		return reply(ctx, a.deps.Sender, ev, bot.Text(userNotFoundText))
	}
	if err != nil {
		return err
	}
	used, err := a.deps.Entitlement.GetUsage(ctx, target, a.deps.Entitlement.CurrentPeriod())
	if err != nil {
		return err
	}
	planName := string(acct.Plan)
	if plan, err := a.deps.Entitlement.Plans().Lookup(acct.Plan); err == nil {
		planName = plan.Emoji + " " + plan.Name
	}
	username := "N/A"
	if acct.Username != "" {
		username = "@" + acct.Username
	}
	firstName := acct.FirstName
	if firstName == "" {
		firstName = "N/A"
	}

	text := fmt.Sprintf("👤 Informações do Usuário\n\n🆔 ID: %d\n📛 Nome: %s\n🔖 Username: %s\n🎯 Plano: %s\n📅 Cadastro: %s\n📊 Uso Mensal: %d",
		target, firstName, username, planName, formatDate(acct.JoinedAt), used)
	a.logger.Info().Int64("admin_id", ev.UserID).Int64("target_id", target).Msg("admin looked up user")
	return reply(ctx, a.deps.Sender, ev, bot.Text(text))
}

// parseLaw reads "tipo | título | conteúdo | tag1,tag2". Tags are optional.
func parseLaw(args string) (domain.LegalDocument, bool) {
	parts := strings.Split(args, "|")
	if len(parts) < 3 || len(parts) > 4 {
		return domain.LegalDocument{}, false
	}
	doc := domain.LegalDocument{
		Type:    strings.TrimSpace(parts[0]),
		Title:   strings.TrimSpace(parts[1]),
		Content: strings.TrimSpace(parts[2]),
	}
	if len(parts) == 4 {
		doc.Tags = strings.Split(parts[3], ",")
	}
	return doc, true
}

func (a *Admin) addLaw(ctx context.Context, ev bot.Event) error {
	doc, ok := parseLaw(ev.Args)
	if !ok {
		return reply(ctx, a.deps.Sender, ev, bot.Text(addLawUsageText))
	}
	stored, err := a.deps.Legal.AddDocument(ctx, doc)
	if errors.Is(err, domain.ErrInvalidInput) {
		return reply(ctx, a.deps.Sender, ev, bot.Text(addLawUsageText))
	}
	if err != nil {
		return err
	}
	text := fmt.Sprintf("✅ Documento adicionado à base legal.\n\n📚 %s (%s)\n🆔 %s", stored.Title, stored.Type, stored.ID)
	return reply(ctx, a.deps.Sender, ev, bot.Text(text))
}

func (a *Admin) broadcast(ctx context.Context, ev bot.Event) error {
	message := strings.TrimSpace(ev.Args)
	if message == "" {
		return reply(ctx, a.deps.Sender, ev, bot.Text(broadcastUsageText))
	}
	if _, err := a.deps.Conversations.Begin(ctx, ev.UserID, conversation.FlowBroadcast, map[string]string{dataMessage: message}); err != nil {
		return err
	}
	text := fmt.Sprintf("📢 CONFIRMAR BROADCAST\n\n💬 Mensagem:\n%s\n\n👥 Destinatários: Todos os usuários do sistema\n\n"+
		"⚠️ Esta ação não pode ser desfeita.\n\n%s", message, broadcastRetryText)
	return reply(ctx, a.deps.Sender, ev, bot.Text(text))
}

func (a *Admin) confirmBroadcast(ctx context.Context, ev bot.Event) (bool, error) {
	conv, ok, err := a.deps.Conversations.Current(ctx, ev.UserID)
	if err != nil {
		return true, err
	}
	if !ok || conv.Flow != conversation.FlowBroadcast {
		return false, nil
	}
	if !a.IsAdmin(ev.UserID) {
		_ = a.deps.Conversations.End(ctx, ev.UserID)
		return false, nil
	}

	switch strings.ToUpper(strings.TrimSpace(ev.Text)) {
	case "CONFIRMAR":
		if err := a.deps.Conversations.End(ctx, ev.UserID); err != nil {
			return true, err
		}
		report, err := a.Broadcast(ctx, conv.Data[dataMessage])
		if err != nil && report.Recipients == 0 {
			return true, err
		}
		rctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), reportTimeout)
		defer cancel()
		if err != nil {
			a.logger.Error().Err(err).Int64("admin_id", ev.UserID).Int("sent", report.Sent).Int("failed", report.Failed).Msg("broadcast interrupted")
			pending := report.Recipients - report.Sent - report.Failed
			return true, reply(rctx, a.deps.Sender, ev, bot.Text(fmt.Sprintf(broadcastAbortedFormat, report.Sent, report.Failed, pending)))
		}
		a.logger.Info().Int64("admin_id", ev.UserID).Int("sent", report.Sent).Int("failed", report.Failed).Msg("broadcast finished")
		return true, reply(rctx, a.deps.Sender, ev, bot.Text(fmt.Sprintf(broadcastDoneFormat, report.Sent, report.Failed)))
	case "CANCELAR":
		if err := a.deps.Conversations.End(ctx, ev.UserID); err != nil {
			return true, err
		}
		return true, reply(ctx, a.deps.Sender, ev, bot.Text(broadcastCancelledText))
	default:
		return true, reply(ctx, a.deps.Sender, ev, bot.Text(broadcastRetryText))
	}
}

// SendDigest delivers the statistics to every admin.
func (a *Admin) SendDigest(ctx context.Context) error {
	text, err := a.StatsText(ctx)
	if err != nil {
		return err
	}
	var errs []error
	for id := range a.admins {
		if _, err := a.deps.Sender.Send(ctx, id, bot.Markdown("🗓️ *Resumo diário*\n"+text)); err != nil {
			errs = append(errs, fmt.Errorf("admin %d: %w", id, err))
		}
	}
	return errors.Join(errs...)
}
