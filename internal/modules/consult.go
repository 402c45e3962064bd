package modules

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"legalbot/internal/bot"
	"legalbot/internal/legal"
	"legalbot/internal/providers/prompt"
)

const (
	consultUsageText = "💬 Digite sua consulta jurídica após o comando:\n" +
		"Ex: /consultar Qual o prazo para entrada de recurso em ação trabalhista?"
	consultPendingText = "🔍 Consultando base legal..."
	consultFailedText  = "❌ Ocorreu um erro na consulta. Tente novamente mais tarde."
	searchUsageText    = "🔍 Uso: /buscar [termo]\n\nExemplo: /buscar rescisão contratual"
	searchEmptyText    = "🔍 Nenhum documento encontrado na base legal para esse termo."
)

// legalKeywords mark free text as a legal question. Some carry a trailing space to avoid matching prefixes of longer words.
var legalKeywords = []string{"lei ", "direito ", "jurídico", "processo", "recurso", "contrato", "penal", "trabalhista"}

func isLegalQuestion(text string) bool {
	lower := strings.ToLower(text) + " "
	for _, kw := range legalKeywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

// Consult answers legal questions through /consultar and keyword free text.
type Consult struct {
	deps   Deps
	logger zerolog.Logger
}

func NewConsult(d Deps) *Consult { return &Consult{deps: d, logger: d.logger("consult")} }

func (c *Consult) Name() string { return "consult" }

func (c *Consult) Register(r *bot.Registry) error {
	if err := r.Command("consultar", c.command); err != nil {
		return err
	}
	if err := r.Command("buscar", c.search); err != nil {
		return err
	}
	r.Text(c.freeText)
	return nil
}

func (c *Consult) command(ctx context.Context, ev bot.Event) error {
	ok, err := c.deps.Entitlement.MayConsume(ctx, ev.UserID)
	if err != nil {
		return err
	}
	if !ok {
		return reply(ctx, c.deps.Sender, ev, bot.Text(limitExceededText))
	}
	if ev.Args == "" {
		return reply(ctx, c.deps.Sender, ev, bot.Text(consultUsageText))
	}
	return c.answer(ctx, ev, ev.Args)
}

func (c *Consult) freeText(ctx context.Context, ev bot.Event) (bool, error) {
	if !isLegalQuestion(ev.Text) {
		return false, nil
	}
	ok, err := c.deps.Entitlement.MayConsume(ctx, ev.UserID)
	if err != nil {
		return true, err
	}
	if !ok {
		return true, reply(ctx, c.deps.Sender, ev, bot.Text("❌ Você excedeu seu limite de consultas gratuitas. Use /planos para upgrade."))
	}
	return true, c.answer(ctx, ev, ev.Text)
}

func (c *Consult) answer(ctx context.Context, ev bot.Event, question string) error {
	pendingID, err := c.deps.Sender.Send(ctx, ev.ChatID, bot.Text(consultPendingText))
	if err != nil {
		return err
	}
	snap, err := c.deps.Entitlement.Account(ctx, ev.UserID)
	if err != nil {
		return err
	}

	answer, err := c.deps.Legal.Answer(ctx, question, snap.Plan)
	if err != nil {
		c.logger.Error().Err(err).Int64("user_id", ev.UserID).Msg("legal consult failed")
		return c.deps.Sender.Edit(ctx, ev.ChatID, pendingID, bot.Text(consultFailedText))
	}
	if err := c.deps.Entitlement.Record(ctx, ev.UserID); err != nil {
		c.logger.Error().Err(err).Int64("user_id", ev.UserID).Msg("consult answered but usage not recorded")
	}

	text := fmt.Sprintf("⚖️ *Consulta Jurídica*\n\n*Pergunta:* %s\n\n*Resposta:*\n%s", question, answer)
	return c.deps.Sender.Edit(ctx, ev.ChatID, pendingID, bot.Markdown(text))
}

func (c *Consult) search(ctx context.Context, ev bot.Event) error {
	if ev.Args == "" {
		return reply(ctx, c.deps.Sender, ev, bot.Text(searchUsageText))
	}
	refs, err := c.deps.Legal.SearchReferences(ctx, ev.Args, legal.MaxReferences)
	if err != nil {
		return err
	}
	if len(refs) == 0 {
		return reply(ctx, c.deps.Sender, ev, bot.Text(searchEmptyText))
	}
	sb := &strings.Builder{}
	fmt.Fprintf(sb, "🔍 *Resultados para:* %s\n\n", ev.Args)
	for i, ref := range refs {
		fmt.Fprintf(sb, "%d. *%s* (%s)\n   %s\n\n", i+1, ref.Title, ref.Type, prompt.Excerpt(ref.Content, 120))
	}
	return reply(ctx, c.deps.Sender, ev, bot.Markdown(strings.TrimRight(sb.String(), "\n")))
}
