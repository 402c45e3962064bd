package modules

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"legalbot/internal/bot"
	"legalbot/internal/conversation"
	"legalbot/internal/domain"
)

const (
	docPrefix = "doc_"
	dataKind  = "kind"

	creatorDeniedText  = "❌ Criação de documentos é exclusiva para assinantes Premium e Enterprise.\n\nUse /planos para upgrade."
	creatorMenuText    = "📋 Selecione o tipo de documento que deseja criar:"
	creatorExpiredText = "⚠️ Esta seleção expirou. Use /criardocumento para começar novamente."
	creatorPickText    = "📋 Selecione o tipo de documento no menu acima ou use /cancelar."
	creatorPendingText = "📝 Gerando documento..."
	creatorFailedText  = "❌ Não foi possível gerar o documento agora. Envie os detalhes novamente ou use /cancelar."
	creatorCancelText  = "❌ Criação de documento cancelada."
	nothingToCancel    = "ℹ️ Nenhuma operação em andamento."
)

// Creator drafts legal documents through a two-step conversation.
type Creator struct {
	deps   Deps
	logger zerolog.Logger
}

func NewCreator(d Deps) *Creator { return &Creator{deps: d, logger: d.logger("creator")} }

func (c *Creator) Name() string { return "document_creator" }

func (c *Creator) Register(r *bot.Registry) error {
	if err := r.Command("criardocumento", c.start); err != nil {
		return err
	}
	if err := r.Command("cancelar", c.cancel); err != nil {
		return err
	}
	if err := r.Callback(docPrefix, c.selectKind); err != nil {
		return err
	}
	r.Conversation(c.details)
	return nil
}

func (c *Creator) start(ctx context.Context, ev bot.Event) error {
	ok, err := c.deps.Entitlement.MayPerform(ctx, ev.UserID, domain.CapabilityDocumentCreation)
	if err != nil {
		return err
	}
	if !ok {
		return reply(ctx, c.deps.Sender, ev, bot.Text(creatorDeniedText))
	}
	if _, err := c.deps.Conversations.Begin(ctx, ev.UserID, conversation.FlowDocument, nil); err != nil {
		return err
	}

	keyboard := make([][]bot.Button, 0, len(domain.DocumentKinds))
	for _, kind := range domain.DocumentKinds {
		keyboard = append(keyboard, []bot.Button{{Text: kind.Label, Data: docPrefix + kind.Key}})
	}
	return reply(ctx, c.deps.Sender, ev, bot.Reply{Text: creatorMenuText, Keyboard: keyboard})
}

func (c *Creator) selectKind(ctx context.Context, ev bot.Event) error {
	if err := c.deps.Sender.AnswerCallback(ctx, ev.CallbackID, ""); err != nil {
		return err
	}
	kind, ok := domain.LookupDocumentKind(strings.TrimPrefix(ev.CallbackData, docPrefix))
	if !ok {
		return c.deps.Sender.Edit(ctx, ev.ChatID, ev.MessageID, bot.Text(creatorExpiredText))
	}
	_, err := c.deps.Conversations.Advance(ctx, ev.UserID,
		conversation.StateAwaitingDocType, conversation.StateAwaitingDetails,
		map[string]string{dataKind: kind.Key})
	if errors.Is(err, conversation.ErrInvalidTransition) {
		return c.deps.Sender.Edit(ctx, ev.ChatID, ev.MessageID, bot.Text(creatorExpiredText))
	}
	if err != nil {
		return err
	}
	text := fmt.Sprintf("📝 %s\n\nDigite todas as informações solicitadas em uma única mensagem:", kind.DetailsPrompt)
	return c.deps.Sender.Edit(ctx, ev.ChatID, ev.MessageID, bot.Text(text))
}

func (c *Creator) details(ctx context.Context, ev bot.Event) (bool, error) {
	conv, ok, err := c.deps.Conversations.Current(ctx, ev.UserID)
	if err != nil {
		return true, err
	}
	if !ok || conv.Flow != conversation.FlowDocument {
		return false, nil
	}
	if conv.State == conversation.StateAwaitingDocType {
		return true, reply(ctx, c.deps.Sender, ev, bot.Text(creatorPickText))
	}

	kind, found := domain.LookupDocumentKind(conv.Data[dataKind])
	if !found {
		_ = c.deps.Conversations.End(ctx, ev.UserID)
		return true, reply(ctx, c.deps.Sender, ev, bot.Text(creatorExpiredText))
	}
	allowed, err := c.deps.Entitlement.MayPerform(ctx, ev.UserID, domain.CapabilityDocumentCreation)
	if err != nil {
		return true, err
	}
	if !allowed {
		_ = c.deps.Conversations.End(ctx, ev.UserID)
		return true, reply(ctx, c.deps.Sender, ev, bot.Text(creatorDeniedText))
	}

	pendingID, err := c.deps.Sender.Send(ctx, ev.ChatID, bot.Text(creatorPendingText))
	if err != nil {
		return true, err
	}
	content, err := c.deps.Legal.DraftDocument(ctx, kind, ev.Text)
	if err != nil {
		c.logger.Error().Err(err).Str("kind", kind.Key).Msg("document draft failed")
		return true, c.deps.Sender.Edit(ctx, ev.ChatID, pendingID, bot.Text(creatorFailedText))
	}
	if err := c.deps.Entitlement.Record(ctx, ev.UserID); err != nil {
		c.logger.Error().Err(err).Int64("user_id", ev.UserID).Msg("draft generated but usage not recorded")
	}
	// A conversation left behind expires with its TTL.
	if err := c.deps.Conversations.End(ctx, ev.UserID); err != nil {
		c.logger.Warn().Err(err).Int64("user_id", ev.UserID).Msg("draft conversation not cleared")
	}
	c.logger.Info().Int64("user_id", ev.UserID).Str("kind", kind.Key).Msg("document drafted")

	text := fmt.Sprintf("✅ Documento gerado com sucesso!\n\n📄 Conteúdo:\n\n%s\n\n"+
		"_Nota: Este é um documento gerado automaticamente. Recomendamos consultar um advogado para validação._", content)
	return true, c.deps.Sender.Edit(ctx, ev.ChatID, pendingID, bot.Markdown(text))
}

// cancel ends whatever conversation the user is in.
func (c *Creator) cancel(ctx context.Context, ev bot.Event) error {
	conv, ok, err := c.deps.Conversations.Current(ctx, ev.UserID)
	if err != nil {
		return err
	}
	if !ok {
		return reply(ctx, c.deps.Sender, ev, bot.Text(nothingToCancel))
	}
	if err := c.deps.Conversations.End(ctx, ev.UserID); err != nil {
		return err
	}
	text := creatorCancelText
	if conv.Flow == conversation.FlowBroadcast {
		text = broadcastCancelledText
	}
	return reply(ctx, c.deps.Sender, ev, bot.Text(text))
}
