package modules

import (
	"context"
	"errors"
	"fmt"
	"path"
	"strings"
	"unicode/utf8"

	"github.com/rs/zerolog"

	"legalbot/internal/bot"
	"legalbot/internal/domain"
)

// MaxDocumentBytes bounds uploads accepted for analysis.
const MaxDocumentBytes = 5 << 20

const (
	analyzeAskText      = "📄 Por favor, envie o documento que deseja analisar. Formatos suportados: PDF, TXT ou DOCX."
	unsupportedText     = "❌ Formato não suportado. Envie um arquivo PDF, TXT ou DOCX."
	tooLargeText        = "❌ Arquivo muito grande. O limite é de 5 MB."
	analyzePendingText  = "📄 Analisando documento..."
	analyzeFailedText   = "❌ Ocorreu um erro ao analisar o documento. Tente novamente."
	invalidEncodingText = "❌ Não foi possível ler o arquivo. Envie um TXT codificado em UTF-8."
)

var supportedExtensions = map[string]bool{"pdf": true, "txt": true, "docx": true}

// Analyzer reviews uploaded documents.
type Analyzer struct {
	deps   Deps
	logger zerolog.Logger
}

func NewAnalyzer(d Deps) *Analyzer { return &Analyzer{deps: d, logger: d.logger("analyzer")} }

func (a *Analyzer) Name() string { return "document_analyzer" }

func (a *Analyzer) Register(r *bot.Registry) error {
	if err := r.Command("analisar", a.command); err != nil {
		return err
	}
	return r.Document(a.document)
}

func (a *Analyzer) command(ctx context.Context, ev bot.Event) error {
	ok, err := a.deps.Entitlement.MayConsume(ctx, ev.UserID)
	if err != nil {
		return err
	}
	if !ok {
		return reply(ctx, a.deps.Sender, ev, bot.Text(limitExceededText))
	}
	if ev.Document == nil {
		return reply(ctx, a.deps.Sender, ev, bot.Text(analyzeAskText))
	}
	return a.document(ctx, ev)
}

func extension(name string) string {
	return strings.ToLower(strings.TrimPrefix(path.Ext(name), "."))
}

// extractText returns the text handed to the model. Only plain text is read; other formats get a notice.
func extractText(fileName, ext string, data []byte) (string, error) {
	if ext != "txt" {
		return fmt.Sprintf("Conteúdo do arquivo %s (formato %s) não pode ser lido nesta versão. Em breve, suporte completo.", fileName, ext), nil
	}
	if !utf8.Valid(data) {
		return "", fmt.Errorf("%w: %s is not valid UTF-8", domain.ErrUnsupportedDocument, fileName)
	}
	return strings.TrimPrefix(string(data), "\ufeff"), nil
}

func (a *Analyzer) document(ctx context.Context, ev bot.Event) error {
	ok, err := a.deps.Entitlement.MayConsume(ctx, ev.UserID)
	if err != nil {
		return err
	}
	if !ok {
		return reply(ctx, a.deps.Sender, ev, bot.Text(limitExceededText))
	}

	doc := ev.Document
	ext := extension(doc.FileName)
	if !supportedExtensions[ext] {
		return reply(ctx, a.deps.Sender, ev, bot.Text(unsupportedText))
	}
	if doc.Size > MaxDocumentBytes {
		return reply(ctx, a.deps.Sender, ev, bot.Text(tooLargeText))
	}

	var content string
	if ext == "txt" {
		data, err := a.deps.Sender.Download(ctx, doc.FileID, MaxDocumentBytes)
		if err != nil {
			a.logger.Warn().Err(err).Str("file", doc.FileName).Msg("document download failed")
			return reply(ctx, a.deps.Sender, ev, bot.Text(analyzeFailedText))
		}
		if content, err = extractText(doc.FileName, ext, data); err != nil {
			if errors.Is(err, domain.ErrUnsupportedDocument) {
				return reply(ctx, a.deps.Sender, ev, bot.Text(invalidEncodingText))
			}
			return err
		}
	} else {
		content, _ = extractText(doc.FileName, ext, nil)
	}

	pendingID, err := a.deps.Sender.Send(ctx, ev.ChatID, bot.Text(analyzePendingText))
	if err != nil {
		return err
	}
	analysis, err := a.deps.Legal.AnalyzeDocument(ctx, doc.FileName, content)
	if err != nil {
		a.logger.Error().Err(err).Str("file", doc.FileName).Msg("document analysis failed")
		return a.deps.Sender.Edit(ctx, ev.ChatID, pendingID, bot.Text(analyzeFailedText))
	}
	if err := a.deps.Entitlement.Record(ctx, ev.UserID); err != nil {
		a.logger.Error().Err(err).Int64("user_id", ev.UserID).Msg("analysis done but usage not recorded")
	}
	a.logger.Info().Int64("user_id", ev.UserID).Str("ext", ext).Int("chars", utf8.RuneCountInString(content)).Msg("document analyzed")
	return a.deps.Sender.Edit(ctx, ev.ChatID, pendingID, bot.Markdown("📊 *Análise do Documento*\n\n"+analysis))
}
