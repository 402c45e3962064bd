package modules

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"legalbot/internal/bot"
)

const helpText = `🆘 *Central de Ajuda - Assistente Jurídico*

⚖️ *COMANDOS PRINCIPAIS:*

📄 /analisar - Analise documentos (PDF, TXT, DOCX)
   _Exemplo: envie um documento ou use /analisar_

📝 /criardocumento - Crie documentos jurídicos
   _Tipos: Contratos, Notificações, Petições, NDAs_

💬 /consultar [sua pergunta] - Consulta à base legal
   _Exemplo: /consultar Qual prazo para entrar com recurso?_

🔍 /buscar [termo] - Busca na base de leis e jurisprudência

📊 *COMANDOS DE CONTA:*

👤 /minhaconta - Ver seus dados e uso mensal
💼 /planos - Ver planos de assinatura disponíveis

🛠️ *OUTROS COMANDOS:*

ℹ️ /sobre - Informações sobre o bot
🔄 /status - Status do sistema e sua conta
❌ /cancelar - Cancelar a criação de um documento
🆘 /help - Esta mensagem de ajuda

💡 *DICA:* Você também pode digitar perguntas diretamente!
O bot reconhece automaticamente consultas jurídicas.`

const aboutText = `🤖 *Sobre o Assistente Jurídico IA*

⚖️ *Missão:*
Democratizar o acesso à assessoria jurídica através de inteligência artificial.

🛠️ *Tecnologia:*
• *IA Gemini* - Análise inteligente de documentos
• *Base Legal* - Banco de dados com legislação brasileira
• *Sistema Modular* - Expansível e atualizável
• *PostgreSQL* - Armazenamento seguro de dados

📚 *Base de Conhecimento:*
• Constituição Federal e emendas
• Códigos Civil, Penal, Trabalhista
• Leis esparsas e complementares
• Jurisprudência dos tribunais

🔒 *Segurança e Privacidade:*
• Conformidade com LGPD
• Acesso restrito

📞 *Suporte:* ` + contactEmail

// Utility serves /start, /help, /sobre and /status.
type Utility struct {
	deps   Deps
	logger zerolog.Logger
}

func NewUtility(d Deps) *Utility {
	return &Utility{deps: d, logger: d.logger("utility")}
}

func (u *Utility) Name() string { return "utility" }

func (u *Utility) Register(r *bot.Registry) error {
	for name, h := range map[string]bot.HandlerFunc{
		"start":  u.start,
		"help":   u.help,
		"sobre":  u.about,
		"status": u.status,
	} {
		if err := r.Command(name, h); err != nil {
			return err
		}
	}
	return nil
}

func (u *Utility) start(ctx context.Context, ev bot.Event) error {
	if err := u.deps.Entitlement.RegisterIfAbsent(ctx, ev.UserID, ev.Username, ev.FirstName); err != nil {
		return err
	}
	u.logger.Info().Int64("user_id", ev.UserID).Msg("user started the bot")

	name := ev.FirstName
	if name == "" {
		name = "tudo bem"
	}
	text := fmt.Sprintf(`👋 Olá, %s!

🤖 Bem-vindo ao *Assistente Jurídico IA* - seu parceiro inteligente para questões legais.

⚖️ *Recursos Disponíveis:*

📄 /analisar - Analise documentos jurídicos com IA
📝 /criardocumento - Crie documentos jurídicos personalizados
💬 /consultar - Consulte nossa base legal completa
📊 /minhaconta - Veja seu uso e assinatura
💼 /planos - Conheça nossos planos de assinatura

🎯 *Exemplos de uso:*
• Envie um documento para análise jurídica
• Consulte sobre prazos processuais
• Crie contratos e petições
• Analise cláusulas contratuais

Digite /help para ver todos os comandos disponíveis.`, name)
	return reply(ctx, u.deps.Sender, ev, bot.Markdown(text))
}

func (u *Utility) help(ctx context.Context, ev bot.Event) error {
	return reply(ctx, u.deps.Sender, ev, bot.Markdown(helpText))
}

func (u *Utility) about(ctx context.Context, ev bot.Event) error {
	return reply(ctx, u.deps.Sender, ev, bot.Markdown(aboutText))
}

func (u *Utility) status(ctx context.Context, ev bot.Event) error {
	snap, err := u.deps.Entitlement.Account(ctx, ev.UserID)
	if err != nil {
		return err
	}
	state := "✅ Ativa"
	if !snap.MayConsume {
		state = "❌ Expirada/Limite"
	}
	usage := fmt.Sprintf("%d", snap.Used)
	if !snap.Plan.Unlimited() {
		usage = fmt.Sprintf("%d de %d", snap.Used, snap.Plan.Limit())
	}

	text := fmt.Sprintf(`📊 *Status da Sua Conta*

👤 *Usuário:* %s
📅 *Membro desde:* %s
🎯 *Plano:* %s %s
📈 *Consultas este mês:* %s
🔔 *Status:* %s

🤖 *Status do Sistema:*
✅ Bot Online
✅ Base Legal Ativa
✅ IA Gemini Operacional

💡 *Próximos Passos:*
• Use /analisar para documentos
• Use /consultar para dúvidas
• Use /planos para upgrade`,
		ev.FirstName, formatDate(snap.JoinedAt), snap.Plan.Emoji, snap.Plan.Name, usage, state)
	return reply(ctx, u.deps.Sender, ev, bot.Markdown(text))
}
