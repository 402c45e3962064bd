package prompt

import (
	"fmt"
	"strings"

	"legalbot/internal/domain"
)

const (
	// SystemLegalAssistant is the persona shared by every legal prompt.
	SystemLegalAssistant = "Você é um assistente jurídico especializado em direito brasileiro. Responda sempre em português, de forma clara e estruturada."

	excerptRunes      = 200
	limitedReferences = 2
	upgradeNote       = "*Assine o Premium para acesso completo à base legal.*"
)

// LegalContext renders search hits for the consult prompt. Plans without full context
// see at most two titles when more matched.
func LegalContext(refs []domain.LegalReference, fullContext bool) string {
	if len(refs) == 0 {
		return ""
	}

	sb := &strings.Builder{}
	if !fullContext && len(refs) > limitedReferences {
		sb.WriteString("Referências Legais (limitadas no plano Free):\n")
		for _, ref := range refs[:limitedReferences] {
			fmt.Fprintf(sb, "- %s\n", ref.Title)
		}
		sb.WriteString("\n" + upgradeNote + "\n\n")
		return sb.String()
	}

	sb.WriteString("Referências Legais Encontradas:\n")
	for _, ref := range refs {
		fmt.Fprintf(sb, "- %s: %s...\n\n", ref.Title, Excerpt(ref.Content, excerptRunes))
	}
	return sb.String()
}

// Consult builds the question-answering prompt.
func Consult(question, legalContext string) string {
	sb := &strings.Builder{}
	sb.WriteString("Use o contexto legal abaixo para responder à questão do usuário.\n\n")
	if legalContext != "" {
		sb.WriteString(legalContext)
		sb.WriteString("\n")
	}
	fmt.Fprintf(sb, "Questão: %s\n\n", strings.TrimSpace(question))
	sb.WriteString("Forneça uma resposta:\n")
	sb.WriteString("1. **Resposta Direta**: Responda objetivamente.\n")
	sb.WriteString("2. **Fundamentação**: Baseie-se na legislação e jurisprudência.\n")
	sb.WriteString("3. **Próximos Passos**: Oriente sobre ações possíveis.\n")
	return sb.String()
}

// Analysis builds the document review prompt.
func Analysis(fileName, content string) string {
	sb := &strings.Builder{}
	sb.WriteString("Analise o documento fornecido e forneça:\n\n")
	sb.WriteString("1. **Resumo Executivo**: Um breve resumo do documento.\n")
	sb.WriteString("2. **Pontos Críticos**: Identifique pontos que necessitam de atenção jurídica.\n")
	sb.WriteString("3. **Recomendações**: Sugestões de melhorias ou ajustes.\n")
	sb.WriteString("4. **Referências Legais**: Indique leis ou jurisprudências aplicáveis.\n\n")
	if fileName != "" {
		fmt.Fprintf(sb, "Arquivo: %s\n\n", fileName)
	}
	sb.WriteString("Documento:\n")
	sb.WriteString(content)
	return sb.String()
}

// Draft builds the document generation prompt for a template kind.
func Draft(kind domain.DocumentKind, details string) string {
	sb := &strings.Builder{}
	fmt.Fprintf(sb, "Redija um documento do tipo \"%s\" conforme a legislação brasileira vigente.\n", kind.Heading)
	sb.WriteString("Use linguagem jurídica formal, numere as cláusulas e deixe campos ausentes como [PREENCHER].\n")
	fmt.Fprintf(sb, "Comece pelo título %s.\n\n", kind.Heading)
	sb.WriteString("Informações fornecidas pelo usuário:\n")
	sb.WriteString(strings.TrimSpace(details))
	return sb.String()
}
