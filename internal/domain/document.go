package domain

// DocumentKind is a legal document template offered by the document creator.
type DocumentKind struct {
	Key           string
	Label         string
	Heading       string
	DetailsPrompt string
}

// DocumentKinds lists the templates in menu order.
var DocumentKinds = []DocumentKind{
	{
		Key:     "contrato_servicos",
		Label:   "📄 Contrato de Prestação de Serviços",
		Heading: "CONTRATO DE PRESTAÇÃO DE SERVIÇOS",
		DetailsPrompt: "Forneça os detalhes para o Contrato de Prestação de Serviços:\n\n" +
			"- Nomes das partes\n- Objeto do contrato\n- Valor e forma de pagamento\n- Prazo de execução\n- Outras cláusulas importantes",
	},
	{
		Key:     "notificacao",
		Label:   "📝 Notificação Extrajudicial",
		Heading: "NOTIFICAÇÃO EXTRAJUDICIAL",
		DetailsPrompt: "Forneça os detalhes para a Notificação Extrajudicial:\n\n" +
			"- Nome do destinatário\n- Endereço completo\n- Objeto da notificação\n- Prazo para cumprimento\n- Fundamentos legais",
	},
	{
		Key:     "peticao",
		Label:   "🏛️ Petição Inicial",
		Heading: "PETIÇÃO INICIAL",
		DetailsPrompt: "Forneça os detalhes para a Petição Inicial:\n\n" +
			"- Nome do autor e réu\n- Endereços completos\n- Descrição dos fatos\n- Pedidos\n- Fundamentos legais",
	},
	{
		Key:     "nda",
		Label:   "🔒 Termo de Confidencialidade",
		Heading: "TERMO DE CONFIDENCIALIDADE",
		DetailsPrompt: "Forneça os detalhes para o Termo de Confidencialidade:\n\n" +
			"- Nomes das partes\n- Objeto da confidencialidade\n- Prazo de vigência\n- Exceções à confidencialidade",
	},
}

// LookupDocumentKind finds a template by key.
func LookupDocumentKind(key string) (DocumentKind, bool) {
	for _, k := range DocumentKinds {
		if k.Key == key {
			return k, true
		}
	}
	return DocumentKind{}, false
}
