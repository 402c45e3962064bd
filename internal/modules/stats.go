package modules

import (
	"fmt"
	"strings"
	"time"

	"legalbot/internal/domain"
)

func percent(part, total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(part) / float64(total) * 100
}

// FormatStats renders admin statistics. Empty systems print zero percentages.
func FormatStats(stats *domain.SystemStats, plans []domain.PlanDefinition, now time.Time) string {
	sb := &strings.Builder{}
	fmt.Fprintf(sb, "📊 *Estatísticas do Sistema - %s*\n\n", now.UTC().Format("02/01/2006"))
	sb.WriteString("👥 *Usuários:*\n")
	fmt.Fprintf(sb, "• *Total:* %d usuários\n", stats.TotalUsers)
	for _, plan := range plans {
		n := stats.UsersByTier[plan.Tier]
		fmt.Fprintf(sb, "• %s *%s:* %d (%.1f%%)\n", plan.Emoji, plan.Name, n, percent(n, stats.TotalUsers))
	}

	average := 0.0
	if stats.TotalUsers > 0 {
		average = float64(stats.MonthlyUsage) / float64(stats.TotalUsers)
	}
	fmt.Fprintf(sb, "\n📈 *Uso em %s:*\n", stats.Period)
	fmt.Fprintf(sb, "• *Total de consultas:* %d\n", stats.MonthlyUsage)
	fmt.Fprintf(sb, "• *Média por usuário:* %.1f\n", average)

	sb.WriteString("\n📚 *Base Legal:*\n")
	fmt.Fprintf(sb, "• *Documentos armazenados:* %d\n", stats.LegalDocuments)
	sb.WriteString("\n🟢 *Status do Sistema:* Operacional")
	return sb.String()
}
