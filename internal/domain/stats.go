package domain

// SystemStats aggregates account and usage counters for administrators.
type SystemStats struct {
	Period         PeriodKey
	TotalUsers     int
	UsersByTier    map[Tier]int
	MonthlyUsage   int
	LegalDocuments int
}
