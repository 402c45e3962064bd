package domain

import (
	"fmt"
	"time"
)

// PeriodKey identifies a calendar month in UTC.
type PeriodKey struct {
	Month int
	Year  int
}

// PeriodOf returns the UTC calendar month containing t.
func PeriodOf(t time.Time) PeriodKey {
	u := t.UTC()
	return PeriodKey{Month: int(u.Month()), Year: u.Year()}
}

func (p PeriodKey) String() string {
	return fmt.Sprintf("%04d-%02d", p.Year, p.Month)
}

// UsageRecord counts consumption events for one user in one period.
type UsageRecord struct {
	TelegramID int64
	Period     PeriodKey
	Count      int
}
