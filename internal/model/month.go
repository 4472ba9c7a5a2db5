package model

import (
	"fmt"
	"time"
)

// Month identifies one calendar month. Contracts, folders and visit
// quotas are all keyed on it.
type Month struct {
	Year  int
	Month time.Month
}

func MonthOf(t time.Time) Month {
	return Month{Year: t.Year(), Month: t.Month()}
}

// ParseMonth accepts the "2006-01" form used across the API.
func ParseMonth(raw string) (Month, error) {
	t, err := time.Parse("2006-01", raw)
	if err != nil {
		return Month{}, fmt.Errorf("invalid month %q", raw)
	}
	return MonthOf(t), nil
}

func (m Month) IsZero() bool {
	return m.Year == 0 && m.Month == 0
}

func (m Month) String() string {
	return fmt.Sprintf("%04d-%02d", m.Year, int(m.Month))
}

// FolderName renders the month folder label, e.g. "2025-01 (January)".
func (m Month) FolderName() string {
	return fmt.Sprintf("%s (%s)", m.String(), m.Month.String())
}

// First returns midnight UTC on the first day of the month.
func (m Month) First() time.Time {
	return time.Date(m.Year, m.Month, 1, 0, 0, 0, 0, time.UTC)
}

func (m Month) Next() Month {
	return MonthOf(m.First().AddDate(0, 1, 0))
}

func (m Month) Before(other Month) bool {
	return m.Year < other.Year || (m.Year == other.Year && m.Month < other.Month)
}

func (m Month) After(other Month) bool {
	return other.Before(m)
}

// MonthsBetween returns every month from first day of start through end
// inclusive. An inverted range yields nil.
func MonthsBetween(start, end time.Time) []Month {
	from := MonthOf(start)
	to := MonthOf(end)
	if to.Before(from) {
		return nil
	}
	var months []Month
	for m := from; !m.After(to); m = m.Next() {
		months = append(months, m)
	}
	return months
}
