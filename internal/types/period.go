package types

import (
	"fmt"
	"time"
)

// Granularity is the length of an accounting period.
type Granularity string

const (
	GranularityDay   Granularity = "day"
	GranularityWeek  Granularity = "week"
	GranularityMonth Granularity = "month"
)

// Period is the half-open time window [Start, End) with a stable key.
//
// The key identifies the period in fencing tokens and alert deduplication,
// e.g. "2024-03-05", "2024-W10" or "2024-03".
type Period struct {
	Key   string    `json:"key" example:"2024-03"`
	Start time.Time `json:"start" example:"2024-03-01T00:00:00Z"`
	End   time.Time `json:"end" example:"2024-04-01T00:00:00Z"`
}

// PeriodOf returns the period of the given granularity that contains t.
func PeriodOf(t time.Time, g Granularity) Period {
	t = t.In(time.UTC)
	day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)

	switch g {
	case GranularityDay:
		return Period{
			Key:   day.Format("2006-01-02"),
			Start: day,
			End:   day.AddDate(0, 0, 1),
		}
	case GranularityWeek:
		// ISO weeks start on Monday
		offset := (int(day.Weekday()) + 6) % 7
		start := day.AddDate(0, 0, -offset)
		year, week := start.ISOWeek()
		return Period{
			Key:   fmt.Sprintf("%04d-W%02d", year, week),
			Start: start,
			End:   start.AddDate(0, 0, 7),
		}
	default:
		month := MonthOf(t)
		return Period{
			Key:   month.String(),
			Start: month.Time(),
			End:   month.AddDate(0, 1).Time(),
		}
	}
}

// RangeKey returns a key for an arbitrary [start, end) window.
func RangeKey(start, end time.Time) string {
	return fmt.Sprintf("%s/%s", start.In(time.UTC).Format("2006-01-02"), end.In(time.UTC).Format("2006-01-02"))
}

// Contains reports whether t is inside the period.
func (p Period) Contains(t time.Time) bool {
	return !t.Before(p.Start) && t.Before(p.End)
}
