package timeseries

import (
	"fmt"
	"strings"
	"time"
)

// Period represents the calendar granularity used for bucketing and
// forecasting.
type Period int

const (
	// Month buckets by calendar month start.
	Month Period = iota
	// Quarter buckets by calendar quarter start.
	Quarter
	// Year buckets by calendar year start.
	Year
)

// String returns the string representation of the period
func (p Period) String() string {
	switch p {
	case Month:
		return "month"
	case Quarter:
		return "quarter"
	case Year:
		return "year"
	default:
		return "unknown"
	}
}

// ParsePeriod parses a period name ("month", "quarter", "year"; the
// single-letter aliases M/Q/Y are accepted too).
func ParsePeriod(s string) (Period, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "month", "monthly", "m":
		return Month, nil
	case "quarter", "quarterly", "q":
		return Quarter, nil
	case "year", "yearly", "y":
		return Year, nil
	default:
		return Month, fmt.Errorf("unknown period: %q", s)
	}
}

// BucketStart truncates a date to the start of its containing period.
func (p Period) BucketStart(t time.Time) time.Time {
	switch p {
	case Quarter:
		quarterMonth := time.Month((int(t.Month())-1)/3*3 + 1)
		return time.Date(t.Year(), quarterMonth, 1, 0, 0, 0, 0, time.UTC)
	case Year:
		return time.Date(t.Year(), time.January, 1, 0, 0, 0, 0, time.UTC)
	default:
		return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
	}
}

// Next returns the start of the period following the given bucket
// start.
func (p Period) Next(t time.Time) time.Time {
	switch p {
	case Quarter:
		return t.AddDate(0, 3, 0)
	case Year:
		return t.AddDate(1, 0, 0)
	default:
		return t.AddDate(0, 1, 0)
	}
}

// Label renders the display label for a bucket start: "Jan 2006" for
// months, "Q1 2006" for quarters, "2006" for years.
func (p Period) Label(t time.Time) string {
	switch p {
	case Quarter:
		return fmt.Sprintf("Q%d %d", (int(t.Month())-1)/3+1, t.Year())
	case Year:
		return t.Format("2006")
	default:
		return t.Format("Jan 2006")
	}
}
