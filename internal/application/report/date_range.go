package report

import (
	"strings"
	"time"

	"github.com/stockroom/backend/internal/domain/report"
	"github.com/stockroom/backend/internal/domain/shared"
)

const dateOnlyLayout = "2006-01-02"

// ParseDateRange parses query dates given as RFC3339 timestamps or YYYY-MM-DD
// dates. A date-only end covers the whole day.
func ParseDateRange(start, end string) (report.DateRange, error) {
	from, _, err := parseDate(start)
	if err != nil {
		return report.DateRange{}, err
	}
	to, dateOnly, err := parseDate(end)
	if err != nil {
		return report.DateRange{}, err
	}
	if dateOnly {
		to = to.AddDate(0, 0, 1).Add(-time.Nanosecond)
	}
	return report.NewDateRange(from, to)
}

func parseDate(s string) (time.Time, bool, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false, errInvalidRange()
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, false, nil
	}
	t, err := time.Parse(dateOnlyLayout, s)
	if err != nil {
		return time.Time{}, false, errInvalidRange()
	}
	return t, true, nil
}

func errInvalidRange() error {
	return shared.NewDomainError("INVALID_DATE_RANGE", "Invalid report type or date range")
}
