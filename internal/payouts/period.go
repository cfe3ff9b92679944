package payouts

import (
	"time"

	pkgerrors "github.com/aldomartell/tipply-backend/pkg/errors"
)

// Period is one inclusive reporting week, Saturday 00:00:00 UTC through
// Friday 23:59:59.999 UTC.
type Period struct {
	Start time.Time
	End   time.Time
}

// ResolvePeriod returns the reporting period for a batch run. With no
// overrides it resolves to the most recently completed week: the previous
// Saturday through the Friday just gone. Overrides must come as a pair with
// start strictly before end.
func ResolvePeriod(now time.Time, start, end *time.Time) (Period, error) {
	if start == nil && end == nil {
		return defaultPeriod(now), nil
	}
	if start == nil || end == nil {
		return Period{}, pkgerrors.New(pkgerrors.CodeValidation, "period override requires both start and end")
	}
	s := start.UTC()
	e := end.UTC()
	if !s.Before(e) {
		return Period{}, pkgerrors.New(pkgerrors.CodeValidation, "period start must be before period end")
	}
	return Period{Start: s, End: e}, nil
}

func defaultPeriod(now time.Time) Period {
	now = now.UTC()
	midnight := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)

	// days back to the previous Saturday; a run on Saturday itself reports
	// on the week that just closed, not the week starting today
	offset := (int(now.Weekday()) - int(time.Saturday) + 7) % 7
	if offset == 0 {
		offset = 7
	}

	start := midnight.AddDate(0, 0, -offset)
	end := start.Add(7*24*time.Hour - time.Millisecond)
	return Period{Start: start, End: end}
}
