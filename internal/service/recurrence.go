package service

import (
	"time"

	"github.com/upkeepworks/property-maintenance/internal/models"
)

// NextDueDate computes when a schedule is next due, given its anchor date
// and recurrence settings. Month-based frequencies use calendar-correct
// arithmetic: the day of month is preserved where the target month has it
// and clamped to the month's last day otherwise, so Jan 31 + 1 month is
// Feb 28 (29 in leap years), never Mar 3.
//
// For a custom frequency with a missing interval or unit the anchor is
// returned unchanged. The result never precedes the anchor.
func NextDueDate(anchor time.Time, frequency models.Frequency, customInterval int, customUnit models.FrequencyUnit) time.Time {
	var next time.Time
	switch frequency {
	case models.FrequencyDaily:
		next = anchor.AddDate(0, 0, 1)
	case models.FrequencyWeekly:
		next = anchor.AddDate(0, 0, 7)
	case models.FrequencyMonthly:
		next = addMonths(anchor, 1)
	case models.FrequencyQuarterly:
		next = addMonths(anchor, 3)
	case models.FrequencySemiAnnually:
		next = addMonths(anchor, 6)
	case models.FrequencyAnnually:
		next = addMonths(anchor, 12)
	case models.FrequencyCustom:
		if customInterval <= 0 || customUnit == "" {
			return anchor
		}
		switch customUnit {
		case models.UnitDays:
			next = anchor.AddDate(0, 0, customInterval)
		case models.UnitWeeks:
			next = anchor.AddDate(0, 0, 7*customInterval)
		case models.UnitMonths:
			next = addMonths(anchor, customInterval)
		case models.UnitYears:
			next = addMonths(anchor, 12*customInterval)
		default:
			return anchor
		}
	default:
		return anchor
	}

	if next.Before(anchor) {
		return anchor
	}
	return next
}

// addMonths adds n calendar months, clamping the day of month to the last
// day of the target month instead of letting time.AddDate normalize past it.
func addMonths(t time.Time, n int) time.Time {
	year, month, day := t.Date()
	hour, min, sec := t.Clock()

	first := time.Date(year, month+time.Month(n), 1, hour, min, sec, t.Nanosecond(), t.Location())
	if last := daysInMonth(first.Year(), first.Month()); day > last {
		day = last
	}
	return time.Date(first.Year(), first.Month(), day, hour, min, sec, t.Nanosecond(), t.Location())
}

func daysInMonth(year int, month time.Month) int {
	// Day 0 of the next month is the last day of this one.
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}
