package leave

import (
	"time"

	"github.com/cmlabs-hris/leave-engine/internal/domain/leave"
	"github.com/shopspring/decimal"
)

// halfDay is the fixed charge for a half-day request.
var halfDay = decimal.New(5, -1)

// HolidaySet is a set of calendar dates. Time of day and location are ignored.
type HolidaySet map[time.Time]struct{}

// NewHolidaySet builds a set from the configured holidays. Several holidays on
// the same date collapse into one entry.
func NewHolidaySet(holidays []leave.Holiday) HolidaySet {
	set := make(HolidaySet, len(holidays))
	for _, h := range holidays {
		set[dateOf(h.HolidayDate)] = struct{}{}
	}
	return set
}

// Contains reports whether day's calendar date is a holiday.
func (s HolidaySet) Contains(day time.Time) bool {
	_, ok := s[dateOf(day)]
	return ok
}

// IsWeekend reports whether day falls on Saturday or Sunday.
func IsWeekend(day time.Time) bool {
	wd := day.Weekday()
	return wd == time.Saturday || wd == time.Sunday
}

// WorkingDayCount counts the days in the inclusive range [start, end] that are
// neither weekend days nor holidays. An inverted range yields 0.
func WorkingDayCount(start, end time.Time, holidays HolidaySet) int {
	from, to := dateOf(start), dateOf(end)
	if to.Before(from) {
		return 0
	}

	count := 0
	for day := from; !day.After(to); day = day.AddDate(0, 0, 1) {
		if IsWeekend(day) || holidays.Contains(day) {
			continue
		}
		count++
	}
	return count
}

// ResolveLeaveDays returns the number of balance units a request consumes.
// Half-day requests are charged 0.5 whatever the calendar says about the date.
func ResolveLeaveDays(start, end time.Time, isHalfDay bool, holidays HolidaySet) decimal.Decimal {
	if isHalfDay {
		return halfDay
	}
	return decimal.NewFromInt(int64(WorkingDayCount(start, end, holidays)))
}

// dateOf truncates t to its calendar date at midnight UTC.
func dateOf(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
