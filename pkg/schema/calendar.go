package schema

import "time"

// YearsBefore returns the calendar date n years before now, keeping month and
// day. A Feb 29 that does not exist in the target year clamps to Feb 28; the
// result never rolls into the following month.
func YearsBefore(now time.Time, n int) time.Time {
	year, month, day := now.Date()
	target := year - n
	if last := daysIn(target, month); day > last {
		day = last
	}
	return time.Date(target, month, day, 0, 0, 0, 0, time.UTC)
}

// AdultCutoff is the DateBound used for "must be at least age years old".
func AdultCutoff(age int) DateBound {
	return func(now time.Time) time.Time {
		return YearsBefore(now, age)
	}
}

func daysIn(year int, month time.Month) int {
	// Day zero of the next month normalises to the last day of month.
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}
