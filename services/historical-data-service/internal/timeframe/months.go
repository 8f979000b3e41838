package timeframe

import "time"

// AddMonths shifts t by n calendar months. The day of month is clamped to the
// length of the target month (Jan 31 + 1 month = Feb 28/29) and the time of day
// is kept.
func AddMonths(t time.Time, n int) time.Time {
	year, month, day := t.Date()

	idx := int(month) - 1 + n
	year += idx / 12
	idx %= 12
	if idx < 0 {
		idx += 12
		year--
	}
	target := time.Month(idx + 1)

	if last := daysIn(year, target, t.Location()); day > last {
		day = last
	}

	return time.Date(year, target, day, t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
}

// SubMonths shifts t back by n calendar months, see AddMonths
func SubMonths(t time.Time, n int) time.Time {
	return AddMonths(t, -n)
}

// MonthsBetween counts whole months from start to end: the largest n such that
// AddMonths(start, n) is not after end. A reversed range yields a negative count.
// Calendar fields are read in start's location.
func MonthsBetween(start, end time.Time) int {
	if end.Before(start) {
		return -MonthsBetween(end, start)
	}

	end = end.In(start.Location())

	sy, sm, _ := start.Date()
	ey, em, _ := end.Date()

	n := (ey-sy)*12 + int(em) - int(sm)
	if AddMonths(start, n).After(end) {
		n--
	}
	return n
}

func daysIn(year int, month time.Month, loc *time.Location) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, loc).Day()
}
