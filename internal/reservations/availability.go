package reservations

import "time"

// DateLayout is the wire format for reservation dates.
const DateLayout = "2006-01-02"

// NormalizeDate strips the time-of-day component, keeping the calendar day in UTC.
func NormalizeDate(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// Overlaps reports whether two closed date ranges share at least one day.
// A reservation ending on a given day still holds the tool for that whole
// day, so ranges touching at a boundary conflict.
func Overlaps(aStart, aEnd, bStart, bEnd time.Time) bool {
	aStart, aEnd = NormalizeDate(aStart), NormalizeDate(aEnd)
	bStart, bEnd = NormalizeDate(bStart), NormalizeDate(bEnd)
	return !aEnd.Before(bStart) && !bEnd.Before(aStart)
}

// ParseDate parses a YYYY-MM-DD string into a normalized date.
func ParseDate(value string) (time.Time, error) {
	t, err := time.Parse(DateLayout, value)
	if err != nil {
		return time.Time{}, err
	}
	return NormalizeDate(t), nil
}

// FormatDate renders a date in the wire format.
func FormatDate(t time.Time) string {
	return NormalizeDate(t).Format(DateLayout)
}
