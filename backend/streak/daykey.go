package streak

import "time"

// DayKey identifies one calendar day in the tracker's canonical time zone,
// formatted as "2006-01-02". All streak arithmetic works on DayKeys so that
// results never depend on the host machine's local time zone.
type DayKey string

const dayKeyLayout = "2006-01-02"

// DefaultOffset is the canonical deployment time zone, IST (UTC+5:30).
const DefaultOffset = 5*time.Hour + 30*time.Minute

// DayOf converts an instant to the calendar day it falls on after applying
// the fixed UTC offset.
func DayOf(t time.Time, offset time.Duration) DayKey {
	return DayKey(t.UTC().Add(offset).Format(dayKeyLayout))
}

// Previous returns the calendar day immediately before k.
func (k DayKey) Previous() DayKey {
	t, err := time.Parse(dayKeyLayout, string(k))
	if err != nil {
		return k
	}
	return DayKey(t.AddDate(0, 0, -1).Format(dayKeyLayout))
}
