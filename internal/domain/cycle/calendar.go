package cycle

import (
	"fmt"
	"time"
)

// Calendar derives game weeks from a fixed service-start anchor. The anchor is
// normalized to Monday 00:00 of the ISO week containing the start date, so every
// instant inside one calendar week maps to the same week index.
type Calendar struct {
	anchor time.Time
	loc    *time.Location
}

func NewCalendar(serviceStart time.Time, loc *time.Location) (Calendar, error) {
	if loc == nil {
		return Calendar{}, fmt.Errorf("calendar location is required")
	}
	if serviceStart.IsZero() {
		return Calendar{}, fmt.Errorf("service start date is required")
	}

	return Calendar{
		anchor: weekStart(serviceStart.In(loc)),
		loc:    loc,
	}, nil
}

// WeekOf returns the 1-based week index of t. Instants before the anchor clamp
// to week 1 rather than going negative; the matching batch never writes rows
// for pre-launch weeks, so those instants simply resolve to an empty cycle.
func (c Calendar) WeekOf(t time.Time) int {
	week := daysBetween(c.anchor, weekStart(t.In(c.loc)))/7 + 1
	if week < 1 {
		return 1
	}
	return week
}

func (c Calendar) Location() *time.Location {
	return c.loc
}

// DateOf truncates t to midnight in the calendar's location. Assignment daily
// uniqueness is keyed on this value.
func (c Calendar) DateOf(t time.Time) time.Time {
	local := t.In(c.loc)
	return time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, c.loc)
}

// daysBetween counts calendar days from a to b. Both instants are already
// local midnights; rebasing them to UTC keeps the count exact in locations
// where a DST shift makes a wall-clock day shorter or longer than 24h.
func daysBetween(a, b time.Time) int {
	ua := time.Date(a.Year(), a.Month(), a.Day(), 0, 0, 0, 0, time.UTC)
	ub := time.Date(b.Year(), b.Month(), b.Day(), 0, 0, 0, 0, time.UTC)
	return int(ub.Sub(ua) / (24 * time.Hour))
}

// weekStart returns Monday 00:00 of the week containing t, in t's location.
func weekStart(t time.Time) time.Time {
	offset := (int(t.Weekday()) + 6) % 7
	day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
	return day.AddDate(0, 0, -offset)
}
