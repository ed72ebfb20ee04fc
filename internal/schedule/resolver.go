// Package schedule resolves which weekly-schedule interval is active at a
// given instant.
package schedule

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"stove_automation/internal/models"
)

// ErrInvalidClock is returned for times that are not "HH:MM".
var ErrInvalidClock = errors.New("invalid clock time: want HH:MM")

// dayNames are indexed by time.Weekday. Schedules are keyed by these names.
var dayNames = [...]string{
	time.Sunday:    "Domenica",
	time.Monday:    "Lunedì",
	time.Tuesday:   "Martedì",
	time.Wednesday: "Mercoledì",
	time.Thursday:  "Giovedì",
	time.Friday:    "Venerdì",
	time.Saturday:  "Sabato",
}

// DayName returns the schedule key for a weekday.
func DayName(d time.Weekday) string {
	return dayNames[d]
}

// DayNames returns all schedule keys, Sunday first.
func DayNames() []string {
	out := make([]string, len(dayNames))
	copy(out, dayNames[:])
	return out
}

// Resolver converts instants into wall-clock time in a fixed zone.
type Resolver struct {
	loc *time.Location
}

// NewResolver returns a resolver for the given zone; nil means UTC.
func NewResolver(loc *time.Location) *Resolver {
	if loc == nil {
		loc = time.UTC
	}
	return &Resolver{loc: loc}
}

// Location returns the zone used for day/hour derivation.
func (r *Resolver) Location() *time.Location { return r.loc }

// Clock returns the day name and "HH:MM" of now in the resolver's zone.
func (r *Resolver) Clock(now time.Time) (day, hhmm string) {
	local := now.In(r.loc)
	return DayName(local.Weekday()), local.Format("15:04")
}

// ActiveInterval returns the first interval of the day's slots containing
// now, using a half-open [start, end) window. Malformed intervals are skipped.
func (r *Resolver) ActiveInterval(slots []models.Interval, now time.Time) (*models.Interval, bool) {
	local := now.In(r.loc)
	minute := local.Hour()*60 + local.Minute()

	for i := range slots {
		start, err := ParseClock(slots[i].Start)
		if err != nil {
			continue
		}
		end, err := ParseClock(slots[i].End)
		if err != nil {
			continue
		}
		if start <= minute && minute < end {
			iv := slots[i]
			return &iv, true
		}
	}
	return nil, false
}

// Resolve looks up today's slots in a weekly schedule and returns the active one.
func (r *Resolver) Resolve(week models.WeeklySchedule, now time.Time) (*models.Interval, bool) {
	day, _ := r.Clock(now)
	return r.ActiveInterval(week[day], now)
}

// ParseClock converts "HH:MM" into minutes since midnight. "24:00" is
// accepted as end of day.
func ParseClock(s string) (int, error) {
	if len(s) != 5 || s[2] != ':' {
		return 0, fmt.Errorf("%w: %q", ErrInvalidClock, s)
	}
	h, errH := strconv.Atoi(s[:2])
	m, errM := strconv.Atoi(s[3:])
	if errH != nil || errM != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidClock, s)
	}
	if h == 24 && m == 0 {
		return 24 * 60, nil
	}
	if h < 0 || h > 23 || m < 0 || m > 59 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidClock, s)
	}
	return h*60 + m, nil
}

// Validate checks a day's slots: well-formed clocks, start before end,
// power 1-5 and fan 1-6. Overlapping slots are allowed; ActiveInterval
// picks the first match.
func Validate(slots []models.Interval) error {
	for i, iv := range slots {
		start, err := ParseClock(iv.Start)
		if err != nil {
			return fmt.Errorf("slot %d: %w", i, err)
		}
		end, err := ParseClock(iv.End)
		if err != nil {
			return fmt.Errorf("slot %d: %w", i, err)
		}
		if start >= end {
			return fmt.Errorf("slot %d: start %s is not before end %s", i, iv.Start, iv.End)
		}
		if iv.Power < 1 || iv.Power > 5 {
			return fmt.Errorf("slot %d: power %d out of range 1-5", i, iv.Power)
		}
		if iv.Fan < 1 || iv.Fan > 6 {
			return fmt.Errorf("slot %d: fan %d out of range 1-6", i, iv.Fan)
		}
	}
	return nil
}
