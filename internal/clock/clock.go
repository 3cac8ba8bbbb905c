// Package clock holds the shared day-of-week and time-of-day model used by
// the schedule engine and the ring scheduler. Day numbering is 1=Sunday
// through 7=Saturday, inherited from the device's original firmware contract.
package clock

import (
	"fmt"
	"time"
)

// Weekday numbers days 1=Sunday .. 7=Saturday.
type Weekday int

const (
	Sunday Weekday = iota + 1
	Monday
	Tuesday
	Wednesday
	Thursday
	Friday
	Saturday
)

var dayNames = [...]string{
	Sunday:    "sunday",
	Monday:    "monday",
	Tuesday:   "tuesday",
	Wednesday: "wednesday",
	Thursday:  "thursday",
	Friday:    "friday",
	Saturday:  "saturday",
}

// Weekdays lists all days in week order (Sunday first, matching the numbering).
func Weekdays() []Weekday {
	return []Weekday{Sunday, Monday, Tuesday, Wednesday, Thursday, Friday, Saturday}
}

func (d Weekday) String() string {
	if d < Sunday || d > Saturday {
		return fmt.Sprintf("weekday(%d)", int(d))
	}
	return dayNames[d]
}

// ParseWeekday maps a lowercase day name ("monday") to its Weekday.
func ParseWeekday(name string) (Weekday, error) {
	for _, d := range Weekdays() {
		if dayNames[d] == name {
			return d, nil
		}
	}
	return 0, fmt.Errorf("unknown day of week %q", name)
}

// WeekdayOf converts a time.Time (0=Sunday..6=Saturday) to the 1-based scheme.
func WeekdayOf(t time.Time) Weekday {
	return Weekday(int(t.Weekday()) + 1)
}

// TimeOfDay is a wall-clock minute, wire-formatted as zero-padded 24h "HH:MM".
type TimeOfDay struct {
	Hour   int
	Minute int
}

// ParseTimeOfDay validates and parses an exact "HH:MM" string.
func ParseTimeOfDay(s string) (TimeOfDay, error) {
	var td TimeOfDay
	if len(s) != 5 || s[2] != ':' {
		return td, fmt.Errorf("time %q: want HH:MM", s)
	}
	for _, i := range []int{0, 1, 3, 4} {
		if s[i] < '0' || s[i] > '9' {
			return td, fmt.Errorf("time %q: want HH:MM", s)
		}
	}
	h := int(s[0]-'0')*10 + int(s[1]-'0')
	m := int(s[3]-'0')*10 + int(s[4]-'0')
	if h > 23 {
		return td, fmt.Errorf("time %q: hour out of range", s)
	}
	if m > 59 {
		return td, fmt.Errorf("time %q: minute out of range", s)
	}
	return TimeOfDay{Hour: h, Minute: m}, nil
}

// TimeOfDayOf truncates a time.Time to its wall-clock minute.
func TimeOfDayOf(t time.Time) TimeOfDay {
	return TimeOfDay{Hour: t.Hour(), Minute: t.Minute()}
}

func (td TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d", td.Hour, td.Minute)
}

// Before reports whether td is strictly earlier in the day than other.
func (td TimeOfDay) Before(other TimeOfDay) bool {
	if td.Hour != other.Hour {
		return td.Hour < other.Hour
	}
	return td.Minute < other.Minute
}

func (td TimeOfDay) MarshalText() ([]byte, error) {
	return []byte(td.String()), nil
}

func (td *TimeOfDay) UnmarshalText(b []byte) error {
	parsed, err := ParseTimeOfDay(string(b))
	if err != nil {
		return err
	}
	*td = parsed
	return nil
}

// Clock supplies the current time. The production clock is pinned to the
// device's configured timezone; tests substitute a fixed clock.
type Clock interface {
	Now() time.Time
}

type realClock struct {
	loc *time.Location
}

// NewClock returns a Clock in the named IANA timezone.
func NewClock(timezone string) (Clock, error) {
	loc, err := time.LoadLocation(timezone)
	if err != nil {
		return nil, fmt.Errorf("load timezone %q: %w", timezone, err)
	}
	return &realClock{loc: loc}, nil
}

func (c *realClock) Now() time.Time {
	return time.Now().In(c.loc)
}
