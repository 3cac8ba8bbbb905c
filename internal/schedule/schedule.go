// Package schedule owns the canonical weekly ring schedule and the
// minute-tick ring decision.
//
// The wire form is a JSON object of lowercase day names to arrays of
// zero-padded 24-hour "HH:MM" strings, e.g. {"monday":["07:30","08:00"]}.
// Updates are all-or-nothing: any malformed day key, non-array value, or bad
// time string rejects the whole payload and the previously committed
// schedule stays in force.
package schedule

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"sort"

	"github.com/campanile/bellsystem-server/internal/clock"
)

// ErrInvalid reports a malformed schedule payload. Distinct from storage
// errors so callers can tell a rejected update from a failed persist.
var ErrInvalid = errors.New("invalid schedule")

// Schedule maps each scheduled day to its ring times, sorted ascending.
// Absent days ring nothing. Duplicate times are tolerated; the ring check is
// idempotent within a minute so they are harmless.
type Schedule map[clock.Weekday][]clock.TimeOfDay

// Parse validates and normalizes a wire payload. Every present day key must
// be one of the seven lowercase day names and must map to an array of valid
// "HH:MM" strings; each day's times come back sorted ascending.
func Parse(raw []byte) (Schedule, error) {
	var days map[string]json.RawMessage
	if err := json.Unmarshal(raw, &days); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	if days == nil {
		// "null" unmarshals into a nil map without error
		return nil, fmt.Errorf("%w: payload is not an object", ErrInvalid)
	}
	s := make(Schedule, len(days))
	for name, value := range days {
		day, err := clock.ParseWeekday(name)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalid, err)
		}
		var entries []string
		if err := json.Unmarshal(value, &entries); err != nil {
			return nil, fmt.Errorf("%w: %s is not an array of times", ErrInvalid, name)
		}
		times := make([]clock.TimeOfDay, 0, len(entries))
		for _, entry := range entries {
			td, err := clock.ParseTimeOfDay(entry)
			if err != nil {
				return nil, fmt.Errorf("%w: %s: %v", ErrInvalid, name, err)
			}
			times = append(times, td)
		}
		s[day] = times
	}
	s.normalize()
	return s, nil
}

func (s Schedule) normalize() {
	for _, times := range s {
		sort.SliceStable(times, func(i, j int) bool {
			return times[i].Before(times[j])
		})
	}
}

// MarshalJSON emits days in week order (Sunday first, matching the 1=Sunday
// numbering) for a stable wire form.
func (s Schedule) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	first := true
	for _, day := range clock.Weekdays() {
		times, ok := s[day]
		if !ok {
			continue
		}
		if !first {
			buf.WriteByte(',')
		}
		first = false
		fmt.Fprintf(&buf, "%q:", day.String())
		if times == nil {
			times = []clock.TimeOfDay{}
		}
		arr, err := json.Marshal(times)
		if err != nil {
			return nil, err
		}
		buf.Write(arr)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}
