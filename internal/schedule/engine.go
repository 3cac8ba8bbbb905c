package schedule

import (
	"encoding/json"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/campanile/bellsystem-server/internal/clock"
	"github.com/campanile/bellsystem-server/internal/eeprom"
	"github.com/campanile/bellsystem-server/internal/relay"
)

// Engine holds the canonical in-memory schedule and decides, once per
// minute, whether to ring. The canonical schedule is the single source of
// truth at runtime; the EEPROM copy is a write-through backup re-read at
// boot.
//
// Updates build the replacement schedule off to the side and publish it with
// a single pointer swap, so the tick path never observes a half-updated
// structure.
type Engine struct {
	store    *eeprom.Store
	actuator relay.Actuator
	clk      clock.Clock
	log      *logrus.Logger

	canonical atomic.Pointer[Schedule]

	mu sync.Mutex // serializes ReplaceSchedule

	tickMu    sync.Mutex
	lastFired string // date-minute of the last ring, e.g. "2024-03-25 07:30"
}

func NewEngine(store *eeprom.Store, actuator relay.Actuator, clk clock.Clock, log *logrus.Logger) *Engine {
	e := &Engine{store: store, actuator: actuator, clk: clk, log: log}
	empty := Schedule{}
	e.canonical.Store(&empty)
	return e
}

// LoadFromStore replaces the canonical schedule with the persisted one.
// Blank or never-written storage yields the empty schedule; a corrupt
// payload is logged and likewise degrades to empty rather than refusing to
// start.
func (e *Engine) LoadFromStore() {
	raw := e.store.LoadRingSchedule()
	if raw == "" {
		empty := Schedule{}
		e.canonical.Store(&empty)
		return
	}
	s, err := Parse([]byte(raw))
	if err != nil {
		e.log.WithError(err).Warn("stored schedule unreadable, starting with empty schedule")
		s = Schedule{}
	}
	e.canonical.Store(&s)
}

// ReplaceSchedule parses, validates, and normalizes raw, swaps it in as
// canonical, and persists it. A validation failure (ErrInvalid) rejects the
// update wholesale; a persist failure is surfaced distinctly and the
// previously committed schedule stays authoritative in memory either way.
func (e *Engine) ReplaceSchedule(raw []byte) error {
	parsed, err := Parse(raw)
	if err != nil {
		return err
	}
	serialized, err := json.Marshal(parsed)
	if err != nil {
		return fmt.Errorf("serialize schedule: %w", err)
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	prev := e.canonical.Load()
	e.canonical.Store(&parsed)
	if err := e.store.SaveRingSchedule(string(serialized)); err != nil {
		e.canonical.Store(prev)
		return fmt.Errorf("persist schedule: %w", err)
	}
	e.log.WithField("days", len(parsed)).Info("schedule replaced")
	return nil
}

// Current returns the canonical schedule. The returned value must be treated
// as read-only.
func (e *Engine) Current() Schedule {
	return *e.canonical.Load()
}

// CurrentSerialized returns the canonical schedule in wire form. Replacing
// the schedule with this exact payload is a no-op: parse, normalize, and
// serialize round-trip.
func (e *Engine) CurrentSerialized() ([]byte, error) {
	return json.Marshal(e.Current())
}

// RemainingToday returns today's ring times strictly after the current
// minute. scheduled distinguishes a day with no remaining times from a day
// that has no schedule at all.
func (e *Engine) RemainingToday() (times []clock.TimeOfDay, scheduled bool) {
	now := e.clk.Now()
	today, ok := e.Current()[clock.WeekdayOf(now)]
	if !ok {
		return nil, false
	}
	cur := clock.TimeOfDayOf(now)
	remaining := []clock.TimeOfDay{}
	for _, td := range today {
		if cur.Before(td) {
			remaining = append(remaining, td)
		}
	}
	return remaining, true
}

// OnMinuteTick checks whether the current minute is a scheduled ring time
// and fires the relay at most once for that minute, however often it is
// called. There is no catch-up: a minute missed entirely is skipped, never
// rung late.
func (e *Engine) OnMinuteTick() {
	now := e.clk.Now()
	day := clock.WeekdayOf(now)
	cur := clock.TimeOfDayOf(now)
	// Keyed on the full date so the same weekday minute rings again next
	// week; the guard only dedupes faster-than-minute callers.
	key := now.Format("2006-01-02 15:04")

	e.tickMu.Lock()
	if e.lastFired == key {
		e.tickMu.Unlock()
		return
	}
	fire := false
	for _, td := range e.Current()[day] {
		if td == cur {
			fire = true
			break
		}
	}
	if fire {
		e.lastFired = key
	}
	e.tickMu.Unlock()

	if !fire {
		return
	}
	d := time.Duration(e.store.LoadRingDuration()) * time.Second
	e.log.WithFields(logrus.Fields{"day": day.String(), "time": cur.String()}).Info("scheduled ring")
	e.actuator.Activate(d)
}
