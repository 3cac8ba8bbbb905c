// Package relay drives the bell output. Activation is fire-and-forget: the
// output is held active for a bounded duration and there is no result to
// consume.
package relay

import (
	"time"

	"github.com/sirupsen/logrus"
)

// Actuator activates the bell output for the given duration. Implementations
// hold the output active for d before returning, so callers should treat an
// activation as a deliberate, bounded stall.
type Actuator interface {
	Activate(d time.Duration)
}

// Bell is the production actuator. The energize/release pair is where a GPIO
// line would be toggled on device hardware.
type Bell struct {
	log *logrus.Logger
}

func NewBell(log *logrus.Logger) *Bell {
	return &Bell{log: log}
}

func (b *Bell) Activate(d time.Duration) {
	b.log.WithField("duration", d.String()).Info("relay energized")
	time.Sleep(d)
	b.log.Info("relay released")
}
