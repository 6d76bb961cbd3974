package expiry

import "time"

// Clock supplies the current instant. The scheduler and fanout take it as a
// dependency so tests can pin "now" to a fixed point.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// SystemClock is the wall-clock implementation used in production.
var SystemClock Clock = systemClock{}
