package capture

import "time"

// Clock supplies the capture timestamp rows are stamped with, so tests can
// control it.
type Clock interface {
	Now() time.Time
}

type RealtimeClock struct{}

func NewRealtimeClock() RealtimeClock {
	return RealtimeClock{}
}

func (RealtimeClock) Now() time.Time { return time.Now() }
