package clock

import (
	"time"

	"go.uber.org/fx"
)

// Clock abstracts wall-clock access so date-sensitive jobs can be tested
// against a fixed point in time.
type Clock interface {
	Now() time.Time
}

type SystemClock struct{}

func (SystemClock) Now() time.Time {
	return time.Now().UTC()
}

func NewSystemClock() Clock {
	return SystemClock{}
}

var Module = fx.Module("clock",
	fx.Provide(NewSystemClock),
)
