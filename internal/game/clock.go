// internal/game/clock.go
package game

import (
	"time"

	"github.com/jason-s-yu/sketch/internal/models"
)

// Clock schedules callbacks. Production code uses time.AfterFunc; tests drive a manual clock.
type Clock interface {
	AfterFunc(d time.Duration, f func()) models.Timer
}

type realClock struct{}

func (realClock) AfterFunc(d time.Duration, f func()) models.Timer {
	return time.AfterFunc(d, f)
}

// RealClock returns the wall-clock implementation.
func RealClock() Clock {
	return realClock{}
}
