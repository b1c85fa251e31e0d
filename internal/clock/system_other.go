//go:build !linux

package clock

import (
	"errors"
	"time"
)

// HostClock is unsupported outside Linux.
type HostClock struct{}

// SetSystemTime always fails on this platform.
func (HostClock) SetSystemTime(time.Time) error {
	return errors.New("setting the system clock is only supported on linux")
}
