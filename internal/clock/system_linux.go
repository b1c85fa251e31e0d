//go:build linux

package clock

import (
	"fmt"
	"time"

	"golang.org/x/sys/unix"
)

// HostClock sets the Linux wall clock. The process needs CAP_SYS_TIME.
type HostClock struct{}

// SetSystemTime calls settimeofday(2) with t.
func (HostClock) SetSystemTime(t time.Time) error {
	tv := unix.NsecToTimeval(t.UnixNano())
	if err := unix.Settimeofday(&tv); err != nil {
		return fmt.Errorf("settimeofday: %w", err)
	}
	return nil
}
