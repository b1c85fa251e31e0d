// Package clock provides the watch's real-time clock and the step that
// brings the system's notion of "now" in line with it after a time sync.
package clock

import (
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/chaz8081/gbwatch/internal/ble/protocol"
)

// Clock is the clock collaborator driven by setTime commands.
type Clock interface {
	// SetDateTime writes calendar fields to the real-time clock.
	SetDateTime(year, month, day, hour, minute, second int) error
	// SyncSystem resynchronizes system time from the real-time clock.
	SyncSystem() error
	// Now returns the current system time.
	Now() time.Time
}

// SystemSetter sets the host wall clock.
type SystemSetter interface {
	SetSystemTime(t time.Time) error
}

// RTC is a software real-time clock. Like the watch's RTC chip it records
// zone-less calendar fields; they are stored and reported as UTC. The RTC
// keeps ticking from the host's monotonic clock.
type RTC struct {
	mu        sync.Mutex
	rtcBase   time.Time // RTC reading at rtcSetAt
	rtcSetAt  time.Time // host reading when the RTC was set
	sysOffset time.Duration
	synced    bool

	system SystemSetter // optional host clock setter
	now    func() time.Time
}

// NewRTC creates an RTC that tracks the host clock until it is first set.
// If system is non-nil, SyncSystem also sets the host wall clock.
func NewRTC(system SystemSetter) *RTC {
	return &RTC{system: system, now: time.Now}
}

// SetDateTime validates and stores calendar fields.
func (r *RTC) SetDateTime(year, month, day, hour, minute, second int) error {
	if month < 1 || month > 12 || day < 1 || day > 31 ||
		hour < 0 || hour > 23 || minute < 0 || minute > 59 || second < 0 || second > 59 {
		return fmt.Errorf("clock: invalid date time %04d-%02d-%02d %02d:%02d:%02d",
			year, month, day, hour, minute, second)
	}
	t := time.Date(year, time.Month(month), day, hour, minute, second, 0, time.UTC)

	r.mu.Lock()
	r.rtcBase = t
	r.rtcSetAt = r.now()
	r.mu.Unlock()
	return nil
}

// Read returns the current RTC reading. An RTC that was never set reads
// the host clock.
func (r *RTC) Read() time.Time {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.readLocked()
}

func (r *RTC) readLocked() time.Time {
	host := r.now()
	if r.rtcSetAt.IsZero() {
		return host.UTC()
	}
	return r.rtcBase.Add(host.Sub(r.rtcSetAt))
}

// SyncSystem adopts the RTC reading as system time. When a SystemSetter
// is configured the host wall clock is set too; a failure there leaves the
// process-local time in effect and is returned.
func (r *RTC) SyncSystem() error {
	r.mu.Lock()
	rtc := r.readLocked()
	host := r.now()
	r.sysOffset = rtc.Sub(host)
	r.synced = true
	system := r.system
	r.mu.Unlock()

	slog.Info("[CLOCK] system time synced from RTC", "time", rtc.Format(time.DateTime))
	if system == nil {
		return nil
	}
	if err := system.SetSystemTime(rtc); err != nil {
		return fmt.Errorf("clock: set system time: %w", err)
	}
	// Host clock now carries the new time.
	r.mu.Lock()
	r.sysOffset = 0
	r.rtcBase = rtc
	r.rtcSetAt = r.now()
	r.mu.Unlock()
	return nil
}

// Now returns system time: the host clock adjusted by the last sync.
func (r *RTC) Now() time.Time {
	r.mu.Lock()
	defer r.mu.Unlock()
	t := r.now()
	if r.synced {
		return t.Add(r.sysOffset).UTC()
	}
	return t
}

// Compile-time check that RTC implements Clock.
var _ Clock = (*RTC)(nil)

// Apply writes dt to c and then resyncs system time from it.
func Apply(c Clock, dt protocol.DateTime) error {
	if err := c.SetDateTime(dt.Year, dt.Month, dt.Day, dt.Hour, dt.Minute, dt.Second); err != nil {
		return err
	}
	return c.SyncSystem()
}
