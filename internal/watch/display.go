package watch

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// Display tracks the backlight. Only the main loop switches it; other
// contexts request changes through the EventGroup.
type Display struct {
	mu sync.Mutex
	on bool
}

// IsOn reports whether the backlight is lit.
func (d *Display) IsOn() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.on
}

// On lights the backlight.
func (d *Display) On() {
	d.mu.Lock()
	d.on = true
	d.mu.Unlock()
}

// Off turns the backlight off.
func (d *Display) Off() {
	d.mu.Lock()
	d.on = false
	d.mu.Unlock()
}

// Loop is the main control loop that owns the display.
type Loop struct {
	Events       *EventGroup
	Display      *Display
	SleepTimeout time.Duration // zero keeps the display on once woken
}

// Run services display flags until ctx is done. FlagSleepExit lights the
// display and restarts the idle timer; FlagSleepEnter or timer expiry
// turns it off.
func (l *Loop) Run(ctx context.Context) error {
	var idle <-chan time.Time
	var timer *time.Timer
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	wakeups := make(chan Flags)
	waitCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	go func() {
		defer close(wakeups)
		for {
			got, err := l.Events.Wait(waitCtx, FlagSleepExit|FlagSleepEnter, true)
			if err != nil {
				return
			}
			select {
			case wakeups <- got:
			case <-waitCtx.Done():
				return
			}
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case got, ok := <-wakeups:
			if !ok {
				return ctx.Err()
			}
			if got&FlagSleepExit != 0 {
				if !l.Display.IsOn() {
					slog.Debug("[DISPLAY] wake")
				}
				l.Display.On()
				if l.SleepTimeout > 0 {
					if timer == nil {
						timer = time.NewTimer(l.SleepTimeout)
					} else {
						timer.Reset(l.SleepTimeout)
					}
					idle = timer.C
				}
			} else if got&FlagSleepEnter != 0 {
				l.Display.Off()
				idle = nil
			}

		case <-idle:
			slog.Debug("[DISPLAY] idle, sleeping")
			l.Display.Off()
			idle = nil
		}
	}
}
