// Package watch models the wearable's device substrate: the event flags
// that cross execution contexts, the display backlight, and the actuator
// front end the notification presenter drives.
package watch

import (
	"context"
	"sync"
)

// Flags is a set of event bits.
type Flags uint32

const (
	// FlagSleepExit asks the main loop to turn the display on.
	FlagSleepExit Flags = 1 << iota
	// FlagSleepEnter asks the main loop to turn the display off.
	FlagSleepEnter
	// FlagBLEConnected is held while a central is connected.
	FlagBLEConnected
)

// EventGroup is a set of event bits that any goroutine may set and any
// number of goroutines may wait on.
type EventGroup struct {
	mu      sync.Mutex
	bits    Flags
	changed chan struct{} // closed and replaced on every Set
}

// NewEventGroup creates an EventGroup with all bits clear.
func NewEventGroup() *EventGroup {
	return &EventGroup{changed: make(chan struct{})}
}

// Set sets bits and wakes every waiter.
func (g *EventGroup) Set(bits Flags) {
	g.mu.Lock()
	g.bits |= bits
	close(g.changed)
	g.changed = make(chan struct{})
	g.mu.Unlock()
}

// Clear clears bits.
func (g *EventGroup) Clear(bits Flags) {
	g.mu.Lock()
	g.bits &^= bits
	g.mu.Unlock()
}

// Load returns the current bits.
func (g *EventGroup) Load() Flags {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.bits
}

// Wait blocks until any of bits is set or ctx is done. It returns the
// matching bits; if clearOnExit is set they are cleared atomically before
// returning, so only one waiter observes each Set.
func (g *EventGroup) Wait(ctx context.Context, bits Flags, clearOnExit bool) (Flags, error) {
	for {
		g.mu.Lock()
		if got := g.bits & bits; got != 0 {
			if clearOnExit {
				g.bits &^= got
			}
			g.mu.Unlock()
			return got, nil
		}
		changed := g.changed
		g.mu.Unlock()

		select {
		case <-changed:
		case <-ctx.Done():
			return 0, ctx.Err()
		}
	}
}
