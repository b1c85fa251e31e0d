// Package hotkey listens for a global key combination and turns each press
// into a dismiss event for the notification on screen.
package hotkey

import (
	"sync"

	hook "github.com/robotn/gohook"
)

// Event is emitted on the channel returned by Events once per press.
type Event struct {
	Keys []string
}

// Listener manages a global hotkey and emits one Event per key-down.
type Listener struct {
	keys []string
	ch   chan Event
	done chan struct{}
	once sync.Once
}

// NewListener creates a Listener for the given key combo.
// keys should be lowercase key names (e.g., ["ctrl", "shift", "d"]).
func NewListener(keys []string) *Listener {
	return &Listener{
		keys: keys,
		ch:   make(chan Event, 4),
		done: make(chan struct{}),
	}
}

// Events returns the channel that receives hotkey events.
// The channel is closed when the listener stops.
func (l *Listener) Events() <-chan Event {
	return l.ch
}

// Start begins listening for the global hotkey.
// This function blocks until Stop is called. Run it in a goroutine.
func (l *Listener) Start() {
	hook.Register(hook.KeyDown, l.keys, func(e hook.Event) {
		l.emit()
	})

	evChan := hook.Start()
	go func() {
		<-l.done
		hook.End()
	}()
	<-hook.Process(evChan)
	close(l.ch)
}

// emit queues an event without blocking the hook goroutine; presses
// beyond the buffer are dropped.
func (l *Listener) emit() {
	select {
	case l.ch <- Event{Keys: l.keys}:
	default:
	}
}

// Stop terminates the hotkey listener.
// It is safe to call multiple times.
func (l *Listener) Stop() {
	l.once.Do(func() {
		close(l.done)
	})
}

// Forward calls ack for every event until the listener stops.
func Forward(l *Listener, ack func() bool) {
	for range l.Events() {
		ack()
	}
}
