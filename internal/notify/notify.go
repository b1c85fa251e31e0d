// Package notify owns the single on-screen notification slot: showing a
// forwarded phone notification as a dialog, buzzing the wearer, and
// clearing the slot when the dialog is acknowledged.
package notify

import (
	"log/slog"
	"sync"

	"github.com/chaz8081/gbwatch/internal/ble/protocol"
)

// StatusIcon names an icon on the watch status bar.
type StatusIcon int

const (
	StatusBluetooth StatusIcon = iota
	StatusWiFi
)

func (s StatusIcon) String() string {
	switch s {
	case StatusBluetooth:
		return "bluetooth"
	case StatusWiFi:
		return "wifi"
	default:
		return "unknown"
	}
}

// Dialog is an on-screen message box.
type Dialog interface {
	// Close removes the dialog from the screen and releases it.
	Close() error
}

// UI is the widget toolkit as seen by the presenter.
type UI interface {
	// ShowDialog displays text and calls onAck once when the wearer
	// acknowledges it.
	ShowDialog(text string, onAck func()) Dialog
	ShowStatusIcon(icon StatusIcon)
	HideStatusIcon(icon StatusIcon)
}

// Actuator drives the display backlight and vibration motor.
type Actuator interface {
	WakeDisplayIfOff()
	PulseHaptic(intensity uint8, once bool)
}

// State is the presenter state.
type State int

const (
	Idle State = iota
	Showing
)

func (s State) String() string {
	if s == Showing {
		return "showing"
	}
	return "idle"
}

// HapticIntensity is the motor strength used for a new notification.
const HapticIntensity = 255

// Presenter keeps at most one pending notification on screen. A new
// notification replaces the current one without waiting for it to be
// acknowledged.
type Presenter struct {
	ui       UI
	actuator Actuator

	mu      sync.Mutex
	state   State
	dialog  Dialog
	pending protocol.Notification
	gen     uint64 // bumped on every Show; identifies the live dialog

	// OnDismiss, if set, is called with the id of the notification the
	// wearer acknowledged.
	OnDismiss func(id int64)
}

// NewPresenter creates a Presenter. Panics if ui or actuator is nil
// (programmer error).
func NewPresenter(ui UI, actuator Actuator) *Presenter {
	if ui == nil || actuator == nil {
		panic("notify: NewPresenter called with nil collaborator")
	}
	return &Presenter{ui: ui, actuator: actuator}
}

// Show displays n, closing any dialog that is still up, then wakes the
// display and pulses the motor once.
func (p *Presenter) Show(n protocol.Notification) {
	p.mu.Lock()
	prev := p.dialog
	p.dialog = nil
	p.gen++
	gen := p.gen
	p.pending = n
	p.state = Showing
	p.mu.Unlock()

	if prev != nil {
		if err := prev.Close(); err != nil {
			slog.Warn("[NOTIFY] closing replaced dialog", "error", err)
		}
	}

	d := p.ui.ShowDialog(n.DisplayText(), func() { p.acknowledge(gen) })

	p.mu.Lock()
	live := p.gen == gen && p.state == Showing
	if live {
		p.dialog = d
	}
	p.mu.Unlock()
	if !live && d != nil {
		// Acknowledged or replaced before ShowDialog returned.
		if err := d.Close(); err != nil {
			slog.Warn("[NOTIFY] closing dialog", "error", err)
		}
	}

	slog.Info("[NOTIFY] showing", "id", n.ID, "src", n.Source)
	p.actuator.WakeDisplayIfOff()
	p.actuator.PulseHaptic(HapticIntensity, true)
}

func (p *Presenter) acknowledge(gen uint64) {
	p.mu.Lock()
	if gen != p.gen || p.state != Showing {
		p.mu.Unlock()
		slog.Debug("[NOTIFY] ignoring ack for stale dialog")
		return
	}
	d := p.dialog
	id := p.pending.ID
	p.dialog = nil
	p.pending = protocol.Notification{}
	p.state = Idle
	onDismiss := p.OnDismiss
	p.mu.Unlock()

	if d != nil {
		if err := d.Close(); err != nil {
			slog.Warn("[NOTIFY] closing acknowledged dialog", "error", err)
		}
	}
	slog.Info("[NOTIFY] dismissed", "id", id)
	if onDismiss != nil {
		onDismiss(id)
	}
}

// State reports whether a notification is on screen.
func (p *Presenter) State() State {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

// Pending returns the notification on screen. Its ID is 0 when idle.
func (p *Presenter) Pending() protocol.Notification {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.pending
}
