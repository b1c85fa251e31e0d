package notify

import (
	"sync"
	"testing"

	"github.com/chaz8081/gbwatch/internal/ble/protocol"
)

// mockDialog records whether it was closed.
type mockDialog struct {
	text   string
	onAck  func()
	closed int
}

func (d *mockDialog) Close() error {
	d.closed++
	return nil
}

// mockUI records dialogs and status icons.
type mockUI struct {
	mu      sync.Mutex
	dialogs []*mockDialog
	icons   map[StatusIcon]bool
	ackNow  bool // acknowledge from inside ShowDialog
}

func (u *mockUI) ShowDialog(text string, onAck func()) Dialog {
	d := &mockDialog{text: text, onAck: onAck}
	u.mu.Lock()
	u.dialogs = append(u.dialogs, d)
	ackNow := u.ackNow
	u.mu.Unlock()
	if ackNow {
		onAck()
	}
	return d
}

func (u *mockUI) ShowStatusIcon(icon StatusIcon) { u.setIcon(icon, true) }
func (u *mockUI) HideStatusIcon(icon StatusIcon) { u.setIcon(icon, false) }

func (u *mockUI) setIcon(icon StatusIcon, on bool) {
	u.mu.Lock()
	defer u.mu.Unlock()
	if u.icons == nil {
		u.icons = make(map[StatusIcon]bool)
	}
	u.icons[icon] = on
}

// openDialogs returns dialogs that were shown but never closed.
func (u *mockUI) openDialogs() []*mockDialog {
	u.mu.Lock()
	defer u.mu.Unlock()
	var open []*mockDialog
	for _, d := range u.dialogs {
		if d.closed == 0 {
			open = append(open, d)
		}
	}
	return open
}

// mockActuator counts wake requests and haptic pulses.
type mockActuator struct {
	wakes     int
	pulses    int
	intensity uint8
}

func (a *mockActuator) WakeDisplayIfOff() { a.wakes++ }

func (a *mockActuator) PulseHaptic(intensity uint8, once bool) {
	a.pulses++
	a.intensity = intensity
}

func newTestPresenter() (*Presenter, *mockUI, *mockActuator) {
	ui := &mockUI{}
	act := &mockActuator{}
	return NewPresenter(ui, act), ui, act
}

func TestPresenterShow(t *testing.T) {
	p, ui, act := newTestPresenter()
	n := protocol.Notification{ID: 7, Source: "Mail", Title: "Hi", Body: "There"}

	p.Show(n)

	if p.State() != Showing {
		t.Errorf("State() = %v, want showing", p.State())
	}
	if p.Pending() != n {
		t.Errorf("Pending() = %+v, want %+v", p.Pending(), n)
	}
	open := ui.openDialogs()
	if len(open) != 1 || open[0].text != "Mail: Hi\n\nThere" {
		t.Fatalf("open dialogs = %+v, want one with composed text", open)
	}
	if act.wakes != 1 {
		t.Errorf("wakes = %d, want 1", act.wakes)
	}
	if act.pulses != 1 || act.intensity != HapticIntensity {
		t.Errorf("pulses = %d intensity = %d, want 1 pulse at %d", act.pulses, act.intensity, HapticIntensity)
	}
}

func TestPresenterReplaceNotQueue(t *testing.T) {
	p, ui, act := newTestPresenter()

	p.Show(protocol.Notification{ID: 1, Source: "A", Title: "first"})
	p.Show(protocol.Notification{ID: 2, Source: "B", Title: "second"})

	open := ui.openDialogs()
	if len(open) != 1 {
		t.Fatalf("got %d open dialogs, want exactly 1", len(open))
	}
	if open[0].text != "B: second\n\n" {
		t.Errorf("open dialog text = %q, want the second notification", open[0].text)
	}
	if ui.dialogs[0].closed != 1 {
		t.Errorf("first dialog closed %d times, want 1", ui.dialogs[0].closed)
	}
	if p.Pending().ID != 2 {
		t.Errorf("Pending().ID = %d, want 2", p.Pending().ID)
	}
	if act.pulses != 2 {
		t.Errorf("pulses = %d, want 2", act.pulses)
	}
}

func TestPresenterAcknowledge(t *testing.T) {
	p, ui, _ := newTestPresenter()
	var dismissed []int64
	p.OnDismiss = func(id int64) { dismissed = append(dismissed, id) }

	p.Show(protocol.Notification{ID: 99, Title: "x"})
	ui.dialogs[0].onAck()

	if p.State() != Idle {
		t.Errorf("State() = %v, want idle", p.State())
	}
	if p.Pending().ID != 0 {
		t.Errorf("Pending().ID = %d, want 0", p.Pending().ID)
	}
	if ui.dialogs[0].closed != 1 {
		t.Errorf("dialog closed %d times, want 1", ui.dialogs[0].closed)
	}
	if len(dismissed) != 1 || dismissed[0] != 99 {
		t.Errorf("dismissed = %v, want [99]", dismissed)
	}

	// A second ack for the same dialog is a no-op.
	ui.dialogs[0].onAck()
	if ui.dialogs[0].closed != 1 || len(dismissed) != 1 {
		t.Errorf("duplicate ack changed state: closed=%d dismissed=%v", ui.dialogs[0].closed, dismissed)
	}
}

func TestPresenterStaleAckIgnored(t *testing.T) {
	p, ui, _ := newTestPresenter()

	p.Show(protocol.Notification{ID: 1})
	p.Show(protocol.Notification{ID: 2})

	// Ack arrives late from the replaced dialog.
	ui.dialogs[0].onAck()

	if p.State() != Showing || p.Pending().ID != 2 {
		t.Errorf("stale ack changed state: %v pending=%d", p.State(), p.Pending().ID)
	}
	if ui.dialogs[1].closed != 0 {
		t.Error("stale ack closed the live dialog")
	}
}

func TestPresenterAckDuringShow(t *testing.T) {
	p, ui, _ := newTestPresenter()
	ui.ackNow = true

	p.Show(protocol.Notification{ID: 5})

	if p.State() != Idle {
		t.Errorf("State() = %v, want idle", p.State())
	}
	if len(ui.openDialogs()) != 0 {
		t.Error("dialog acknowledged during ShowDialog was left open")
	}
}

func TestPresenterShowAfterAck(t *testing.T) {
	p, ui, _ := newTestPresenter()

	p.Show(protocol.Notification{ID: 1})
	ui.dialogs[0].onAck()
	p.Show(protocol.Notification{ID: 2})

	if ui.dialogs[0].closed != 1 {
		t.Errorf("first dialog closed %d times, want exactly 1", ui.dialogs[0].closed)
	}
	if p.State() != Showing || p.Pending().ID != 2 {
		t.Errorf("State() = %v pending=%d, want showing 2", p.State(), p.Pending().ID)
	}
}

func TestNewPresenterNilPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("NewPresenter(nil, nil) did not panic")
		}
	}()
	NewPresenter(nil, nil)
}

func TestStateString(t *testing.T) {
	if Idle.String() != "idle" || Showing.String() != "showing" {
		t.Errorf("State strings = %q, %q", Idle.String(), Showing.String())
	}
	if StatusBluetooth.String() != "bluetooth" {
		t.Errorf("StatusBluetooth.String() = %q", StatusBluetooth.String())
	}
}
