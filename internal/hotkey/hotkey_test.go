package hotkey

import "testing"

func TestEmitDoesNotBlock(t *testing.T) {
	l := NewListener([]string{"ctrl", "shift", "d"})
	for range cap(l.ch) + 3 {
		l.emit()
	}
	if len(l.ch) != cap(l.ch) {
		t.Errorf("queued %d events, want %d", len(l.ch), cap(l.ch))
	}
}

func TestForwardAcksEachEvent(t *testing.T) {
	l := NewListener([]string{"ctrl", "d"})
	l.emit()
	l.emit()
	close(l.ch)

	acks := 0
	Forward(l, func() bool { acks++; return true })
	if acks != 2 {
		t.Errorf("acks = %d, want 2", acks)
	}
}

func TestEventCarriesKeys(t *testing.T) {
	l := NewListener([]string{"alt", "x"})
	l.emit()
	ev := <-l.Events()
	if len(ev.Keys) != 2 || ev.Keys[0] != "alt" || ev.Keys[1] != "x" {
		t.Errorf("Keys = %v, want [alt x]", ev.Keys)
	}
}

func TestStopIdempotent(t *testing.T) {
	l := NewListener([]string{"ctrl", "d"})
	l.Stop()
	l.Stop()
	select {
	case <-l.done:
	default:
		t.Error("Stop() did not close done")
	}
}
