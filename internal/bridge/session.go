// Package bridge routes framed Gadgetbridge lines to the watch: GB
// notifications to the notification presenter and setTime commands to the
// clock.
package bridge

import (
	"log/slog"
	"sync"
	"time"

	"github.com/chaz8081/gbwatch/internal/ble/protocol"
	"github.com/chaz8081/gbwatch/internal/clock"
)

// Presenter shows a decoded notification.
type Presenter interface {
	Show(n protocol.Notification)
}

// Stats counts handled messages.
type Stats struct {
	Frames        int // lines received
	Notifications int // notify messages shown
	TimeSyncs     int // setTime commands applied
	Other         int // lines that were neither GB nor setTime
	Unhandled     int // GB messages of an unknown or missing type
}

// Session is the per-connection-lifetime dispatch target for the framer.
type Session struct {
	presenter Presenter
	clock     clock.Clock

	mu    sync.Mutex
	stats Stats
}

// NewSession creates a session. Both collaborators are required.
func NewSession(presenter Presenter, c clock.Clock) *Session {
	if presenter == nil {
		panic("bridge: NewSession requires a non-nil presenter")
	}
	if c == nil {
		panic("bridge: NewSession requires a non-nil clock")
	}
	return &Session{presenter: presenter, clock: c}
}

// HandleMessage dispatches one framed line. It never fails; anything it
// cannot act on is logged and dropped.
func (s *Session) HandleMessage(msg string) {
	s.count(func(st *Stats) { st.Frames++ })

	cmd := protocol.Classify(msg)
	switch cmd.Kind {
	case protocol.KindGB:
		s.handleGB(cmd.Payload)
	case protocol.KindSetTime:
		s.handleSetTime(cmd.Payload)
	default:
		slog.Info("[BLE] other data", "msg", msg)
		s.count(func(st *Stats) { st.Other++ })
	}
}

func (s *Session) handleGB(payload string) {
	gb := protocol.DecodeGB(payload)
	if gb.Err != nil {
		slog.Debug("[GB] lenient decode", "error", gb.Err)
	}

	switch gb.Type {
	case protocol.TypeNotify:
		slog.Info("[GB] notify", "id", gb.Notify.ID, "src", gb.Notify.Source, "title", gb.Notify.Title)
		s.presenter.Show(gb.Notify)
		s.count(func(st *Stats) { st.Notifications++ })
	default:
		slog.Info("[GB] unhandled type", "type", gb.Type)
		s.count(func(st *Stats) { st.Unhandled++ })
	}
}

func (s *Session) handleSetTime(payload string) {
	st := protocol.DecodeSetTime(payload)
	l := st.Local()
	slog.Info("[CLOCK] setTime", "epoch", st.Epoch, "tz", st.TZ,
		"local", l.Time(time.UTC).Format(time.DateTime))

	if err := clock.Apply(s.clock, l); err != nil {
		slog.Error("[CLOCK] failed to apply time", "error", err)
		return
	}
	s.count(func(c *Stats) { c.TimeSyncs++ })
}

func (s *Session) count(f func(*Stats)) {
	s.mu.Lock()
	f(&s.stats)
	s.mu.Unlock()
}

// Stats returns a snapshot of the counters.
func (s *Session) Stats() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stats
}
