// Package ui provides hosted stand-ins for the watch widget toolkit: a
// message box for notifications and a status bar of icons.
package ui

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/chaz8081/gbwatch/internal/notify"
)

// Surface is a notify.UI whose current dialog can also be acknowledged
// from outside the dialog itself, for example by a hotkey.
type Surface interface {
	notify.UI
	// AckCurrent acknowledges the dialog on screen, if any, and reports
	// whether there was one.
	AckCurrent() bool
}

// New returns the Surface for method: "log", "alert", or "console".
func New(method string) (Surface, error) {
	switch method {
	case "log":
		return NewLogUI(), nil
	case "alert":
		return NewAlertUI(), nil
	case "console":
		return NewConsoleUI(nil, nil), nil
	default:
		return nil, fmt.Errorf("ui: unknown method %q", method)
	}
}

// StatusBar tracks which status icons are shown.
type StatusBar struct {
	mu    sync.Mutex
	icons map[notify.StatusIcon]bool
}

func (s *StatusBar) ShowStatusIcon(icon notify.StatusIcon) {
	s.set(icon, true)
	slog.Info("[UI] status icon shown", "icon", icon)
}

func (s *StatusBar) HideStatusIcon(icon notify.StatusIcon) {
	s.set(icon, false)
	slog.Info("[UI] status icon hidden", "icon", icon)
}

// Visible reports whether icon is shown.
func (s *StatusBar) Visible(icon notify.StatusIcon) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.icons[icon]
}

func (s *StatusBar) set(icon notify.StatusIcon, on bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.icons == nil {
		s.icons = make(map[notify.StatusIcon]bool)
	}
	s.icons[icon] = on
}

// dialog is a message box tracked by a slot. Its ack callback fires at
// most once and never after Close.
type dialog struct {
	slot  *slot
	text  string
	onAck func()

	mu     sync.Mutex
	closed bool
	acked  bool
}

func (d *dialog) Close() error {
	d.mu.Lock()
	d.closed = true
	d.mu.Unlock()
	d.slot.remove(d)
	return nil
}

func (d *dialog) ack() bool {
	d.mu.Lock()
	if d.closed || d.acked {
		d.mu.Unlock()
		return false
	}
	d.acked = true
	d.mu.Unlock()
	d.onAck()
	return true
}

// slot holds the dialog currently on screen.
type slot struct {
	mu      sync.Mutex
	current *dialog
}

func (s *slot) open(text string, onAck func()) *dialog {
	d := &dialog{slot: s, text: text, onAck: onAck}
	s.mu.Lock()
	s.current = d
	s.mu.Unlock()
	return d
}

func (s *slot) remove(d *dialog) {
	s.mu.Lock()
	if s.current == d {
		s.current = nil
	}
	s.mu.Unlock()
}

// Current returns the text of the dialog on screen and whether there is one.
func (s *slot) Current() (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current == nil {
		return "", false
	}
	return s.current.text, true
}

func (s *slot) AckCurrent() bool {
	s.mu.Lock()
	d := s.current
	s.mu.Unlock()
	if d == nil {
		return false
	}
	return d.ack()
}
