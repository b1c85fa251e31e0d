package ui

import (
	"log/slog"

	"github.com/chaz8081/gbwatch/internal/notify"
)

// LogUI writes dialogs to the log. Dialogs are acknowledged only through
// AckCurrent.
type LogUI struct {
	StatusBar
	slot
}

// NewLogUI creates a LogUI.
func NewLogUI() *LogUI {
	return &LogUI{}
}

func (u *LogUI) ShowDialog(text string, onAck func()) notify.Dialog {
	d := u.open(text, onAck)
	slog.Info("[UI] dialog", "text", text)
	return d
}

// Compile-time check that LogUI implements Surface.
var _ Surface = (*LogUI)(nil)
