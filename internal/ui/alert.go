package ui

import (
	"log/slog"

	"github.com/go-vgo/robotgo"

	"github.com/chaz8081/gbwatch/internal/notify"
)

// AlertTitle is the title of native notification alerts.
const AlertTitle = "gbwatch"

// AlertUI shows each dialog as a native desktop alert. Pressing either
// alert button acknowledges the dialog. A replaced dialog's alert stays on
// screen until dismissed; its button press is then ignored.
type AlertUI struct {
	StatusBar
	slot

	alert func(title, msg string) bool
}

// NewAlertUI creates an AlertUI backed by robotgo.
func NewAlertUI() *AlertUI {
	return &AlertUI{
		alert: func(title, msg string) bool {
			return robotgo.Alert(title, msg)
		},
	}
}

func (u *AlertUI) ShowDialog(text string, onAck func()) notify.Dialog {
	d := u.open(text, onAck)
	go func() {
		// robotgo.Alert blocks until a button is pressed.
		ok := u.alert(AlertTitle, text)
		slog.Debug("[UI] alert closed", "ok", ok)
		d.ack()
	}()
	return d
}

// Compile-time check that AlertUI implements Surface.
var _ Surface = (*AlertUI)(nil)
