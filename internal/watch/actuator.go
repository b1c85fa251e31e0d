package watch

import "log/slog"

// Motor is the vibration motor.
type Motor interface {
	// Adjust sets the drive strength for subsequent pulses.
	Adjust(intensity uint8)
	// Once runs a single pulse.
	Once()
}

// Actuator fronts the display and motor for code running outside the main
// loop, such as the BLE write callback.
type Actuator struct {
	events  *EventGroup
	display *Display
	motor   Motor
}

// NewActuator creates an Actuator. Panics on nil collaborators
// (programmer error).
func NewActuator(events *EventGroup, display *Display, motor Motor) *Actuator {
	if events == nil || display == nil || motor == nil {
		panic("watch: NewActuator called with nil collaborator")
	}
	return &Actuator{events: events, display: display, motor: motor}
}

// WakeDisplayIfOff signals the main loop to light the display when it is
// currently off.
func (a *Actuator) WakeDisplayIfOff() {
	if !a.display.IsOn() {
		a.events.Set(FlagSleepExit)
	}
}

// PulseHaptic drives the motor at intensity. A single-shot pulse is the
// only pattern the motor supports; once=false is logged and treated the
// same.
func (a *Actuator) PulseHaptic(intensity uint8, once bool) {
	if !once {
		slog.Debug("[HAPTIC] repeating pattern unsupported, pulsing once")
	}
	a.motor.Adjust(intensity)
	a.motor.Once()
}
