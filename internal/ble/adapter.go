// Package ble exposes the watch as a BLE peripheral speaking the Nordic
// UART service, advertised under the Espruino name so Gadgetbridge treats
// it as a Bangle.js. Bytes written by the phone are fed to a
// protocol.Framer.
package ble

// Nordic UART service UUIDs, as used by Espruino.
const (
	ServiceUUID = "6e400001-b5a3-f393-e0a9-e50e24dcca9e"
	RXCharUUID  = "6e400002-b5a3-f393-e0a9-e50e24dcca9e" // phone writes here
	TXCharUUID  = "6e400003-b5a3-f393-e0a9-e50e24dcca9e" // watch notifies here
)

// DefaultName is the advertised local name. It must match Gadgetbridge's
// Bangle.js device filter.
const DefaultName = "Espruino"

// Characteristic represents a local GATT characteristic.
type Characteristic interface {
	// Write updates the value and notifies subscribed centrals.
	Write(data []byte) error
}

// Peripheral abstracts the BLE adapter in peripheral role for testing.
type Peripheral interface {
	// Enable powers on the BLE adapter.
	Enable() error
	// AddUARTService registers the UART service. onWrite is called with
	// each chunk written to the RX characteristic. Returns the TX
	// characteristic.
	AddUARTService(onWrite func(data []byte)) (Characteristic, error)
	// StartAdvertising advertises the UART service under name.
	StartAdvertising(name string) error
	// StopAdvertising stops advertising.
	StopAdvertising() error
	// SetConnectHandler registers a callback for central connect and
	// disconnect events.
	SetConnectHandler(handler func(connected bool))
}
