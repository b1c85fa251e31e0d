package ble

import (
	"fmt"
	"sync"

	"tinygo.org/x/bluetooth"
)

// TinyGoPeripheral implements Peripheral on tinygo-org/bluetooth (BlueZ
// on Linux, CoreBluetooth on macOS, SoftDevice on nRF).
type TinyGoPeripheral struct {
	adapter *bluetooth.Adapter

	mu  sync.Mutex
	adv *bluetooth.Advertisement
	rx  bluetooth.Characteristic
	tx  bluetooth.Characteristic
}

// NewTinyGoPeripheral creates a Peripheral on the default adapter.
func NewTinyGoPeripheral() *TinyGoPeripheral {
	return &TinyGoPeripheral{adapter: bluetooth.DefaultAdapter}
}

func (p *TinyGoPeripheral) Enable() error {
	return p.adapter.Enable()
}

func (p *TinyGoPeripheral) AddUARTService(onWrite func(data []byte)) (Characteristic, error) {
	svcUUID, err := bluetooth.ParseUUID(ServiceUUID)
	if err != nil {
		return nil, fmt.Errorf("ble: parse service UUID: %w", err)
	}
	rxUUID, err := bluetooth.ParseUUID(RXCharUUID)
	if err != nil {
		return nil, fmt.Errorf("ble: parse RX UUID: %w", err)
	}
	txUUID, err := bluetooth.ParseUUID(TXCharUUID)
	if err != nil {
		return nil, fmt.Errorf("ble: parse TX UUID: %w", err)
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	err = p.adapter.AddService(&bluetooth.Service{
		UUID: svcUUID,
		Characteristics: []bluetooth.CharacteristicConfig{
			{
				Handle: &p.rx,
				UUID:   rxUUID,
				Flags:  bluetooth.CharacteristicWritePermission | bluetooth.CharacteristicWriteWithoutResponsePermission,
				WriteEvent: func(client bluetooth.Connection, offset int, value []byte) {
					if len(value) == 0 {
						return
					}
					onWrite(value)
				},
			},
			{
				Handle: &p.tx,
				UUID:   txUUID,
				Flags:  bluetooth.CharacteristicNotifyPermission | bluetooth.CharacteristicReadPermission,
			},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("ble: add UART service: %w", err)
	}
	return &tinyGoCharacteristic{char: &p.tx}, nil
}

func (p *TinyGoPeripheral) StartAdvertising(name string) error {
	svcUUID, err := bluetooth.ParseUUID(ServiceUUID)
	if err != nil {
		return fmt.Errorf("ble: parse service UUID: %w", err)
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.adv == nil {
		p.adv = p.adapter.DefaultAdvertisement()
	}
	if err := p.adv.Configure(bluetooth.AdvertisementOptions{
		LocalName:    name,
		ServiceUUIDs: []bluetooth.UUID{svcUUID},
	}); err != nil {
		return fmt.Errorf("ble: configure advertisement: %w", err)
	}
	if err := p.adv.Start(); err != nil {
		return fmt.Errorf("ble: start advertisement: %w", err)
	}
	return nil
}

func (p *TinyGoPeripheral) StopAdvertising() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.adv == nil {
		return nil
	}
	return p.adv.Stop()
}

func (p *TinyGoPeripheral) SetConnectHandler(handler func(connected bool)) {
	p.adapter.SetConnectHandler(func(device bluetooth.Device, connected bool) {
		handler(connected)
	})
}

// Compile-time check that TinyGoPeripheral implements Peripheral.
var _ Peripheral = (*TinyGoPeripheral)(nil)

type tinyGoCharacteristic struct {
	char *bluetooth.Characteristic
}

func (c *tinyGoCharacteristic) Write(data []byte) error {
	_, err := c.char.Write(data)
	return err
}
