package ble

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/chaz8081/gbwatch/internal/ble/protocol"
	"github.com/chaz8081/gbwatch/internal/notify"
	"github.com/chaz8081/gbwatch/internal/watch"
)

// ErrNotConnected is returned by Send when no central is connected.
var ErrNotConnected = errors.New("ble: not connected")

// StatusIcons shows connection state to the user.
type StatusIcons interface {
	ShowStatusIcon(icon notify.StatusIcon)
	HideStatusIcon(icon notify.StatusIcon)
}

// ServerOptions configures the UART server.
type ServerOptions struct {
	Name             string        // advertised local name
	MTU              int           // max bytes per TX notification
	ReadvertiseDelay time.Duration // wait after disconnect before advertising again
	ReadvertiseMax   int           // max retry backoff in seconds when advertising fails
}

// DefaultServerOptions returns the settings Gadgetbridge expects.
func DefaultServerOptions() ServerOptions {
	return ServerOptions{
		Name:             DefaultName,
		MTU:              protocol.DefaultChunkBytes,
		ReadvertiseDelay: 500 * time.Millisecond,
		ReadvertiseMax:   30,
	}
}

// Server runs the Nordic UART service and frames incoming writes into
// line messages.
type Server struct {
	periph Peripheral
	events *watch.EventGroup
	status StatusIcons
	opts   ServerOptions

	feedMu sync.Mutex
	framer *protocol.Framer

	mu        sync.Mutex
	tx        Characteristic
	connected bool
	closed    bool

	// sleep is swapped in tests.
	sleep func(time.Duration)
}

// NewServer creates a server that passes each complete line to dispatch.
// events and status may be nil.
func NewServer(periph Peripheral, dispatch func(string), events *watch.EventGroup, status StatusIcons, opts ServerOptions) *Server {
	if periph == nil {
		panic("ble: NewServer requires a non-nil peripheral")
	}
	if opts.Name == "" {
		opts.Name = DefaultName
	}
	if opts.MTU <= 0 {
		opts.MTU = protocol.DefaultChunkBytes
	}
	if opts.ReadvertiseDelay < 0 {
		opts.ReadvertiseDelay = 0
	}
	if opts.ReadvertiseMax <= 0 {
		opts.ReadvertiseMax = 30
	}
	return &Server{
		periph: periph,
		events: events,
		status: status,
		opts:   opts,
		framer: protocol.NewFramer(dispatch),
		sleep:  time.Sleep,
	}
}

// Start enables the adapter, registers the UART service and begins
// advertising.
func (s *Server) Start() error {
	if err := s.periph.Enable(); err != nil {
		return fmt.Errorf("ble: enable adapter: %w", err)
	}
	tx, err := s.periph.AddUARTService(s.onWrite)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.tx = tx
	s.mu.Unlock()

	s.periph.SetConnectHandler(s.onConnect)

	if err := s.periph.StartAdvertising(s.opts.Name); err != nil {
		return err
	}
	slog.Info("[BLE] advertising", "name", s.opts.Name)
	return nil
}

// onWrite feeds a chunk written to RX into the framer. Dispatch runs on
// the calling goroutine.
func (s *Server) onWrite(data []byte) {
	s.feedMu.Lock()
	defer s.feedMu.Unlock()
	s.framer.Feed(data)
}

// Feed injects bytes as if written by the phone.
func (s *Server) Feed(data []byte) {
	s.onWrite(data)
}

func (s *Server) onConnect(connected bool) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.connected = connected
	s.mu.Unlock()

	if connected {
		slog.Info("[BLE] connected")
		if s.events != nil {
			s.events.Set(watch.FlagBLEConnected)
		}
		if s.status != nil {
			s.status.ShowStatusIcon(notify.StatusBluetooth)
		}
		return
	}

	slog.Info("[BLE] disconnected")
	if s.events != nil {
		s.events.Clear(watch.FlagBLEConnected)
	}
	if s.status != nil {
		s.status.HideStatusIcon(notify.StatusBluetooth)
	}
	go s.readvertiseLoop()
}

// readvertiseLoop restarts advertising after a disconnect, backing off
// while the adapter refuses.
func (s *Server) readvertiseLoop() {
	s.sleep(s.opts.ReadvertiseDelay)
	for attempt := 0; ; attempt++ {
		if attempt > 0 {
			delay := backoffDelay(attempt-1, s.opts.ReadvertiseMax)
			slog.Info("[BLE] advertise backoff", "attempt", attempt+1, "delay", delay)
			s.sleep(delay)
		}

		s.mu.Lock()
		stop := s.closed || s.connected
		s.mu.Unlock()
		if stop {
			return
		}

		if err := s.periph.StartAdvertising(s.opts.Name); err != nil {
			slog.Warn("[BLE] advertise failed", "error", err, "attempt", attempt+1)
			continue
		}
		slog.Info("[BLE] advertising", "name", s.opts.Name)
		return
	}
}

// backoffDelay returns the retry delay for attempt n, capped at maxSeconds.
func backoffDelay(attempt int, maxSeconds int) time.Duration {
	if attempt > 30 {
		attempt = 30
	}
	delay := time.Duration(1<<uint(attempt)) * time.Second
	max := time.Duration(maxSeconds) * time.Second
	if delay > max {
		return max
	}
	return delay
}

// Connected reports whether a central is connected.
func (s *Server) Connected() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.connected
}

// Send notifies line to the phone over TX, split into MTU-sized chunks.
// Nothing is queued while disconnected.
func (s *Server) Send(line string) error {
	if line == "" {
		return nil
	}
	s.mu.Lock()
	tx, connected := s.tx, s.connected
	s.mu.Unlock()
	if !connected || tx == nil {
		return ErrNotConnected
	}

	for _, chunk := range protocol.ChunkText(line, s.opts.MTU) {
		if err := tx.Write([]byte(chunk)); err != nil {
			return fmt.Errorf("ble: write TX: %w", err)
		}
	}
	return nil
}

// Close stops advertising. Further connect events are ignored.
func (s *Server) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	s.connected = false
	s.mu.Unlock()

	if err := s.periph.StopAdvertising(); err != nil {
		return fmt.Errorf("ble: stop advertising: %w", err)
	}
	return nil
}
