package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/chaz8081/gbwatch/internal/ble"
	"github.com/chaz8081/gbwatch/internal/ble/protocol"
	"github.com/chaz8081/gbwatch/internal/bridge"
	"github.com/chaz8081/gbwatch/internal/clock"
	"github.com/chaz8081/gbwatch/internal/config"
	"github.com/chaz8081/gbwatch/internal/haptic"
	"github.com/chaz8081/gbwatch/internal/hotkey"
	"github.com/chaz8081/gbwatch/internal/notify"
	"github.com/chaz8081/gbwatch/internal/ui"
	"github.com/chaz8081/gbwatch/internal/watch"
)

func main() {
	// CLI flags
	configPath := flag.String("config", "", "path to config file (default: ~/.config/gbwatch/config.yaml)")
	initConfig := flag.Bool("init", false, "write the default config file and exit")
	flag.Parse()

	if *initConfig {
		path, err := config.WriteDefault()
		if err != nil {
			log.Fatalf("config: %v", err)
		}
		if path == "" {
			fmt.Printf("Config already exists at %s\n", config.DefaultConfigPath())
			return
		}
		fmt.Printf("Wrote default config to %s\n", path)
		return
	}

	// Load configuration
	cfg, err := loadConfig(*configPath)
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	if err := cfg.Validate(); err != nil {
		log.Fatalf("config validation: %v", err)
	}

	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: config.ParseLogLevel(cfg.LogLevel),
	})))

	printBanner(cfg)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Watch substrate: event flags, backlight, motor
	events := watch.NewEventGroup()
	display := &watch.Display{}
	motor, closeMotor := newMotor(cfg)
	defer closeMotor()
	actuator := watch.NewActuator(events, display, motor)

	surface, err := ui.New(cfg.UI.Method)
	if err != nil {
		log.Fatalf("Failed to initialize UI: %v", err)
	}
	presenter := notify.NewPresenter(surface, actuator)

	var system clock.SystemSetter
	if cfg.Clock.ApplySystem {
		system = clock.HostClock{}
	}
	rtc := clock.NewRTC(system)
	session := bridge.NewSession(presenter, rtc)

	server := ble.NewServer(ble.NewTinyGoPeripheral(), session.HandleMessage, events, surface, ble.ServerOptions{
		Name:             cfg.BLE.Name,
		MTU:              cfg.BLE.MTU,
		ReadvertiseDelay: cfg.BLE.ReadvertiseDelay,
	})
	if cfg.Notify.SendDismiss {
		presenter.OnDismiss = func(id int64) {
			if err := server.Send(protocol.DismissLine(id)); err != nil {
				slog.Warn("[BLE] failed to send dismiss", "id", id, "error", err)
			}
		}
	}
	if err := server.Start(); err != nil {
		log.Fatalf("Failed to start BLE peripheral: %v\n\nEnsure Bluetooth is powered on and BlueZ is running.", err)
	}
	log.Printf("Advertising as %q", cfg.BLE.Name)

	// Dismiss hotkey
	var listener *hotkey.Listener
	if len(cfg.UI.DismissKeys) > 0 {
		listener = hotkey.NewListener(cfg.UI.DismissKeys)
		go listener.Start()
		go hotkey.Forward(listener, surface.AckCurrent)
		log.Printf("Dismiss hotkey ready (%s)", strings.Join(cfg.UI.DismissKeys, "+"))
	}

	if console, ok := surface.(*ui.ConsoleUI); ok {
		// Raw mode swallows Ctrl+C, so the console reports it instead.
		console.OnInterrupt = stop
		go func() {
			if err := console.Run(ctx); err != nil {
				slog.Error("[UI] console stopped", "error", err)
			}
		}()
	}

	log.Println("Ready! Pair from Gadgetbridge as a Bangle.js. Ctrl+C to quit.")

	// Main loop owns the display until shutdown.
	loop := &watch.Loop{Events: events, Display: display, SleepTimeout: cfg.Display.SleepTimeout}
	if err := loop.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		log.Printf("ERROR: main loop: %v", err)
	}

	log.Println("Shutting down...")
	if err := server.Close(); err != nil {
		log.Printf("ERROR: %v", err)
	}
	if listener != nil {
		listener.Stop()
	}
	printStats(session.Stats())
	closeMotor()
	log.Println("Goodbye!")
	// Exit directly to avoid gohook's C cleanup crash.
	// The OS reclaims the event hook on process exit.
	os.Exit(0)
}

// newMotor returns the configured haptic motor and a func releasing it.
func newMotor(cfg *config.Config) (watch.Motor, func()) {
	if !cfg.Haptic.Enabled {
		log.Println("Haptic disabled")
		return &haptic.Silent{}, func() {}
	}

	opts := haptic.DefaultOptions()
	opts.Frequency = cfg.Haptic.Frequency
	opts.Duration = cfg.Haptic.Duration
	opts.SamplePath = cfg.Haptic.SamplePath
	buzzer, err := haptic.NewBuzzer(opts)
	if err != nil {
		log.Printf("Haptic unavailable, continuing silently: %v", err)
		return &haptic.Silent{}, func() {}
	}
	log.Println("Haptic buzzer ready")

	var motor watch.Motor = buzzer
	if cfg.Haptic.Intensity > 0 {
		motor = haptic.Fixed{Motor: buzzer, Intensity: uint8(cfg.Haptic.Intensity)}
	}

	closed := false
	return motor, func() {
		if closed {
			return
		}
		closed = true
		if err := buzzer.Close(); err != nil {
			log.Printf("ERROR: %v", err)
		}
	}
}

// loadConfig loads the config from the specified path, or falls back to
// the default config path, or uses built-in defaults.
func loadConfig(path string) (*config.Config, error) {
	if path != "" {
		return config.Load(path)
	}

	// Try default config path
	defaultPath := config.DefaultConfigPath()
	if _, err := os.Stat(defaultPath); err == nil {
		cfg, err := config.Load(defaultPath)
		if err != nil {
			return nil, fmt.Errorf("loading %s: %w", defaultPath, err)
		}
		log.Printf("Config loaded from %s", defaultPath)
		return cfg, nil
	}

	// No config file, use defaults
	log.Println("No config file found, using defaults (run with -init to write one)")
	return config.Default(), nil
}

// printBanner displays the startup configuration summary.
func printBanner(cfg *config.Config) {
	fmt.Println("=== gbwatch ===")
	fmt.Printf("  BLE:     %s (mtu %d)\n", cfg.BLE.Name, cfg.BLE.MTU)
	fmt.Printf("  UI:      %s\n", cfg.UI.Method)
	if len(cfg.UI.DismissKeys) > 0 {
		fmt.Printf("  Dismiss: %s\n", strings.Join(cfg.UI.DismissKeys, "+"))
	}
	fmt.Printf("  Display: sleep after %s\n", cfg.Display.SleepTimeout)
	fmt.Printf("  Haptic:  %v\n", cfg.Haptic.Enabled)
	fmt.Printf("  Clock:   apply system=%v\n", cfg.Clock.ApplySystem)
	fmt.Printf("  Log:     %s\n", cfg.LogLevel)
	fmt.Println("===============")
}

func printStats(st bridge.Stats) {
	log.Printf("Session: %d frames, %d notifications, %d time syncs, %d other, %d unhandled",
		st.Frames, st.Notifications, st.TimeSyncs, st.Other, st.Unhandled)
}
