package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all application configuration.
type Config struct {
	BLE      BLEConfig     `yaml:"ble"`
	Notify   NotifyConfig  `yaml:"notify"`
	UI       UIConfig      `yaml:"ui"`
	Display  DisplayConfig `yaml:"display"`
	Haptic   HapticConfig  `yaml:"haptic"`
	Clock    ClockConfig   `yaml:"clock"`
	LogLevel string        `yaml:"log_level"`
}

// BLEConfig holds peripheral settings.
type BLEConfig struct {
	Name             string        `yaml:"name"`              // advertised local name
	MTU              int           `yaml:"mtu"`               // max bytes per TX notification
	ReadvertiseDelay time.Duration `yaml:"readvertise_delay"` // e.g. "500ms"
}

// NotifyConfig holds notification settings.
type NotifyConfig struct {
	SendDismiss bool `yaml:"send_dismiss"` // tell the phone when a notification is acknowledged
}

// UIConfig holds dialog settings.
type UIConfig struct {
	Method      string   `yaml:"method"` // "log", "alert", or "console"
	DismissKeys []string `yaml:"dismiss_keys"`
}

// DisplayConfig holds screen settings.
type DisplayConfig struct {
	SleepTimeout time.Duration `yaml:"sleep_timeout"` // 0 keeps the display on
}

// HapticConfig holds vibration settings.
type HapticConfig struct {
	Enabled    bool          `yaml:"enabled"`
	Intensity  int           `yaml:"intensity"` // 0-255, 0 uses the notification default
	Duration   time.Duration `yaml:"duration"`
	Frequency  float64       `yaml:"frequency"`   // Hz
	SamplePath string        `yaml:"sample_path"` // optional WAV played instead of a tone
}

// ClockConfig holds time-sync settings.
type ClockConfig struct {
	ApplySystem bool `yaml:"apply_system"` // also set the host clock (needs CAP_SYS_TIME)
}

// DefaultConfigDir returns the default config directory path.
func DefaultConfigDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "gbwatch")
}

// DefaultConfigPath returns the default config file path.
func DefaultConfigPath() string {
	return filepath.Join(DefaultConfigDir(), "config.yaml")
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		BLE: BLEConfig{
			Name:             "Espruino",
			MTU:              20,
			ReadvertiseDelay: 500 * time.Millisecond,
		},
		Notify: NotifyConfig{
			SendDismiss: false,
		},
		UI: UIConfig{
			Method:      "log",
			DismissKeys: []string{"ctrl", "shift", "d"},
		},
		Display: DisplayConfig{
			SleepTimeout: 10 * time.Second,
		},
		Haptic: HapticConfig{
			Enabled:   true,
			Duration:  120 * time.Millisecond,
			Frequency: 180,
		},
		Clock: ClockConfig{
			ApplySystem: false,
		},
		LogLevel: "info",
	}
}

// Load reads and parses a YAML config file. Missing fields are filled
// with defaults. Tilde (~) in haptic.sample_path is expanded to the user's
// home directory.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	cfg.Haptic.SamplePath = expandTilde(cfg.Haptic.SamplePath)

	return cfg, nil
}

// Validate checks the config for invalid values.
func (c *Config) Validate() error {
	if c.BLE.Name == "" {
		return fmt.Errorf("ble.name must not be empty")
	}
	// 20 fits the default ATT MTU; BlueZ negotiates at most 512.
	if c.BLE.MTU < 20 || c.BLE.MTU > 512 {
		return fmt.Errorf("ble.mtu must be between 20 and 512, got %d", c.BLE.MTU)
	}
	if c.BLE.ReadvertiseDelay < 0 {
		return fmt.Errorf("ble.readvertise_delay must be >= 0")
	}

	switch c.UI.Method {
	case "log", "alert", "console":
	default:
		return fmt.Errorf("ui.method must be \"log\", \"alert\", or \"console\", got %q", c.UI.Method)
	}

	if c.Display.SleepTimeout < 0 {
		return fmt.Errorf("display.sleep_timeout must be >= 0")
	}

	if c.Haptic.Enabled {
		if c.Haptic.Intensity < 0 || c.Haptic.Intensity > 255 {
			return fmt.Errorf("haptic.intensity must be between 0 and 255, got %d", c.Haptic.Intensity)
		}
		if c.Haptic.Duration <= 0 {
			return fmt.Errorf("haptic.duration must be > 0")
		}
		if c.Haptic.SamplePath == "" && c.Haptic.Frequency <= 0 {
			return fmt.Errorf("haptic.frequency must be > 0")
		}
	}

	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("log_level must be debug, info, warn, or error, got %q", c.LogLevel)
	}

	return nil
}

// ParseLogLevel maps a log_level string to a slog.Level. Unknown values
// map to info.
func ParseLogLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

const defaultHeader = `# gbwatch configuration
# Generated with default values. Edit and restart gbwatch to apply.
# ui.method: log | alert | console
`

// WriteDefault writes the default config to DefaultConfigPath. If a file
// already exists it is left alone and WriteDefault returns ("", nil).
func WriteDefault() (string, error) {
	path := DefaultConfigPath()
	if _, err := os.Stat(path); err == nil {
		return "", nil
	} else if !errors.Is(err, os.ErrNotExist) {
		return "", fmt.Errorf("checking config file: %w", err)
	}

	data, err := yaml.Marshal(Default())
	if err != nil {
		return "", fmt.Errorf("encoding default config: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return "", fmt.Errorf("creating config dir: %w", err)
	}
	if err := os.WriteFile(path, append([]byte(defaultHeader), data...), 0644); err != nil {
		return "", fmt.Errorf("writing config file: %w", err)
	}
	return path, nil
}

// expandTilde replaces a leading ~ with the user's home directory.
func expandTilde(path string) string {
	if !strings.HasPrefix(path, "~") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, path[1:])
}
