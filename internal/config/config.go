// Package config provides configuration management for the bridge.
package config

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"runtime"
	"sync"

	"github.com/fsnotify/fsnotify"
	"gopkg.in/yaml.v3"
)

// Tuning holds the conversion parameters for one engine group.
type Tuning struct {
	// PressMS is the pulse on-time in milliseconds.
	PressMS float64 `yaml:"press_ms"`

	// MinHz and MaxHz bound the pulse rate.
	MinHz float64 `yaml:"min_hz"`
	MaxHz float64 `yaml:"max_hz"`

	// Deadzone is the at-rest magnitude threshold.
	Deadzone float64 `yaml:"deadzone"`

	// HoldThreshold is the magnitude above which pulsing switches to a
	// continuous hold.
	HoldThreshold float64 `yaml:"hold_threshold"`

	// EMAAlpha is the smoothing coefficient, in (0, 1].
	EMAAlpha float64 `yaml:"ema_alpha"`
}

// ModeConfig controls how the movement group picks pulse vs. hold.
type ModeConfig struct {
	// SyncWithCapsLockLED drives the movement mode from the Caps Lock
	// LED: LED on means character (hold) mode.
	SyncWithCapsLockLED bool `yaml:"sync_with_capslock_led"`

	// StartInCharacterMode is the fallback when LED sync is off or
	// unsupported.
	StartInCharacterMode bool `yaml:"start_in_character_mode"`
}

// GeneralConfig contains general application settings.
type GeneralConfig struct {
	// DevicePath pins a specific hidraw node; empty means auto-detect.
	DevicePath string `yaml:"device_path,omitempty"`

	// PollIntervalMS is the device poll period in milliseconds.
	PollIntervalMS int `yaml:"poll_interval_ms"`

	// StartOnBoot determines if the bridge starts on login.
	StartOnBoot bool `yaml:"start_on_boot"`

	// APIEnabled enables the local HTTP/WebSocket status API.
	APIEnabled bool `yaml:"api_enabled"`

	// APIPort is the loopback port for the status API.
	APIPort int `yaml:"api_port"`
}

// Config represents the application configuration.
type Config struct {
	// InvertX..SwapYZ adjust axis orientation before routing.
	InvertX   bool `yaml:"invert_x"`
	InvertY   bool `yaml:"invert_y"`
	InvertZ   bool `yaml:"invert_z"`
	InvertYaw bool `yaml:"invert_yaw"`
	SwapYZ    bool `yaml:"swap_y_z"`

	// Move tunes the movement/rotation/pitch engine, Zoom the zoom
	// engine.
	Move Tuning `yaml:"move"`
	Zoom Tuning `yaml:"zoom"`

	Mode ModeConfig `yaml:"mode"`

	// Axes maps logical axis names to key names.
	Axes map[string]string `yaml:"axes"`

	// Buttons maps device button indices to key names or "+"-joined
	// combos.
	Buttons map[int]string `yaml:"buttons"`

	General GeneralConfig `yaml:"general"`
}

// DefaultConfig returns a new Config with sensible defaults, tuned for a
// third-person camera control scheme.
func DefaultConfig() *Config {
	return &Config{
		InvertX:   false,
		InvertY:   true,
		InvertZ:   true,
		InvertYaw: true,
		SwapYZ:    false,
		Move: Tuning{
			PressMS:       20,
			MinHz:         15.0,
			MaxHz:         30.0,
			Deadzone:      0.001,
			HoldThreshold: 0.40,
			EMAAlpha:      0.3,
		},
		Zoom: Tuning{
			PressMS:       10,
			MinHz:         8.0,
			MaxHz:         18.0,
			Deadzone:      0.001,
			HoldThreshold: 0.5,
			EMAAlpha:      0.3,
		},
		Mode: ModeConfig{
			SyncWithCapsLockLED:  true,
			StartInCharacterMode: false,
		},
		Axes: map[string]string{
			"move_left":     "a",
			"move_right":    "d",
			"move_forward":  "w",
			"move_backward": "s",
			"zoom_in":       "page_up",
			"zoom_out":      "page_down",
			"rotate_left":   "delete",
			"rotate_right":  "end",
			"pitch_up":      "up",
			"pitch_down":    "down",
		},
		Buttons: map[int]string{
			0:  "b",
			1:  "alt_l",
			2:  "ctrl_l",
			3:  "shift_l",
			4:  "esc",
			5:  "o",
			6:  "tab",
			7:  "c",
			8:  "space",
			9:  "home",
			10: "m",
			11: "caps_lock",
			12: "i",
			13: "l",
			14: "shift+space",
		},
		General: GeneralConfig{
			PollIntervalMS: 5,
			StartOnBoot:    false,
			APIEnabled:     true,
			APIPort:        18090,
		},
	}
}

// Normalize clamps out-of-range values back to their defaults. Invalid
// settings are never an error here; they fall back silently apart from a
// log line.
func (c *Config) Normalize() {
	def := DefaultConfig()
	normalizeTuning(&c.Move, &def.Move, "move")
	normalizeTuning(&c.Zoom, &def.Zoom, "zoom")

	if c.General.PollIntervalMS <= 0 {
		c.General.PollIntervalMS = def.General.PollIntervalMS
	}
	if c.General.APIPort <= 0 || c.General.APIPort > 65535 {
		c.General.APIPort = def.General.APIPort
	}
	if c.Axes == nil {
		c.Axes = def.Axes
	}
	if c.Buttons == nil {
		c.Buttons = def.Buttons
	}
}

func normalizeTuning(t, def *Tuning, name string) {
	if t.EMAAlpha <= 0 || t.EMAAlpha > 1 {
		log.Printf("Config: %s.ema_alpha %v out of range, using %v", name, t.EMAAlpha, def.EMAAlpha)
		t.EMAAlpha = def.EMAAlpha
	}
	if t.PressMS <= 0 {
		t.PressMS = def.PressMS
	}
	if t.MinHz <= 0 {
		t.MinHz = def.MinHz
	}
	if t.MaxHz < t.MinHz {
		log.Printf("Config: %s.max_hz %v below min_hz %v, using min_hz", name, t.MaxHz, t.MinHz)
		t.MaxHz = t.MinHz
	}
	if t.Deadzone < 0 {
		t.Deadzone = def.Deadzone
	}
	if t.HoldThreshold <= t.Deadzone {
		log.Printf("Config: %s.hold_threshold %v not above deadzone %v, pulse rate will saturate", name, t.HoldThreshold, t.Deadzone)
	}
}

// Manager handles loading and saving configuration.
type Manager struct {
	mu         sync.Mutex
	configPath string
	config     *Config
	onChanged  func()
	watcher    *fsnotify.Watcher
}

// NewManager creates a new configuration manager using the per-OS
// default config location.
func NewManager() (*Manager, error) {
	configPath, err := getConfigPath()
	if err != nil {
		return nil, err
	}

	return &Manager{
		configPath: configPath,
		config:     DefaultConfig(),
	}, nil
}

// NewManagerWithPath creates a manager over an explicit config file.
func NewManagerWithPath(path string) *Manager {
	return &Manager{
		configPath: path,
		config:     DefaultConfig(),
	}
}

// getConfigPath returns the path to the configuration file.
func getConfigPath() (string, error) {
	var configDir string

	switch runtime.GOOS {
	case "darwin":
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		configDir = filepath.Join(home, "Library", "Application Support", "smbridge")
	case "windows":
		appData := os.Getenv("APPDATA")
		if appData == "" {
			home, err := os.UserHomeDir()
			if err != nil {
				return "", err
			}
			appData = filepath.Join(home, "AppData", "Roaming")
		}
		configDir = filepath.Join(appData, "smbridge")
	default:
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		configDir = filepath.Join(home, ".config", "smbridge")
	}

	if err := os.MkdirAll(configDir, 0755); err != nil {
		return "", err
	}

	return filepath.Join(configDir, "config.yaml"), nil
}

// Load reads the configuration from disk. A missing file is not an
// error; defaults stay in effect.
func (m *Manager) Load() error {
	m.mu.Lock()

	data, err := os.ReadFile(m.configPath)
	if os.IsNotExist(err) {
		m.mu.Unlock()
		return nil
	}
	if err != nil {
		m.mu.Unlock()
		return err
	}

	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		m.mu.Unlock()
		return fmt.Errorf("failed to parse %s: %w", m.configPath, err)
	}
	cfg.Normalize()
	m.config = cfg
	onChanged := m.onChanged
	m.mu.Unlock()

	if onChanged != nil {
		onChanged()
	}
	return nil
}

// Save writes the configuration to disk.
func (m *Manager) Save() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	data, err := yaml.Marshal(m.config)
	if err != nil {
		return err
	}

	log.Printf("Config: Saving configuration to %s (%d bytes)", m.configPath, len(data))
	return os.WriteFile(m.configPath, data, 0644)
}

// Get returns the current configuration.
func (m *Manager) Get() *Config {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.config
}

// Set updates the configuration.
func (m *Manager) Set(config *Config) {
	config.Normalize()
	m.mu.Lock()
	m.config = config
	onChanged := m.onChanged
	m.mu.Unlock()
	if onChanged != nil {
		onChanged()
	}
}

// RegisterChangeCallback registers a function to be called when config
// changes (Load, Set, or an on-disk edit seen by Watch).
func (m *Manager) RegisterChangeCallback(fn func()) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.onChanged = fn
}

// Watch starts watching the config file for on-disk edits and reloads it
// when it changes. Stop with StopWatch.
func (m *Manager) Watch() error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}

	// Watch the directory: editors replace the file, which would drop a
	// watch placed on the file itself.
	if err := watcher.Add(filepath.Dir(m.configPath)); err != nil {
		watcher.Close()
		return err
	}

	m.mu.Lock()
	m.watcher = watcher
	m.mu.Unlock()

	go func() {
		for {
			select {
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if event.Name != m.configPath {
					continue
				}
				if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
					continue
				}
				log.Printf("Config: %s changed on disk, reloading", m.configPath)
				if err := m.Load(); err != nil {
					log.Printf("Config: Reload failed: %v", err)
				}
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				log.Printf("Config: Watch error: %v", err)
			}
		}
	}()

	return nil
}

// StopWatch stops the on-disk watch if one is running.
func (m *Manager) StopWatch() {
	m.mu.Lock()
	watcher := m.watcher
	m.watcher = nil
	m.mu.Unlock()
	if watcher != nil {
		watcher.Close()
	}
}
