// Package config holds the gesture-control thresholds and runtime settings.
//
// Values come from, in increasing precedence: built-in defaults, a TOML file,
// MUDRA_* environment variables, and persisted setting overrides.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// ErrInvalid is returned when a configuration value is out of range.
var ErrInvalid = errors.New("invalid configuration")

// Config holds the full application configuration.
type Config struct {
	Control  Control        `mapstructure:"control"`
	Camera   CameraConfig   `mapstructure:"camera"`
	Detector DetectorConfig `mapstructure:"detector"`
	Server   ServerConfig   `mapstructure:"server"`
	Store    StoreConfig    `mapstructure:"store"`
}

// Control holds the thresholds and timings of the gesture controllers.
// It is treated as immutable for the lifetime of a session.
type Control struct {
	ClickCooldown   time.Duration `mapstructure:"click_cooldown"`
	DragReleaseTime time.Duration `mapstructure:"drag_release_time"`
	ScrollCooldown  time.Duration `mapstructure:"scroll_cooldown"`
	QuitGestureTime time.Duration `mapstructure:"quit_gesture_time"`
	NavHoldDuration time.Duration `mapstructure:"nav_hold_duration"`

	// ClickMovementThreshold is the index-tip travel between two frames,
	// in normalized units, that reads as a click swipe.
	ClickMovementThreshold float64 `mapstructure:"click_movement_threshold"`
	PinchThreshold         float64 `mapstructure:"pinch_threshold"`
	// ScrollActivationAngle is in degrees.
	ScrollActivationAngle float64 `mapstructure:"scroll_activation_angle"`
	ScrollSensitivity     int     `mapstructure:"scroll_sensitivity"`

	ScreenPadding   float64 `mapstructure:"screen_padding"`
	SmoothingFactor float64 `mapstructure:"smoothing_factor"`
	NavCornerSize   float64 `mapstructure:"nav_corner_size"`

	QuitKey    string   `mapstructure:"quit_key"`
	ThumbKey   string   `mapstructure:"thumb_key"`
	PinkyKey   string   `mapstructure:"pinky_key"`
	NavBack    []string `mapstructure:"nav_back"`
	NavForward []string `mapstructure:"nav_forward"`
}

// CameraConfig holds capture and frame pacing settings.
type CameraConfig struct {
	Device          int           `mapstructure:"device"`
	Width           int           `mapstructure:"width"`
	Height          int           `mapstructure:"height"`
	Mirror          bool          `mapstructure:"mirror"`
	ActiveFPS       int           `mapstructure:"active_fps"`
	IdleFPS         int           `mapstructure:"idle_fps"`
	IdleTimeout     time.Duration `mapstructure:"idle_timeout"`
	MotionThreshold float64       `mapstructure:"motion_threshold"`
}

// DetectorConfig mirrors detector.Config for file-based configuration.
type DetectorConfig struct {
	MaxHands        int           `mapstructure:"max_hands"`
	MinConfidence   float64       `mapstructure:"min_confidence"`
	MinTrackingConf float64       `mapstructure:"min_tracking_confidence"`
	ModelComplexity int           `mapstructure:"model_complexity"`
	Script          string        `mapstructure:"script"`
	Python          string        `mapstructure:"python"`
	IdleShutdown    time.Duration `mapstructure:"idle_shutdown"`
}

// ServerConfig holds the local HTTP API settings.
type ServerConfig struct {
	Addr string `mapstructure:"addr"`
}

// StoreConfig holds the settings database location.
type StoreConfig struct {
	Path string `mapstructure:"path"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Control: DefaultControl(),
		Camera: CameraConfig{
			Device:          0,
			Width:           640,
			Height:          480,
			Mirror:          true,
			ActiveFPS:       30,
			IdleFPS:         10,
			IdleTimeout:     2 * time.Second,
			MotionThreshold: 1.0,
		},
		Detector: DetectorConfig{
			MaxHands:        2,
			MinConfidence:   0.7,
			MinTrackingConf: 0.5,
			ModelComplexity: 1,
			IdleShutdown:    30 * time.Second,
		},
		Server: ServerConfig{Addr: "127.0.0.1:8080"},
		Store:  StoreConfig{Path: filepath.Join(homeDir(), ".mudra", "mudra.db")},
	}
}

// DefaultControl returns the stock gesture thresholds.
func DefaultControl() Control {
	return Control{
		ClickCooldown:          300 * time.Millisecond,
		DragReleaseTime:        500 * time.Millisecond,
		ScrollCooldown:         100 * time.Millisecond,
		QuitGestureTime:        2 * time.Second,
		NavHoldDuration:        1500 * time.Millisecond,
		ClickMovementThreshold: 0.05,
		PinchThreshold:         0.04,
		ScrollActivationAngle:  45,
		ScrollSensitivity:      8,
		ScreenPadding:          0.1,
		SmoothingFactor:        0.8,
		NavCornerSize:          0.22,
		QuitKey:                "v",
		ThumbKey:               "space",
		PinkyKey:               "shift",
		NavBack:                []string{"alt", "left"},
		NavForward:             []string{"alt", "right"},
	}
}

// Validate fails fast on thresholds the classifier and controllers cannot work with.
func (c Control) Validate() error {
	if !(c.PinchThreshold > 0 && c.PinchThreshold < 1) {
		return fmt.Errorf("%w: pinch_threshold must be between 0 and 1, got %v", ErrInvalid, c.PinchThreshold)
	}
	if !(c.ScrollActivationAngle > 0 && c.ScrollActivationAngle < 90) {
		return fmt.Errorf("%w: scroll_activation_angle must be between 0 and 90 degrees, got %v", ErrInvalid, c.ScrollActivationAngle)
	}
	if !(c.SmoothingFactor > 0 && c.SmoothingFactor <= 1) {
		return fmt.Errorf("%w: smoothing_factor must be in (0, 1], got %v", ErrInvalid, c.SmoothingFactor)
	}
	if !(c.ScreenPadding >= 0 && c.ScreenPadding < 0.5) {
		return fmt.Errorf("%w: screen_padding must be in [0, 0.5), got %v", ErrInvalid, c.ScreenPadding)
	}
	if !(c.NavCornerSize > 0 && c.NavCornerSize <= 0.5) {
		return fmt.Errorf("%w: nav_corner_size must be in (0, 0.5], got %v", ErrInvalid, c.NavCornerSize)
	}
	if c.ClickMovementThreshold <= 0 {
		return fmt.Errorf("%w: click_movement_threshold must be positive", ErrInvalid)
	}

	durations := map[string]time.Duration{
		"click_cooldown":    c.ClickCooldown,
		"drag_release_time": c.DragReleaseTime,
		"scroll_cooldown":   c.ScrollCooldown,
		"quit_gesture_time": c.QuitGestureTime,
		"nav_hold_duration": c.NavHoldDuration,
	}
	for name, d := range durations {
		if d <= 0 {
			return fmt.Errorf("%w: %s must be positive, got %v", ErrInvalid, name, d)
		}
	}

	if c.ThumbKey == "" || c.PinkyKey == "" {
		return fmt.Errorf("%w: shortcut keys must not be empty", ErrInvalid)
	}
	if len(c.NavBack) == 0 || len(c.NavForward) == 0 {
		return fmt.Errorf("%w: navigation hotkeys must not be empty", ErrInvalid)
	}
	if len(c.QuitKey) != 1 {
		return fmt.Errorf("%w: quit_key must be a single character, got %q", ErrInvalid, c.QuitKey)
	}

	return nil
}

// Validate checks every section.
func (c Config) Validate() error {
	if err := c.Control.Validate(); err != nil {
		return err
	}
	if c.Camera.ActiveFPS <= 0 || c.Camera.IdleFPS <= 0 {
		return fmt.Errorf("%w: camera fps must be positive", ErrInvalid)
	}
	if c.Camera.IdleFPS > c.Camera.ActiveFPS {
		return fmt.Errorf("%w: camera idle_fps must not exceed active_fps", ErrInvalid)
	}
	if c.Detector.MaxHands < 1 {
		return fmt.Errorf("%w: detector max_hands must be at least 1", ErrInvalid)
	}
	return nil
}

// Load reads configuration from the TOML file at path (or the default
// location when path is empty), the environment, and the given overrides.
// Overrides use dotted keys such as "control.pinch_threshold".
// Env var overrides use prefix MUDRA_.
func Load(path string, overrides map[string]string) (Config, error) {
	v := newViper()

	v.SetConfigType("toml")
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.AddConfigPath(filepath.Join(homeDir(), ".config", "mudra"))
		v.SetConfigName("config")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	for key, value := range overrides {
		if !v.IsSet(key) {
			return Config{}, fmt.Errorf("%w: unknown setting %q", ErrInvalid, key)
		}
		v.Set(key, value)
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := c.Validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}

// Keys lists every dotted setting key, sorted.
func Keys() []string {
	keys := newViper().AllKeys()
	sort.Strings(keys)
	return keys
}

// newViper returns a viper instance seeded with defaults and env binding.
func newViper() *viper.Viper {
	v := viper.New()

	d := Default()
	c := d.Control
	v.SetDefault("control.click_cooldown", c.ClickCooldown)
	v.SetDefault("control.drag_release_time", c.DragReleaseTime)
	v.SetDefault("control.scroll_cooldown", c.ScrollCooldown)
	v.SetDefault("control.quit_gesture_time", c.QuitGestureTime)
	v.SetDefault("control.nav_hold_duration", c.NavHoldDuration)
	v.SetDefault("control.click_movement_threshold", c.ClickMovementThreshold)
	v.SetDefault("control.pinch_threshold", c.PinchThreshold)
	v.SetDefault("control.scroll_activation_angle", c.ScrollActivationAngle)
	v.SetDefault("control.scroll_sensitivity", c.ScrollSensitivity)
	v.SetDefault("control.screen_padding", c.ScreenPadding)
	v.SetDefault("control.smoothing_factor", c.SmoothingFactor)
	v.SetDefault("control.nav_corner_size", c.NavCornerSize)
	v.SetDefault("control.quit_key", c.QuitKey)
	v.SetDefault("control.thumb_key", c.ThumbKey)
	v.SetDefault("control.pinky_key", c.PinkyKey)
	v.SetDefault("control.nav_back", c.NavBack)
	v.SetDefault("control.nav_forward", c.NavForward)

	v.SetDefault("camera.device", d.Camera.Device)
	v.SetDefault("camera.width", d.Camera.Width)
	v.SetDefault("camera.height", d.Camera.Height)
	v.SetDefault("camera.mirror", d.Camera.Mirror)
	v.SetDefault("camera.active_fps", d.Camera.ActiveFPS)
	v.SetDefault("camera.idle_fps", d.Camera.IdleFPS)
	v.SetDefault("camera.idle_timeout", d.Camera.IdleTimeout)
	v.SetDefault("camera.motion_threshold", d.Camera.MotionThreshold)

	v.SetDefault("detector.max_hands", d.Detector.MaxHands)
	v.SetDefault("detector.min_confidence", d.Detector.MinConfidence)
	v.SetDefault("detector.min_tracking_confidence", d.Detector.MinTrackingConf)
	v.SetDefault("detector.model_complexity", d.Detector.ModelComplexity)
	v.SetDefault("detector.script", d.Detector.Script)
	v.SetDefault("detector.python", d.Detector.Python)
	v.SetDefault("detector.idle_shutdown", d.Detector.IdleShutdown)

	v.SetDefault("server.addr", d.Server.Addr)
	v.SetDefault("store.path", d.Store.Path)

	v.SetEnvPrefix("MUDRA")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	return v
}

func homeDir() string {
	if home, err := os.UserHomeDir(); err == nil {
		return home
	}
	return "."
}
