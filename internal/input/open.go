package input

import (
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/ayusman/mudra/internal/control"
	"github.com/ayusman/mudra/internal/plugin"
)

// ErrUnknownBackend is returned by Open for an unsupported kind.
var ErrUnknownBackend = errors.New("unknown input backend")

// Backend kinds accepted by Open.
const (
	KindRobot = "robot"
	KindLog   = "log"
)

// Options selects and configures a backend.
type Options struct {
	Kind string

	// PluginDir, when set, routes keyboard actions to the first plugin
	// there that implements every key action.
	PluginDir     string
	PluginTimeout time.Duration

	// Screen size for the dry-run backend.
	Width  int
	Height int
}

// DefaultOptions returns the robotgo backend with no plugins.
func DefaultOptions() Options {
	return Options{
		Kind:          KindRobot,
		PluginTimeout: 2 * time.Second,
		Width:         1920,
		Height:        1080,
	}
}

// Open builds the backend described by opts, wrapped in Safe.
func Open(opts Options) (*Safe, error) {
	var b control.Backend
	switch opts.Kind {
	case KindRobot, "":
		b = NewRobot()
	case KindLog:
		b = NewLog(opts.Width, opts.Height)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownBackend, opts.Kind)
	}

	if opts.PluginDir != "" {
		mgr := plugin.NewManager(opts.PluginDir)
		if err := mgr.Discover(); err != nil {
			return nil, fmt.Errorf("discover plugins: %w", err)
		}
		keys, err := NewPluginKeys(b, mgr, plugin.NewExecutor(opts.PluginTimeout), opts.PluginTimeout)
		if err != nil {
			return nil, err
		}
		log.Printf("Routing keys through plugin %s", keys.Plugin().Manifest.Name)
		b = keys
	}

	return NewSafe(b), nil
}
