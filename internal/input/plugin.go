package input

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ayusman/mudra/internal/control"
	"github.com/ayusman/mudra/internal/plugin"
)

// ErrNoKeys is returned for a hotkey with no keys.
var ErrNoKeys = errors.New("no keys")

// Runner executes one plugin request. *plugin.Executor satisfies it.
type Runner interface {
	Execute(ctx context.Context, p *plugin.Plugin, req *plugin.Request) (*plugin.Response, error)
}

// PluginKeys sends keyboard actions to a key-injection plugin and
// delegates pointer actions to another backend.
type PluginKeys struct {
	control.Backend
	plugin  *plugin.Plugin
	runner  Runner
	timeout time.Duration
}

// KeyActions are the plugin actions PluginKeys relies on.
var KeyActions = []string{plugin.ActionKeyPress, plugin.ActionKeyDown, plugin.ActionKeyUp, plugin.ActionHotkey}

// NewPluginKeys finds a plugin implementing every key action and routes
// keyboard events to it. Pointer events go to pointer.
func NewPluginKeys(pointer control.Backend, mgr *plugin.Manager, runner Runner, timeout time.Duration) (*PluginKeys, error) {
	p, err := mgr.Find(KeyActions...)
	if err != nil {
		return nil, fmt.Errorf("key plugin in %s: %w", mgr.PluginDir(), err)
	}
	return &PluginKeys{Backend: pointer, plugin: p, runner: runner, timeout: timeout}, nil
}

// Plugin returns the plugin handling keys.
func (k *PluginKeys) Plugin() *plugin.Plugin {
	return k.plugin
}

func (k *PluginKeys) KeyPress(key string) error {
	return k.send(&plugin.Request{Action: plugin.ActionKeyPress, Key: key})
}

func (k *PluginKeys) KeyDown(key string) error {
	return k.send(&plugin.Request{Action: plugin.ActionKeyDown, Key: key})
}

func (k *PluginKeys) KeyUp(key string) error {
	return k.send(&plugin.Request{Action: plugin.ActionKeyUp, Key: key})
}

func (k *PluginKeys) Hotkey(keys ...string) error {
	if len(keys) == 0 {
		return ErrNoKeys
	}
	return k.send(&plugin.Request{Action: plugin.ActionHotkey, Keys: keys})
}

func (k *PluginKeys) send(req *plugin.Request) error {
	ctx, cancel := context.WithTimeout(context.Background(), k.timeout)
	defer cancel()

	if _, err := k.runner.Execute(ctx, k.plugin, req); err != nil {
		return fmt.Errorf("%s via %s: %w", req.Action, k.plugin.Manifest.Name, err)
	}
	return nil
}
