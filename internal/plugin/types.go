// Package plugin discovers and runs out-of-process key injectors. A plugin is
// a directory holding a plugin.json manifest and an executable that reads one
// JSON Request on stdin and writes one JSON Response on stdout.
package plugin

import (
	"encoding/json"
	"slices"
)

// Key actions a plugin may implement.
const (
	ActionKeyPress = "key-press"
	ActionKeyDown  = "key-down"
	ActionKeyUp    = "key-up"
	ActionHotkey   = "hotkey"
)

// Manifest describes a plugin's metadata and the actions it implements.
type Manifest struct {
	Name        string   `json:"name"`
	Version     string   `json:"version"`
	Description string   `json:"description"`
	Executable  string   `json:"executable"`
	Actions     []string `json:"actions"`
}

// Supports reports whether the manifest lists action.
func (m Manifest) Supports(action string) bool {
	return slices.Contains(m.Actions, action)
}

// Request is sent to a plugin on stdin.
type Request struct {
	Action string   `json:"action"`
	Key    string   `json:"key,omitempty"`
	Keys   []string `json:"keys,omitempty"`
}

// Response is read from a plugin's stdout.
type Response struct {
	Success bool            `json:"success"`
	Error   string          `json:"error,omitempty"`
	Data    json.RawMessage `json:"data,omitempty"`
}

// Plugin is a discovered plugin with its manifest and location.
type Plugin struct {
	Manifest   Manifest
	Path       string
	Executable string
}
