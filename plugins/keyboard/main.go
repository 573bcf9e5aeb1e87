// Package main provides a keyboard plugin for macOS.
// It injects key presses, held keys and hotkeys via AppleScript.
package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
)

// Request represents the input from the plugin executor.
type Request struct {
	Action string   `json:"action"`
	Key    string   `json:"key,omitempty"`
	Keys   []string `json:"keys,omitempty"`
}

// Response represents the output to the plugin executor.
type Response struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

// modifierMap maps modifier names to AppleScript modifier keys.
var modifierMap = map[string]string{
	"command": "command",
	"cmd":     "command",
	"option":  "option",
	"alt":     "option",
	"control": "control",
	"ctrl":    "control",
	"shift":   "shift",
}

// keyCodes maps named keys to macOS virtual key codes.
var keyCodes = map[string]int{
	"space":     49,
	"enter":     36,
	"return":    36,
	"tab":       48,
	"escape":    53,
	"esc":       53,
	"backspace": 51,
	"delete":    51,
	"left":      123,
	"right":     124,
	"down":      125,
	"up":        126,
}

var errNoKey = errors.New("key is required")

func main() {
	var req Request
	if err := json.NewDecoder(os.Stdin).Decode(&req); err != nil {
		writeResponse(fmt.Errorf("failed to decode request: %w", err))
		return
	}

	script, err := buildScript(req)
	if err != nil {
		writeResponse(err)
		return
	}
	if err := runAppleScript(script); err != nil {
		writeResponse(fmt.Errorf("action %s failed: %w", req.Action, err))
		return
	}
	writeResponse(nil)
}

// buildScript generates the AppleScript for one request.
func buildScript(req Request) (string, error) {
	switch req.Action {
	case "key-press":
		if req.Key == "" {
			return "", errNoKey
		}
		return systemEvents(strokeOf(req.Key)), nil

	case "key-down", "key-up":
		if req.Key == "" {
			return "", errNoKey
		}
		verb := strings.Replace(req.Action, "-", " ", 1)
		if mod, ok := modifierMap[strings.ToLower(req.Key)]; ok {
			return systemEvents(verb + " " + mod), nil
		}
		if code, ok := keyCodes[strings.ToLower(req.Key)]; ok {
			return systemEvents(fmt.Sprintf("%s (key code %d)", verb, code)), nil
		}
		return systemEvents(fmt.Sprintf("%s %q", verb, req.Key)), nil

	case "hotkey":
		if len(req.Keys) == 0 {
			return "", errNoKey
		}
		key := req.Keys[len(req.Keys)-1]
		var mods []string
		for _, m := range req.Keys[:len(req.Keys)-1] {
			mod, ok := modifierMap[strings.ToLower(m)]
			if !ok {
				return "", fmt.Errorf("unknown modifier: %s", m)
			}
			mods = append(mods, mod+" down")
		}
		if len(mods) == 0 {
			return systemEvents(strokeOf(key)), nil
		}
		return systemEvents(fmt.Sprintf("%s using {%s}", strokeOf(key), strings.Join(mods, ", "))), nil
	}

	return "", fmt.Errorf("unknown action: %s", req.Action)
}

// strokeOf returns the AppleScript command that types key once.
func strokeOf(key string) string {
	if code, ok := keyCodes[strings.ToLower(key)]; ok {
		return fmt.Sprintf("key code %d", code)
	}
	return fmt.Sprintf("keystroke %q", key)
}

func systemEvents(cmd string) string {
	return `tell application "System Events" to ` + cmd
}

// writeResponse writes the response for err to stdout.
func writeResponse(err error) {
	resp := Response{Success: err == nil}
	if err != nil {
		resp.Error = err.Error()
	}
	json.NewEncoder(os.Stdout).Encode(resp)
}

// runAppleScript executes an AppleScript command and returns any error.
func runAppleScript(script string) error {
	cmd := exec.Command("osascript", "-e", script)
	output, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("%w: %s", err, string(output))
	}
	return nil
}
