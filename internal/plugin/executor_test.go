package plugin

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"
)

// scriptPlugin writes a shell script plugin into a temp dir.
func scriptPlugin(t *testing.T, name, script string, actions ...string) *Plugin {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("skipping test on Windows")
	}

	dir := t.TempDir()
	path := filepath.Join(dir, name+".sh")
	if err := os.WriteFile(path, []byte("#!/bin/sh\n"+script), 0755); err != nil {
		t.Fatalf("failed to write script: %v", err)
	}

	return &Plugin{
		Manifest: Manifest{
			Name:       name,
			Version:    "1.0.0",
			Executable: name + ".sh",
			Actions:    actions,
		},
		Path:       dir,
		Executable: path,
	}
}

func TestExecutor_Execute(t *testing.T) {
	plugin := scriptPlugin(t, "ok", `echo '{"success":true,"data":{"message":"hello"}}'`, ActionKeyPress)

	resp, err := NewExecutor(5*time.Second).Execute(context.Background(), plugin, &Request{Action: ActionKeyPress, Key: "space"})
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if !resp.Success || resp.Error != "" {
		t.Errorf("response = %+v, want success", resp)
	}

	var data map[string]string
	if err := json.Unmarshal(resp.Data, &data); err != nil {
		t.Fatalf("failed to unmarshal response data: %v", err)
	}
	if data["message"] != "hello" {
		t.Errorf("message = %q, want %q", data["message"], "hello")
	}
}

func TestExecutor_Execute_ReadsStdin(t *testing.T) {
	script := `INPUT=$(cat)
echo "{\"success\":true,\"data\":$INPUT}"
`
	plugin := scriptPlugin(t, "echo", script, ActionHotkey)

	req := &Request{Action: ActionHotkey, Keys: []string{"alt", "left"}}
	resp, err := NewExecutor(5*time.Second).Execute(context.Background(), plugin, req)
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}

	var received Request
	if err := json.Unmarshal(resp.Data, &received); err != nil {
		t.Fatalf("failed to unmarshal echoed request: %v", err)
	}
	if received.Action != ActionHotkey {
		t.Errorf("action = %q, want %q", received.Action, ActionHotkey)
	}
	if len(received.Keys) != 2 || received.Keys[0] != "alt" || received.Keys[1] != "left" {
		t.Errorf("keys = %v, want [alt left]", received.Keys)
	}
	if received.Key != "" {
		t.Errorf("key = %q, want it omitted", received.Key)
	}
}

func TestExecutor_Timeout(t *testing.T) {
	plugin := scriptPlugin(t, "slow", "sleep 10\necho '{\"success\":true}'\n", ActionKeyPress)

	_, err := NewExecutor(100*time.Millisecond).Execute(context.Background(), plugin, &Request{Action: ActionKeyPress})
	if !errors.Is(err, ErrTimeout) {
		t.Fatalf("Execute() error = %v, want ErrTimeout", err)
	}
}

func TestExecutor_Execute_Rejected(t *testing.T) {
	plugin := scriptPlugin(t, "reject", `echo '{"success":false,"error":"no such key"}'`, ActionKeyPress)

	resp, err := NewExecutor(5*time.Second).Execute(context.Background(), plugin, &Request{Action: ActionKeyPress, Key: "??"})
	if !errors.Is(err, ErrRejected) {
		t.Fatalf("Execute() error = %v, want ErrRejected", err)
	}
	if resp == nil || resp.Error != "no such key" {
		t.Errorf("response = %+v, want the plugin's error", resp)
	}
}

func TestExecutor_Execute_InvalidJSON(t *testing.T) {
	plugin := scriptPlugin(t, "bad", `echo 'not valid json'`, ActionKeyPress)

	if _, err := NewExecutor(5*time.Second).Execute(context.Background(), plugin, &Request{Action: ActionKeyPress}); err == nil {
		t.Fatal("expected error for invalid JSON, got nil")
	}
}

func TestExecutor_Execute_NonZeroExit(t *testing.T) {
	plugin := scriptPlugin(t, "exit", "echo 'boom' >&2\nexit 1\n", ActionKeyPress)

	_, err := NewExecutor(5*time.Second).Execute(context.Background(), plugin, &Request{Action: ActionKeyPress})
	if err == nil {
		t.Fatal("expected error for non-zero exit, got nil")
	}
	if errors.Is(err, ErrTimeout) || errors.Is(err, ErrRejected) {
		t.Errorf("error = %v, want a plain execution failure", err)
	}
}

func TestExecutor_Execute_CancelledContext(t *testing.T) {
	plugin := scriptPlugin(t, "slow", "sleep 10\n", ActionKeyPress)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := NewExecutor(5*time.Second).Execute(ctx, plugin, &Request{Action: ActionKeyPress}); err == nil {
		t.Fatal("expected error for cancelled context, got nil")
	}
}

func TestManifest_Supports(t *testing.T) {
	m := Manifest{Actions: []string{ActionKeyPress, ActionHotkey}}

	tests := []struct {
		action string
		want   bool
	}{
		{ActionKeyPress, true},
		{ActionHotkey, true},
		{ActionKeyDown, false},
		{"", false},
	}
	for _, tt := range tests {
		if got := m.Supports(tt.action); got != tt.want {
			t.Errorf("Supports(%q) = %v, want %v", tt.action, got, tt.want)
		}
	}
}
