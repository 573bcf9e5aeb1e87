package main

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/ayusman/mudra/internal/config"
	"github.com/ayusman/mudra/internal/store"
)

func testPaths(t *testing.T) (configPath, dbPath string) {
	t.Helper()
	dir := t.TempDir()
	configPath = filepath.Join(dir, "config.toml")
	if err := os.WriteFile(configPath, nil, 0o644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	return configPath, filepath.Join(dir, "data", "mudra.db")
}

func TestSettingsCommand(t *testing.T) {
	configPath, dbPath := testPaths(t)

	steps := []struct {
		name    string
		args    []string
		wantErr bool
		wantOut string
	}{
		{"empty list shows keys", nil, false, "control.pinch_threshold"},
		{"set valid", []string{"set", "control.pinch_threshold=0.06", "control.quit_key=q"}, false, "Saved 2 setting(s)"},
		{"list shows value", []string{"list"}, false, "0.06"},
		{"set invalid", []string{"set", "control.pinch_threshold=3"}, true, ""},
		{"set unknown", []string{"set", "control.teleport=1"}, true, ""},
		{"set malformed", []string{"set", "control.quit_key"}, true, ""},
		{"unset", []string{"unset", "control.quit_key"}, false, "Removed 1 setting(s)"},
		{"unset missing", []string{"unset", "control.quit_key"}, true, ""},
		{"unknown subcommand", []string{"frobnicate"}, true, ""},
	}

	for _, tt := range steps {
		t.Run(tt.name, func(t *testing.T) {
			var out bytes.Buffer
			err := execSettings(configPath, dbPath, tt.args, &out)
			if (err != nil) != tt.wantErr {
				t.Fatalf("execSettings(%v) error = %v, wantErr %v", tt.args, err, tt.wantErr)
			}
			if tt.wantOut != "" && !strings.Contains(out.String(), tt.wantOut) {
				t.Errorf("output %q does not contain %q", out.String(), tt.wantOut)
			}
		})
	}

	st, err := store.New(dbPath)
	if err != nil {
		t.Fatalf("store.New() error = %v", err)
	}
	defer st.Close()
	if v, err := st.Settings().Get("control.pinch_threshold"); err != nil || v != "0.06" {
		t.Errorf("pinch_threshold = %q, %v; want 0.06", v, err)
	}
}

func TestApplySettings(t *testing.T) {
	configPath, dbPath := testPaths(t)

	cfg, st, err := openStore(configPath, dbPath)
	if err != nil {
		t.Fatalf("openStore() error = %v", err)
	}
	defer st.Close()

	if err := st.Settings().Set("control.nav_hold_duration", "2s"); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	cfg, err = applySettings(cfg, configPath, st)
	if err != nil {
		t.Fatalf("applySettings() error = %v", err)
	}
	if cfg.Control.NavHoldDuration != 2*time.Second {
		t.Errorf("NavHoldDuration = %v, want 2s", cfg.Control.NavHoldDuration)
	}

	if err := st.Settings().Set("control.smoothing_factor", "0"); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	if _, err := applySettings(cfg, configPath, st); !errors.Is(err, config.ErrInvalid) {
		t.Errorf("applySettings() error = %v, want ErrInvalid", err)
	}
}

func TestListSessions(t *testing.T) {
	configPath, dbPath := testPaths(t)

	var out bytes.Buffer
	if err := execSessions(configPath, dbPath, 10, &out); err != nil {
		t.Fatalf("execSessions() error = %v", err)
	}
	if !strings.Contains(out.String(), "No sessions recorded") {
		t.Errorf("empty output = %q", out.String())
	}

	st, err := store.New(dbPath)
	if err != nil {
		t.Fatalf("store.New() error = %v", err)
	}
	start := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	st.Sessions().Start("done-session", start)
	st.Sessions().Finish("done-session", start.Add(90*time.Second), 2700, "quit gesture")
	st.Sessions().Start("live-session", start.Add(time.Hour))
	st.Close()

	out.Reset()
	if err := execSessions(configPath, dbPath, 10, &out); err != nil {
		t.Fatalf("execSessions() error = %v", err)
	}
	got := out.String()
	for _, want := range []string{"done-session", "1m30s", "2700", "quit gesture", "live-session", "running"} {
		if !strings.Contains(got, want) {
			t.Errorf("output missing %q:\n%s", want, got)
		}
	}
	if strings.Index(got, "live-session") > strings.Index(got, "done-session") {
		t.Error("sessions should be listed newest first")
	}
}

func TestBuildCLI(t *testing.T) {
	root := buildCLI()
	names := map[string]bool{}
	for _, sub := range root.Subcommands {
		names[sub.Name] = true
	}
	for _, want := range []string{"settings", "sessions"} {
		if !names[want] {
			t.Errorf("missing subcommand %q", want)
		}
	}
	for _, flag := range []string{"camera", "config", "db", "addr", "backend", "plugins", "headless", "tray"} {
		if root.FlagSet.Lookup(flag) == nil {
			t.Errorf("missing flag -%s", flag)
		}
	}
}
