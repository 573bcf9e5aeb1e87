package input

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/ayusman/mudra/internal/control"
	"github.com/ayusman/mudra/internal/plugin"
)

var errFake = errors.New("fake failure")

// fake records calls, fails the primitives listed in fail and panics on
// the ones listed in panics.
type fake struct {
	calls  []string
	fail   map[string]bool
	panics map[string]bool
}

func newFake() *fake {
	return &fake{fail: map[string]bool{}, panics: map[string]bool{}}
}

func (f *fake) do(call string) error {
	name := strings.Fields(call)[0]
	if f.panics[name] {
		panic("boom")
	}
	if f.fail[name] {
		return errFake
	}
	f.calls = append(f.calls, call)
	return nil
}

func (f *fake) MoveCursor(x, y int) error     { return f.do("move") }
func (f *fake) DragTo(x, y int) error         { return f.do("drag") }
func (f *fake) MouseDown() error              { return f.do("down") }
func (f *fake) MouseUp() error                { return f.do("up") }
func (f *fake) Click(b control.Button) error  { return f.do("click " + b.String()) }
func (f *fake) Scroll(amount int) error       { return f.do("scroll") }
func (f *fake) KeyPress(key string) error     { return f.do("press " + key) }
func (f *fake) KeyDown(key string) error      { return f.do("keydown " + key) }
func (f *fake) KeyUp(key string) error        { return f.do("keyup " + key) }
func (f *fake) Hotkey(keys ...string) error   { return f.do("hotkey " + strings.Join(keys, "+")) }
func (f *fake) ScreenSize() (int, int)        { return 800, 600 }
func (f *fake) Position() (int, int) {
	if f.panics["position"] {
		panic("no display")
	}
	return 10, 20
}

func TestSafe_ReleasesOnClose(t *testing.T) {
	inner := newFake()
	s := NewSafe(inner)

	if err := s.MouseDown(); err != nil {
		t.Fatal(err)
	}
	if err := s.KeyDown("shift"); err != nil {
		t.Fatal(err)
	}
	if err := s.KeyDown("ctrl"); err != nil {
		t.Fatal(err)
	}
	if err := s.KeyUp("ctrl"); err != nil {
		t.Fatal(err)
	}

	button, keys := s.Held()
	if !button || len(keys) != 1 || keys[0] != "shift" {
		t.Fatalf("Held() = (%v, %v), want (true, [shift])", button, keys)
	}

	if err := s.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	want := []string{"down", "keydown shift", "keydown ctrl", "keyup ctrl", "up", "keyup shift"}
	if strings.Join(inner.calls, ",") != strings.Join(want, ",") {
		t.Errorf("calls = %v, want %v", inner.calls, want)
	}

	if button, keys := s.Held(); button || len(keys) != 0 {
		t.Errorf("Held() after Close = (%v, %v)", button, keys)
	}
	if err := s.Close(); err != nil {
		t.Errorf("second Close() error = %v", err)
	}
	if err := s.KeyPress("a"); !errors.Is(err, ErrClosed) {
		t.Errorf("KeyPress after Close error = %v, want ErrClosed", err)
	}
}

func TestSafe_FailedPressIsNotTracked(t *testing.T) {
	inner := newFake()
	inner.fail["down"] = true
	inner.fail["keydown"] = true
	s := NewSafe(inner)

	if err := s.MouseDown(); !errors.Is(err, errFake) {
		t.Fatalf("MouseDown() error = %v, want errFake", err)
	}
	if err := s.KeyDown("shift"); !errors.Is(err, errFake) {
		t.Fatalf("KeyDown() error = %v, want errFake", err)
	}
	if button, keys := s.Held(); button || len(keys) != 0 {
		t.Errorf("Held() = (%v, %v), want nothing held", button, keys)
	}
}

func TestSafe_RecoversPanics(t *testing.T) {
	inner := newFake()
	inner.panics["scroll"] = true
	inner.panics["position"] = true
	s := NewSafe(inner)

	if err := s.Scroll(3); !errors.Is(err, ErrPanic) {
		t.Fatalf("Scroll() error = %v, want ErrPanic", err)
	}
	if x, y := s.Position(); x != 0 || y != 0 {
		t.Errorf("Position() = (%d, %d), want zero after panic", x, y)
	}

	// The backend stays usable.
	if err := s.MoveCursor(1, 1); err != nil {
		t.Errorf("MoveCursor() error = %v", err)
	}
	if w, h := s.ScreenSize(); w != 800 || h != 600 {
		t.Errorf("ScreenSize() = (%d, %d)", w, h)
	}
}

func TestSafe_CloseReportsReleaseErrors(t *testing.T) {
	inner := newFake()
	s := NewSafe(inner)
	s.MouseDown()
	s.KeyDown("shift")

	inner.fail["up"] = true
	inner.panics["keyup"] = true

	err := s.Close()
	if !errors.Is(err, errFake) || !errors.Is(err, ErrPanic) {
		t.Errorf("Close() error = %v, want both release failures", err)
	}
}

func TestLog(t *testing.T) {
	l := NewLog(1280, 720)

	if w, h := l.ScreenSize(); w != 1280 || h != 720 {
		t.Errorf("ScreenSize() = (%d, %d)", w, h)
	}
	if x, y := l.Position(); x != 640 || y != 360 {
		t.Errorf("initial Position() = (%d, %d), want centre", x, y)
	}

	l.MoveCursor(5, 6)
	if x, y := l.Position(); x != 5 || y != 6 {
		t.Errorf("Position() = (%d, %d), want (5, 6)", x, y)
	}
	l.DragTo(7, 8)
	if x, y := l.Position(); x != 7 || y != 8 {
		t.Errorf("Position() = (%d, %d), want (7, 8)", x, y)
	}

	if err := l.Hotkey(); !errors.Is(err, ErrNoKeys) {
		t.Errorf("Hotkey() error = %v, want ErrNoKeys", err)
	}
	for _, err := range []error{l.MouseDown(), l.MouseUp(), l.Click(control.ButtonRight), l.Scroll(-8), l.KeyPress("space"), l.KeyDown("shift"), l.KeyUp("shift"), l.Hotkey("alt", "left")} {
		if err != nil {
			t.Errorf("dry-run action error = %v", err)
		}
	}
}

// stubRunner records requests instead of running a process.
type stubRunner struct {
	reqs []*plugin.Request
	err  error
}

func (r *stubRunner) Execute(ctx context.Context, p *plugin.Plugin, req *plugin.Request) (*plugin.Response, error) {
	if _, ok := ctx.Deadline(); !ok {
		return nil, errors.New("missing deadline")
	}
	r.reqs = append(r.reqs, req)
	if r.err != nil {
		return nil, r.err
	}
	return &plugin.Response{Success: true}, nil
}

func keyPluginDir(t *testing.T, actions ...string) string {
	t.Helper()
	dir := t.TempDir()
	pdir := filepath.Join(dir, "keys")
	if err := os.MkdirAll(pdir, 0755); err != nil {
		t.Fatal(err)
	}
	data, _ := json.Marshal(plugin.Manifest{Name: "keys", Executable: "keys", Actions: actions})
	if err := os.WriteFile(filepath.Join(pdir, "plugin.json"), data, 0644); err != nil {
		t.Fatal(err)
	}
	return dir
}

func TestPluginKeys(t *testing.T) {
	mgr := plugin.NewManager(keyPluginDir(t, KeyActions...))
	if err := mgr.Discover(); err != nil {
		t.Fatal(err)
	}

	pointer := newFake()
	runner := &stubRunner{}
	k, err := NewPluginKeys(pointer, mgr, runner, time.Second)
	if err != nil {
		t.Fatalf("NewPluginKeys() error = %v", err)
	}

	k.KeyPress("space")
	k.KeyDown("shift")
	k.KeyUp("shift")
	k.Hotkey("alt", "left")
	k.MoveCursor(1, 2)
	k.Click(control.ButtonLeft)

	wantActions := []string{plugin.ActionKeyPress, plugin.ActionKeyDown, plugin.ActionKeyUp, plugin.ActionHotkey}
	if len(runner.reqs) != len(wantActions) {
		t.Fatalf("plugin got %d requests, want %d", len(runner.reqs), len(wantActions))
	}
	for i, a := range wantActions {
		if runner.reqs[i].Action != a {
			t.Errorf("request %d action = %q, want %q", i, runner.reqs[i].Action, a)
		}
	}
	if runner.reqs[0].Key != "space" || strings.Join(runner.reqs[3].Keys, "+") != "alt+left" {
		t.Errorf("requests carried wrong keys: %+v %+v", runner.reqs[0], runner.reqs[3])
	}
	if strings.Join(pointer.calls, ",") != "move,click left" {
		t.Errorf("pointer calls = %v, want only pointer actions", pointer.calls)
	}

	if err := k.Hotkey(); !errors.Is(err, ErrNoKeys) {
		t.Errorf("Hotkey() error = %v, want ErrNoKeys", err)
	}

	runner.err = plugin.ErrRejected
	if err := k.KeyPress("x"); !errors.Is(err, plugin.ErrRejected) {
		t.Errorf("KeyPress() error = %v, want ErrRejected", err)
	}
}

func TestPluginKeys_NoCapablePlugin(t *testing.T) {
	mgr := plugin.NewManager(keyPluginDir(t, plugin.ActionKeyPress))
	if err := mgr.Discover(); err != nil {
		t.Fatal(err)
	}

	if _, err := NewPluginKeys(newFake(), mgr, &stubRunner{}, time.Second); !errors.Is(err, plugin.ErrPluginNotFound) {
		t.Errorf("NewPluginKeys() error = %v, want ErrPluginNotFound", err)
	}
}

func TestOpen(t *testing.T) {
	opts := DefaultOptions()
	opts.Kind = KindLog

	s, err := Open(opts)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	if w, h := s.ScreenSize(); w != 1920 || h != 1080 {
		t.Errorf("ScreenSize() = (%d, %d)", w, h)
	}
	if err := s.Close(); err != nil {
		t.Errorf("Close() error = %v", err)
	}

	opts.Kind = "telepathy"
	if _, err := Open(opts); !errors.Is(err, ErrUnknownBackend) {
		t.Errorf("Open(telepathy) error = %v, want ErrUnknownBackend", err)
	}

	opts.Kind = KindLog
	opts.PluginDir = keyPluginDir(t, plugin.ActionKeyPress)
	if _, err := Open(opts); !errors.Is(err, plugin.ErrPluginNotFound) {
		t.Errorf("Open() with incapable plugin error = %v, want ErrPluginNotFound", err)
	}

	opts.PluginDir = keyPluginDir(t, KeyActions...)
	if _, err := Open(opts); err != nil {
		t.Errorf("Open() with key plugin error = %v", err)
	}
}
