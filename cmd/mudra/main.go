package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/peterbourgon/ff/v3"
	"github.com/peterbourgon/ff/v3/ffcli"
)

func main() {
	if err := run(); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(0)
		}
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return buildCLI().ParseAndRun(ctx, os.Args[1:])
}

// commonFlags registers the flags every command shares.
func commonFlags(fs *flag.FlagSet) (configPath, dbPath *string) {
	configPath = fs.String("config", "", "Config file (TOML); defaults to ~/.config/mudra/config.toml")
	dbPath = fs.String("db", "", "Settings database; defaults to store.path from the config")
	return configPath, dbPath
}

func buildCLI() *ffcli.Command {
	// Root command runs gesture control
	rootFlagSet := flag.NewFlagSet("mudra", flag.ExitOnError)
	rootConfig, rootDB := commonFlags(rootFlagSet)
	camera := rootFlagSet.Int("camera", -1, "Camera device index; -1 uses camera.device from the config")
	addr := rootFlagSet.String("addr", "", "API listen address; defaults to server.addr, \"off\" disables the API")
	backend := rootFlagSet.String("backend", "robot", "Input backend: robot or log (dry run)")
	plugins := rootFlagSet.String("plugins", "", "Plugin directory; keyboard actions go to a key plugin found there")
	headless := rootFlagSet.Bool("headless", false, "Run without the preview window")
	withTray := rootFlagSet.Bool("tray", false, "Show the system tray menu")
	webDir := rootFlagSet.String("web", "", "Directory of static files served by the API")

	// Settings command
	settingsFlagSet := flag.NewFlagSet("mudra settings", flag.ExitOnError)
	settingsConfig, settingsDB := commonFlags(settingsFlagSet)

	settingsCmd := &ffcli.Command{
		Name:       "settings",
		ShortUsage: "mudra settings [flags] [list | set key=value... | unset key...]",
		ShortHelp:  "Show or change persisted setting overrides",
		FlagSet:    settingsFlagSet,
		Options:    []ff.Option{ff.WithEnvVarPrefix("MUDRA")},
		Exec: func(_ context.Context, args []string) error {
			return execSettings(*settingsConfig, *settingsDB, args, os.Stdout)
		},
	}

	// Sessions command
	sessionsFlagSet := flag.NewFlagSet("mudra sessions", flag.ExitOnError)
	sessionsConfig, sessionsDB := commonFlags(sessionsFlagSet)
	sessionsLimit := sessionsFlagSet.Int("limit", 10, "Number of sessions to show")

	sessionsCmd := &ffcli.Command{
		Name:       "sessions",
		ShortUsage: "mudra sessions [flags]",
		ShortHelp:  "List recent gesture control sessions",
		FlagSet:    sessionsFlagSet,
		Options:    []ff.Option{ff.WithEnvVarPrefix("MUDRA")},
		Exec: func(_ context.Context, _ []string) error {
			return execSessions(*sessionsConfig, *sessionsDB, *sessionsLimit, os.Stdout)
		},
	}

	return &ffcli.Command{
		ShortUsage:  "mudra [flags] [<subcommand>]",
		ShortHelp:   "Control the mouse and keyboard with hand gestures",
		LongHelp:    longHelp,
		FlagSet:     rootFlagSet,
		Options:     []ff.Option{ff.WithEnvVarPrefix("MUDRA")},
		Subcommands: []*ffcli.Command{settingsCmd, sessionsCmd},
		Exec: func(ctx context.Context, _ []string) error {
			return execRun(ctx, runConfig{
				configPath: *rootConfig,
				dbPath:     *rootDB,
				camera:     *camera,
				addr:       *addr,
				backend:    *backend,
				pluginDir:  *plugins,
				headless:   *headless,
				tray:       *withTray,
				webDir:     *webDir,
			})
		},
	}
}

const longHelp = `Right hand:
  Open palm            Move the cursor
  Pinch                Drag
  Swipe right          Left click (right click with the middle finger up)

Left hand:
  Tilted palm down     Scroll
  Fist in top left     Hold to go back
  Fist in top right    Hold to go forward
  Thumb out            Space
  Pinky out            Toggle shift
  Peace sign           Hold to quit`
