package main

import (
	"context"
	"fmt"
	"log"
	"sync"

	"github.com/ayusman/mudra/internal/app"
	"github.com/ayusman/mudra/internal/capture"
	"github.com/ayusman/mudra/internal/config"
	"github.com/ayusman/mudra/internal/detector"
	"github.com/ayusman/mudra/internal/input"
	"github.com/ayusman/mudra/internal/overlay"
	"github.com/ayusman/mudra/internal/server"
	"github.com/ayusman/mudra/internal/store"
	"github.com/ayusman/mudra/internal/tray"
)

type runConfig struct {
	configPath string
	dbPath     string
	camera     int
	addr       string
	backend    string
	pluginDir  string
	headless   bool
	tray       bool
	webDir     string
}

// addrOff disables the HTTP API.
const addrOff = "off"

// openStore loads the configuration and opens the settings store.
func openStore(configPath, dbPath string) (config.Config, *store.Store, error) {
	cfg, err := config.Load(configPath, nil)
	if err != nil {
		return config.Config{}, nil, err
	}
	if dbPath == "" {
		dbPath = cfg.Store.Path
	}

	st, err := store.New(dbPath)
	if err != nil {
		return config.Config{}, nil, fmt.Errorf("failed to initialize store: %w", err)
	}
	return cfg, st, nil
}

// applySettings reloads the configuration with the stored overrides.
func applySettings(cfg config.Config, configPath string, st *store.Store) (config.Config, error) {
	overrides, err := st.Settings().All()
	if err != nil {
		return config.Config{}, fmt.Errorf("failed to read settings: %w", err)
	}
	if len(overrides) == 0 {
		return cfg, nil
	}
	cfg, err = config.Load(configPath, overrides)
	if err != nil {
		return config.Config{}, fmt.Errorf("stored settings (fix with mudra settings unset): %w", err)
	}
	log.Printf("Applied %d stored setting(s)", len(overrides))
	return cfg, nil
}

func newDetector(cfg config.DetectorConfig) detector.Detector {
	mp, err := detector.NewMediaPipeDetector(detector.Config{
		MaxHands:        cfg.MaxHands,
		MinConfidence:   cfg.MinConfidence,
		MinTrackingConf: cfg.MinTrackingConf,
		ModelComplexity: cfg.ModelComplexity,
		ScriptPath:      cfg.Script,
		Python:          cfg.Python,
		IdleShutdown:    cfg.IdleShutdown,
	})
	if err != nil {
		log.Printf("MediaPipe not available (%v), using mock detector", err)
		return detector.NewMockDetector()
	}
	log.Println("Using MediaPipe hand detection")
	return mp
}

func execRun(ctx context.Context, rc runConfig) error {
	cfg, st, err := openStore(rc.configPath, rc.dbPath)
	if err != nil {
		return err
	}
	defer st.Close()

	cfg, err = applySettings(cfg, rc.configPath, st)
	if err != nil {
		return err
	}
	if rc.camera >= 0 {
		cfg.Camera.Device = rc.camera
	}
	if rc.addr != "" {
		cfg.Server.Addr = rc.addr
	}

	opts := input.DefaultOptions()
	opts.Kind = rc.backend
	opts.PluginDir = rc.pluginDir
	backend, err := input.Open(opts)
	if err != nil {
		return err
	}

	var renderer overlay.Renderer
	switch {
	case rc.headless:
	case rc.tray:
		// The tray owns the main thread, which the preview window also needs.
		log.Println("Preview window disabled while the tray is shown")
	default:
		renderer = overlay.NewWindow("mudra", cfg.Control.QuitKey[0], cfg.Control.NavCornerSize)
	}

	det := newDetector(cfg.Detector)
	session, err := app.New(app.Options{
		Config:   cfg,
		Camera:   capture.NewCamera(cfg.Camera),
		Detector: det,
		Backend:  backend,
		Overlay:  renderer,
		Recorder: st.Sessions(),
	})
	if err != nil {
		backend.Close()
		det.Close()
		if renderer != nil {
			renderer.Close()
		}
		return err
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var wg sync.WaitGroup
	if cfg.Server.Addr != addrOff {
		srv := server.New(server.Config{
			StaticDir: rc.webDir,
			Store:     st,
			Session:   session,
			Validate: func(overrides map[string]string) error {
				_, err := config.Load(rc.configPath, overrides)
				return err
			},
		})
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := srv.Run(ctx, cfg.Server.Addr); err != nil {
				log.Printf("Server failed: %v", err)
			}
		}()
	}

	fmt.Printf("mudra session %s (peace sign with the left hand to quit)\n", session.ID())

	if !rc.tray {
		err = session.Run(ctx)
		cancel()
		wg.Wait()
		return err
	}

	// The tray must run on the main goroutine; the session runs beside it.
	t := tray.New(session)
	errCh := make(chan error, 1)
	go func() {
		errCh <- session.Run(ctx)
	}()
	go func() {
		<-ctx.Done()
		t.Quit()
	}()

	t.Run()
	session.Stop()
	err = <-errCh
	cancel()
	wg.Wait()
	return err
}
