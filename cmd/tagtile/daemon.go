package main

import (
	"context"
	"encoding/json"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/tagtile/tagtile/internal/config"
	"github.com/tagtile/tagtile/internal/ipc"
	"github.com/tagtile/tagtile/internal/pidfile"
	"github.com/tagtile/tagtile/internal/platform"
	"github.com/tagtile/tagtile/internal/runtimepath"
	"github.com/tagtile/tagtile/internal/wm"
)

func runDaemon() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slogLevel(cfg.LogLevel),
	}))

	pidPath, err := runtimepath.PIDPath()
	if err != nil {
		log.Fatalf("Failed to resolve runtime dir: %v", err)
	}
	if err := pidfile.Acquire(pidPath); err != nil {
		log.Fatalf("%v", err)
	}
	defer pidfile.Release(pidPath)

	settings, err := settingsFromConfig(cfg)
	if err != nil {
		log.Fatalf("Invalid config: %v", err)
	}

	// The adapter's callbacks only fire once its event stream starts, which
	// happens inside loop.Run, so the loop pointer is set by then.
	var loop *wm.Loop
	adapter, err := platform.NewAdapter(platform.Callbacks{
		Event: func(ev platform.Event) {
			if loop != nil {
				loop.NotifyEvent(ev)
			}
		},
		Hotkey: func(combo string) {
			if loop != nil {
				loop.TriggerHotkey(combo)
			}
		},
	}, logger)
	if err != nil {
		log.Fatalf("Failed to initialize platform adapter: %v", err)
	}
	defer adapter.Close()

	loop = wm.NewLoop(adapter, adapter, adapter, settings, logger)

	server, err := ipc.NewServer(func(req *ipc.Request) *ipc.Response {
		return loop.Submit(req)
	}, logger)
	if err != nil {
		log.Fatalf("Failed to create IPC server: %v", err)
	}
	if err := server.Start(); err != nil {
		log.Fatalf("Failed to start IPC server: %v", err)
	}
	defer server.Stop()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM, syscall.SIGHUP)
	go func() {
		for sig := range sigCh {
			if sig == syscall.SIGHUP {
				reloadConfig(loop, logger)
				continue
			}
			cancel()
			return
		}
	}()

	// Watch the config file so edits apply without a restart. SIGHUP stays
	// as the explicit fallback.
	configPath, err := config.DefaultConfigPath()
	if err == nil {
		stop := make(chan struct{})
		defer close(stop)
		go func() {
			err := config.Watch(configPath, func(newCfg *config.Config) {
				newSettings, err := settingsFromConfig(newCfg)
				if err != nil {
					logger.Warn("ignoring config update", "error", err)
					return
				}
				loop.Reload(newSettings)
			}, stop, logger)
			if err != nil {
				logger.Warn("config watch unavailable", "error", err)
			}
		}()
	}

	logger.Info("daemon started", "pid", os.Getpid())
	if err := loop.Run(ctx); err != nil && err != context.Canceled {
		log.Fatalf("Daemon error: %v", err)
	}
	logger.Info("daemon stopped")
}

func reloadConfig(loop *wm.Loop, logger *slog.Logger) {
	cfg, err := config.Load()
	if err != nil {
		logger.Warn("reload failed, keeping current config", "error", err)
		return
	}
	settings, err := settingsFromConfig(cfg)
	if err != nil {
		logger.Warn("reload failed, keeping current config", "error", err)
		return
	}
	loop.Reload(settings)
	logger.Info("config reloaded")
}

// settingsFromConfig converts the YAML config into loop settings, turning
// each binding's payload map back into the wire-form request it stands for.
func settingsFromConfig(cfg *config.Config) (wm.Settings, error) {
	bindings := make(map[string]ipc.Request, len(cfg.Bindings))
	for combo, b := range cfg.Bindings {
		req := ipc.Request{Command: ipc.CommandType(b.Command)}
		if len(b.Payload) > 0 {
			payload, err := json.Marshal(b.Payload)
			if err != nil {
				return wm.Settings{}, err
			}
			req.Payload = payload
		}
		bindings[combo] = req
	}

	return wm.Settings{
		NumTags:        cfg.NumTags,
		DefaultLayout:  cfg.DefaultLayout,
		TagLayouts:     cfg.TagLayouts,
		EngineTimeout:  cfg.EngineTimeout.Std(),
		EngineCommands: cfg.Engines,
		Bindings:       bindings,
	}, nil
}

func slogLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
