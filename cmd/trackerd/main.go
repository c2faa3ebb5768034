package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"orbit-tracker/internal/config"
	"orbit-tracker/internal/httpapi"
	"orbit-tracker/internal/logging"
	"orbit-tracker/internal/scheduler"
	"orbit-tracker/internal/tracker"
)

func main() {
	if len(os.Args) > 1 && os.Args[1] == "keyring" {
		os.Exit(runKeyring(os.Args[2:], os.Stdin, os.Stdout, os.Stderr))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "trackerd:", err)
		os.Exit(1)
	}
}

// dataDir is ORBIT_DATA_DIR or the working directory.
func dataDir() string {
	if d := strings.TrimSpace(os.Getenv("ORBIT_DATA_DIR")); d != "" {
		return d
	}
	return "."
}

// loadConfig reads the user config and applies .env and environment overrides.
func loadConfig(dir string) (string, func() (config.Config, error), error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", nil, err
	}
	if err := config.LoadDotEnv(dir); err != nil {
		return "", nil, fmt.Errorf("load .env: %w", err)
	}

	userCfgPath, err := config.EnsureUserConfig(dir)
	if err != nil {
		return "", nil, fmt.Errorf("config bootstrap failed: %w", err)
	}

	load := func() (config.Config, error) {
		cfg, err := config.Load(userCfgPath)
		if err != nil {
			return config.Config{}, fmt.Errorf("config load failed (%s): %w", userCfgPath, err)
		}
		config.OverlayEnv(&cfg, nil)
		return cfg, nil
	}
	return userCfgPath, load, nil
}

func run(ctx context.Context) error {
	dir := dataDir()
	userCfgPath, loadCfg, err := loadConfig(dir)
	if err != nil {
		return err
	}
	raw, err := loadCfg()
	if err != nil {
		return err
	}

	cfg, vr := config.NormalizeAndValidate(raw)
	log := logging.New(cfg.Log)
	for _, w := range vr.Warnings {
		log.WithField("config", userCfgPath).Warn(w)
	}
	if !vr.OK() {
		return fmt.Errorf("invalid config %s:\n- %s", userCfgPath, strings.Join(vr.Errors, "\n- "))
	}

	var cfgVal atomic.Value // stores config.Config
	cfgVal.Store(cfg)

	repo, cp, closeStore, err := openStore(ctx, cfg, dir)
	if err != nil {
		return fmt.Errorf("open %s store: %w", cfg.Store.Backend, err)
	}
	defer func() {
		if err := closeStore(); err != nil {
			log.WithError(err).Warn("close store")
		}
	}()

	svc := tracker.New(repo, tracker.WithLogger(log))

	deps := httpapi.Deps{
		Service:      svc,
		Log:          log,
		CfgVal:       &cfgVal,
		UserCfgPath:  userCfgPath,
		LoadCfg:      loadCfg,
		Checkpointer: cp,
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	mux := httpapi.NewMux(deps)
	if token := cfg.Server.ShutdownToken; token != "" {
		mux.HandleFunc("/shutdown", shutdownHandler(token, cancel))
	}

	ln, err := net.Listen("tcp", cfg.Server.Addr)
	if err != nil {
		return err
	}

	srv := &http.Server{
		Handler:           httpapi.NewHandler(mux, deps, cfg),
		ReadHeaderTimeout: time.Duration(cfg.Server.ReadHeaderTimeoutSeconds) * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.WithFields(logrus.Fields{
			"addr":    ln.Addr().String(),
			"backend": svc.Backend(),
		}).Info("trackerd listening")
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		sctx, scancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer scancel()
		log.Info("shutting down")
		return srv.Shutdown(sctx)
	})

	if cp != nil && cfg.Store.SQLite.CheckpointSeconds > 0 {
		every := time.Duration(cfg.Store.SQLite.CheckpointSeconds) * time.Second
		g.Go(func() error {
			scheduler.Every(gctx, log, every, "wal-checkpoint", cp.Checkpoint)
			return nil
		})
	}

	return g.Wait()
}
