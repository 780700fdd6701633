package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/gofrs/flock"
	"github.com/sirupsen/logrus"

	"govsignal-engine/internal/config"
	"govsignal-engine/internal/events"
	"govsignal-engine/internal/fetch"
	"govsignal-engine/internal/group"
	"govsignal-engine/internal/httpapi"
	"govsignal-engine/internal/identity"
	"govsignal-engine/internal/logging"
	"govsignal-engine/internal/persist"
	"govsignal-engine/internal/pipeline"
	"govsignal-engine/internal/registry"
	"govsignal-engine/internal/scheduler"
	"govsignal-engine/internal/secrets"
	"govsignal-engine/internal/store"
)

func main() {
	// Engine data dir: use env if provided (a desktop shell can pass
	// one), else local folder.
	dataDir := os.Getenv("GOVSIGNAL_DATA_DIR")
	if dataDir == "" {
		dataDir = "."
	}
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		logrus.Fatal(err)
	}

	userCfgPath, err := config.EnsureUserFile(dataDir, "config.yml", filepath.Join("config", "config.yml"))
	if err != nil {
		logrus.Fatalf("config bootstrap failed: %v", err)
	}
	userSrcPath, err := config.EnsureUserFile(dataDir, "sources.yml", filepath.Join("config", "sources.yml"))
	if err != nil {
		logrus.Fatalf("sources bootstrap failed: %v", err)
	}

	// Config loads through a closure; the PUT handler reloads with it.
	var cfgVal atomic.Value // stores config.Config
	loadCfg := func() (config.Config, error) {
		cfg, err := config.Load(userCfgPath)
		if err != nil {
			return cfg, err
		}
		cfg, vr := config.NormalizeAndValidate(cfg)
		if !vr.OK() {
			return cfg, fmt.Errorf("invalid config: %s", strings.Join(vr.Errors, "; "))
		}
		return cfg, nil
	}
	cfg, err := loadCfg()
	if err != nil {
		logrus.Fatalf("config load failed (%s): %v", userCfgPath, err)
	}
	cfgVal.Store(cfg)

	log := logging.New(cfg.Log.Level, cfg.Log.Format)

	// One engine per data dir; a second instance would fight over the
	// database and the port.
	lock := flock.New(filepath.Join(dataDir, "engine.lock"))
	locked, err := lock.TryLock()
	if err != nil {
		log.Fatalf("instance lock: %v", err)
	}
	if !locked {
		log.Fatalf("another engine already holds %s", lock.Path())
	}
	defer lock.Unlock()

	dbPath := filepath.Join(dataDir, "govsignal.db")
	db, err := store.Open(dbPath)
	if err != nil {
		log.Fatal(err)
	}
	defer db.Close()
	if err := store.Migrate(db.Pool); err != nil {
		log.Fatal(err)
	}

	// Seed the registry from the user's sources file. After this the
	// database copy is authoritative; editing the file and restarting
	// adds new descriptors without touching operational state.
	reg := registry.NewSQLite(db.Pool, logging.WithComponent(log, "registry"))
	srcs, err := config.LoadSources(userSrcPath)
	if err != nil {
		log.Fatalf("sources load failed (%s): %v", userSrcPath, err)
	}
	added, err := reg.Seed(context.Background(), srcs)
	if err != nil {
		log.Fatalf("registry seed failed: %v", err)
	}
	log.WithFields(logrus.Fields{"file": userSrcPath, "seeded": added}).Info("source registry ready")

	hub := events.NewHub()

	fetcher := fetch.New(fetch.Config{
		FeedTimeout:  time.Duration(cfg.Fetch.FeedTimeoutSeconds) * time.Second,
		BulkTimeout:  time.Duration(cfg.Fetch.BulkTimeoutSeconds) * time.Second,
		PerHostRPS:   cfg.Fetch.PerHostRPS,
		PerHostBurst: cfg.Fetch.PerHostBurst,
		UserAgent:    cfg.Fetch.UserAgent,
		Cache:        &store.HTTPCache{DB: db.Pool},
	}, logging.WithComponent(log, "fetch"))

	anchor := cfg.Pipeline.AnchorLanguage
	grouper := group.New(identity.NewResolver(logging.WithComponent(log, "identity")), anchor, logging.WithComponent(log, "group"))
	gateway := persist.New(db.Pool, anchor, logging.WithComponent(log, "persist"))
	pipe := pipeline.New(reg, fetcher, grouper, gateway, hub, cfg.Pipeline.FeedGroups, logging.WithComponent(log, "pipeline"))

	// Admin token: reuse the keychain copy or mint one. The live value
	// sits in an atomic so rotation over the API takes effect without a
	// restart.
	tok, err := secrets.EnsureAdminToken()
	if err != nil {
		log.Fatalf("admin token: %v", err)
	}
	var tokenVal atomic.Value
	tokenVal.Store(tok)

	mux := httpapi.NewMux(httpapi.Deps{
		DB:          db.Pool,
		Hub:         hub,
		Registry:    reg,
		Pipe:        pipe,
		CfgVal:      &cfgVal,
		TokenVal:    &tokenVal,
		UserCfgPath: userCfgPath,
		LoadCfg:     loadCfg,
	})

	addr := fmt.Sprintf("127.0.0.1:%d", cfg.App.Port)
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		log.Fatal(err)
	}

	srv := &http.Server{
		Handler: httpapi.Chain(mux,
			httpapi.Cors,
			httpapi.RequestID,
			httpapi.AccessLog(logging.WithComponent(log, "http")),
			httpapi.Instrument,
			httpapi.Recover(logging.WithComponent(log, "http")),
		),
		ReadHeaderTimeout: 5 * time.Second,
	}
	// /shutdown needs srv and the rotating token, so it lands here
	// rather than in the router.
	mux.HandleFunc("/shutdown", shutdownHandler(&tokenVal, srv))

	runCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.Polling.Enabled {
		interval := time.Duration(cfg.Polling.IntervalMinutes) * time.Minute
		go scheduler.Every(runCtx, interval, "poll", logging.WithComponent(log, "scheduler"), func(ctx context.Context) error {
			_, err := pipe.Run(ctx, "scheduled", false)
			if errors.Is(err, pipeline.ErrRunInProgress) {
				// a manual run beat the timer; not a failure
				return nil
			}
			return err
		})
	}

	log.WithFields(logrus.Fields{"addr": addr, "db": dbPath}).Info("engine listening")

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Serve(ln) }()

	select {
	case <-runCtx.Done():
		log.Info("signal received, shutting down")
		shCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shCtx)
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal(err)
		}
	}
}
