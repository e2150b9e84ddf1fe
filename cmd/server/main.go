package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cloudwego/hertz/pkg/app/server"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	httpadapter "snowviz/internal/adapter/http"
	staticlibrary "snowviz/internal/adapter/library/static"
	"snowviz/internal/adapter/metrics/fanout"
	metricsinmem "snowviz/internal/adapter/metrics/inmemory"
	metricsprom "snowviz/internal/adapter/metrics/prom"
	gormrepo "snowviz/internal/adapter/repo/gorm"
	"snowviz/internal/adapter/repo/memory"
	sqliterepo "snowviz/internal/adapter/repo/sqlite"
	"snowviz/internal/adapter/stream"
	"snowviz/internal/app/compare"
	"snowviz/internal/app/library"
	"snowviz/internal/app/load"
	"snowviz/internal/app/ports"
	"snowviz/internal/app/replay"
	"snowviz/internal/config"
	"snowviz/internal/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	log, err := logger.New(logger.Config{Level: cfg.Log.Level, Encoding: cfg.Log.Encoding})
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	if err := run(cfg, log); err != nil {
		log.Fatal("server stopped", zap.Error(err))
	}
}

func run(cfg *config.Config, log *zap.Logger) error {
	tuning, err := config.LoadTuning(cfg.TuningPath)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := buildStorage(ctx, cfg.Storage, log)
	if err != nil {
		return err
	}
	defer func() { _ = store.close() }()

	libraryRoot := resolveLibraryRoot(cfg.Library.Root)
	libraryProvider := staticlibrary.Provider{Root: libraryRoot}
	kpiRecorder := metricsinmem.NewRecorder()
	promRecorder := metricsprom.NewRecorder()

	replayUC := replay.UseCase{
		Runs:      store.runs,
		Errors:    store.errors,
		MaxFrames: tuning.MaxFramesPerRequest,
		MaxSpeed:  tuning.MaxSpeed,
	}
	h := httpadapter.Handler{
		LoadUC: load.UseCase{
			TxManager: store.tx,
			Runs:      store.runs,
			Errors:    store.errors,
			Library:   libraryProvider,
			Metrics:   fanout.Recorder{kpiRecorder, promRecorder},
			Logger:    log.Named("load"),
			Substeps:  tuning.Substeps,
			Now:       func() time.Time { return time.Now().UTC() },
		},
		ReplayUC:  replayUC,
		CompareUC: compare.UseCase{Substeps: tuning.Substeps},
		LibraryUC: library.UseCase{Provider: libraryProvider},
		Runs:      store.runs,
		KPI:       kpiRecorder,
		Logger:    log.Named("http"),
	}

	api := server.Default(server.WithHostPorts(cfg.Server.HTTPAddr))
	h.RegisterRoutes(api)

	streamSrv := &http.Server{
		Addr: cfg.Server.StreamAddr,
		Handler: stream.NewServer(replayUC, log.Named("stream"),
			stream.WithFrameRate(tuning.FrameRateHz),
			stream.WithDefaultSpeed(tuning.DefaultSpeed),
		).Routes(promRecorder.Handler()),
		ReadHeaderTimeout: 10 * time.Second,
	}

	log.Info("snowviz server starting",
		zap.String("http_addr", cfg.Server.HTTPAddr),
		zap.String("stream_addr", cfg.Server.StreamAddr),
		zap.String("storage", string(cfg.Storage.Backend())),
		zap.String("library_root", libraryRoot),
		zap.Int("substeps", tuning.Substeps),
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := api.Run(); err != nil && gctx.Err() == nil {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		if err := streamSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("stream server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return errors.Join(api.Shutdown(shutdownCtx), streamSrv.Shutdown(shutdownCtx))
	})
	return g.Wait()
}

type storage struct {
	runs   ports.RunRepository
	errors ports.ActionErrorRepository
	tx     ports.TxManager
	close  func() error
}

func buildStorage(ctx context.Context, cfg config.StorageConfig, log *zap.Logger) (storage, error) {
	switch cfg.Backend() {
	case config.StoragePostgres:
		db, err := gormrepo.OpenPostgres(cfg.DSN)
		if err != nil {
			return storage{}, fmt.Errorf("open postgres: %w", err)
		}
		applied, err := gormrepo.ApplyMigrations(ctx, db, os.DirFS(cfg.MigrationsDir))
		if err != nil {
			return storage{}, fmt.Errorf("apply migrations from %s: %w", cfg.MigrationsDir, err)
		}
		log.Info("migrations applied", zap.Strings("files", applied))
		sqlDB, err := db.DB()
		if err != nil {
			return storage{}, err
		}
		return storage{
			runs:   gormrepo.NewRunRepo(db),
			errors: gormrepo.NewActionErrorRepo(db),
			tx:     gormrepo.NewTxManager(db),
			close:  sqlDB.Close,
		}, nil
	case config.StorageSQLite:
		db, err := sqliterepo.Open(cfg.SQLitePath)
		if err != nil {
			return storage{}, fmt.Errorf("open sqlite: %w", err)
		}
		return storage{
			runs:   sqliterepo.NewRunRepo(db),
			errors: sqliterepo.NewActionErrorRepo(db),
			tx:     sqliterepo.NewTxManager(db),
			close:  db.Close,
		}, nil
	default:
		store := memory.NewStore()
		return storage{
			runs:   memory.NewRunRepo(store),
			errors: memory.NewActionErrorRepo(store),
			tx:     memory.NewTxManager(store),
			close:  func() error { return nil },
		}, nil
	}
}

// resolveLibraryRoot prefers the configured root and falls back to the
// repository's plans directory.
func resolveLibraryRoot(configured string) string {
	if configured != "" {
		return configured
	}
	for _, candidate := range []string{"./plans", "../../plans"} {
		if info, err := os.Stat(candidate); err == nil && info.IsDir() {
			return candidate
		}
	}
	return "./plans"
}
