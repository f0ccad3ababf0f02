package service

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"yatube/app/auth"
	"yatube/app/cache"
	"yatube/app/config"
	"yatube/app/media"
	"yatube/app/metrics"
	"yatube/app/repositories"
	"yatube/app/routes"
	"yatube/app/services"
	"yatube/app/views"

	"github.com/gorilla/securecookie"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/sirupsen/logrus"
)

const shutdownTimeout = 10 * time.Second

// App is a fully wired yatube instance.
type App struct {
	Config *config.Config
	Log    logrus.FieldLogger
	Store  repositories.Store
	Cache  cache.Store
	Router http.Handler
}

// NewApp opens the store and cache named by cfg and builds the router.
func NewApp(ctx context.Context, cfg *config.Config, log *logrus.Logger) (*App, error) {
	store, err := openStore(cfg, log)
	if err != nil {
		return nil, err
	}
	pageCache, err := openCache(ctx, cfg)
	if err != nil {
		store.Close()
		return nil, err
	}

	renderer, err := views.New()
	if err != nil {
		store.Close()
		pageCache.Close()
		return nil, err
	}

	var m *metrics.Metrics
	if cfg.MetricsEnabled {
		reg := prometheus.NewRegistry()
		reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
		m = metrics.New(reg)
	}

	key := []byte(cfg.SessionKey)
	if len(key) == 0 {
		log.Warn("SESSION_KEY is not set, sessions will not survive a restart")
		key = securecookie.GenerateRandomKey(32)
	}

	svc := services.New(store, media.NewStorage(cfg.MediaRoot), cfg.PageSize, log, m)
	sessions := auth.New(auth.NewCookieStore(key, false), svc.Users, log)

	router := routes.Setup(routes.Deps{
		Services:  svc,
		Sessions:  sessions,
		Views:     renderer,
		Log:       log,
		Cache:     pageCache,
		CacheTTL:  cfg.CacheTTL,
		Metrics:   m,
		StaticDir: cfg.StaticDir,
		MediaRoot: cfg.MediaRoot,
	})

	return &App{
		Config: cfg,
		Log:    log,
		Store:  store,
		Cache:  pageCache,
		Router: router,
	}, nil
}

// Close releases the cache and the store.
func (a *App) Close() error {
	return errors.Join(a.Cache.Close(), a.Store.Close())
}

// RunAppServer starts the blog and blocks until SIGINT or SIGTERM.
func RunAppServer(args []string) int {
	cfg, log, err := setup()
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return 1
	}
	for i := 0; i < len(args); i++ {
		if args[i] == "--addr" && i+1 < len(args) {
			cfg.Addr = args[i+1]
			break
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := NewApp(ctx, cfg, log)
	if err != nil {
		log.WithError(err).Error("Failed to start")
		return 1
	}
	defer app.Close()

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           app.Router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	log.WithFields(logrus.Fields{
		"addr":      cfg.Addr,
		"db_driver": cfg.DBDriver,
		"cache":     cfg.CacheBackend,
	}).Info("Starting yatube")

	if err := serve(ctx, srv, log); err != nil {
		log.WithError(err).Error("Server error")
		return 1
	}
	log.Info("Server stopped")
	return 0
}

// serve runs srv until ctx is done, then shuts it down gracefully.
func serve(ctx context.Context, srv *http.Server, log logrus.FieldLogger) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	log.Info("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
