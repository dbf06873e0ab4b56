package app

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"time"

	"bossfight/internal/catalog"
	"bossfight/internal/config"
	"bossfight/internal/game"
	"bossfight/internal/i18n"
	servernet "bossfight/internal/net"
	"bossfight/internal/net/ws"
	"bossfight/internal/observability"
	"bossfight/internal/state"
	"bossfight/internal/store"
	"bossfight/internal/store/file"
	"bossfight/internal/store/memory"
	"bossfight/internal/store/sqlite"
	"bossfight/internal/telemetry"
	"bossfight/logging"
	logcatalog "bossfight/logging/catalog"
	loggingSinks "bossfight/logging/sinks"
	"bossfight/web"
)

const serviceName = "bossfight"

// App is a fully wired server that has not started listening yet.
type App struct {
	Handler  http.Handler
	Service  *game.Service
	Hub      *ws.Hub
	Router   *logging.Router
	Counters *telemetry.Counters

	logger  telemetry.Logger
	closers []func(context.Context) error
}

// New builds every component described by settings. Call Close to release
// the store, watcher, tracer, and logging router.
func New(ctx context.Context, settings config.Config, logger telemetry.Logger) (a *App, err error) {
	if logger == nil {
		logger = telemetry.WrapLogger(log.Default())
	}
	a = &App{logger: logger}
	defer func() {
		if err != nil {
			_ = a.Close(context.WithoutCancel(ctx))
			a = nil
		}
	}()

	router, err := newRouter(settings)
	if err != nil {
		return a, err
	}
	a.Router = router
	a.closers = append(a.closers, router.Close)

	shutdownTracing, err := observability.SetupTracing(ctx, serviceName, settings.Observability())
	if err != nil {
		return a, fmt.Errorf("failed to set up tracing: %w", err)
	}
	a.closers = append(a.closers, shutdownTracing)

	resolver, err := catalog.Load(settings.CatalogFile)
	if err != nil {
		return a, fmt.Errorf("failed to load catalog: %w", err)
	}
	if settings.CatalogWatch && resolver.Path() != "" {
		watcher, err := catalog.Watch(resolver)
		if err != nil {
			return a, fmt.Errorf("failed to watch catalog: %w", err)
		}
		a.closers = append(a.closers, func(context.Context) error { return watcher.Close() })
		go a.logReloads(watcher, resolver)
	}

	if settings.MediaDir != "" {
		if err := os.MkdirAll(settings.MediaDir, 0o755); err != nil {
			return a, fmt.Errorf("failed to create media dir: %w", err)
		}
	}

	engine := game.Engine{
		Catalog: resolver.Current,
		Policy:  settings.AdvancePolicy,
		Clock:   time.Now,
	}
	a.Counters = telemetry.NewCounters()

	backend, setFallback, err := openStore(ctx, settings, engine.Defaults())
	if err != nil {
		return a, err
	}
	a.closers = append(a.closers, func(context.Context) error { return backend.Close() })

	a.Hub = ws.NewHub(ws.HubConfig{
		Logger:    logger,
		Publisher: router,
		Metrics:   a.Counters,
	})
	a.closers = append(a.closers, func(ctx context.Context) error {
		a.Hub.Close(ctx)
		return nil
	})

	a.Service, err = game.NewService(game.Options{
		Engine:    engine,
		Store:     backend,
		Publisher: router,
		Metrics:   a.Counters,
		Logger:    logger,
	})
	if err != nil {
		return a, err
	}
	setFallback(a.Service.FallbackReporter(settings.StoreKind()))

	locales := i18n.NewResolver(settings.Locale())
	a.Service.SetNotifier(servernet.GameNotifier(a.Hub, locales))

	a.Handler = servernet.NewHTTPHandler(a.Service, servernet.HTTPHandlerConfig{
		Catalog:       resolver,
		Locales:       locales,
		Hub:           a.Hub,
		MediaDir:      settings.MediaDir,
		LevelUpVideo:  settings.LevelUpVideo,
		Pages:         web.Pages(),
		Logger:        logger,
		Counters:      a.Counters,
		LogStats:      router.Stats,
		Observability: settings.Observability(),
	})
	return a, nil
}

func newRouter(settings config.Config) (*logging.Router, error) {
	logConfig := logging.DefaultConfig()
	logConfig.MinimumSeverity = settings.MinSeverity()
	logConfig.Fields = map[string]any{"service": serviceName}
	logConfig.JSON.FilePath = settings.LogJSONFile

	namedSinks := []logging.NamedSink{{Name: "console", Sink: loggingSinks.NewConsole(os.Stdout)}}
	if logConfig.JSON.FilePath != "" {
		f, err := os.OpenFile(logConfig.JSON.FilePath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			return nil, fmt.Errorf("failed to open json log file: %w", err)
		}
		logConfig.EnabledSinks = append(logConfig.EnabledSinks, "json")
		namedSinks = append(namedSinks, logging.NamedSink{Name: "json", Sink: loggingSinks.NewJSON(f, logConfig.JSON.FlushInterval)})
	}

	router, err := logging.NewRouter(logging.SystemClock{}, logConfig, nil, namedSinks)
	if err != nil {
		return nil, fmt.Errorf("failed to construct logging router: %w", err)
	}
	return router, nil
}

// openStore returns the configured backend and a hook for installing its
// load-fallback reporter once the service exists.
func openStore(ctx context.Context, settings config.Config, defaults state.Defaults) (store.Store, func(store.FallbackFunc), error) {
	switch settings.StoreKind() {
	case config.StoreSQLite:
		s, err := sqlite.Open(ctx, settings.SQLitePath, defaults)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open sqlite store: %w", err)
		}
		return s, func(fn store.FallbackFunc) { s.OnFallback = fn }, nil
	case config.StoreMemory:
		return memory.New(defaults), func(store.FallbackFunc) {}, nil
	default:
		s, err := file.New(settings.StateFile, defaults)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open file store: %w", err)
		}
		return s, func(fn store.FallbackFunc) { s.OnFallback = fn }, nil
	}
}

func (a *App) logReloads(watcher *catalog.Watcher, resolver *catalog.Resolver) {
	ctx := context.Background()
	for err := range watcher.Reloads {
		payload := logcatalog.ReloadPayload{Path: resolver.Path()}
		if err != nil {
			payload.Error = err.Error()
			a.logger.Printf("catalog reload rejected, keeping previous roster: %v", err)
			logcatalog.ReloadFailed(ctx, a.Router, payload)
			continue
		}
		payload.Stages = resolver.Current().Len()
		a.logger.Printf("catalog reloaded from %s with %d stages", payload.Path, payload.Stages)
		logcatalog.Reloaded(ctx, a.Router, payload)
	}
}

// Close releases components in reverse construction order.
func (a *App) Close(ctx context.Context) error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](ctx); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}

// Run serves until ctx is canceled, then shuts down within the configured
// timeout.
func Run(ctx context.Context, settings config.Config, logger telemetry.Logger) error {
	if logger == nil {
		logger = telemetry.WrapLogger(log.Default())
	}
	application, err := New(ctx, settings, logger)
	if err != nil {
		return err
	}

	srv := &http.Server{
		Addr:              settings.Addr,
		Handler:           application.Handler,
		ReadHeaderTimeout: 10 * time.Second,
	}
	logger.Printf("server listening on %s (store=%s policy=%s)", srv.Addr, settings.StoreKind(), settings.AdvancePolicy)

	serveErr := make(chan error, 1)
	go func() {
		serveErr <- srv.ListenAndServe()
	}()

	select {
	case err := <-serveErr:
		_ = application.Close(context.Background())
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), settings.ShutdownTimeout)
	defer cancel()
	logger.Printf("shutting down")
	shutdownErr := srv.Shutdown(shutdownCtx)
	if err := application.Close(shutdownCtx); err != nil {
		logger.Printf("failed to close components: %v", err)
	}
	if shutdownErr != nil {
		return fmt.Errorf("shutdown: %w", shutdownErr)
	}
	return nil
}
