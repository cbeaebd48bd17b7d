package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"github.com/spf13/afero"
	kingpin "gopkg.in/alecthomas/kingpin.v2"

	"github.com/9seconds/footprint/footlib"
)

const readHeaderTimeout = 10 * time.Second

var (
	version = "dev"

	app = kingpin.New(
		"footprint",
		"Website visitor tracker which notifies you about each visit")

	debug = app.Flag("debug", "Run in debug mode.").
		Short('d').
		Envar("FOOTPRINT_DEBUG").
		Bool()
	envFile = app.Flag("env-file", "Path to .env file with credentials.").
		Default(".env").
		Envar("FOOTPRINT_ENV_FILE").
		String()
	configPath = app.Arg("config-path", "Path to the config.").
			String()
)

func main() {
	app.Version(version)
	kingpin.MustParse(app.Parse(os.Args[1:]))

	rootLogger := newRootLogger(os.Stderr, *debug)

	if err := loadEnvFile(*envFile); err != nil {
		rootLogger.Fatal().Err(err).Msg("Cannot load environment")
	}

	fs := afero.NewOsFs()

	conf, err := parseConfig(fs, *configPath)
	if err != nil {
		rootLogger.Fatal().Err(err).Msg("Cannot parse config")
	}

	ctx, cancel := makeRootContext()
	defer cancel()

	if err := run(ctx, conf, fs, rootLogger); err != nil {
		rootLogger.Fatal().Err(err).Msg("Application has crashed")
	}
}

func run(ctx context.Context, conf *config, fs afero.Fs, rootLogger zerolog.Logger) error {
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	provider, err := makeProvider(fs, conf.Geo)
	if err != nil {
		return err
	}

	if closer, ok := provider.(io.Closer); ok {
		defer closer.Close()
	}

	notifier, err := makeNotifier(conf.Notifier, rootLogger)
	if err != nil {
		return err
	}

	if conf.Notifier.VerifyOnStart {
		go verifyNotifier(ctx, notifier, conf.Notifier.GetTimeout(), rootLogger)
	}

	limiter, closeLimiter, err := makeLimiter(ctx, conf.Admission)
	if err != nil {
		return err
	}

	defer closeLimiter() // nolint: errcheck

	fp, err := footlib.NewFootprint(footlib.Opts{
		Provider:            provider,
		Notifier:            notifier,
		Logger:              newLogger(rootLogger),
		Limiter:             limiter,
		Metrics:             footlib.NewMetrics(registry),
		IPInfoURL:           conf.IPInfoURL,
		GeoCacheTTL:         conf.Geo.GetCacheTTL(),
		GeoTimeout:          conf.Geo.GetTimeout(),
		NotificationTimeout: conf.Notifier.GetTimeout(),
		DispatcherPoolSize:  conf.Notifier.GetWorkerPoolSize(),
		TrustForwardedFor:   conf.TrustForwardedFor,
		AllowOrigin:         conf.AllowOrigin,
		Verbose:             *debug,
	})
	if err != nil {
		return fmt.Errorf("cannot create footprint: %w", err)
	}

	server := &http.Server{
		Addr:              conf.GetListen(),
		Handler:           makeRouter(conf, fp, registry),
		ReadHeaderTimeout: readHeaderTimeout,
	}
	errChan := make(chan error, 1)

	go func() {
		errChan <- server.ListenAndServe()
	}()

	rootLogger.Info().
		Str("listen", conf.GetListen()).
		Str("provider", provider.Name()).
		Str("notifier", notifier.Name()).
		Str("admission", conf.Admission.GetBackend()).
		Msg("Server has started")

	select {
	case <-ctx.Done():
	case err := <-errChan:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server has failed: %w", err)
		}
	}

	rootLogger.Info().Msg("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), conf.GetShutdownTimeout())
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		rootLogger.Warn().Err(err).Msg("Server was not stopped gracefully")
	}

	if err := fp.Shutdown(conf.GetShutdownTimeout()); err != nil {
		rootLogger.Warn().Err(err).Msg("Some notifications were not sent")
	}

	return nil
}

func makeRouter(conf *config, fp http.Handler, gatherer prometheus.Gatherer) http.Handler {
	router := chi.NewRouter()

	router.Use(middleware.RequestID)
	router.Use(middleware.StripSlashes)

	router.Group(func(r chi.Router) {
		r.Use(basicAuth(conf.BasicAuth))

		r.Handle(DefaultStatsPath, fp)
		r.Handle(DefaultMetricsPath, promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	})

	router.Handle("/*", fp)

	return router
}
