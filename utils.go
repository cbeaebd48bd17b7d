package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/cookiejar"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/spf13/afero"

	"github.com/9seconds/footprint/footlib"
	"github.com/9seconds/footprint/notifiers"
	"github.com/9seconds/footprint/providers"
)

const redisPingTimeout = 5 * time.Second

func makeRootContext() (context.Context, context.CancelFunc) {
	rootCtx, cancel := context.WithCancel(context.Background())

	sigChan := make(chan os.Signal, 1)

	go func() {
		for range sigChan {
			cancel()
		}
	}()

	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	return rootCtx, cancel
}

// loadEnvFile populates environment from .env file. Absent file is
// not an error, existing variables are not overridden.
func loadEnvFile(path string) error {
	if path == "" {
		return nil
	}

	if err := godotenv.Load(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("cannot load %s: %w", path, err)
	}

	return nil
}

func makeProvider(fs afero.Fs, conf configGeo) (footlib.GeoProvider, error) {
	params := conf.GetSpecificParameters()

	switch conf.GetProvider() {
	case providers.NameIPAPI:
		return providers.NewIPAPI(makeHTTPClient(conf), params), nil
	case providers.NameIPInfo:
		return providers.NewIPInfo(makeHTTPClient(conf), params), nil
	case providers.NameIPStack:
		prov, err := providers.NewIPStack(makeHTTPClient(conf), params)
		if err != nil {
			return nil, fmt.Errorf("cannot create ipstack provider: %w", err)
		}

		return prov, nil
	case providers.NameKeyCDN:
		return providers.NewKeyCDN(makeHTTPClient(conf)), nil
	case providers.NameIP2C:
		return providers.NewIP2C(makeHTTPClient(conf)), nil
	case providers.NameMaxmind:
		prov, err := providers.NewMaxmind(fs, params)
		if err != nil {
			return nil, fmt.Errorf("cannot create maxmind provider: %w", err)
		}

		return prov, nil
	}

	return nil, fmt.Errorf("unsupported provider name: %s", conf.GetProvider())
}

func makeHTTPClient(conf configGeo) footlib.HTTPClient {
	jar, err := cookiejar.New(nil)
	if err != nil {
		panic(err)
	}

	httpClient := &http.Client{
		Timeout: conf.GetHTTPTimeout(),
		Jar:     jar,
	}

	return footlib.NewHTTPClient(httpClient,
		"footprint/"+version,
		conf.GetRateLimitInterval(),
		conf.GetRateLimitBurst(),
		conf.GetCircuitBreakerOpenThreshold(),
		conf.GetCircuitBreakerHalfOpenTimeout(),
		conf.GetCircuitBreakerResetFailuresTimeout())
}

func makeNotifier(conf configNotifier, rootLogger zerolog.Logger) (footlib.Notifier, error) {
	switch conf.GetKind() {
	case notifiers.NameSMTP:
		notifier, err := notifiers.NewSMTP(conf.SMTP.SMTPConfig())
		if err != nil {
			return nil, fmt.Errorf("cannot create smtp notifier: %w", err)
		}

		return notifier, nil
	case notifiers.NameLog:
		return notifiers.NewLog(rootLogger.With().Str("event_name", "notification").Logger()), nil
	}

	return nil, fmt.Errorf("unsupported notifier: %s", conf.GetKind())
}

// verifyNotifier checks notifier connectivity if it knows how to do
// that. Result is only logged: a broken mail server should not prevent
// visitors from being accepted.
func verifyNotifier(ctx context.Context, notifier footlib.Notifier, timeout time.Duration, log zerolog.Logger) {
	verifier, ok := notifier.(interface{ Verify(context.Context) error })
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	if err := verifier.Verify(ctx); err != nil {
		log.Warn().Str("notifier", notifier.Name()).Err(err).Msg("Notifier is not ready")

		return
	}

	log.Info().Str("notifier", notifier.Name()).Msg("Notifier is ready")
}

func makeLimiter(ctx context.Context, conf configAdmission) (footlib.AdmissionLimiter, func() error, error) {
	noop := func() error { return nil }

	switch conf.GetBackend() {
	case admissionBackendMemory:
		return footlib.NewMemoryAdmissionLimiter(conf.GetWindow(), conf.GetMaxRequests()), noop, nil
	case admissionBackendRedis:
		client := redis.NewClient(&redis.Options{
			Addr:     conf.Redis.GetAddr(),
			Password: conf.Redis.Password,
			DB:       conf.Redis.DB,
		})

		pingCtx, cancel := context.WithTimeout(ctx, redisPingTimeout)
		defer cancel()

		if err := client.Ping(pingCtx).Err(); err != nil {
			client.Close()

			return nil, noop, fmt.Errorf("cannot connect to redis: %w", err)
		}

		limiter := footlib.NewRedisAdmissionLimiter(client,
			conf.Redis.Prefix,
			conf.GetWindow(),
			conf.GetMaxRequests())

		return limiter, client.Close, nil
	}

	return nil, noop, fmt.Errorf("unsupported admission backend: %s", conf.GetBackend())
}
