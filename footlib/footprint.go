package footlib

import (
	"fmt"
	"net/http"
	"sync"
	"time"
)

const (
	// DefaultIPInfoURL is used by /get-ip-info endpoint.
	DefaultIPInfoURL = "https://ipinfo.io/json"

	defaultIPInfoTimeout = 10 * time.Second
)

// Opts is a set of options for Footprint. Provider, Notifier and Logger
// are mandatory, everything else has sensible defaults.
type Opts struct {
	Provider GeoProvider
	Notifier Notifier
	Logger   Logger

	// Limiter is MemoryAdmissionLimiter with default settings if nil.
	Limiter AdmissionLimiter

	// Metrics could be nil, then nothing is collected.
	Metrics *Metrics

	// IPInfoClient is used to proxy /get-ip-info requests.
	IPInfoClient HTTPClient
	IPInfoURL    string

	GeoCacheTTL         time.Duration
	GeoTimeout          time.Duration
	NotificationTimeout time.Duration
	DispatcherPoolSize  int

	// TrustForwardedFor makes X-Forwarded-For header a source of client
	// identity for admission control. Set it only if footprint is
	// behind a trusted proxy.
	TrustForwardedFor bool

	// AllowOrigin is a value of Access-Control-Allow-Origin header.
	AllowOrigin string

	// Verbose adds error details to HTTP responses.
	Verbose bool
}

// Footprint is a visitor endpoint. It owns all the state: geolocation
// cache, admission limiter and notification worker pool.
type Footprint struct {
	logger       Logger
	metrics      *Metrics
	limiter      AdmissionLimiter
	cache        *GeoCache
	resolver     *GeoResolver
	enricher     *VisitorEnricher
	dispatcher   *NotificationDispatcher
	ipInfoClient HTTPClient
	ipInfoURL    string
	trustXFF     bool
	verbose      bool
	handler      http.Handler

	rwmutex   sync.RWMutex
	closeOnce sync.Once
	closed    bool
}

func (f *Footprint) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	f.handler.ServeHTTP(w, req)
}

// GeoCache returns a cache of geolocation results.
func (f *Footprint) GeoCache() *GeoCache {
	return f.cache
}

// UsageStats returns usage statistics of geolocation provider and
// notifier.
func (f *Footprint) UsageStats() []*UsageStats {
	return []*UsageStats{
		f.resolver.UsageStats(),
		f.dispatcher.UsageStats(),
	}
}

// Shutdown stops accepting visitors and waits until scheduled
// notifications are delivered, but not longer than timeout.
func (f *Footprint) Shutdown(timeout time.Duration) error {
	var err error

	f.rwmutex.Lock()
	f.closed = true
	f.rwmutex.Unlock()

	f.closeOnce.Do(func() {
		err = f.dispatcher.Shutdown(timeout)
	})

	return err
}

func (f *Footprint) isClosed() bool {
	f.rwmutex.RLock()
	defer f.rwmutex.RUnlock()

	return f.closed
}

func NewFootprint(opts Opts) (*Footprint, error) {
	switch {
	case opts.Provider == nil:
		return nil, fmt.Errorf("geolocation provider is not set")
	case opts.Notifier == nil:
		return nil, fmt.Errorf("notifier is not set")
	case opts.Logger == nil:
		return nil, fmt.Errorf("logger is not set")
	}

	rv := &Footprint{
		logger:       opts.Logger,
		metrics:      opts.Metrics,
		limiter:      opts.Limiter,
		cache:        NewGeoCache(opts.GeoCacheTTL),
		ipInfoClient: opts.IPInfoClient,
		ipInfoURL:    opts.IPInfoURL,
		trustXFF:     opts.TrustForwardedFor,
		verbose:      opts.Verbose,
	}

	if rv.limiter == nil {
		rv.limiter = NewMemoryAdmissionLimiter(DefaultAdmissionWindow, DefaultAdmissionMaxRequests)
	}

	if rv.ipInfoURL == "" {
		rv.ipInfoURL = DefaultIPInfoURL
	}

	if rv.ipInfoClient == nil {
		rv.ipInfoClient = NewHTTPClient(&http.Client{Timeout: defaultIPInfoTimeout},
			"footprint",
			DefaultHTTPRateLimitInterval,
			DefaultHTTPRateLimitBurst,
			DefaultCircuitBreakerOpenThreshold,
			DefaultCircuitBreakerHalfOpenTimeout,
			DefaultCircuitBreakerResetFailuresTimeout)
	}

	rv.resolver = NewGeoResolver(opts.Provider, rv.cache, rv.logger, rv.metrics, opts.GeoTimeout)
	rv.enricher = NewVisitorEnricher(rv.resolver)

	dispatcher, err := NewNotificationDispatcher(opts.Notifier,
		rv.logger,
		rv.metrics,
		opts.DispatcherPoolSize,
		opts.NotificationTimeout)
	if err != nil {
		return nil, fmt.Errorf("cannot create notification dispatcher: %w", err)
	}

	rv.dispatcher = dispatcher
	rv.handler = newHTTPHandler(rv, opts.AllowOrigin)

	return rv, nil
}
