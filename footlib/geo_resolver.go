package footlib

import (
	"context"
	"fmt"
	"net"
	"time"

	"golang.org/x/sync/singleflight"
)

// DefaultGeoTimeout is a time limit for a single provider lookup.
const DefaultGeoTimeout = 3 * time.Second

// GeoResolver resolves IP addresses with a single provider and caches
// successful results in GeoCache.
//
// Failed lookups are never cached, so a next request for the same IP
// goes to the provider again. Concurrent lookups of the same IP
// address which miss the cache share a single provider call.
type GeoResolver struct {
	provider   GeoProvider
	cache      *GeoCache
	logger     Logger
	metrics    *Metrics
	timeout    time.Duration
	usageStats *UsageStats
	group      singleflight.Group
}

// Resolve returns geolocation data for IP address. It never fails: if
// something went wrong, UnknownGeoResult is returned.
func (g *GeoResolver) Resolve(ctx context.Context, ip net.IP) GeoResult {
	if ip == nil {
		return UnknownGeoResult(ip)
	}

	if result, ok := g.cache.Get(ip); ok {
		g.metrics.GeoCacheLookup(true)

		return result
	}

	g.metrics.GeoCacheLookup(false)

	// a shared lookup should not be cancelled because the first caller
	// has gone away.
	lookupCtx := context.WithoutCancel(ctx)
	resultChan := g.group.DoChan(ip.String(), func() (interface{}, error) {
		return g.lookup(lookupCtx, ip)
	})

	select {
	case <-ctx.Done():
		return UnknownGeoResult(ip)
	case res := <-resultChan:
		if res.Err != nil {
			return UnknownGeoResult(ip)
		}

		return res.Val.(GeoResult)
	}
}

func (g *GeoResolver) lookup(ctx context.Context, ip net.IP) (GeoResult, error) {
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	result, err := g.providerLookup(ctx, ip)

	g.usageStats.Used(err)

	if err != nil {
		g.metrics.GeoProviderError()
		g.logger.LookupError(ip, g.provider.Name(), err)

		return GeoResult{}, err
	}

	result.IP = ip
	g.cache.Put(ip, result)

	return result, nil
}

func (g *GeoResolver) providerLookup(ctx context.Context, ip net.IP) (result GeoResult, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("provider has panicked: %v", rec)
		}
	}()

	return g.provider.Lookup(ctx, ip)
}

// UsageStats returns usage statistics of the provider.
func (g *GeoResolver) UsageStats() *UsageStats {
	return g.usageStats
}

// NewGeoResolver creates a new resolver. If timeout is not positive,
// DefaultGeoTimeout is used. Metrics could be nil.
func NewGeoResolver(provider GeoProvider,
	cache *GeoCache,
	logger Logger,
	metrics *Metrics,
	timeout time.Duration) *GeoResolver {
	if timeout <= 0 {
		timeout = DefaultGeoTimeout
	}

	return &GeoResolver{
		provider: provider,
		cache:    cache,
		logger:   logger,
		metrics:  metrics,
		timeout:  timeout,
		usageStats: &UsageStats{
			Name: provider.Name(),
			Kind: "geo",
		},
	}
}
