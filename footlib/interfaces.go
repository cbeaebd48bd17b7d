package footlib

import (
	"context"
	"net"
	"net/http"
	"time"
)

// GeoProvider is a source of geolocation data for IP addresses. Usually
// it is some external HTTP API but it can be a local database as well.
type GeoProvider interface {
	Name() string
	Lookup(context.Context, net.IP) (GeoResult, error)
}

// Notifier is a sink for notifications. It could be an email, chat
// message, anything which is able to deliver a message to a human.
type Notifier interface {
	Name() string
	Send(context.Context, NotificationMessage) error
}

// AdmissionLimiter decides if a request of a client with a given
// identity is allowed to proceed.
//
// If error is returned, a decision is undefined.
type AdmissionLimiter interface {
	Allow(ctx context.Context, identity string) (bool, error)
}

// AdmissionRetrier is implemented by limiters which know when a
// rejected identity is going to be admitted again.
type AdmissionRetrier interface {
	RetryAfter(ctx context.Context, identity string) (time.Duration, error)
}

// HTTPClient is an interface of HTTP client which is used by providers.
// Default implementation, returned by NewHTTPClient, has rate limiting
// and circuit breaker.
type HTTPClient interface {
	Do(*http.Request) (*http.Response, error)
}

type Logger interface {
	LookupError(ip net.IP, name string, err error)
	AdmissionError(identity string, err error)
	NotifyInfo(name string, msg string)
	NotifyError(name string, err error)
	HTTPError(requestID, path string, err error)
}
