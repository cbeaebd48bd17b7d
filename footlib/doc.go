// This package provides a set of structs and functions which are used
// to track website visitors and notify an owner about them.
//
// footlib is core of the footprint project. You can treat the rest of
// the application as an _example_ on how to use this library: how to
// read configuration, how to implement geolocation providers and
// notifiers.
//
// Footprint is a main entity of the footlib. It is http.Handler which
// accepts visitor telemetry, checks that a client has not exceeded its
// request quota, enriches telemetry with geolocation data and responds.
// Only after the response is sent, a notification is scheduled on a
// background worker pool. Notification failures never reach a client.
//
// Geolocation results are cached in GeoCache for a limited time. Only
// successful lookups are cached: if provider has failed, a next request
// is going to try it again.
package footlib
