package footlib

import (
	"net"
	"time"
)

const (
	// UnknownValue is a placeholder for values which are missing or
	// cannot be detected.
	UnknownValue = "Unknown"

	// NotAvailableValue is a placeholder which is used in notifications
	// for empty fields which have no meaningful default.
	NotAvailableValue = "N/A"
)

// GeoResult is a geolocation data of IP address returned by provider.
// Once stored in a cache, it is treated as immutable value: nobody
// should modify Raw map.
type GeoResult struct {
	IP          net.IP                 `json:"ip"`
	City        string                 `json:"city"`
	Region      string                 `json:"region"`
	Country     string                 `json:"country"`
	CountryCode string                 `json:"country_code"`
	ISP         string                 `json:"isp"`
	Raw         map[string]interface{} `json:"raw,omitempty"`
}

// OK returns if geolocation was successful and country is known.
func (g GeoResult) OK() bool {
	return g.Country != "" && g.Country != UnknownValue
}

// UnknownGeoResult returns a sentinel result which is used if provider
// has failed to resolve an IP address.
func UnknownGeoResult(ip net.IP) GeoResult {
	return GeoResult{
		IP:      ip,
		City:    UnknownValue,
		Region:  UnknownValue,
		Country: UnknownValue,
		ISP:     UnknownValue,
	}
}

// RawVisit is a snapshot of request data taken at HTTP boundary. It has
// no references to http.Request so it is safe to pass it around after
// response is sent.
type RawVisit struct {
	RemoteIP     string
	ForwardedFor string
	Host         string
	UserAgent    string
	Fields       VisitorFields
	ReceivedAt   time.Time
}

// VisitorRecord is an enriched immutable information about a visitor.
type VisitorRecord struct {
	IPv4               string    `json:"ipv4"`
	IPv6OrForwardedFor string    `json:"ipv6"`
	Platform           string    `json:"platform"`
	Browser            string    `json:"browser"`
	UserAgent          string    `json:"user_agent"`
	ScreenSize         string    `json:"screen_size"`
	JSEnabled          string    `json:"js_enabled"`
	CookiesEnabled     string    `json:"cookies_enabled"`
	ReportedLocation   string    `json:"reported_location"`
	ReportedISP        string    `json:"reported_isp"`
	Hostname           string    `json:"hostname"`
	Geo                GeoResult `json:"geo"`
	Timestamp          time.Time `json:"timestamp"`
}

// NotificationMessage is a rendered VisitorRecord which is sent to
// Notifier. Body is HTML.
type NotificationMessage struct {
	Subject string
	Body    string
}
