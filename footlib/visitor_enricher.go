package footlib

import (
	"context"
	"net"
	"strings"
	"time"
)

// browserPatterns are checked in this order, first match wins.
var browserPatterns = []string{"Chrome", "Firefox", "Safari", "Edge"}

// VisitorEnricher builds VisitorRecord from raw request data.
type VisitorEnricher struct {
	resolver *GeoResolver
}

// Enrich builds a record. It blocks on geolocation lookup which is
// bounded by a resolver timeout.
func (v *VisitorEnricher) Enrich(ctx context.Context, raw RawVisit) VisitorRecord {
	rv := VisitorRecord{
		IPv4:               raw.Fields.IPAddress.Or(raw.RemoteIP),
		IPv6OrForwardedFor: raw.ForwardedFor,
		Platform:           raw.Fields.Platform.Or(DetectPlatform(raw.UserAgent)),
		Browser:            raw.Fields.Browser.Or(DetectBrowser(raw.UserAgent)),
		UserAgent:          raw.UserAgent,
		ScreenSize:         screenSize(raw.Fields),
		JSEnabled:          raw.Fields.JavascriptEnabled.Or(UnknownValue),
		CookiesEnabled:     raw.Fields.CookiesEnabled.Or(UnknownValue),
		ReportedLocation:   string(raw.Fields.IPLocation),
		ReportedISP:        string(raw.Fields.ISP),
		Hostname:           raw.Host,
		Timestamp:          raw.ReceivedAt,
	}

	if rv.IPv4 == "" {
		rv.IPv4 = UnknownValue
	}

	if rv.IPv6OrForwardedFor == "" {
		rv.IPv6OrForwardedFor = raw.RemoteIP
	}

	if rv.Hostname == "" {
		rv.Hostname = UnknownValue
	}

	if rv.Timestamp.IsZero() {
		rv.Timestamp = time.Now()
	}

	rv.Geo = v.resolver.Resolve(ctx, net.ParseIP(strings.TrimSpace(rv.IPv4)))

	return rv
}

// DetectPlatform returns a platform name based on user agent.
func DetectPlatform(userAgent string) string {
	switch {
	case strings.Contains(userAgent, "Windows"):
		return "Windows"
	case strings.Contains(userAgent, "Mac"):
		return "Mac"
	}

	return "Other"
}

// DetectBrowser returns a browser name based on user agent. Please
// pay attention that order matters: Chrome user agent mentions Safari
// and Edge user agent mentions Chrome.
func DetectBrowser(userAgent string) string {
	for _, v := range browserPatterns {
		if strings.Contains(userAgent, v+"/") {
			return v
		}
	}

	return UnknownValue
}

func screenSize(fields VisitorFields) string {
	if fields.ScreenSize != "" {
		return string(fields.ScreenSize)
	}

	if fields.ScreenWidth == "" && fields.ScreenHeight == "" {
		return UnknownValue
	}

	return fields.ScreenWidth.Or("?") + "x" + fields.ScreenHeight.Or("?")
}

func NewVisitorEnricher(resolver *GeoResolver) *VisitorEnricher {
	return &VisitorEnricher{
		resolver: resolver,
	}
}
