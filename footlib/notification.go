package footlib

import (
	"fmt"
	"html/template"
	"strings"
	"time"
)

// NotificationSubject is a subject of every visitor notification.
const NotificationSubject = "New Website Visitor"

// client-reported values end up here, html/template escapes them.
var notificationTemplate = template.Must(template.New("notification").
	Funcs(template.FuncMap{
		"orUnknown": func(value string) string { return orDefault(value, UnknownValue) },
		"orNA":      func(value string) string { return orDefault(value, NotAvailableValue) },
	}).
	Parse(`<h2>New Website Visitor Details</h2>
<p><strong>Time:</strong> {{ .Time }}</p>
<p><strong>IP Address (IPv4):</strong> {{ .Record.IPv4 | orUnknown }}</p>
<p><strong>IP Address (IPv6):</strong> {{ .Record.IPv6OrForwardedFor | orUnknown }}</p>
<p><strong>Location:</strong> {{ .Record.Geo.City | orUnknown }}, {{ .Record.Geo.Country | orUnknown }} ({{ .Record.Geo.Region | orUnknown }})</p>
<p><strong>Country Code:</strong> {{ .Record.Geo.CountryCode | orNA }}</p>
<p><strong>Reported Location:</strong> {{ .Record.ReportedLocation | orNA }}</p>
<p><strong>Host Name:</strong> {{ .Record.Hostname | orUnknown }}</p>
<p><strong>ISP:</strong> {{ .Record.Geo.ISP | orUnknown }}</p>
<p><strong>Reported ISP:</strong> {{ .Record.ReportedISP | orNA }}</p>
<p><strong>Platform:</strong> {{ .Record.Platform | orUnknown }}</p>
<p><strong>Browser:</strong> {{ .Record.Browser | orUnknown }}</p>
<p><strong>User Agent:</strong> {{ .Record.UserAgent | orNA }}</p>
<p><strong>Screen Size:</strong> {{ .Record.ScreenSize | orUnknown }}</p>
<p><strong>JavaScript Enabled:</strong> {{ .Record.JSEnabled | orUnknown }}</p>
<p><strong>Cookies Enabled:</strong> {{ .Record.CookiesEnabled | orUnknown }}</p>
`))

// FormatNotification renders a record into a message.
func FormatNotification(record VisitorRecord) (NotificationMessage, error) {
	buf := strings.Builder{}
	view := struct {
		Record VisitorRecord
		Time   string
	}{
		Record: record,
		Time:   NotAvailableValue,
	}

	if !record.Timestamp.IsZero() {
		view.Time = record.Timestamp.UTC().Format(time.RFC1123)
	}

	if err := notificationTemplate.Execute(&buf, view); err != nil {
		return NotificationMessage{}, fmt.Errorf("cannot render a template: %w", err)
	}

	return NotificationMessage{
		Subject: NotificationSubject,
		Body:    buf.String(),
	}, nil
}

func orDefault(value, defaultValue string) string {
	if strings.TrimSpace(value) == "" {
		return defaultValue
	}

	return value
}
