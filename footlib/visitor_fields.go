package footlib

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/url"
)

// TelemetryValue is a value reported by a client. Clients are not
// consistent: some send strings, some numbers or booleans. All of them
// are kept as a string, verbatim. Values are never validated.
type TelemetryValue string

func (t *TelemetryValue) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)

	switch {
	case len(data) == 0, bytes.Equal(data, []byte("null")):
		*t = ""
	case data[0] == '"':
		var value string

		if err := json.Unmarshal(data, &value); err != nil {
			return fmt.Errorf("cannot decode a string: %w", err)
		}

		*t = TelemetryValue(value)
	default:
		*t = TelemetryValue(data)
	}

	return nil
}

// Or returns a value or given default if value is empty.
func (t TelemetryValue) Or(defaultValue string) string {
	if t == "" {
		return defaultValue
	}

	return string(t)
}

// VisitorFields is a set of optional fields which client can submit
// about itself.
type VisitorFields struct {
	IPAddress         TelemetryValue `json:"ipAddress"`
	IPLocation        TelemetryValue `json:"ipLocation"`
	ISP               TelemetryValue `json:"isp"`
	Platform          TelemetryValue `json:"platform"`
	Browser           TelemetryValue `json:"browser"`
	ScreenWidth       TelemetryValue `json:"screenWidth"`
	ScreenHeight      TelemetryValue `json:"screenHeight"`
	ScreenSize        TelemetryValue `json:"screenSize"`
	JavascriptEnabled TelemetryValue `json:"javascriptEnabled"`
	CookiesEnabled    TelemetryValue `json:"cookiesEnabled"`
}

// HasIdentity checks if client has submitted at least something we can
// identify it with.
func (v VisitorFields) HasIdentity() bool {
	return v.IPAddress != "" || v.Browser != ""
}

func visitorFieldsFromQuery(query url.Values) VisitorFields {
	rv := VisitorFields{
		IPAddress:         TelemetryValue(query.Get("ipAddress")),
		IPLocation:        TelemetryValue(query.Get("ipLocation")),
		ISP:               TelemetryValue(query.Get("isp")),
		Platform:          TelemetryValue(query.Get("platform")),
		Browser:           TelemetryValue(query.Get("browser")),
		ScreenWidth:       TelemetryValue(query.Get("screenWidth")),
		ScreenHeight:      TelemetryValue(query.Get("screenHeight")),
		ScreenSize:        TelemetryValue(query.Get("screenSize")),
		JavascriptEnabled: TelemetryValue(query.Get("javascriptEnabled")),
		CookiesEnabled:    TelemetryValue(query.Get("cookiesEnabled")),
	}

	if rv.JavascriptEnabled == "" {
		rv.JavascriptEnabled = TelemetryValue(query.Get("jsEnabled"))
	}

	return rv
}
