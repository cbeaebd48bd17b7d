package providers

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"net/url"

	"github.com/9seconds/footprint/footlib"
)

type ipstackResponse struct {
	Error struct {
		Code int    `json:"code"`
		Type string `json:"type"`
		Info string `json:"info"`
	} `json:"error"`
	City        string `json:"city"`
	RegionName  string `json:"region_name"`
	CountryName string `json:"country_name"`
	CountryCode string `json:"country_code"`
	Connection  struct {
		ISP string `json:"isp"`
	} `json:"connection"`
}

type ipstackProvider struct {
	client     footlib.HTTPClient
	httpScheme string
	authToken  string
}

func (i ipstackProvider) Name() string {
	return NameIPStack
}

func (i ipstackProvider) Lookup(ctx context.Context, ip net.IP) (footlib.GeoResult, error) {
	result := footlib.GeoResult{}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, i.buildURL(ip), nil)
	if err != nil {
		return result, fmt.Errorf("cannot build a request: %w", err)
	}

	req.Header.Set("Accept", "application/json")

	resp, err := i.client.Do(req)
	if err != nil {
		return result, fmt.Errorf("cannot send a request: %w", err)
	}

	defer flushResponse(resp.Body)

	if resp.StatusCode != http.StatusOK {
		return result, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	jsonResponse := ipstackResponse{}

	raw, err := decodeResponse(resp, &jsonResponse)
	if err != nil {
		return result, err
	}

	if jsonResponse.Error.Code != 0 {
		return result, fmt.Errorf(
			"failed response: code=%d, type=%s, info=%s",
			jsonResponse.Error.Code,
			jsonResponse.Error.Type,
			jsonResponse.Error.Info)
	}

	result.City = jsonResponse.City
	result.Region = jsonResponse.RegionName
	result.CountryCode = footlib.NormalizeAlpha2Code(jsonResponse.CountryCode)
	result.Country = jsonResponse.CountryName
	result.ISP = jsonResponse.Connection.ISP
	result.Raw = raw

	if result.Country == "" {
		result.Country = footlib.CountryName(result.CountryCode)
	}

	if result.CountryCode == "" && result.City == "" {
		return result, fmt.Errorf("%w: empty response", ErrLookupFailed)
	}

	return result, nil
}

func (i ipstackProvider) buildURL(ip net.IP) string {
	getQuery := url.Values{}

	getQuery.Set("access_key", i.authToken)
	getQuery.Set("output", "json")
	getQuery.Set("fields", "country_code,country_name,region_name,city,connection.isp")
	getQuery.Set("language", "en")
	getQuery.Set("hostname", "0")
	getQuery.Set("security", "0")

	u := url.URL{
		Scheme:   i.httpScheme,
		Host:     "api.ipstack.com",
		Path:     ip.String(),
		RawQuery: getQuery.Encode(),
	}

	return u.String()
}

// NewIPStack returns a provider for ipstack.com. Parameters are
// auth_token (mandatory) and secure. Free plan has no https, so it is
// disabled unless secure is set to something truthy.
func NewIPStack(client footlib.HTTPClient, parameters map[string]string) (footlib.GeoProvider, error) {
	scheme := "http"

	if boolParam(parameters["secure"]) {
		scheme = "https"
	}

	if parameters["auth_token"] == "" {
		return nil, ErrAuthTokenIsRequired
	}

	return ipstackProvider{
		client:     client,
		authToken:  parameters["auth_token"],
		httpScheme: scheme,
	}, nil
}
