package providers

import (
	"context"
	"fmt"
	"net"
	"net/http"

	"github.com/9seconds/footprint/footlib"
)

const ipinfoEndpoint = "https://ipinfo.io/"

type ipinfoResponse struct {
	City    string `json:"city"`
	Region  string `json:"region"`
	Country string `json:"country"`
	Org     string `json:"org"`
	Bogon   bool   `json:"bogon"`
}

type ipinfoProvider struct {
	authToken string
	client    footlib.HTTPClient
}

func (i ipinfoProvider) Name() string {
	return NameIPInfo
}

func (i ipinfoProvider) Lookup(ctx context.Context, ip net.IP) (footlib.GeoResult, error) {
	result := footlib.GeoResult{}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, ipinfoEndpoint+ip.String(), nil)
	if err != nil {
		return result, fmt.Errorf("cannot build a request: %w", err)
	}

	req.Header.Set("Accept", "application/json")

	if i.authToken != "" {
		req.Header.Set("Authorization", "Bearer "+i.authToken)
	}

	resp, err := i.client.Do(req)
	if err != nil {
		return result, fmt.Errorf("cannot send a request: %w", err)
	}

	defer flushResponse(resp.Body)

	if resp.StatusCode != http.StatusOK {
		return result, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	jsonResponse := ipinfoResponse{}

	raw, err := decodeResponse(resp, &jsonResponse)
	if err != nil {
		return result, err
	}

	if jsonResponse.Bogon {
		return result, fmt.Errorf("%w: bogon address", ErrLookupFailed)
	}

	result.City = jsonResponse.City
	result.Region = jsonResponse.Region
	result.CountryCode = footlib.NormalizeAlpha2Code(jsonResponse.Country)
	result.Country = footlib.CountryName(result.CountryCode)
	result.ISP = jsonResponse.Org
	result.Raw = raw

	return result, nil
}

func NewIPInfo(client footlib.HTTPClient, parameters map[string]string) footlib.GeoProvider {
	return ipinfoProvider{
		authToken: parameters["auth_token"],
		client:    client,
	}
}
