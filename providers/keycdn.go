package providers

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"net/url"

	"github.com/9seconds/footprint/footlib"
)

const keycdnEndpoint = "https://tools.keycdn.com/geo.json"

type keycdnResponse struct {
	Status string `json:"status"`
	Data   struct {
		Geo struct {
			City        string `json:"city"`
			RegionName  string `json:"region_name"`
			CountryName string `json:"country_name"`
			CountryCode string `json:"country_code"`
			ISP         string `json:"isp"`
		} `json:"geo"`
	} `json:"data"`
}

type keycdnProvider struct {
	client footlib.HTTPClient
}

func (k keycdnProvider) Name() string {
	return NameKeyCDN
}

func (k keycdnProvider) Lookup(ctx context.Context, ip net.IP) (footlib.GeoResult, error) {
	result := footlib.GeoResult{}
	query := url.Values{}

	query.Set("host", ip.String())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		keycdnEndpoint+"?"+query.Encode(), nil)
	if err != nil {
		return result, fmt.Errorf("cannot build a request: %w", err)
	}

	req.Header.Set("Accept", "application/json")

	resp, err := k.client.Do(req)
	if err != nil {
		return result, fmt.Errorf("cannot send a request: %w", err)
	}

	defer flushResponse(resp.Body)

	if resp.StatusCode != http.StatusOK {
		return result, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	jsonResponse := keycdnResponse{}

	raw, err := decodeResponse(resp, &jsonResponse)
	if err != nil {
		return result, err
	}

	if jsonResponse.Status != "success" {
		return result, fmt.Errorf("%w: status is %s", ErrLookupFailed, jsonResponse.Status)
	}

	geo := jsonResponse.Data.Geo

	result.City = geo.City
	result.Region = geo.RegionName
	result.Country = geo.CountryName
	result.CountryCode = footlib.NormalizeAlpha2Code(geo.CountryCode)
	result.ISP = geo.ISP
	result.Raw = raw

	return result, nil
}

func NewKeyCDN(client footlib.HTTPClient) footlib.GeoProvider {
	return keycdnProvider{
		client: client,
	}
}
