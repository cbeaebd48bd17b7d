package providers

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"strings"

	"github.com/9seconds/footprint/footlib"
)

const (
	ipapiFreeEndpoint = "http://ip-api.com/json/"
	ipapiProEndpoint  = "https://pro.ip-api.com/json/"
	ipapiFields       = "status,message,country,countryCode,regionName,city,isp,org,as,query"
)

type ipapiResponse struct {
	Status      string `json:"status"`
	Message     string `json:"message"`
	Country     string `json:"country"`
	CountryCode string `json:"countryCode"`
	RegionName  string `json:"regionName"`
	City        string `json:"city"`
	ISP         string `json:"isp"`
}

type ipapiProvider struct {
	authToken string
	client    footlib.HTTPClient
}

func (i ipapiProvider) Name() string {
	return NameIPAPI
}

func (i ipapiProvider) Lookup(ctx context.Context, ip net.IP) (footlib.GeoResult, error) {
	result := footlib.GeoResult{}
	query := url.Values{}
	endpoint := ipapiFreeEndpoint

	query.Set("fields", ipapiFields)

	if i.authToken != "" {
		endpoint = ipapiProEndpoint
		query.Set("key", i.authToken)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		endpoint+ip.String()+"?"+query.Encode(), nil)
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

	jsonResponse := ipapiResponse{}

	raw, err := decodeResponse(resp, &jsonResponse)
	if err != nil {
		return result, err
	}

	if !strings.EqualFold(jsonResponse.Status, "success") {
		return result, fmt.Errorf("%w: %s", ErrLookupFailed, jsonResponse.Message)
	}

	result.City = jsonResponse.City
	result.Region = jsonResponse.RegionName
	result.Country = jsonResponse.Country
	result.CountryCode = footlib.NormalizeAlpha2Code(jsonResponse.CountryCode)
	result.ISP = jsonResponse.ISP
	result.Raw = raw

	return result, nil
}

// NewIPAPI returns a provider for ip-api.com. Free endpoint needs no
// token. If auth_token parameter is set, pro endpoint is used.
func NewIPAPI(client footlib.HTTPClient, parameters map[string]string) footlib.GeoProvider {
	return ipapiProvider{
		authToken: parameters["auth_token"],
		client:    client,
	}
}
