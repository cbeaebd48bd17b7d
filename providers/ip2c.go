package providers

import (
	"bufio"
	"context"
	"encoding/binary"
	"fmt"
	"io"
	"net"
	"net/http"
	"strconv"
	"strings"

	"github.com/9seconds/footprint/footlib"
)

const ip2cEndpoint = "https://ip2c.org/?dec="

// ip2cProvider knows only countries and only for IPv4. City, region and
// ISP are always empty.
type ip2cProvider struct {
	client footlib.HTTPClient
}

func (i ip2cProvider) Name() string {
	return NameIP2C
}

func (i ip2cProvider) Lookup(ctx context.Context, ip net.IP) (footlib.GeoResult, error) {
	result := footlib.GeoResult{}
	ip4 := ip.To4()

	if ip4 == nil {
		return result, fmt.Errorf("%w: %v is not ipv4", ErrLookupFailed, ip)
	}

	number := strconv.FormatUint(uint64(binary.BigEndian.Uint32(ip4)), 10)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, ip2cEndpoint+number, nil)
	if err != nil {
		return result, fmt.Errorf("cannot build a request: %w", err)
	}

	resp, err := i.client.Do(req)
	if err != nil {
		return result, fmt.Errorf("cannot send a request: %w", err)
	}

	defer flushResponse(resp.Body)

	if resp.StatusCode != http.StatusOK {
		return result, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	bodyBytes, err := io.ReadAll(io.LimitReader(bufio.NewReader(resp.Body), maxResponseSize))
	if err != nil {
		return result, fmt.Errorf("cannot read response body: %w", err)
	}

	body := strings.TrimSpace(string(bodyBytes))
	chunks := strings.SplitN(body, ";", 4)

	switch {
	case len(chunks) < 3:
		return result, fmt.Errorf("incorrect response: %s", body)
	case chunks[0] != "1":
		return result, fmt.Errorf("%w: %s", ErrLookupFailed, body)
	}

	result.CountryCode = footlib.NormalizeAlpha2Code(chunks[1])
	result.Country = footlib.CountryName(result.CountryCode)

	if result.Country == "" && len(chunks) == 4 {
		result.Country = chunks[3]
	}

	result.Raw = map[string]interface{}{
		"response": body,
	}

	return result, nil
}

func NewIP2C(client footlib.HTTPClient) footlib.GeoProvider {
	return ip2cProvider{
		client: client,
	}
}
