package providers_test

import (
	"context"
	"net"
	"net/http"
	"strings"
	"testing"

	"github.com/jarcoal/httpmock"
	"github.com/stretchr/testify/suite"

	"github.com/9seconds/footprint/footlib"
	"github.com/9seconds/footprint/providers"
)

type MockedIPInfoTestSuite struct {
	MockedProviderTestSuite

	prov footlib.GeoProvider
}

func (suite *MockedIPInfoTestSuite) SetupTest() {
	suite.MockedProviderTestSuite.SetupTest()

	suite.prov = providers.NewIPInfo(suite.http, map[string]string{
		"auth_token": "token",
	})
}

func (suite *MockedIPInfoTestSuite) TestName() {
	suite.Equal(providers.NameIPInfo, suite.prov.Name())
}

func (suite *MockedIPInfoTestSuite) TestLookupClosedContext() {
	ctx, cancel := context.WithCancel(context.Background())

	cancel()

	_, err := suite.prov.Lookup(ctx, net.ParseIP(testIP))

	suite.Error(err)
}

func (suite *MockedIPInfoTestSuite) TestLookupFailed() {
	httpmock.RegisterResponder("GET",
		"https://ipinfo.io/"+testIP,
		httpmock.NewStringResponder(http.StatusInternalServerError, ""))

	_, err := suite.prov.Lookup(context.Background(), net.ParseIP(testIP))

	suite.Error(err)
}

func (suite *MockedIPInfoTestSuite) TestLookupBadJSON() {
	httpmock.RegisterResponder("GET",
		"https://ipinfo.io/"+testIP,
		httpmock.NewStringResponder(http.StatusOK, `{[`))

	_, err := suite.prov.Lookup(context.Background(), net.ParseIP(testIP))

	suite.Error(err)
}

func (suite *MockedIPInfoTestSuite) TestLookupBogon() {
	httpmock.RegisterResponder("GET",
		"https://ipinfo.io/10.0.0.1",
		httpmock.NewStringResponder(http.StatusOK, `{"ip": "10.0.0.1", "bogon": true}`))

	_, err := suite.prov.Lookup(context.Background(), net.ParseIP("10.0.0.1"))

	suite.ErrorIs(err, providers.ErrLookupFailed)
}

func (suite *MockedIPInfoTestSuite) TestLookupOk() {
	httpmock.RegisterResponder("GET",
		"https://ipinfo.io/"+testIP,
		func(req *http.Request) (*http.Response, error) {
			if req.Header.Get("Authorization") != "Bearer token" {
				return httpmock.NewStringResponse(http.StatusForbidden, ""), nil
			}

			return httpmock.NewStringResponse(http.StatusOK, `{
  "ip": "23.22.13.113",
  "hostname": "ec2-23-22-13-113.compute-1.amazonaws.com",
  "city": "Virginia Beach",
  "region": "Virginia",
  "country": "us",
  "loc": "36.7957,-76.0126",
  "org": "AS14618 Amazon.com, Inc.",
  "postal": "23479",
  "timezone": "America/New_York"
}`), nil
		})

	result, err := suite.prov.Lookup(context.Background(), net.ParseIP(testIP))

	suite.NoError(err)
	suite.Equal("US", strings.ToUpper(result.CountryCode))
	suite.Equal("United States", result.Country)
	suite.Equal("Virginia Beach", result.City)
	suite.Equal("Virginia", result.Region)
	suite.Equal("AS14618 Amazon.com, Inc.", result.ISP)
	suite.Equal("America/New_York", result.Raw["timezone"])
}

func TestIPInfo(t *testing.T) {
	suite.Run(t, &MockedIPInfoTestSuite{})
}
