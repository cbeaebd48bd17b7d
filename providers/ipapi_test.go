package providers_test

import (
	"context"
	"net"
	"net/http"
	"testing"

	"github.com/jarcoal/httpmock"
	"github.com/stretchr/testify/suite"

	"github.com/9seconds/footprint/footlib"
	"github.com/9seconds/footprint/providers"
)

const ipapiTestResponse = `{
  "status": "success",
  "country": "United States",
  "countryCode": "US",
  "regionName": "Virginia",
  "city": "Ashburn",
  "isp": "Amazon.com, Inc.",
  "org": "AWS EC2 (us-east-1)",
  "as": "AS14618 Amazon.com, Inc.",
  "query": "23.22.13.113"
}`

type MockedIPAPITestSuite struct {
	MockedProviderTestSuite

	prov footlib.GeoProvider
}

func (suite *MockedIPAPITestSuite) SetupTest() {
	suite.MockedProviderTestSuite.SetupTest()

	suite.prov = providers.NewIPAPI(suite.http, map[string]string{})
}

func (suite *MockedIPAPITestSuite) TestName() {
	suite.Equal(providers.NameIPAPI, suite.prov.Name())
}

func (suite *MockedIPAPITestSuite) TestLookupClosedContext() {
	ctx, cancel := context.WithCancel(context.Background())

	cancel()

	_, err := suite.prov.Lookup(ctx, net.ParseIP(testIP))

	suite.Error(err)
}

func (suite *MockedIPAPITestSuite) TestLookupFailed() {
	httpmock.RegisterResponder("GET",
		"http://ip-api.com/json/"+testIP,
		httpmock.NewStringResponder(http.StatusInternalServerError, ""))

	_, err := suite.prov.Lookup(context.Background(), net.ParseIP(testIP))

	suite.Error(err)
}

func (suite *MockedIPAPITestSuite) TestLookupBadJSON() {
	httpmock.RegisterResponder("GET",
		"http://ip-api.com/json/"+testIP,
		httpmock.NewStringResponder(http.StatusOK, `{[`))

	_, err := suite.prov.Lookup(context.Background(), net.ParseIP(testIP))

	suite.Error(err)
}

func (suite *MockedIPAPITestSuite) TestLookupPrivateRange() {
	httpmock.RegisterResponder("GET",
		"http://ip-api.com/json/10.0.0.1",
		httpmock.NewStringResponder(http.StatusOK,
			`{"status": "fail", "message": "private range", "query": "10.0.0.1"}`))

	_, err := suite.prov.Lookup(context.Background(), net.ParseIP("10.0.0.1"))

	suite.ErrorIs(err, providers.ErrLookupFailed)
	suite.Contains(err.Error(), "private range")
}

func (suite *MockedIPAPITestSuite) TestLookupOk() {
	httpmock.RegisterResponder("GET",
		"http://ip-api.com/json/"+testIP,
		httpmock.NewStringResponder(http.StatusOK, ipapiTestResponse))

	result, err := suite.prov.Lookup(context.Background(), net.ParseIP(testIP))

	suite.NoError(err)
	suite.Equal("Ashburn", result.City)
	suite.Equal("Virginia", result.Region)
	suite.Equal("United States", result.Country)
	suite.Equal("US", result.CountryCode)
	suite.Equal("Amazon.com, Inc.", result.ISP)
	suite.Equal("AS14618 Amazon.com, Inc.", result.Raw["as"])
}

func (suite *MockedIPAPITestSuite) TestLookupProEndpoint() {
	prov := providers.NewIPAPI(suite.http, map[string]string{
		"auth_token": "token",
	})

	httpmock.RegisterResponderWithQuery("GET",
		"https://pro.ip-api.com/json/"+testIP,
		map[string]string{
			"key":    "token",
			"fields": "status,message,country,countryCode,regionName,city,isp,org,as,query",
		},
		httpmock.NewStringResponder(http.StatusOK, ipapiTestResponse))

	result, err := prov.Lookup(context.Background(), net.ParseIP(testIP))

	suite.NoError(err)
	suite.Equal("US", result.CountryCode)
}

func TestIPAPI(t *testing.T) {
	suite.Run(t, &MockedIPAPITestSuite{})
}
