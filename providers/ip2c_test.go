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

const ip2cTestURL = "https://ip2c.org/?dec=387321201"

type MockedIP2CTestSuite struct {
	MockedProviderTestSuite

	prov footlib.GeoProvider
}

func (suite *MockedIP2CTestSuite) SetupTest() {
	suite.MockedProviderTestSuite.SetupTest()

	suite.prov = providers.NewIP2C(suite.http)
}

func (suite *MockedIP2CTestSuite) TestName() {
	suite.Equal(providers.NameIP2C, suite.prov.Name())
}

func (suite *MockedIP2CTestSuite) TestIPv6() {
	_, err := suite.prov.Lookup(context.Background(), net.ParseIP("2001:db8::1"))

	suite.ErrorIs(err, providers.ErrLookupFailed)
}

func (suite *MockedIP2CTestSuite) TestLookupFailed() {
	httpmock.RegisterResponder("GET",
		ip2cTestURL,
		httpmock.NewStringResponder(http.StatusInternalServerError, ""))

	_, err := suite.prov.Lookup(context.Background(), net.ParseIP(testIP))

	suite.Error(err)
}

func (suite *MockedIP2CTestSuite) TestLookupGarbage() {
	httpmock.RegisterResponder("GET",
		ip2cTestURL,
		httpmock.NewStringResponder(http.StatusOK, "garbage"))

	_, err := suite.prov.Lookup(context.Background(), net.ParseIP(testIP))

	suite.Error(err)
}

func (suite *MockedIP2CTestSuite) TestLookupUnknown() {
	httpmock.RegisterResponder("GET",
		ip2cTestURL,
		httpmock.NewStringResponder(http.StatusOK, "0;;;WRONG INPUT"))

	_, err := suite.prov.Lookup(context.Background(), net.ParseIP(testIP))

	suite.ErrorIs(err, providers.ErrLookupFailed)
}

func (suite *MockedIP2CTestSuite) TestLookupOk() {
	httpmock.RegisterResponder("GET",
		ip2cTestURL,
		httpmock.NewStringResponder(http.StatusOK, "1;US;USA;United States"))

	result, err := suite.prov.Lookup(context.Background(), net.ParseIP(testIP))

	suite.NoError(err)
	suite.Equal("US", result.CountryCode)
	suite.Equal("United States", result.Country)
	suite.Empty(result.City)
}

func TestIP2C(t *testing.T) {
	suite.Run(t, &MockedIP2CTestSuite{})
}
