package providers_test

import (
	"net/http"
	"time"

	"github.com/jarcoal/httpmock"
	"github.com/stretchr/testify/suite"

	"github.com/9seconds/footprint/footlib"
)

const testIP = "23.22.13.113"

type ProviderTestSuite struct {
	suite.Suite

	http footlib.HTTPClient
}

func (suite *ProviderTestSuite) SetupTest() {
	suite.http = footlib.NewHTTPClient(&http.Client{},
		"test-agent",
		time.Millisecond,
		100,
		5,
		time.Minute,
		time.Minute)
}

type MockedProviderTestSuite struct {
	ProviderTestSuite
}

func (suite *MockedProviderTestSuite) SetupSuite() {
	httpmock.Activate()
}

func (suite *MockedProviderTestSuite) TearDownSuite() {
	httpmock.DeactivateAndReset()
}

func (suite *MockedProviderTestSuite) TearDownTest() {
	httpmock.Reset()
}
