package footlib

import (
	"encoding/json"
	"io"
	"net/http"
	"testing"

	"github.com/stretchr/testify/suite"
)

type HTTPErrorTestSuite struct {
	suite.Suite
}

func (suite *HTTPErrorTestSuite) TestNil() {
	var err *httpError

	suite.Empty(err.Message())
	suite.Empty(err.Error())
	suite.Equal(http.StatusInternalServerError, err.StatusCode())
	suite.NoError(err.Unwrap())
}

func (suite *HTTPErrorTestSuite) TestDefaultStatusCode() {
	err := &httpError{message: "msg"}

	suite.Equal(http.StatusInternalServerError, err.StatusCode())
	suite.Equal("msg", err.Error())
}

func (suite *HTTPErrorTestSuite) TestUnwrap() {
	err := &httpError{message: "msg", err: io.EOF, statusCode: http.StatusBadRequest}

	suite.ErrorIs(err, io.EOF)
	suite.Equal("msg: EOF", err.Error())
	suite.Equal("EOF", err.Err())
	suite.Equal(http.StatusBadRequest, err.StatusCode())
}

func (suite *HTTPErrorTestSuite) TestMarshalHidesContext() {
	data, err := json.Marshal(&httpError{message: "msg", err: io.EOF})

	suite.NoError(err)
	suite.JSONEq(`{"error": "msg"}`, string(data))
}

func (suite *HTTPErrorTestSuite) TestMarshalVerbose() {
	data, err := json.Marshal(&httpError{message: "msg", err: io.EOF, verbose: true})

	suite.NoError(err)
	suite.JSONEq(`{"error": "msg", "context": "EOF"}`, string(data))
}

func TestHTTPError(t *testing.T) {
	suite.Run(t, &HTTPErrorTestSuite{})
}
