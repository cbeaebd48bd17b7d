package main

import (
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/suite"

	"github.com/9seconds/footprint/footlib"
	"github.com/9seconds/footprint/notifiers"
	"github.com/9seconds/footprint/providers"
)

type ConfigTestSuite struct {
	suite.Suite

	fs afero.Fs
}

func (suite *ConfigTestSuite) SetupTest() {
	suite.fs = afero.NewMemMapFs()

	suite.T().Setenv("PORT", "")
	suite.T().Setenv("EMAIL_USER", "")
	suite.T().Setenv("EMAIL_PASS", "")
}

func (suite *ConfigTestSuite) Write(content string) {
	suite.Require().NoError(afero.WriteFile(suite.fs, "/etc/footprint.hjson", []byte(content), 0o644))
}

func (suite *ConfigTestSuite) TestNoFile() {
	conf, err := parseConfig(suite.fs, "")

	suite.NoError(err)
	suite.Equal(DefaultListen, conf.GetListen())
	suite.Equal(DefaultShutdownTimeout, conf.GetShutdownTimeout())
	suite.Equal(providers.NameIPAPI, conf.Geo.GetProvider())
	suite.Equal(footlib.DefaultGeoCacheTTL, conf.Geo.GetCacheTTL())
	suite.Equal(footlib.DefaultGeoTimeout, conf.Geo.GetTimeout())
	suite.Equal(footlib.DefaultAdmissionWindow, conf.Admission.GetWindow())
	suite.Equal(footlib.DefaultAdmissionMaxRequests, conf.Admission.GetMaxRequests())
	suite.Equal(admissionBackendMemory, conf.Admission.GetBackend())
	suite.Equal(notifiers.NameSMTP, conf.Notifier.GetKind())
	suite.Equal(footlib.DefaultNotificationTimeout, conf.Notifier.GetTimeout())
	suite.Equal(footlib.DefaultDispatcherPoolSize, conf.Notifier.GetWorkerPoolSize())
	suite.False(conf.BasicAuth.Enabled())
	suite.NotNil(conf.Geo.GetSpecificParameters())
}

func (suite *ConfigTestSuite) TestAbsentFile() {
	_, err := parseConfig(suite.fs, "/etc/absent.hjson")

	suite.Error(err)
}

func (suite *ConfigTestSuite) TestFull() {
	suite.Write(`{
  # comments are allowed
  listen: 127.0.0.1:8080
  trust_forwarded_for: true
  allow_origin: https://example.com
  shutdown_timeout: 5s
  basic_auth: {
    user: admin
    password: secret
  }
  geo: {
    provider: ipinfo
    cache_ttl: 30m
    timeout: 2s
    rate_limit_interval: 1s
    rate_limit_burst: 3
    circuit_breaker_open_threshold: 7
    specific_parameters: {
      auth_token: token
    }
  }
  admission: {
    window: 1m
    max_requests: 10
    backend: Redis
    redis: {
      addr: redis:6379
      db: 2
      prefix: site
    }
  }
  notifier: {
    kind: log
    timeout: 10s
    worker_pool_size: 4
    smtp: {
      host: smtp.example.com
      port: 465
      to: [
        me@example.com
      ]
    }
  }
}`)

	conf, err := parseConfig(suite.fs, "/etc/footprint.hjson")

	suite.Require().NoError(err)
	suite.Equal("127.0.0.1:8080", conf.GetListen())
	suite.True(conf.TrustForwardedFor)
	suite.Equal("https://example.com", conf.AllowOrigin)
	suite.Equal(5*time.Second, conf.GetShutdownTimeout())
	suite.True(conf.BasicAuth.Enabled())
	suite.Equal(providers.NameIPInfo, conf.Geo.GetProvider())
	suite.Equal(30*time.Minute, conf.Geo.GetCacheTTL())
	suite.Equal(2*time.Second, conf.Geo.GetTimeout())
	suite.Equal(time.Second, conf.Geo.GetRateLimitInterval())
	suite.Equal(3, conf.Geo.GetRateLimitBurst())
	suite.EqualValues(7, conf.Geo.GetCircuitBreakerOpenThreshold())
	suite.Equal("token", conf.Geo.GetSpecificParameters()["auth_token"])
	suite.Equal(time.Minute, conf.Admission.GetWindow())
	suite.Equal(10, conf.Admission.GetMaxRequests())
	suite.Equal(admissionBackendRedis, conf.Admission.GetBackend())
	suite.Equal("redis:6379", conf.Admission.Redis.GetAddr())
	suite.Equal(2, conf.Admission.Redis.DB)
	suite.Equal(notifiers.NameLog, conf.Notifier.GetKind())
	suite.Equal(10*time.Second, conf.Notifier.GetTimeout())
	suite.Equal(4, conf.Notifier.GetWorkerPoolSize())

	smtpConf := conf.Notifier.SMTP.SMTPConfig()

	suite.Equal("smtp.example.com", smtpConf.Host)
	suite.Equal(465, smtpConf.Port)
	suite.Equal([]string{"me@example.com"}, smtpConf.To)
}

func (suite *ConfigTestSuite) TestEnvironment() {
	suite.T().Setenv("PORT", "8000")
	suite.T().Setenv("EMAIL_USER", "me@example.com")
	suite.T().Setenv("EMAIL_PASS", "password")

	suite.Write(`{
  listen: 127.0.0.1:3000
  notifier: {
    smtp: {
      username: someone@example.com
    }
  }
}`)

	conf, err := parseConfig(suite.fs, "/etc/footprint.hjson")

	suite.Require().NoError(err)
	suite.Equal("127.0.0.1:8000", conf.GetListen())
	suite.Equal("me@example.com", conf.Notifier.SMTP.Username)
	suite.Equal("password", conf.Notifier.SMTP.Password)
}

func (suite *ConfigTestSuite) TestIncorrect() {
	testData := map[string]string{
		"listen":     `{listen: "localhost"}`,
		"provider":   `{geo: {provider: "unknown"}}`,
		"notifier":   `{notifier: {kind: "pigeon"}}`,
		"admission":  `{admission: {backend: "memcached"}}`,
		"basic auth": `{basic_auth: {user: "admin"}}`,
		"duration":   `{geo: {timeout: 10}}`,
		"bad hjson":  `{geo: {`,
	}

	for k, v := range testData {
		suite.Write(v)

		_, err := parseConfig(suite.fs, "/etc/footprint.hjson")

		suite.Error(err, k)
	}
}

func TestConfig(t *testing.T) {
	suite.Run(t, &ConfigTestSuite{})
}
