package main

import (
	"encoding/json"
	"fmt"
	"net"
	"os"
	"strings"
	"time"

	"github.com/hjson/hjson-go/v4"
	"github.com/spf13/afero"

	"github.com/9seconds/footprint/footlib"
	"github.com/9seconds/footprint/notifiers"
	"github.com/9seconds/footprint/providers"
)

const (
	DefaultListen            = ":3000"
	DefaultHTTPTimeout       = 10 * time.Second
	DefaultShutdownTimeout   = 30 * time.Second
	DefaultGeoProvider       = providers.NameIPAPI
	DefaultNotifierKind      = notifiers.NameSMTP
	DefaultAdmissionBackend  = admissionBackendMemory
	DefaultRedisAddr         = "127.0.0.1:6379"
	DefaultMetricsPath       = "/metrics"
	DefaultStatsPath         = "/stats"
	DefaultRateLimitInterval = footlib.DefaultHTTPRateLimitInterval
	DefaultRateLimitBurst    = footlib.DefaultHTTPRateLimitBurst

	admissionBackendMemory = "memory"
	admissionBackendRedis  = "redis"
)

type duration struct {
	time.Duration
}

func (d *duration) UnmarshalJSON(b []byte) error {
	var v interface{}

	if err := json.Unmarshal(b, &v); err != nil {
		return fmt.Errorf("cannot unmarshal duration: %w", err)
	}

	vv, ok := v.(string)
	if !ok {
		return fmt.Errorf("incorrect duration: %v", v)
	}

	dur, err := time.ParseDuration(vv)
	if err != nil {
		return fmt.Errorf("cannot parse duration: %w", err)
	}

	d.Duration = dur

	return nil
}

type config struct {
	Listen            string          `json:"listen"`
	TrustForwardedFor bool            `json:"trust_forwarded_for"`
	AllowOrigin       string          `json:"allow_origin"`
	IPInfoURL         string          `json:"ip_info_url"`
	ShutdownTimeout   duration        `json:"shutdown_timeout"`
	BasicAuth         configBasicAuth `json:"basic_auth"`
	Geo               configGeo       `json:"geo"`
	Admission         configAdmission `json:"admission"`
	Notifier          configNotifier  `json:"notifier"`
}

func (c config) GetListen() string {
	if c.Listen != "" {
		return c.Listen
	}

	return DefaultListen
}

func (c config) GetShutdownTimeout() time.Duration {
	if c.ShutdownTimeout.Duration == 0 {
		return DefaultShutdownTimeout
	}

	return c.ShutdownTimeout.Duration
}

type configBasicAuth struct {
	User     string `json:"user"`
	Password string `json:"password"`
}

func (c configBasicAuth) Enabled() bool {
	return c.User != "" || c.Password != ""
}

type configGeo struct {
	Provider                        string            `json:"provider"`
	CacheTTL                        duration          `json:"cache_ttl"`
	Timeout                         duration          `json:"timeout"`
	HTTPTimeout                     duration          `json:"http_timeout"`
	RateLimitInterval               duration          `json:"rate_limit_interval"`
	RateLimitBurst                  uint              `json:"rate_limit_burst"`
	CircuitBreakerOpenThreshold     uint32            `json:"circuit_breaker_open_threshold"`
	CircuitBreakerHalfOpenTimeout   duration          `json:"circuit_breaker_half_open_timeout"`
	CircuitBreakerResetFailuresTime duration          `json:"circuit_breaker_reset_failures_timeout"`
	SpecificParameters              map[string]string `json:"specific_parameters"`
}

func (c configGeo) GetProvider() string {
	if c.Provider != "" {
		return c.Provider
	}

	return DefaultGeoProvider
}

func (c configGeo) GetCacheTTL() time.Duration {
	if c.CacheTTL.Duration == 0 {
		return footlib.DefaultGeoCacheTTL
	}

	return c.CacheTTL.Duration
}

func (c configGeo) GetTimeout() time.Duration {
	if c.Timeout.Duration == 0 {
		return footlib.DefaultGeoTimeout
	}

	return c.Timeout.Duration
}

func (c configGeo) GetHTTPTimeout() time.Duration {
	if c.HTTPTimeout.Duration == 0 {
		return DefaultHTTPTimeout
	}

	return c.HTTPTimeout.Duration
}

func (c configGeo) GetRateLimitInterval() time.Duration {
	if c.RateLimitInterval.Duration == 0 {
		return DefaultRateLimitInterval
	}

	return c.RateLimitInterval.Duration
}

func (c configGeo) GetRateLimitBurst() int {
	if c.RateLimitBurst == 0 {
		return DefaultRateLimitBurst
	}

	return int(c.RateLimitBurst)
}

func (c configGeo) GetCircuitBreakerOpenThreshold() uint32 {
	if c.CircuitBreakerOpenThreshold == 0 {
		return footlib.DefaultCircuitBreakerOpenThreshold
	}

	return c.CircuitBreakerOpenThreshold
}

func (c configGeo) GetCircuitBreakerHalfOpenTimeout() time.Duration {
	if c.CircuitBreakerHalfOpenTimeout.Duration == 0 {
		return footlib.DefaultCircuitBreakerHalfOpenTimeout
	}

	return c.CircuitBreakerHalfOpenTimeout.Duration
}

func (c configGeo) GetCircuitBreakerResetFailuresTimeout() time.Duration {
	if c.CircuitBreakerResetFailuresTime.Duration == 0 {
		return footlib.DefaultCircuitBreakerResetFailuresTimeout
	}

	return c.CircuitBreakerResetFailuresTime.Duration
}

func (c configGeo) GetSpecificParameters() map[string]string {
	if c.SpecificParameters == nil {
		return map[string]string{}
	}

	return c.SpecificParameters
}

type configAdmission struct {
	Window      duration             `json:"window"`
	MaxRequests uint                 `json:"max_requests"`
	Backend     string               `json:"backend"`
	Redis       configAdmissionRedis `json:"redis"`
}

func (c configAdmission) GetWindow() time.Duration {
	if c.Window.Duration == 0 {
		return footlib.DefaultAdmissionWindow
	}

	return c.Window.Duration
}

func (c configAdmission) GetMaxRequests() int {
	if c.MaxRequests == 0 {
		return footlib.DefaultAdmissionMaxRequests
	}

	return int(c.MaxRequests)
}

func (c configAdmission) GetBackend() string {
	if c.Backend != "" {
		return strings.ToLower(c.Backend)
	}

	return DefaultAdmissionBackend
}

type configAdmissionRedis struct {
	Addr     string `json:"addr"`
	Password string `json:"password"`
	DB       int    `json:"db"`
	Prefix   string `json:"prefix"`
}

func (c configAdmissionRedis) GetAddr() string {
	if c.Addr != "" {
		return c.Addr
	}

	return DefaultRedisAddr
}

type configNotifier struct {
	Kind           string     `json:"kind"`
	Timeout        duration   `json:"timeout"`
	WorkerPoolSize uint       `json:"worker_pool_size"`
	VerifyOnStart  bool       `json:"verify_on_start"`
	SMTP           configSMTP `json:"smtp"`
}

func (c configNotifier) GetKind() string {
	if c.Kind != "" {
		return strings.ToLower(c.Kind)
	}

	return DefaultNotifierKind
}

func (c configNotifier) GetTimeout() time.Duration {
	if c.Timeout.Duration == 0 {
		return footlib.DefaultNotificationTimeout
	}

	return c.Timeout.Duration
}

func (c configNotifier) GetWorkerPoolSize() int {
	if c.WorkerPoolSize == 0 {
		return footlib.DefaultDispatcherPoolSize
	}

	return int(c.WorkerPoolSize)
}

type configSMTP struct {
	Host               string   `json:"host"`
	Port               int      `json:"port"`
	Username           string   `json:"username"`
	Password           string   `json:"password"`
	From               string   `json:"from"`
	To                 []string `json:"to"`
	InsecureSkipVerify bool     `json:"insecure_skip_verify"`
}

func (c configSMTP) SMTPConfig() notifiers.SMTPConfig {
	return notifiers.SMTPConfig{
		Host:               c.Host,
		Port:               c.Port,
		Username:           c.Username,
		Password:           c.Password,
		From:               c.From,
		To:                 c.To,
		InsecureSkipVerify: c.InsecureSkipVerify,
	}
}

// parseConfig reads a config from a given path. Empty path means no
// config file: all values are defaults. Environment variables are
// applied on top.
func parseConfig(fs afero.Fs, path string) (*config, error) {
	conf := config{}

	if path != "" {
		content, err := afero.ReadFile(fs, path)
		if err != nil {
			return nil, fmt.Errorf("cannot read file: %w", err)
		}

		rawMap := map[string]interface{}{}

		if err := hjson.Unmarshal(content, &rawMap); err != nil {
			return nil, fmt.Errorf("cannot parse json: %w", err)
		}

		rawBytes, _ := json.Marshal(rawMap)

		if err := json.Unmarshal(rawBytes, &conf); err != nil {
			return nil, fmt.Errorf("incorrect config structure: %w", err)
		}
	}

	applyEnvironment(&conf)

	if err := validateConfig(&conf); err != nil {
		return nil, err
	}

	return &conf, nil
}

func applyEnvironment(conf *config) {
	if port := os.Getenv("PORT"); port != "" {
		host, _, err := net.SplitHostPort(conf.GetListen())
		if err != nil {
			host = ""
		}

		conf.Listen = net.JoinHostPort(host, port)
	}

	if user := os.Getenv("EMAIL_USER"); user != "" {
		conf.Notifier.SMTP.Username = user
	}

	if password := os.Getenv("EMAIL_PASS"); password != "" {
		conf.Notifier.SMTP.Password = password
	}
}

func validateConfig(conf *config) error {
	if _, _, err := net.SplitHostPort(conf.GetListen()); err != nil {
		return fmt.Errorf("incorrect host:port for listen: %w", err)
	}

	switch conf.Geo.GetProvider() {
	case providers.NameIPAPI,
		providers.NameIPInfo,
		providers.NameIPStack,
		providers.NameKeyCDN,
		providers.NameIP2C,
		providers.NameMaxmind:
	default:
		return fmt.Errorf("unsupported geolocation provider: %s", conf.Geo.GetProvider())
	}

	switch conf.Notifier.GetKind() {
	case notifiers.NameSMTP, notifiers.NameLog:
	default:
		return fmt.Errorf("unsupported notifier: %s", conf.Notifier.GetKind())
	}

	switch conf.Admission.GetBackend() {
	case admissionBackendMemory, admissionBackendRedis:
	default:
		return fmt.Errorf("unsupported admission backend: %s", conf.Admission.GetBackend())
	}

	if conf.BasicAuth.Enabled() && (conf.BasicAuth.User == "" || conf.BasicAuth.Password == "") {
		return fmt.Errorf("both user and password are required for basic auth")
	}

	return nil
}
