package footlib_test

import (
	"context"
	"io"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/suite"

	"github.com/9seconds/footprint/footlib"
)

type failingExpireHook struct {
	failures int32
}

func (f *failingExpireHook) DialHook(next redis.DialHook) redis.DialHook {
	return next
}

func (f *failingExpireHook) ProcessHook(next redis.ProcessHook) redis.ProcessHook {
	return func(ctx context.Context, cmd redis.Cmder) error {
		if cmd.Name() == "pexpire" && atomic.AddInt32(&f.failures, -1) >= 0 {
			cmd.SetErr(io.ErrUnexpectedEOF)

			return io.ErrUnexpectedEOF
		}

		return next(ctx, cmd)
	}
}

func (f *failingExpireHook) ProcessPipelineHook(next redis.ProcessPipelineHook) redis.ProcessPipelineHook {
	return next
}

type RedisAdmissionLimiterTestSuite struct {
	suite.Suite

	server  *miniredis.Miniredis
	client  *redis.Client
	limiter *footlib.RedisAdmissionLimiter
}

func (suite *RedisAdmissionLimiterTestSuite) SetupTest() {
	suite.server = miniredis.RunT(suite.T())
	suite.client = redis.NewClient(&redis.Options{
		Addr: suite.server.Addr(),
	})
	suite.limiter = footlib.NewRedisAdmissionLimiter(suite.client, "", time.Minute, 3)
}

func (suite *RedisAdmissionLimiterTestSuite) TearDownTest() {
	suite.client.Close()
}

func (suite *RedisAdmissionLimiterTestSuite) allow(identity string) bool {
	allowed, err := suite.limiter.Allow(context.Background(), identity)

	suite.NoError(err)

	return allowed
}

func (suite *RedisAdmissionLimiterTestSuite) TestQuota() {
	suite.True(suite.allow("1.2.3.4"))
	suite.True(suite.allow("1.2.3.4"))
	suite.True(suite.allow("1.2.3.4"))
	suite.False(suite.allow("1.2.3.4"))

	suite.True(suite.allow("5.6.7.8"))
}

func (suite *RedisAdmissionLimiterTestSuite) TestKeyExpiration() {
	suite.allow("1.2.3.4")
	suite.allow("1.2.3.4")

	suite.True(suite.server.Exists("footprint:admission:1.2.3.4"))
	suite.Equal(time.Minute, suite.server.TTL("footprint:admission:1.2.3.4"))
}

func (suite *RedisAdmissionLimiterTestSuite) TestNewWindow() {
	for i := 0; i < 4; i++ {
		suite.allow("1.2.3.4")
	}

	suite.False(suite.allow("1.2.3.4"))

	suite.server.FastForward(time.Minute)

	suite.True(suite.allow("1.2.3.4"))
}

func (suite *RedisAdmissionLimiterTestSuite) TestWindowDoesNotMove() {
	suite.allow("1.2.3.4")
	suite.server.FastForward(20 * time.Second)
	suite.allow("1.2.3.4")

	suite.Equal(40*time.Second, suite.server.TTL("footprint:admission:1.2.3.4"))
}

func (suite *RedisAdmissionLimiterTestSuite) TestCounterWithoutExpiration() {
	suite.NoError(suite.server.Set("footprint:admission:1.2.3.4", "3"))

	suite.False(suite.allow("1.2.3.4"))
	suite.Equal(time.Minute, suite.server.TTL("footprint:admission:1.2.3.4"))

	suite.server.FastForward(time.Minute)

	suite.True(suite.allow("1.2.3.4"))
}

func (suite *RedisAdmissionLimiterTestSuite) TestExpirationFailureDoesNotLockOut() {
	suite.client.AddHook(&failingExpireHook{failures: 1})
	suite.NoError(suite.server.Set("footprint:admission:1.2.3.4", "3"))

	_, err := suite.limiter.Allow(context.Background(), "1.2.3.4")

	suite.ErrorIs(err, io.ErrUnexpectedEOF)
	suite.False(suite.allow("1.2.3.4"))
	suite.False(suite.allow("1.2.3.4"))

	suite.server.FastForward(24 * time.Hour)

	suite.True(suite.allow("1.2.3.4"))
}

func (suite *RedisAdmissionLimiterTestSuite) TestRetryAfter() {
	left, err := suite.limiter.RetryAfter(context.Background(), "1.2.3.4")

	suite.NoError(err)
	suite.Zero(left)

	suite.allow("1.2.3.4")
	suite.server.FastForward(20 * time.Second)

	left, err = suite.limiter.RetryAfter(context.Background(), "1.2.3.4")

	suite.NoError(err)
	suite.Equal(40*time.Second, left)
}

func (suite *RedisAdmissionLimiterTestSuite) TestPrefix() {
	limiter := footlib.NewRedisAdmissionLimiter(suite.client, "site:", time.Minute, 3)

	allowed, err := limiter.Allow(context.Background(), "1.2.3.4")

	suite.NoError(err)
	suite.True(allowed)
	suite.True(suite.server.Exists("site:1.2.3.4"))
}

func (suite *RedisAdmissionLimiterTestSuite) TestBackendIsDown() {
	suite.server.Close()

	_, err := suite.limiter.Allow(context.Background(), "1.2.3.4")

	suite.Error(err)
}

func (suite *RedisAdmissionLimiterTestSuite) TestWindow() {
	suite.Equal(time.Minute, suite.limiter.Window())
	suite.Equal(footlib.DefaultAdmissionWindow,
		footlib.NewRedisAdmissionLimiter(suite.client, "", 0, 0).Window())
}

func TestRedisAdmissionLimiter(t *testing.T) {
	suite.Run(t, &RedisAdmissionLimiterTestSuite{})
}
