package footlib

import (
	"context"
	"net"
	"sync"
	"time"

	"github.com/stretchr/testify/mock"
)

type GeoProviderMock struct {
	mock.Mock
}

func (m *GeoProviderMock) Lookup(ctx context.Context, ip net.IP) (GeoResult, error) {
	args := m.Called(ctx, ip)

	return args.Get(0).(GeoResult), args.Error(1)
}

func (m *GeoProviderMock) Name() string {
	return m.Called().String(0)
}

type NotifierMock struct {
	mock.Mock
}

func (m *NotifierMock) Send(ctx context.Context, msg NotificationMessage) error {
	return m.Called(ctx, msg).Error(0)
}

func (m *NotifierMock) Name() string {
	return m.Called().String(0)
}

type AdmissionLimiterMock struct {
	mock.Mock
}

func (m *AdmissionLimiterMock) Allow(ctx context.Context, identity string) (bool, error) {
	args := m.Called(ctx, identity)

	return args.Bool(0), args.Error(1)
}

type AdmissionRetrierMock struct {
	AdmissionLimiterMock
}

func (m *AdmissionRetrierMock) RetryAfter(ctx context.Context, identity string) (time.Duration, error) {
	args := m.Called(ctx, identity)

	return args.Get(0).(time.Duration), args.Error(1)
}

type LoggerMock struct {
	mock.Mock
}

func (m *LoggerMock) LookupError(ip net.IP, name string, err error) {
	m.Called(ip, name, err)
}

func (m *LoggerMock) AdmissionError(identity string, err error) {
	m.Called(identity, err)
}

func (m *LoggerMock) NotifyInfo(name, msg string) {
	m.Called(name, msg)
}

func (m *LoggerMock) NotifyError(name string, err error) {
	m.Called(name, err)
}

func (m *LoggerMock) HTTPError(requestID, path string, err error) {
	m.Called(requestID, path, err)
}

type fakeClock struct {
	mutex sync.Mutex
	now   time.Time
}

func (f *fakeClock) Now() time.Time {
	f.mutex.Lock()
	defer f.mutex.Unlock()

	return f.now
}

func (f *fakeClock) Advance(d time.Duration) {
	f.mutex.Lock()
	defer f.mutex.Unlock()

	f.now = f.now.Add(d)
}

func newFakeClock() *fakeClock {
	return &fakeClock{
		now: time.Date(2020, 1, 1, 12, 0, 0, 0, time.UTC),
	}
}
