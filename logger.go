package main

import (
	"io"
	"net"

	"github.com/rs/zerolog"

	"github.com/9seconds/footprint/footlib"
)

type logger struct {
	lookupLog    zerolog.Logger
	admissionLog zerolog.Logger
	notifyLog    zerolog.Logger
	httpLog      zerolog.Logger
}

func (l *logger) LookupError(ip net.IP, name string, err error) {
	l.lookupLog.Error().Str("provider", name).Stringer("ip", ip).Err(err).Msg("")
}

func (l *logger) AdmissionError(identity string, err error) {
	l.admissionLog.Error().Str("identity", identity).Err(err).Msg("")
}

func (l *logger) NotifyInfo(name string, msg string) {
	l.notifyLog.Info().Str("notifier", name).Msg(msg)
}

func (l *logger) NotifyError(name string, err error) {
	l.notifyLog.Error().Str("notifier", name).Err(err).Msg("")
}

func (l *logger) HTTPError(requestID, path string, err error) {
	l.httpLog.Error().Str("request_id", requestID).Str("path", path).Err(err).Msg("")
}

func newRootLogger(out io.Writer, debug bool) zerolog.Logger {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix

	level := zerolog.InfoLevel
	if debug {
		level = zerolog.DebugLevel
	}

	return zerolog.New(out).Level(level).With().Timestamp().Stack().Logger()
}

func newLogger(root zerolog.Logger) footlib.Logger {
	return &logger{
		lookupLog:    root.With().Str("event_name", "lookup").Logger(),
		admissionLog: root.With().Str("event_name", "admission").Logger(),
		notifyLog:    root.With().Str("event_name", "notify").Logger(),
		httpLog:      root.With().Str("event_name", "http").Logger(),
	}
}
