package notifiers

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/9seconds/footprint/footlib"
)

type logNotifier struct {
	logger zerolog.Logger
}

func (l logNotifier) Name() string {
	return NameLog
}

func (l logNotifier) Send(_ context.Context, msg footlib.NotificationMessage) error {
	l.logger.Info().
		Str("subject", msg.Subject).
		Str("body", msg.Body).
		Msg("New notification")

	return nil
}

// NewLog returns a notifier which writes messages into a given logger.
// It is useful for local development when there are no mail
// credentials.
func NewLog(logger zerolog.Logger) footlib.Notifier {
	return logNotifier{
		logger: logger,
	}
}
