package notifiers

import "errors"

var (
	// ErrNoCredentials is returned if notifier has to authenticate
	// somewhere but credentials were not provided.
	ErrNoCredentials = errors.New("credentials are not configured")

	// ErrNoRecipients is returned if there is nobody to send a message
	// to.
	ErrNoRecipients = errors.New("no recipients are configured")
)
