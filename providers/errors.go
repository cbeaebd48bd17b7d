package providers

import "errors"

var (
	// ErrAuthTokenIsRequired is returned if you are trying to initialize
	// a provider which requires some token to work.
	ErrAuthTokenIsRequired = errors.New("auth token is required")

	// ErrDatabasePathIsRequired is returned if local database provider
	// has no path to a database file.
	ErrDatabasePathIsRequired = errors.New("database path is required")

	// ErrLookupFailed is returned if provider has responded but
	// explicitly said that IP address cannot be resolved. For example,
	// it is a private IP address.
	ErrLookupFailed = errors.New("provider has failed to resolve IP address")
)
