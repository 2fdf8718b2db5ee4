package types

import "errors"

var (
	// ErrSourceUnavailable marks a configured source that could not be fetched or read.
	ErrSourceUnavailable = errors.New("source unavailable")
	// ErrMalformedEntry marks a line that is not a valid IPv4 address or prefix.
	ErrMalformedEntry = errors.New("malformed entry")
	// ErrInvalidConfiguration is returned when there is nothing to process.
	ErrInvalidConfiguration = errors.New("invalid configuration")
)
