package model

import "errors"

var (
	// ErrMissingCredentials is returned when a capability is constructed without its API key
	ErrMissingCredentials = errors.New("missing credentials")

	// ErrUnknownSource is returned when a validator source is requested by a name that is not configured
	ErrUnknownSource = errors.New("unknown evidence source")

	// ErrUnknownPlatform is returned when a social platform is requested by a name that is not configured
	ErrUnknownPlatform = errors.New("unknown platform")

	// ErrInvalidInput is returned for malformed requests
	ErrInvalidInput = errors.New("invalid input")

	// ErrNotFound is returned by repositories for missing records
	ErrNotFound = errors.New("not found")
)
