package model

import "errors"

// Error taxonomy surfaced by the resolver and its collaborators.
var (
	ErrNotRegistered       = errors.New("user is not registered")
	ErrInvalidIdentifier   = errors.New("profile reference could not be resolved")
	ErrUnknownMap          = errors.New("map not found in catalog")
	ErrUpstreamUnavailable = errors.New("global API unavailable")
	ErrUpstreamProtocol    = errors.New("malformed global API response")
)

// IsUserError reports whether an error should be shown to the invoking
// user as-is rather than logged as an operational fault.
func IsUserError(err error) bool {
	return errors.Is(err, ErrNotRegistered) ||
		errors.Is(err, ErrInvalidIdentifier) ||
		errors.Is(err, ErrUnknownMap)
}
