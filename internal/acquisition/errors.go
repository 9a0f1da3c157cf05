package acquisition

import "errors"

// Acquisition error taxonomy. Providers wrap one of these so callers can classify with errors.Is.
var (
	// ErrNetworkFailure covers transport errors, timeouts, open circuit breakers and non-2xx replies.
	ErrNetworkFailure = errors.New("network failure")
	// ErrMalformedResponse is returned when a reply lacks an expected field or shape.
	ErrMalformedResponse = errors.New("malformed response")
	// ErrMissingCredential is returned before any request when a provider needs a key it was not given.
	ErrMissingCredential = errors.New("missing credential")
	// ErrUnknownProvider is returned when the selector names no registered provider.
	ErrUnknownProvider = errors.New("unknown provider")
)

// Kind returns a short label for err, used in logs and metric labels.
func Kind(err error) string {
	switch {
	case err == nil:
		return "none"
	case errors.Is(err, ErrNetworkFailure):
		return "network_failure"
	case errors.Is(err, ErrMalformedResponse):
		return "malformed_response"
	case errors.Is(err, ErrMissingCredential):
		return "missing_credential"
	case errors.Is(err, ErrUnknownProvider):
		return "unknown_provider"
	default:
		return "other"
	}
}
