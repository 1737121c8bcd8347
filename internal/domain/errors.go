package domain

import (
	"errors"
	"fmt"
)

// Sentinel errors for the four caller-visible failure kinds. Handlers map
// these onto HTTP status codes; everything else is an internal error.
var (
	// ErrInvalidBody means the request payload was not a JSON object with a
	// data field, or a row did not match the operation's expected shape.
	ErrInvalidBody = errors.New("request body must be a JSON object with a data field")

	// ErrMissingFunctionName means the caller identity header was absent.
	ErrMissingFunctionName = errors.New("missing required caller identity header")

	// ErrUnrecognizedOperation means the function name matched neither the
	// geocode nor the reverse-geocode prefix.
	ErrUnrecognizedOperation = errors.New("unrecognized operation")

	// ErrUnknownProvider means the function name suffix named no known
	// geocoding data provider.
	ErrUnknownProvider = errors.New("unknown provider")

	// ErrIndexUnavailable means the provider index map could not be fetched,
	// or it carries no index for the requested provider (e.g. grab outside
	// its supported region).
	ErrIndexUnavailable = errors.New("provider index unavailable")
)

// BackendError is a non-success HTTP response from the geocoding backend.
// Transport-level failures are plain wrapped errors; this type exists so the
// handler can report the status code without leaking the response body.
type BackendError struct {
	Status  int
	Message string
}

func (e *BackendError) Error() string {
	return fmt.Sprintf("geocoding backend: status %d: %s", e.Status, e.Message)
}

// genericErrorMessage is returned to callers when a failure carries no
// message that is safe to expose.
const genericErrorMessage = "An internal error occurred, please try again later."

// PublicMessage returns the caller-facing message for err. Classification and
// validation errors describe a caller or deployment mistake and are safe to
// surface verbatim. Backend responses surface only their status code; raw
// transport errors collapse to a generic message.
func PublicMessage(err error) string {
	switch {
	case errors.Is(err, ErrInvalidBody),
		errors.Is(err, ErrMissingFunctionName),
		errors.Is(err, ErrUnrecognizedOperation),
		errors.Is(err, ErrUnknownProvider),
		errors.Is(err, ErrIndexUnavailable):
		return err.Error()
	}
	var backendErr *BackendError
	if errors.As(err, &backendErr) {
		return fmt.Sprintf("geocoding backend error: status %d", backendErr.Status)
	}
	return genericErrorMessage
}
