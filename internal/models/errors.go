// internal/models/errors.go
package models

import "errors"

var (
	// ErrInvalidInput marks malformed command arguments.
	ErrInvalidInput = errors.New("invalid input")
	// ErrNotFound is returned when the lookup provider matched no food.
	ErrNotFound = errors.New("food not found")
	// ErrProviderError marks a transport or protocol failure talking to the lookup provider.
	ErrProviderError = errors.New("nutrition provider error")
	// ErrNoData is returned by aggregate queries over an empty selection.
	ErrNoData = errors.New("no data")
	// ErrInvalidPeriod is returned for an unrecognized period token.
	ErrInvalidPeriod = errors.New("invalid period")
	// ErrStorage marks a persistence failure.
	ErrStorage = errors.New("storage error")
)

// ErrorKind tags a failure for the front-end.
type ErrorKind string

const (
	KindNone          ErrorKind = ""
	KindInvalidInput  ErrorKind = "invalid_input"
	KindNotFound      ErrorKind = "not_found"
	KindProviderError ErrorKind = "provider_error"
	KindNoData        ErrorKind = "no_data"
	KindInvalidPeriod ErrorKind = "invalid_period"
	KindStorageError  ErrorKind = "storage_error"
	KindInternal      ErrorKind = "internal"
)

// KindOf classifies err. Unknown errors are KindInternal.
func KindOf(err error) ErrorKind {
	switch {
	case err == nil:
		return KindNone
	case errors.Is(err, ErrInvalidPeriod):
		return KindInvalidPeriod
	case errors.Is(err, ErrInvalidInput):
		return KindInvalidInput
	case errors.Is(err, ErrNotFound):
		return KindNotFound
	case errors.Is(err, ErrProviderError):
		return KindProviderError
	case errors.Is(err, ErrNoData):
		return KindNoData
	case errors.Is(err, ErrStorage):
		return KindStorageError
	default:
		return KindInternal
	}
}
