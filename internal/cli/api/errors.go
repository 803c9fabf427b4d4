package api

import (
	"errors"
	"fmt"
)

// Sentinel errors for the identity flows. Callers match with errors.Is.
var (
	// ErrInvalidCredentials is returned for a 401 on the login endpoint.
	ErrInvalidCredentials = errors.New("invalid username or password")

	// ErrDuplicateAccount is returned for a 400 on the register endpoint.
	ErrDuplicateAccount = errors.New("an account with that username or email already exists")

	// ErrSessionExpired is returned when an authenticated call comes back
	// 401/403. The client has already cleared the stored token by the
	// time callers see this.
	ErrSessionExpired = errors.New("session expired")

	// ErrFederatedBlocked is returned when a request targeting the
	// federated exchange path is aborted client-side because a token
	// already exists and no explicit sign-in is in progress.
	ErrFederatedBlocked = errors.New("federated login blocked: already authenticated")

	// ErrNotAuthenticated marks the backend's benign "not authenticated"
	// probe response. It never clears credentials.
	ErrNotAuthenticated = errors.New("not authenticated")

	// ErrProviderUnavailable is returned when the federated identity
	// provider is not configured or unreachable.
	ErrProviderUnavailable = errors.New("google sign-in is not available")

	// ErrExchangeFailed is returned when the backend rejects a federated
	// credential.
	ErrExchangeFailed = errors.New("google sign-in was rejected by the server")
)

// ValidationError reports locally rejected input, before any network call.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// StatusError reports a non-2xx response that is not handled by the
// client's interception policies. Status >= 500 means a server fault.
type StatusError struct {
	Status  int
	Message string
}

func (e *StatusError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("server returned %d: %s", e.Status, e.Message)
	}
	return fmt.Sprintf("server returned %d", e.Status)
}

// IsServerError reports whether err is a 5xx StatusError.
func IsServerError(err error) bool {
	var se *StatusError
	return errors.As(err, &se) && se.Status >= 500
}

// NetworkError reports a transport-level failure (connection refused,
// timeout). Reads are retried before one of these surfaces.
type NetworkError struct {
	URL string
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("request to %s failed: %v", e.URL, e.Err)
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

// IsNetworkError reports whether err is transport-level rather than an
// HTTP status.
func IsNetworkError(err error) bool {
	var ne *NetworkError
	return errors.As(err, &ne)
}
