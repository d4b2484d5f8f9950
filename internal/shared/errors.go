package shared

import "fmt"

var (
	// Configuration errors
	ErrMissingConfig      = fmt.Errorf("configuration not found")
	ErrInvalidConfig      = fmt.Errorf("invalid configuration")
	ErrMissingCredentials = fmt.Errorf("missing credentials")
	ErrUnknownProvider    = fmt.Errorf("unknown provider")
	ErrNoScopes           = fmt.Errorf("provider declares no scopes")

	// Authentication errors
	ErrAuthFailed       = fmt.Errorf("authentication failed")
	ErrNotAuthenticated = fmt.Errorf("not authenticated")
	ErrTimeout          = fmt.Errorf("operation timed out")

	// Destination API errors
	ErrAPIRequest          = fmt.Errorf("API request failed")
	ErrUnexpectedStatus    = fmt.Errorf("unexpected response status")
	ErrMissingResponseBody = fmt.Errorf("didn't get response body")
	ErrMalformedResponse   = fmt.Errorf("malformed response")
	ErrServiceUnavailable  = fmt.Errorf("service unavailable")

	// Job and idempotent execution errors
	ErrJobNotFound  = fmt.Errorf("job not found")
	ErrKeyNotCached = fmt.Errorf("key not cached")

	// Input validation errors
	ErrInvalidInput    = fmt.Errorf("invalid input")
	ErrMissingArgument = fmt.Errorf("missing required argument")
	ErrInvalidArgument = fmt.Errorf("invalid argument")
	ErrInvalidFormat   = fmt.Errorf("invalid format")
)
