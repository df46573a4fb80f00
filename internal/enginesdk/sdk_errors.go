package enginesdk

import (
	"errors"
	"fmt"

	"github.com/imroc/req/v3"
)

var (
	// sdk common
	ErrNoEngineURL    = errors.New("sdk: engine url missing")
	ErrNoRefreshToken = errors.New("sdk: refresh token missing")
)

const (
	// Generic request/server errors
	CodeInvalidRequest = "E_INVALID_REQUEST" // bad or invalid request
	CodeRateLimited    = "E_RATE_LIMITED"    // rate limit exceeded
	CodeInternalError  = "E_INTERNAL_ERROR"  // internal engine error
	CodeAccessDenied   = "E_ACCESS_DENIED"   // access denied
	CodeUnknownError   = "E_UNKNOWN_ERR"     // unknown error

	// Auth errors
	CodeAuthInvalidCredentials = "E_AUTH_INVALID_CREDENTIALS"  // authentication credentials are invalid, expired, or malformed.
	CodeAuthTokenRefreshFailed = "E_AUTH_TOKEN_REFRESH_FAILED" // a failure during the attempt to refresh an authentication token.

	// Sync errors
	CodeSyncBusy        = "E_SYNC_BUSY"         // the engine already has a sync pass in flight.
	CodeSyncNotReady    = "E_SYNC_NOT_READY"    // the engine has not finished initializing its stores.
	CodeSyncNoConflicts = "E_SYNC_NO_CONFLICTS" // continue/resolve was requested but nothing is conflicted.
	CodeSyncFailed      = "E_SYNC_FAILED"       // the sync pass aborted before reaching a terminal state.
)

type SDKError interface {
	error
	ErrorCode() string
	ErrorMessage() string
}

// BaseError provides common error functionality
type BaseError struct {
	Code    string `json:"code"`
	Message string `json:"error"`
}

func (e *BaseError) ErrorCode() string    { return e.Code }
func (e *BaseError) ErrorMessage() string { return e.Message }

// APIError represents sync engine API errors
type APIError struct {
	BaseError
}

func NewAPIError(code, message string) *APIError {
	return &APIError{
		BaseError: BaseError{
			Code:    code,
			Message: message,
		},
	}
}

func (e *APIError) Error() string {
	return fmt.Sprintf("engine api error: %s - %s", e.Code, e.Message)
}

var _ SDKError = (*APIError)(nil)

// handleAPIError is a helper function that handles the common error pattern
func handleAPIError(resp *req.Response, requestErr error, operation string) error {
	if requestErr != nil {
		return fmt.Errorf("http request error: %s %w", operation, requestErr)
	}

	// got a response, but engine returned an error
	if resp.IsErrorState() {
		if err, ok := resp.ErrorResult().(*APIError); ok {
			return fmt.Errorf("%s %w", operation, err)
		}

		return fmt.Errorf("engine api error: %s %s", operation, resp.Dump())
	}

	return nil
}
