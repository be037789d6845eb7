package stripe

import (
	"errors"
	"fmt"

	stripeapi "github.com/stripe/stripe-go/v82"
)

// Error represents a Stripe-specific error. Every failure coming back from
// the Stripe API is collapsed into the single "api_call_failed" code: the
// handler does not distinguish a card decline from a network error, both end
// up as the same user-facing warning.
type Error struct {
	Code    string
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("stripe error [%s]: %s - %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("stripe error [%s]: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// NewError creates a new Error with the given code, message, and underlying error.
func NewError(code, message string, err error) *Error {
	return &Error{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// IsProviderError reports whether err is a failure of a Stripe API call, the
// single locally-recovered error category: callers convert it to a warning
// instead of failing the submission pipeline.
func IsProviderError(err error) bool {
	var stripeErr *Error
	return errors.As(err, &stripeErr) && stripeErr.Code == "api_call_failed"
}

// UserMessage extracts the provider's human-readable message from a failed
// API call, for the single warning surfaced to the submitter. It falls back
// to the wrapped error text when the SDK gave no message.
func UserMessage(err error) string {
	var apiErr *stripeapi.Error
	if errors.As(err, &apiErr) && apiErr.Msg != "" {
		return apiErr.Msg
	}
	var stripeErr *Error
	if errors.As(err, &stripeErr) && stripeErr.Err != nil {
		return stripeErr.Err.Error()
	}
	return err.Error()
}

// IsEventError reports whether err means the inbound webhook payload could
// not be decoded or authenticated.
func IsEventError(err error) bool {
	var stripeErr *Error
	if !errors.As(err, &stripeErr) {
		return false
	}
	return stripeErr.Code == "invalid_event" || stripeErr.Code == "webhook_validation"
}
