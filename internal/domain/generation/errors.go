package generation

import "errors"

// Domain errors for generation.
var (
	ErrInvalidImage        = errors.New("imageData must be a base64 encoded image data URI")
	ErrImageTooLarge       = errors.New("image is too large")
	ErrInsufficientCredits = errors.New("insufficient credits")
	ErrStorage             = errors.New("failed to record generation attempt")
	ErrGenerationFailed    = errors.New("generation failed")
	ErrAttemptNotFound     = errors.New("generation attempt not found")
)

// FailureError reports a failed provider call. Its message is the provider's
// error text and is safe to return to the caller.
type FailureError struct {
	Reason string
	Err    error
}

func (e *FailureError) Error() string {
	return e.Reason
}

// Unwrap exposes both ErrGenerationFailed and the provider error.
func (e *FailureError) Unwrap() []error {
	return []error{ErrGenerationFailed, e.Err}
}
