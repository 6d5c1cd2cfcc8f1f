package ledger

import "errors"

// Domain errors for the credit ledger.
var (
	ErrInsufficientCredits = errors.New("insufficient credits")
	ErrAlreadyFinalized    = errors.New("attempt already finalized")
	ErrAttemptNotFound     = errors.New("attempt not found")
	ErrInvalidAmount       = errors.New("amount must be positive")
	ErrInvalidSource       = errors.New("invalid credit source")
)
