package domain

import "github.com/pkg/errors"

// Precondition errors. Fatal to the current swap attempt and never retried.
var (
	ErrInvalidCount = errors.New("invalid secret count")
	ErrUnknownIndex = errors.New("unknown fill index")
	ErrEmptyFillSet = errors.New("empty fill set")
)

// Setup errors. Nothing has happened on-chain when these are returned.
var (
	ErrQuoteUnavailable = errors.New("quote unavailable")
	ErrSubmissionFailed = errors.New("order submission failed")
)

// Polling loop errors.
var (
	// ErrPollingExhausted is returned once consecutive failed polling
	// iterations exceed the configured cap. Secrets are kept until the
	// caller retries or closes the swap.
	ErrPollingExhausted = errors.New("polling retries exhausted")

	// ErrCancelled is returned when the caller's context ends. Secrets are
	// discarded and the order itself is left untouched.
	ErrCancelled = errors.New("swap cancelled")
)

// Input and lookup errors.
var (
	ErrUnknownRoute  = errors.New("unknown route")
	ErrInvalidAmount = errors.New("invalid amount")
	ErrInvalidConfig = errors.New("invalid config")
)
