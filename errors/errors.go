package errors

import (
	"errors"
	"fmt"
)

// Failure taxonomy. Corpus load failures are fatal at startup; everything
// else is recoverable at a node boundary and degrades the response.

var (
	// ErrCorpusLoad indicates the passage corpus could not be loaded
	ErrCorpusLoad = errors.New("corpus load failed")

	// ErrDependencyUnavailable indicates an embedding or LLM backend is unreachable
	ErrDependencyUnavailable = errors.New("dependency unavailable")

	// ErrInvalidInput indicates invalid user input
	ErrInvalidInput = errors.New("invalid input")

	// ErrGateway indicates the language model call failed or returned an unusable shape
	ErrGateway = errors.New("gateway error")
)

// WrapError wraps an error with context message and stack
func WrapError(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

// WrapErrorf wraps an error with formatted context message
func WrapErrorf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	message := fmt.Sprintf(format, args...)
	return fmt.Errorf("%s: %w", message, err)
}

// IsCorpusLoad checks if error is a corpus load error
func IsCorpusLoad(err error) bool {
	return errors.Is(err, ErrCorpusLoad)
}

// IsDependencyUnavailable checks if error is a dependency unavailable error
func IsDependencyUnavailable(err error) bool {
	return errors.Is(err, ErrDependencyUnavailable)
}

// IsInvalidInput checks if error is an invalid input error
func IsInvalidInput(err error) bool {
	return errors.Is(err, ErrInvalidInput)
}

// IsGateway checks if error is a gateway error
func IsGateway(err error) bool {
	return errors.Is(err, ErrGateway)
}
