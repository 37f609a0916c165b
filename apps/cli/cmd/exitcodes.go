package cmd

import "errors"

// Exit codes for the swell CLI. The HTTP status of the response never
// affects the exit code.
const (
	// ExitSuccess indicates the request completed
	ExitSuccess = 0

	// ExitIOError indicates a body-file or cookie-jar I/O error
	ExitIOError = 2

	// ExitNetworkError indicates a transport-layer failure
	ExitNetworkError = 4

	// ExitUsageError indicates invalid CLI usage
	ExitUsageError = 64
)

type usageError struct{ error }

type ioError struct{ error }

type transportError struct{ error }

func exitCode(err error) int {
	var usage usageError
	var ioErr ioError
	var transport transportError
	switch {
	case errors.As(err, &ioErr):
		return ExitIOError
	case errors.As(err, &transport):
		return ExitNetworkError
	case errors.As(err, &usage):
		return ExitUsageError
	default:
		// anything else came out of flag parsing
		return ExitUsageError
	}
}
