package exitcode

import (
	"os"

	"github.com/devtracker/devtracker-cli/internal/errors"
)

// Exit codes for consistent error handling across the CLI
const (
	// Success indicates successful execution
	Success = 0

	// GeneralError indicates a general error condition
	GeneralError = 1

	// UsageError indicates invalid command usage (bad flags, missing args, etc.)
	UsageError = 2

	// AuthError indicates an authentication or authorization failure
	AuthError = 5

	// NetworkError indicates a network connectivity issue
	NetworkError = 6

	// NotFound indicates a requested resource does not exist
	NotFound = 7

	// Interrupted indicates the operation was cancelled by the user
	Interrupted = 130
)

// Exit terminates the program with the given exit code
func Exit(code int) {
	os.Exit(code)
}

// ExitWithError exits with an appropriate code based on error classification
func ExitWithError(err error) {
	Exit(DetermineExitCode(err))
}

// DetermineExitCode maps an error to an exit code via the error taxonomy
func DetermineExitCode(err error) int {
	if err == nil {
		return Success
	}

	switch errors.KindOf(err) {
	case errors.KindAuthorization:
		return AuthError
	case errors.KindNetwork:
		return NetworkError
	case errors.KindNotFound:
		return NotFound
	case errors.KindValidation:
		return UsageError
	default:
		return GeneralError
	}
}
