package cli

// Exit codes for the bumpchanges CLI
// These codes support programmatic composition and CI/CD integration
const (
	// ExitSuccess indicates successful command execution
	ExitSuccess = 0

	// ExitValidationFailed indicates the repository content does not allow
	// the requested step (no baseline, nothing to release, ambiguous literal)
	ExitValidationFailed = 1

	// ExitInvalidArguments indicates invalid command arguments
	ExitInvalidArguments = 3

	// ExitMissingDependencies indicates a required repository, file or
	// workflow payload is missing
	ExitMissingDependencies = 4
)
