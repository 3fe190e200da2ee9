// Package exitcode defines exit codes for the CLI.
package exitcode

const (
	// Success indicates the run completed, even with per-task failures.
	Success = 0

	// UserError indicates a user error (bad args, not found, lock held).
	UserError = 1

	// AuthError indicates an auth/config error.
	AuthError = 2

	// BackendError indicates a backend/API/network error.
	BackendError = 3
)
