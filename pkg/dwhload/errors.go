package dwhload

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors for the failure kinds a run can end with.
// Callers distinguish them with errors.Is():
//
//	err := pipeline.Run(ctx, session)
//	if errors.Is(err, dwhload.ErrLoad) {
//	    // staging load failed; the warehouse message is in err.Error()
//	}
var (
	// ErrConfig indicates a missing or malformed configuration value.
	ErrConfig = errors.New("configuration error")

	// ErrConnection indicates the warehouse session could not be established.
	ErrConnection = errors.New("connection error")

	// ErrSchema indicates a DROP or CREATE statement was rejected.
	ErrSchema = errors.New("schema error")

	// ErrLoad indicates a staging bulk load failed.
	ErrLoad = errors.New("load error")

	// ErrTransform indicates an INSERT-SELECT into a final table failed.
	ErrTransform = errors.New("transform error")

	// ErrExecution is the kind for statements outside the pipeline phases.
	ErrExecution = errors.New("execution failed")

	// ErrApprovalDenied indicates the operator declined the destructive table reset.
	ErrApprovalDenied = errors.New("approval denied")

	// ErrUnsupportedAuthMethod indicates the auth method cannot be used with the dialect.
	ErrUnsupportedAuthMethod = errors.New("unsupported authentication method")

	// ErrUnsupportedDialect indicates an unknown warehouse dialect.
	ErrUnsupportedDialect = errors.New("unsupported warehouse dialect")
)

// StatementError reports the statement that failed together with the
// warehouse's own error. The native message is kept verbatim.
//
// Both the failure kind and the driver error are reachable through
// errors.Is / errors.As:
//
//	var pgErr *pgconn.PgError
//	errors.Is(err, dwhload.ErrTransform) // true
//	errors.As(err, &pgErr)               // true when the driver is pgx
type StatementError struct {
	Statement Statement
	Err       error
}

func (e *StatementError) Error() string {
	return fmt.Sprintf("%s %s failed: %v", e.Statement.Purpose, e.Statement.Table, e.Err)
}

// Unwrap exposes the failure kind derived from the statement purpose and
// the underlying driver error.
func (e *StatementError) Unwrap() []error {
	return []error{e.Statement.Purpose.Kind(), e.Err}
}

// NewStatementError wraps a driver error for the given statement.
func NewStatementError(stmt Statement, err error) error {
	if err == nil {
		return nil
	}
	return &StatementError{Statement: stmt, Err: err}
}

// ExitCodeForError returns the process exit code for an error.
// Returns ExitSuccess (0) for nil errors, semantic codes for known errors,
// and ExitGeneralError (1) for unclassified errors.
func ExitCodeForError(err error) int {
	if err == nil {
		return ExitSuccess
	}

	switch {
	case errors.Is(err, ErrApprovalDenied):
		return ExitApprovalDenied
	case errors.Is(err, ErrConfig),
		errors.Is(err, ErrUnsupportedAuthMethod),
		errors.Is(err, ErrUnsupportedDialect):
		return ExitConfigError
	case errors.Is(err, ErrConnection):
		return ExitConnectionError
	case errors.Is(err, ErrSchema):
		return ExitSchemaError
	case errors.Is(err, ErrLoad):
		return ExitLoadError
	case errors.Is(err, ErrTransform):
		return ExitTransformError
	}

	// cobra reports flag and argument misuse as plain errors
	errStr := err.Error()
	for _, prefix := range usageErrorPrefixes {
		if strings.HasPrefix(errStr, prefix) {
			return ExitUsageError
		}
	}

	return ExitGeneralError
}

var usageErrorPrefixes = []string{
	"unknown flag",
	"unknown shorthand flag",
	"unknown command",
	"accepts ",
	"required flag",
	"invalid argument",
	"flag needs an argument",
}
