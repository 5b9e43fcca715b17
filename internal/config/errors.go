package config

import "errors"

// Configuration validation errors.
// These errors are returned by Config.Validate() and provide specific
// information about what is wrong with the configuration.
//
// Design decision: We use package-level sentinel errors rather than
// creating new error instances in Validate(). This allows callers to use
// errors.Is() for programmatic error handling while still providing
// human-readable messages. Using errors.New() here rather than fmt.Errorf()
// because we don't need to include dynamic values in these messages.
var (
	// ErrNoSeed is returned when no seed URL is specified.
	ErrNoSeed = errors.New("no seed URL specified: provide at least one URL argument")

	// ErrNoFields is returned when no extraction fields are configured,
	// neither via --field flags nor the configuration file.
	ErrNoFields = errors.New("no extraction fields specified: use --field name=selector")

	// ErrInvalidTimeout is returned when the timeout is not positive.
	// A timeout of zero or negative would cause immediate request failures.
	ErrInvalidTimeout = errors.New("invalid timeout: must be positive")

	// ErrInvalidWorkers is returned when the worker count is not positive.
	ErrInvalidWorkers = errors.New("invalid workers: must be positive")

	// ErrInvalidMaxPages is returned when the page budget is not positive.
	ErrInvalidMaxPages = errors.New("invalid max pages: must be positive")

	// ErrInvalidMaxDepth is returned when the depth limit is negative.
	// Zero is valid and means the seed page only.
	ErrInvalidMaxDepth = errors.New("invalid max depth: must be non-negative")

	// ErrInvalidBatchSize is returned when the batch size is not positive.
	ErrInvalidBatchSize = errors.New("invalid batch size: must be positive")

	// ErrInvalidRate is returned when the request rate is negative.
	// Use 0 for unlimited.
	ErrInvalidRate = errors.New("invalid rate: must be non-negative")

	// ErrConflictingReportFormats is returned when more than one of --csv,
	// --json, and --markdown is specified. Only one output format can be
	// used at a time.
	ErrConflictingReportFormats = errors.New("conflicting report formats: choose at most one of --csv, --json, --markdown")

	// ErrInvalidFieldSpec is returned when a --field value cannot be
	// parsed. The expected form is name=selector or name=xpath:expression.
	ErrInvalidFieldSpec = errors.New("invalid field spec: expected name=selector or name=xpath:expression")
)
