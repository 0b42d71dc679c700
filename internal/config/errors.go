package config

import "errors"

// Configuration validation errors returned by Config.Validate.
// They are package-level sentinels so callers can use errors.Is.
var (
	// ErrNoSource is returned when no input source is given.
	ErrNoSource = errors.New("no source specified: provide a file path or - for standard input")

	// ErrInvalidTop is returned when the top-N limit is negative.
	ErrInvalidTop = errors.New("invalid top: must be non-negative (0 lists every entry)")

	// ErrInvalidBatchSize is returned when the batch size is not positive.
	ErrInvalidBatchSize = errors.New("invalid batch size: must be positive")

	// ErrInvalidBufferSize is returned when the read buffer size is not positive.
	ErrInvalidBufferSize = errors.New("invalid buffer size: must be positive")

	// ErrConflictingReportFormats is returned when both --json and --markdown
	// are specified.
	ErrConflictingReportFormats = errors.New("conflicting report formats: --json and --markdown cannot be used together")

	// ErrDuplicateStdin is returned when standard input is listed more than once.
	// It can only be read once.
	ErrDuplicateStdin = errors.New("standard input (-) can only be given once")

	// ErrInvalidFormat is returned when the configuration file names an
	// unknown report format.
	ErrInvalidFormat = errors.New("invalid format: must be one of text, json, markdown")
)
