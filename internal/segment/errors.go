package segment

import "errors"

// Segment edit errors.
var (
	// ErrMissingParam is returned when the mode's required parameters are absent.
	ErrMissingParam = errors.New("missing required parameter")

	// ErrNoMatch is returned when an edit matched nothing. Content is unchanged.
	ErrNoMatch = errors.New("no matches found")

	// ErrInvalidPattern is returned when find, start or end does not compile.
	ErrInvalidPattern = errors.New("invalid pattern")

	// ErrUnknownMode is returned for modes other than find_replace, block and line_range.
	ErrUnknownMode = errors.New("unknown edit mode")

	// ErrFileTooLarge is returned when a file exceeds Options.MaxFileBytes.
	ErrFileTooLarge = errors.New("file too large")

	// ErrDuplicatePath is returned when ApplyFiles is given the same file twice.
	ErrDuplicatePath = errors.New("duplicate path")
)
