package types

import "errors"

// Domain errors shared across components
var (
	ErrNoRoots       = errors.New("no input roots provided")
	ErrEmptyPath     = errors.New("file path cannot be empty")
	ErrInvalidBucket = errors.New("unknown bucket key")
)

// Structured per-file failure reasons. These appear in diagnostics reports
// and must stay stable across releases.
const (
	FailUnreadable          = "unreadable_file"
	FailEncoding            = "encoding_error"
	FailUnterminatedHeredoc = "unterminated_heredoc"
	FailUnterminatedMarkup  = "unterminated_markup_block"
)
