package selection

import "errors"

var (
	// ErrConfiguration reports a missing or empty collaborator.
	ErrConfiguration = errors.New("selection: configuration error")
	// ErrInvalidArgument reports a bad mask, trials number or threshold.
	ErrInvalidArgument = errors.New("selection: invalid argument")
	// ErrUnsupportedAlgorithm reports a training result the extractor does not know.
	ErrUnsupportedAlgorithm = errors.New("selection: unsupported algorithm")
	// ErrNotFound reports a mask that was never evaluated.
	ErrNotFound = errors.New("selection: not found")
)
