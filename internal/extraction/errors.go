package extraction

import "errors"

// Domain errors for text extraction.
var (
	// ErrExtraction indicates the document container could not be opened or
	// parsed at all. This is terminal for the request.
	ErrExtraction = errors.New("document could not be read")

	// ErrNoText indicates the document parsed but yielded no text on any
	// page (e.g. a scanned image). Distinct from ErrExtraction so callers
	// can report it as an expected negative rather than a fault.
	ErrNoText = errors.New("no text could be extracted")
)
