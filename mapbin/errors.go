package mapbin

import "errors"

// Error kinds. Every error returned by this package wraps exactly one of
// these, so callers can classify failures with errors.Is.
var (
	// ErrFormat reports a structural problem with the source room: missing
	// tile layer, missing or undecodable data, unsupported encoding.
	ErrFormat = errors.New("format error")

	// ErrRange reports a value that does not fit its field in the binary.
	ErrRange = errors.New("range error")

	// ErrLookup reports a name that could not be resolved, such as a room
	// absent from the placement table or an unknown property type.
	ErrLookup = errors.New("lookup error")
)
