package pattern

import "errors"

var (
	// ErrIO reports a model source that could not be opened or read.
	ErrIO = errors.New("model source unreadable")
	// ErrMalformedRecord reports an encoding line that could not be parsed.
	// Decoding logs it and keeps going.
	ErrMalformedRecord = errors.New("malformed encoding record")
	// ErrMissingModelData reports an empty order-0 tree. No search can run
	// without an alphabet.
	ErrMissingModelData = errors.New("missing model data: order-0 tree is empty")
	// ErrInvariantViolation reports an insert that would break the tree
	// layout, such as a suffix whose length differs from the tree order.
	ErrInvariantViolation = errors.New("pattern tree invariant violation")
)
