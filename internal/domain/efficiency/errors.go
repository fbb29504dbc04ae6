package efficiency

import "errors"

// Sentinel kinds for derivation errors.
var (
	ErrNoPaidTransfers = errors.New("no paid transfers to derive")
	ErrCancelled       = errors.New("derivation cancelled")
)
