package aggregate

import "errors"

// Sentinel kinds for aggregation errors.
var (
	ErrInvalidBuckets   = errors.New("invalid buckets")
	ErrUnknownDimension = errors.New("unknown dimension")
	ErrNoRecords        = errors.New("no enriched records")
)
