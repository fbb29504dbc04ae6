package service

import "errors"

// Sentinel error kinds for this package. These allow errors.Is/As from callers.
var (
	ErrDerive = errors.New("derive stage failed")
	ErrReport = errors.New("report stage failed")
	ErrChart  = errors.New("chart stage failed")
)
