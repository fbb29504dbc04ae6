package chart

import "errors"

// Sentinel kinds for rendering errors.
var (
	ErrNoRecords = errors.New("no records to chart")
	ErrRender    = errors.New("render chart failed")
)
