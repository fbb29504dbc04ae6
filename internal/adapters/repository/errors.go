package repository

import "errors"

// Sentinel kinds for flat-file errors.
var (
	ErrMissingInput  = errors.New("input file not found")
	ErrMissingColumn = errors.New("required column missing")
	ErrInvalidValue  = errors.New("invalid value")
	ErrReadTable     = errors.New("read table failed")
	ErrStageOutput   = errors.New("stage output failed")
	ErrCommitOutput  = errors.New("commit output failed")
)
