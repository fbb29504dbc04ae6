// Package sample generates synthetic transfer + performance tables in the
// raw input layout, with one-hot position and league columns.
package sample

// Config holds configuration for sample generation.
type Config struct {
	Count int   // Number of transfer rows to generate
	Seed  int64 // Seed for the deterministic generator

	FreeShare       float64 // Share of rows with a zero fee
	MissingFeeShare float64 // Share of rows with a blank fee
	UnknownShare    float64 // Share of rows without position or league indicators
	MissingMinShare float64 // Share of rows with blank minutes
}

// DefaultConfig returns the generator defaults.
func DefaultConfig() Config {
	return Config{
		Count:           500,
		Seed:            42,
		FreeShare:       0.12,
		MissingFeeShare: 0.02,
		UnknownShare:    0.05,
		MissingMinShare: 0.01,
	}
}

// Stats counts what the generator produced.
type Stats struct {
	Rows           int
	FreeTransfers  int
	MissingFees    int
	UnknownLeague  int
	UnknownPosition int
}
