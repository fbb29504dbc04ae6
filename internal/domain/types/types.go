// Package types contains common types used across the application
package types

import (
	"encoding/json"
	"math"
	"strconv"
)

// NullFloat is a float64 that may be absent. Derived metrics that divide by a
// zero counter, or inherit a missing input, are stored with Valid=false and are
// skipped by every aggregation helper.
type NullFloat struct {
	Value float64
	Valid bool
}

// Some returns a present value.
func Some(v float64) NullFloat { return NullFloat{Value: v, Valid: true} }

// None returns an absent value.
func None() NullFloat { return NullFloat{} }

// FromFloat maps NaN and ±Inf to None.
func FromFloat(v float64) NullFloat {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return None()
	}
	return Some(v)
}

// Float returns the value or NaN when absent.
func (n NullFloat) Float() float64 {
	if !n.Valid {
		return math.NaN()
	}
	return n.Value
}

// Or returns the value or fallback when absent.
func (n NullFloat) Or(fallback float64) float64 {
	if !n.Valid {
		return fallback
	}
	return n.Value
}

// Format renders the value with the shortest exact representation, or an
// empty string when absent (blank CSV cell).
func (n NullFloat) Format() string {
	if !n.Valid {
		return ""
	}
	return strconv.FormatFloat(n.Value, 'f', -1, 64)
}

// FormatFixed renders the value rounded to prec decimals, or "" when absent.
func (n NullFloat) FormatFixed(prec int) string {
	if !n.Valid {
		return ""
	}
	return strconv.FormatFloat(Round(n.Value, prec), 'f', prec, 64)
}

// MarshalJSON encodes an absent value as null.
func (n NullFloat) MarshalJSON() ([]byte, error) {
	if !n.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(n.Value)
}

// UnmarshalJSON accepts a number or null.
func (n *NullFloat) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		*n = None()
		return nil
	}
	var v float64
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	*n = Some(v)
	return nil
}

// Values returns the present values in order.
func Values(ns []NullFloat) []float64 {
	out := make([]float64, 0, len(ns))
	for _, n := range ns {
		if n.Valid {
			out = append(out, n.Value)
		}
	}
	return out
}

// Round rounds half away from zero to prec decimals.
func Round(v float64, prec int) float64 {
	p := math.Pow(10, float64(prec))
	return math.Round(v*p) / p
}

// Entry represents a ranked transfer row.
type Entry struct {
	Rank        int       `json:"rank"`
	PlayerName  string    `json:"player_name"`
	ClubName    string    `json:"club_name"`
	FeeMillions float64   `json:"fee_millions"`
	Goals       NullFloat `json:"perf_after_goals"`
	Assists     NullFloat `json:"perf_after_assists"`
	Score       float64   `json:"efficiency_score"`
	Category    string    `json:"efficiency_category"`
}
