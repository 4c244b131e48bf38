package cosine

import (
	"encoding/json"
	"math"
)

// Finite returns a pointer to v, or nil when v is NaN or infinite. JSON has
// no encoding for non-finite numbers, so they are written as null.
func Finite(v float64) *float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}

// MarshalJSON writes overflowed accumulator shares as null.
func (c TermContribution) MarshalJSON() ([]byte, error) {
	out := struct {
		Term      string    `json:"term"`
		Weight    *float64  `json:"weight"`
		Stats     TermStats `json:"stats"`
		IDF       *float64  `json:"idf"`
		Matched   bool      `json:"matched"`
		Numerator *float64  `json:"numerator"`
		DocNorm   *float64  `json:"doc_norm"`
		QueryNorm *float64  `json:"query_norm"`
	}{
		Term:      c.Term,
		Weight:    Finite(c.Weight),
		Stats:     c.Stats,
		IDF:       Finite(c.IDF),
		Matched:   c.Matched,
		Numerator: Finite(c.Numerator),
		DocNorm:   Finite(c.DocNorm),
		QueryNorm: Finite(c.QueryNorm),
	}
	return json.Marshal(out)
}
