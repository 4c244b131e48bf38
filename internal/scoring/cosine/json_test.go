package cosine

import (
	"encoding/json"
	"math"
	"strings"
	"testing"
)

func TestFinite(t *testing.T) {
	if p := Finite(1.5); p == nil || *p != 1.5 {
		t.Errorf("Finite(1.5) = %v", p)
	}
	for _, v := range []float64{math.NaN(), math.Inf(1), math.Inf(-1)} {
		if p := Finite(v); p != nil {
			t.Errorf("Finite(%v) = %v, want nil", v, *p)
		}
	}
}

func TestTermContributionOverflowEncodesNull(t *testing.T) {
	s, err := New(Params{Field: "body", Terms: []string{"cat"}, Weights: []float64{1e300}})
	if err != nil {
		t.Fatal(err)
	}
	lookup := &fixedStats{stats: map[string]TermStats{
		"cat": {DocFreq: 1, TermFreq: 2, DocCount: 3},
	}}
	exp, err := s.Explain(lookup)
	if err != nil {
		t.Fatal(err)
	}
	if !math.IsInf(exp.Terms[0].QueryNorm, 1) {
		t.Fatalf("QueryNorm = %v, want +Inf", exp.Terms[0].QueryNorm)
	}

	data, err := json.Marshal(exp.Terms)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	if !strings.Contains(string(data), `"query_norm":null`) {
		t.Errorf("encoded = %s, want null query_norm", data)
	}
	if !strings.Contains(string(data), `"weight":1e+300`) {
		t.Errorf("encoded = %s, want finite weight kept", data)
	}
}
