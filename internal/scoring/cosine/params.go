package cosine

import (
	"encoding/json"
	"fmt"

	apperrors "github.com/Adithya-Monish-Kumar-K/cosine-scorer/pkg/errors"
)

// Parameter keys recognised by ParseParams.
const (
	ParamField   = "field"
	ParamTerms   = "terms"
	ParamWeights = "weights"
)

// Params is the typed scorer configuration. A nil Terms slice means the
// terms parameter was absent; an empty non-nil slice is a valid, empty query.
type Params struct {
	Field   string    `json:"field" yaml:"field"`
	Terms   []string  `json:"terms" yaml:"terms"`
	Weights []float64 `json:"weights,omitempty" yaml:"weights,omitempty"`
}

// ParseParams converts an untyped parameter map, as produced by a JSON or
// YAML decoder, into Params. Values of the wrong type fail with
// ErrConfiguration. Presence of field and terms is checked by New.
func ParseParams(raw map[string]any) (Params, error) {
	var p Params
	if v, ok := raw[ParamField]; ok && v != nil {
		s, ok := v.(string)
		if !ok {
			return Params{}, apperrors.Configf("%s must be a string, got %T", ParamField, v)
		}
		p.Field = s
	}
	if v, ok := raw[ParamTerms]; ok && v != nil {
		terms, err := parseTerms(v)
		if err != nil {
			return Params{}, err
		}
		p.Terms = terms
	}
	if v, ok := raw[ParamWeights]; ok && v != nil {
		weights, err := parseWeights(v)
		if err != nil {
			return Params{}, err
		}
		p.Weights = weights
	}
	return p, nil
}

func parseTerms(v any) ([]string, error) {
	switch list := v.(type) {
	case []string:
		out := make([]string, len(list))
		copy(out, list)
		return out, nil
	case []any:
		out := make([]string, 0, len(list))
		for i, item := range list {
			s, ok := item.(string)
			if !ok {
				return nil, apperrors.Configf("%s[%d] must be a string, got %T", ParamTerms, i, item)
			}
			out = append(out, s)
		}
		return out, nil
	default:
		return nil, apperrors.Configf("%s must be a list of strings, got %T", ParamTerms, v)
	}
}

func parseWeights(v any) ([]float64, error) {
	switch list := v.(type) {
	case []float64:
		out := make([]float64, len(list))
		copy(out, list)
		return out, nil
	case []any:
		out := make([]float64, 0, len(list))
		for i, item := range list {
			f, err := toFloat(item)
			if err != nil {
				return nil, apperrors.Configf("%s[%d]: %v", ParamWeights, i, err)
			}
			out = append(out, f)
		}
		return out, nil
	default:
		return nil, apperrors.Configf("%s must be a list of numbers, got %T", ParamWeights, v)
	}
}

func toFloat(v any) (float64, error) {
	switch n := v.(type) {
	case float64:
		return n, nil
	case float32:
		return float64(n), nil
	case int:
		return float64(n), nil
	case int32:
		return float64(n), nil
	case int64:
		return float64(n), nil
	case uint:
		return float64(n), nil
	case uint32:
		return float64(n), nil
	case uint64:
		return float64(n), nil
	case json.Number:
		f, err := n.Float64()
		if err != nil {
			return 0, fmt.Errorf("parsing number %q: %w", n.String(), err)
		}
		return f, nil
	default:
		return 0, fmt.Errorf("must be a number, got %T", v)
	}
}
