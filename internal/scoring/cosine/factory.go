package cosine

// ScriptName is the name under which hosts register the scorer.
const ScriptName = "cosine_sim_script_score"

// Factory is the capability a host needs to run the scorer: build one per
// query from its raw parameters, then call Score once per document.
type Factory struct{}

func (Factory) Name() string { return ScriptName }

func (Factory) NewScorer(params map[string]any) (*Scorer, error) {
	return NewFromMap(params)
}
