package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	apperrors "github.com/Adithya-Monish-Kumar-K/cosine-scorer/pkg/errors"
)

const testCorpus = `{"document_id":"d1","fields":{"body":"cat cat dog"}}
{"document_id":"d2","fields":{"body":"dog bird"}}

{"document_id":"d3","fields":{"body":"fish"}}
`

func writeCorpus(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "corpus.jsonl")
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatalf("write corpus: %v", err)
	}
	return path
}

func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return stdout.String(), err
}

func TestScoreJSON(t *testing.T) {
	corpus := writeCorpus(t, testCorpus)
	out, err := runCLI(t, "--json", "score", "--corpus", corpus, "--field", "body", "--terms", "cat,dog")
	if err != nil {
		t.Fatalf("score: %v", err)
	}

	var got struct {
		Weights []float64 `json:"weights"`
		Results []struct {
			DocID string   `json:"doc_id"`
			Score *float64 `json:"score"`
		} `json:"results"`
	}
	if err := json.Unmarshal([]byte(out), &got); err != nil {
		t.Fatalf("decode %q: %v", out, err)
	}
	if len(got.Results) != 2 || got.Results[0].DocID != "d1" || got.Results[1].DocID != "d2" {
		t.Fatalf("results = %+v, want d1 then d2", got.Results)
	}
	if len(got.Weights) != 2 || got.Weights[0] != 1 {
		t.Errorf("weights = %v, want defaults", got.Weights)
	}
}

func TestScoreTable(t *testing.T) {
	corpus := writeCorpus(t, testCorpus)
	out, err := runCLI(t, "score", "--corpus", corpus, "--field", "body", "--terms", "fish")
	if err != nil {
		t.Fatalf("score: %v", err)
	}
	for _, want := range []string{"Rank", "Document", "d3"} {
		if !strings.Contains(out, want) {
			t.Errorf("table missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "d1") {
		t.Errorf("non-matching document listed:\n%s", out)
	}
}

func TestScoreDegenerateDocument(t *testing.T) {
	corpus := writeCorpus(t, testCorpus)
	out, err := runCLI(t, "score", "--corpus", corpus, "--field", "body", "--terms", "cat", "--docs", "d3")
	if err != nil {
		t.Fatalf("score: %v", err)
	}
	if !strings.Contains(out, "NaN") {
		t.Errorf("expected NaN score for d3:\n%s", out)
	}
}

func TestScoreRequiresTerms(t *testing.T) {
	corpus := writeCorpus(t, testCorpus)
	_, err := runCLI(t, "score", "--corpus", corpus, "--field", "body")
	if !errors.Is(err, apperrors.ErrConfiguration) {
		t.Errorf("err = %v, want configuration error", err)
	}
}

func TestExplain(t *testing.T) {
	corpus := writeCorpus(t, testCorpus)
	out, err := runCLI(t, "explain", "--corpus", corpus, "--field", "body",
		"--terms", "cat,zebra", "--weights", "2,1", "--doc", "d1")
	if err != nil {
		t.Fatalf("explain: %v", err)
	}
	for _, want := range []string{"cat", "zebra", "Score:", "Document: d1"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestExplainJSON(t *testing.T) {
	corpus := writeCorpus(t, testCorpus)
	out, err := runCLI(t, "--json", "explain", "--corpus", corpus, "--field", "body",
		"--terms", "cat", "--weights", "1e300", "--doc", "d1")
	if err != nil {
		t.Fatalf("explain: %v", err)
	}
	var got map[string]any
	if err := json.Unmarshal([]byte(out), &got); err != nil {
		t.Fatalf("decode %q: %v", out, err)
	}
	if _, ok := got["score"].(float64); !ok {
		t.Errorf("score = %#v, want a JSON number", got["score"])
	}
	if got["query_norm"] != nil {
		t.Errorf("query_norm = %v, want null after overflow", got["query_norm"])
	}
	if got["doc_id"] != "d1" {
		t.Errorf("doc_id = %v", got["doc_id"])
	}
}

func TestReadCorpusRejectsInvalidLine(t *testing.T) {
	corpus := writeCorpus(t, `{"document_id":"","fields":{"body":"x"}}`)
	if _, err := readCorpus(corpus); err == nil {
		t.Error("readCorpus accepted a document without an ID")
	}
}

func TestRenderTable(t *testing.T) {
	if got := renderTable(nil, nil, nil); got != "" {
		t.Errorf("renderTable(no headers) = %q", got)
	}
	out := renderTable([]string{"A", "B"}, [][]string{{"1"}}, []columnAlignment{alignRight})
	if !strings.Contains(out, "A") || !strings.Contains(out, "1") {
		t.Errorf("renderTable output:\n%s", out)
	}
}

func TestTerms(t *testing.T) {
	corpus := writeCorpus(t, testCorpus)
	out, err := runCLI(t, "--json", "terms", "--corpus", corpus, "--field", "body")
	if err != nil {
		t.Fatalf("terms: %v", err)
	}
	var rows []termRow
	if err := json.Unmarshal([]byte(out), &rows); err != nil {
		t.Fatalf("decode %q: %v", out, err)
	}
	if len(rows) != 4 {
		t.Fatalf("rows = %+v, want bird, cat, dog, fish", rows)
	}
	if rows[2].Term != "dog" || rows[2].DocFreq != 2 || rows[2].DocCount != 3 {
		t.Errorf("dog row = %+v", rows[2])
	}

	out, err = runCLI(t, "terms", "--corpus", corpus, "--field", "body", "--term", "cat")
	if err != nil {
		t.Fatalf("terms --term: %v", err)
	}
	if !strings.Contains(out, "d1") || strings.Contains(out, "d2") {
		t.Errorf("postings table:\n%s", out)
	}
}
