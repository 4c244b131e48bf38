package index

import (
	"context"
	"math"
	"testing"

	"github.com/Adithya-Monish-Kumar-K/cosine-scorer/internal/scoring/cosine"
)

func seedIndex(t *testing.T) *MemoryIndex {
	t.Helper()
	m := NewMemoryIndex()
	docs := map[string]map[string]string{
		"d1": {"body": "cat cat dog", "title": "pets"},
		"d2": {"body": "dog bird"},
		"d3": {"body": "fish", "title": "the"},
	}
	for id, fields := range docs {
		if err := m.IndexDocument(context.Background(), id, fields); err != nil {
			t.Fatalf("IndexDocument(%s): %v", id, err)
		}
	}
	return m
}

func TestMemoryIndexTermStats(t *testing.T) {
	m := seedIndex(t)
	ctx := context.Background()

	tests := []struct {
		field, term, doc string
		want             cosine.TermStats
	}{
		{"body", "cat", "d1", cosine.TermStats{DocFreq: 1, TermFreq: 2, DocCount: 3}},
		{"body", "dog", "d2", cosine.TermStats{DocFreq: 2, TermFreq: 1, DocCount: 3}},
		{"body", "dog", "d3", cosine.TermStats{DocFreq: 2, TermFreq: 0, DocCount: 3}},
		{"body", "zebra", "d1", cosine.TermStats{DocFreq: 0, TermFreq: 0, DocCount: 3}},
		{"title", "pet", "d1", cosine.TermStats{DocFreq: 1, TermFreq: 1, DocCount: 1}},
		{"missing", "cat", "d1", cosine.TermStats{}},
	}
	for _, tt := range tests {
		got, err := m.TermStats(ctx, tt.field, tt.term, tt.doc)
		if err != nil {
			t.Fatalf("TermStats(%s,%s,%s): %v", tt.field, tt.term, tt.doc, err)
		}
		if got != tt.want {
			t.Errorf("TermStats(%s,%s,%s) = %+v, want %+v", tt.field, tt.term, tt.doc, got, tt.want)
		}
	}
	if m.DocCount("title") != 1 {
		t.Errorf("stop-word-only field counted: DocCount(title) = %d", m.DocCount("title"))
	}
	if m.TotalDocs() != 3 {
		t.Errorf("TotalDocs() = %d, want 3", m.TotalDocs())
	}
}

func TestMemoryIndexReindexReplaces(t *testing.T) {
	m := seedIndex(t)
	ctx := context.Background()
	if err := m.IndexDocument(ctx, "d1", map[string]string{"body": "bird"}); err != nil {
		t.Fatal(err)
	}
	if got := m.Search("body", "cat"); len(got) != 0 {
		t.Errorf("stale postings after reindex: %v", got)
	}
	if got := m.Search("body", "bird"); len(got) != 2 {
		t.Errorf("Search(bird) = %v, want 2 postings", got)
	}
	if m.DocCount("title") != 0 {
		t.Errorf("DocCount(title) = %d after title dropped", m.DocCount("title"))
	}
	if m.TotalDocs() != 3 {
		t.Errorf("TotalDocs() = %d, want 3", m.TotalDocs())
	}
}

func TestMemoryIndexDelete(t *testing.T) {
	m := seedIndex(t)
	ctx := context.Background()
	if ok, err := m.DeleteDocument(ctx, "d2"); !ok || err != nil {
		t.Fatalf("DeleteDocument(d2) = %v, %v", ok, err)
	}
	if ok, _ := m.DeleteDocument(ctx, "d2"); ok {
		t.Error("second delete reported true")
	}
	if m.DocCount("body") != 2 {
		t.Errorf("DocCount(body) = %d, want 2", m.DocCount("body"))
	}
	if got := m.Search("body", "dog"); len(got) != 1 || got[0].DocID != "d1" {
		t.Errorf("Search(dog) = %v", got)
	}
	for _, id := range []string{"d1", "d3"} {
		if _, err := m.DeleteDocument(ctx, id); err != nil {
			t.Fatal(err)
		}
	}
	if m.Size() != 0 || m.TotalDocs() != 0 || len(m.Fields()) != 0 {
		t.Error("deleting every document left data behind")
	}
}

func TestMemoryIndexSkipsDocumentWithoutTerms(t *testing.T) {
	m := seedIndex(t)
	ctx := context.Background()
	if err := m.IndexDocument(ctx, "empty", map[string]string{"body": "  ...  "}); err != nil {
		t.Fatal(err)
	}
	if ok, _ := m.DeleteDocument(ctx, "empty"); ok {
		t.Error("document without terms was recorded")
	}

	if err := m.IndexDocument(ctx, "d3", map[string]string{"body": ""}); err != nil {
		t.Fatal(err)
	}
	if ok, _ := m.DeleteDocument(ctx, "d3"); ok {
		t.Error("re-indexing d3 without terms kept it")
	}
	if m.DocCount("body") != 2 {
		t.Errorf("DocCount(body) = %d, want 2", m.DocCount("body"))
	}
}

func TestMemoryIndexCandidates(t *testing.T) {
	m := seedIndex(t)
	got, err := m.Candidates(context.Background(), "body", []string{"dog", "fish", "zebra"})
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"d1", "d2", "d3"}
	if len(got) != len(want) {
		t.Fatalf("Candidates() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Candidates()[%d] = %s, want %s", i, got[i], want[i])
		}
	}
	none, err := m.Candidates(context.Background(), "nope", []string{"dog"})
	if err != nil || len(none) != 0 {
		t.Errorf("Candidates(nope) = %v, %v", none, err)
	}
}

func TestMemoryIndexSnapshotOrder(t *testing.T) {
	m := seedIndex(t)
	entries := m.Snapshot()
	for i := 1; i < len(entries); i++ {
		prev, cur := entries[i-1], entries[i]
		if prev.Field > cur.Field || (prev.Field == cur.Field && prev.Term >= cur.Term) {
			t.Fatalf("snapshot out of order at %d: %s/%s then %s/%s", i, prev.Field, prev.Term, cur.Field, cur.Term)
		}
	}
}

func TestMemoryIndexFeedsScorer(t *testing.T) {
	m := NewMemoryIndex()
	ctx := context.Background()
	for i, body := range []string{"cat cat", "dog", "dog", "bird", "fish", "fox", "owl", "elk", "yak", "emu"} {
		id := string(rune('a' + i))
		if err := m.IndexDocument(ctx, id, map[string]string{"body": body}); err != nil {
			t.Fatal(err)
		}
	}
	s, err := cosine.New(cosine.Params{Field: "body", Terms: []string{"cat"}, Weights: []float64{1}})
	if err != nil {
		t.Fatal(err)
	}
	lookup := cosine.StatsLookupFunc(func(field, term string) (cosine.TermStats, error) {
		return m.TermStats(ctx, field, term, "a")
	})
	score, err := s.Score(lookup)
	if err != nil {
		t.Fatal(err)
	}
	if math.Abs(score-1) > 1e-9 {
		t.Errorf("Score() = %v, want ~1", score)
	}
}
