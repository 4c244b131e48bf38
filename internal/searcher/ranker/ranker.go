// Package ranker orders candidate documents by cosine score and keeps the
// top results. Non-finite scores (NaN, ±Inf) are valid scorer output and
// rank below every finite score.
package ranker

import (
	"container/heap"
	"encoding/json"
	"fmt"
	"math"
)

type ScoredDoc struct {
	DocID string
	Score float64
}

// Degenerate reports whether the score is NaN or infinite.
func (d ScoredDoc) Degenerate() bool {
	return math.IsNaN(d.Score) || math.IsInf(d.Score, 0)
}

// MarshalJSON writes non-finite scores as null, since JSON has no NaN.
func (d ScoredDoc) MarshalJSON() ([]byte, error) {
	out := struct {
		DocID      string   `json:"doc_id"`
		Score      *float64 `json:"score"`
		Degenerate bool     `json:"degenerate,omitempty"`
	}{DocID: d.DocID}
	if d.Degenerate() {
		out.Degenerate = true
	} else {
		score := d.Score
		out.Score = &score
	}
	return json.Marshal(out)
}

// ScoreFunc scores one document.
type ScoreFunc func(docID string) (float64, error)

// Rank scores every candidate and returns the best limit documents in
// ranked order. limit <= 0 keeps everything. The first scoring error stops
// ranking.
func Rank(candidates []string, score ScoreFunc, limit int) ([]ScoredDoc, error) {
	if limit <= 0 || limit > len(candidates) {
		limit = len(candidates)
	}
	h := &scoredDocHeap{}
	for _, docID := range candidates {
		s, err := score(docID)
		if err != nil {
			return nil, fmt.Errorf("scoring document %s: %w", docID, err)
		}
		heap.Push(h, ScoredDoc{DocID: docID, Score: s})
		if h.Len() > limit {
			heap.Pop(h)
		}
	}
	result := make([]ScoredDoc, h.Len())
	for i := len(result) - 1; i >= 0; i-- {
		result[i] = heap.Pop(h).(ScoredDoc)
	}
	return result, nil
}

// Better reports whether a ranks above b.
func Better(a, b ScoredDoc) bool {
	ad, bd := a.Degenerate(), b.Degenerate()
	if ad != bd {
		return bd
	}
	if !ad && a.Score != b.Score {
		return a.Score > b.Score
	}
	return a.DocID < b.DocID
}

// scoredDocHeap is a min-heap on rank: the root is the worst document kept.
type scoredDocHeap []ScoredDoc

func (h scoredDocHeap) Len() int { return len(h) }

func (h scoredDocHeap) Less(i, j int) bool { return Better(h[j], h[i]) }

func (h scoredDocHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }

func (h *scoredDocHeap) Push(x interface{}) {
	*h = append(*h, x.(ScoredDoc))
}

func (h *scoredDocHeap) Pop() interface{} {
	old := *h
	n := len(old)
	item := old[n-1]
	*h = old[:n-1]
	return item
}
