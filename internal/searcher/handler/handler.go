package handler

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"math"
	"net/http"
	"time"

	"github.com/Adithya-Monish-Kumar-K/cosine-scorer/internal/indexer/tokenizer"
	"github.com/Adithya-Monish-Kumar-K/cosine-scorer/internal/ingestion"
	"github.com/Adithya-Monish-Kumar-K/cosine-scorer/internal/scoring/cosine"
	"github.com/Adithya-Monish-Kumar-K/cosine-scorer/internal/searcher/ranker"
	"github.com/Adithya-Monish-Kumar-K/cosine-scorer/internal/stats"
	"github.com/Adithya-Monish-Kumar-K/cosine-scorer/internal/stats/cache"
	"github.com/Adithya-Monish-Kumar-K/cosine-scorer/pkg/config"
	apperrors "github.com/Adithya-Monish-Kumar-K/cosine-scorer/pkg/errors"
	"github.com/Adithya-Monish-Kumar-K/cosine-scorer/pkg/logger"
	"github.com/Adithya-Monish-Kumar-K/cosine-scorer/pkg/metrics"
	"github.com/Adithya-Monish-Kumar-K/cosine-scorer/pkg/tracing"
)

const maxBodyBytes = 1 << 20

// ScoreResponse is returned by the score endpoint.
type ScoreResponse struct {
	Field           string             `json:"field"`
	Terms           []string           `json:"terms"`
	Weights         []float64          `json:"weights"`
	TotalCandidates int                `json:"total_candidates"`
	Results         []ranker.ScoredDoc `json:"results"`
}

// ExplainResponse is returned by the explain endpoint. Score is null when
// the cosine is undefined for the document, and an accumulator is null when
// it overflowed.
type ExplainResponse struct {
	DocID      string                    `json:"doc_id"`
	Field      string                    `json:"field"`
	Score      *float64                  `json:"score"`
	Degenerate bool                      `json:"degenerate,omitempty"`
	Numerator  *float64                  `json:"numerator"`
	DocNorm    *float64                  `json:"doc_norm"`
	QueryNorm  *float64                  `json:"query_norm"`
	Terms      []cosine.TermContribution `json:"terms"`
}

// NewExplainResponse converts an explanation of docID into its wire form.
func NewExplainResponse(docID string, exp *cosine.Explanation) *ExplainResponse {
	resp := &ExplainResponse{
		DocID:     docID,
		Field:     exp.Field,
		Score:     cosine.Finite(exp.Score),
		Numerator: cosine.Finite(exp.Numerator),
		DocNorm:   cosine.Finite(exp.DocNorm),
		QueryNorm: cosine.Finite(exp.QueryNorm),
		Terms:     exp.Terms,
	}
	resp.Degenerate = resp.Score == nil
	return resp
}

// scoreOptions are the request keys that are not scorer parameters.
type scoreOptions struct {
	DocID   string   `json:"doc_id"`
	DocIDs  []string `json:"doc_ids"`
	Limit   int      `json:"limit"`
	Analyze *bool    `json:"analyze"`
}

type Handler struct {
	source     stats.Source
	candidates stats.CandidateSource
	indexer    stats.Indexer
	deleter    stats.Deleter
	cache      *cache.StatsCache
	metrics    *metrics.Metrics
	cfg        config.ScoringConfig
	logger     *slog.Logger
}

// New builds the handler. statsCache and m may be nil; when statsCache is
// set, statistics lookups go through it.
func New(store stats.Store, statsCache *cache.StatsCache, m *metrics.Metrics, cfg config.ScoringConfig) *Handler {
	var source stats.Source = store
	if statsCache != nil {
		source = statsCache
	}
	return &Handler{
		source:     source,
		candidates: store,
		indexer:    store,
		deleter:    store,
		cache:      statsCache,
		metrics:    m,
		cfg:        cfg,
		logger:     logger.WithComponent("score-handler"),
	}
}

// Score ranks documents against a weighted query vector.
func (h *Handler) Score(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	ctx, span := tracing.StartSpan(r.Context(), "score", logger.RequestID(r.Context()))
	log := logger.FromContext(ctx)
	defer func() {
		span.End()
		span.Log(ctx, log)
	}()

	scorer, opts, err := h.buildScorer(w, r)
	if err != nil {
		h.countRequest("invalid")
		h.writeError(w, err)
		return
	}
	span.SetAttr("field", scorer.Field())
	span.SetAttr("terms", scorer.Len())

	candidates := opts.DocIDs
	if len(candidates) == 0 {
		_, candSpan := tracing.StartChildSpan(ctx, "candidates")
		candidates, err = h.candidates.Candidates(ctx, scorer.Field(), scorer.Terms())
		candSpan.SetAttr("count", len(candidates))
		candSpan.End()
		if err != nil {
			log.Error("candidate lookup failed", "field", scorer.Field(), "error", err)
			h.countRequest("error")
			h.writeError(w, fmt.Errorf("%w: %w", apperrors.ErrStatsLookup, err))
			return
		}
	}

	limit := h.cfg.DefaultLimit
	if opts.Limit > 0 {
		limit = min(opts.Limit, h.cfg.MaxResults)
	}

	_, rankSpan := tracing.StartChildSpan(ctx, "rank")
	results, err := ranker.Rank(candidates, func(docID string) (float64, error) {
		score, err := scorer.Score(stats.ForDocument(ctx, h.source, docID))
		h.countDocument(score, err)
		return score, err
	}, limit)
	rankSpan.SetAttr("scored", len(candidates))
	rankSpan.End()
	if err != nil {
		log.Error("scoring failed", "field", scorer.Field(), "error", err)
		h.countRequest("error")
		h.writeError(w, err)
		return
	}

	elapsed := time.Since(start)
	if h.metrics != nil {
		h.metrics.ScoreLatency.Observe(elapsed.Seconds())
	}
	h.countRequest("ok")
	log.Info("score completed",
		"field", scorer.Field(),
		"terms", scorer.Len(),
		"candidates", len(candidates),
		"returned", len(results),
		"latency_ms", elapsed.Milliseconds(),
	)
	h.writeJSON(w, http.StatusOK, &ScoreResponse{
		Field:           scorer.Field(),
		Terms:           scorer.Terms(),
		Weights:         scorer.Weights(),
		TotalCandidates: len(candidates),
		Results:         results,
	})
}

// Explain returns the per-term breakdown of one document's score.
func (h *Handler) Explain(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	scorer, opts, err := h.buildScorer(w, r)
	if err != nil {
		h.writeError(w, err)
		return
	}
	if opts.DocID == "" {
		h.writeError(w, apperrors.New(apperrors.ErrInvalidInput, http.StatusBadRequest, "doc_id is required"))
		return
	}
	exp, err := scorer.Explain(stats.ForDocument(ctx, h.source, opts.DocID))
	h.countDocument(scoreOf(exp), err)
	if err != nil {
		logger.FromContext(ctx).Error("explain failed", "doc_id", opts.DocID, "error", err)
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, NewExplainResponse(opts.DocID, exp))
}

// IndexDocument stores a document directly, bypassing Kafka.
func (h *Handler) IndexDocument(w http.ResponseWriter, r *http.Request) {
	var event ingestion.DocumentEvent
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 2*maxBodyBytes)).Decode(&event); err != nil {
		h.writeError(w, apperrors.Newf(apperrors.ErrInvalidInput, http.StatusBadRequest, "decoding document: %v", err))
		return
	}
	if err := event.Validate(); err != nil {
		h.writeError(w, apperrors.New(apperrors.ErrInvalidInput, http.StatusBadRequest, err.Error()))
		return
	}
	if err := h.indexer.IndexDocument(r.Context(), event.DocumentID, event.Fields); err != nil {
		h.countIndexed("failed")
		logger.FromContext(r.Context()).Error("indexing failed", "doc_id", event.DocumentID, "error", err)
		h.writeError(w, err)
		return
	}
	h.countIndexed("indexed")
	h.writeJSON(w, http.StatusCreated, map[string]string{
		"document_id": event.DocumentID,
		"status":      "INDEXED",
	})
}

// DeleteDocument removes a document from every field.
func (h *Handler) DeleteDocument(w http.ResponseWriter, r *http.Request) {
	docID := r.PathValue("id")
	if docID == "" {
		h.writeError(w, apperrors.New(apperrors.ErrInvalidInput, http.StatusBadRequest, "document id is required"))
		return
	}
	deleted, err := h.deleter.DeleteDocument(r.Context(), docID)
	if err != nil {
		logger.FromContext(r.Context()).Error("delete failed", "doc_id", docID, "error", err)
		h.writeError(w, err)
		return
	}
	if !deleted {
		h.writeError(w, apperrors.Newf(apperrors.ErrDocumentNotFound, http.StatusNotFound, "document %s", docID))
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]string{
		"document_id": docID,
		"status":      "DELETED",
	})
}

func (h *Handler) CacheStats(w http.ResponseWriter, r *http.Request) {
	if h.cache == nil {
		h.writeJSON(w, http.StatusOK, map[string]string{"status": "disabled"})
		return
	}

	hits, misses := h.cache.Stats()
	total := hits + misses
	var hitRate float64
	if total > 0 {
		hitRate = float64(hits) / float64(total) * 100
	}

	h.writeJSON(w, http.StatusOK, map[string]any{
		"hits":     hits,
		"misses":   misses,
		"total":    total,
		"hit_rate": fmt.Sprintf("%.1f%%", hitRate),
		"circuit":  h.cache.BreakerState().String(),
	})
}

func (h *Handler) CacheInvalidate(w http.ResponseWriter, r *http.Request) {
	if h.cache == nil {
		h.writeError(w, apperrors.New(apperrors.ErrInvalidInput, http.StatusServiceUnavailable, "caching is disabled"))
		return
	}

	if err := h.cache.Invalidate(r.Context()); err != nil {
		h.logger.Error("cache invalidation failed", "error", err)
		h.writeError(w, err)
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]string{"status": "invalidated"})
}

// buildScorer decodes the request body twice: once as the untyped parameter
// map the scorer is configured from, once for the request options.
func (h *Handler) buildScorer(w http.ResponseWriter, r *http.Request) (*cosine.Scorer, scoreOptions, error) {
	var opts scoreOptions
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		return nil, opts, apperrors.Newf(apperrors.ErrInvalidInput, http.StatusRequestEntityTooLarge, "reading body: %v", err)
	}

	var raw map[string]any
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()
	if err := dec.Decode(&raw); err != nil {
		return nil, opts, apperrors.Newf(apperrors.ErrInvalidInput, http.StatusBadRequest, "decoding body: %v", err)
	}
	if err := json.Unmarshal(body, &opts); err != nil {
		return nil, opts, apperrors.Newf(apperrors.ErrInvalidInput, http.StatusBadRequest, "decoding options: %v", err)
	}

	params, err := cosine.ParseParams(raw)
	if err != nil {
		return nil, opts, err
	}
	if len(params.Terms) > h.cfg.MaxTerms {
		return nil, opts, apperrors.Newf(apperrors.ErrInvalidInput, http.StatusBadRequest,
			"too many terms: %d (max %d)", len(params.Terms), h.cfg.MaxTerms)
	}
	analyze := h.cfg.AnalyzeTerms
	if opts.Analyze != nil {
		analyze = *opts.Analyze
	}
	if analyze {
		for i, term := range params.Terms {
			params.Terms[i] = tokenizer.Normalize(term)
		}
	}
	scorer, err := cosine.New(params)
	if err != nil {
		return nil, opts, err
	}
	return scorer, opts, nil
}

func scoreOf(exp *cosine.Explanation) float64 {
	if exp == nil {
		return 0
	}
	return exp.Score
}

func (h *Handler) countRequest(status string) {
	if h.metrics != nil {
		h.metrics.ScoreRequestsTotal.WithLabelValues(status).Inc()
	}
}

func (h *Handler) countDocument(score float64, err error) {
	if h.metrics == nil {
		return
	}
	outcome := metrics.OutcomeFinite
	switch {
	case err != nil:
		outcome = metrics.OutcomeError
	case math.IsNaN(score) || math.IsInf(score, 0):
		outcome = metrics.OutcomeDegenerate
	}
	h.metrics.DocumentsScoredTotal.WithLabelValues(outcome).Inc()
}

func (h *Handler) countIndexed(status string) {
	if h.metrics != nil {
		h.metrics.DocsIndexedTotal.WithLabelValues("http", status).Inc()
	}
}

// writeJSON encodes data before the status line goes out, so an encoding
// failure still reaches the client as a 500.
func (h *Handler) writeJSON(w http.ResponseWriter, status int, data any) {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(data); err != nil {
		h.logger.Error("failed to encode response", "error", err)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":"internal error"}` + "\n"))
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if _, err := buf.WriteTo(w); err != nil {
		h.logger.Error("failed to write response", "error", err)
	}
}

func (h *Handler) writeError(w http.ResponseWriter, err error) {
	status := apperrors.HTTPStatusCode(err)
	message := err.Error()
	if status == http.StatusInternalServerError {
		message = "internal error"
	}
	h.writeJSON(w, status, map[string]string{"error": message})
}
