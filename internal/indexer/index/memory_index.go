package index

import (
	"context"
	"sort"
	"sync"

	"github.com/Adithya-Monish-Kumar-K/cosine-scorer/internal/indexer/tokenizer"
	"github.com/Adithya-Monish-Kumar-K/cosine-scorer/internal/scoring/cosine"
)

type fieldIndex struct {
	postings map[string]map[string]int
	docs     map[string]map[string]int
}

func newFieldIndex() *fieldIndex {
	return &fieldIndex{
		postings: make(map[string]map[string]int),
		docs:     make(map[string]map[string]int),
	}
}

// MemoryIndex is a field-aware inverted index that answers term statistics
// for the scorer. A document counts towards a field's document count only
// if the field produced at least one term.
type MemoryIndex struct {
	mu     sync.RWMutex
	fields map[string]*fieldIndex
	docs   map[string]struct{}
	size   int64
}

func NewMemoryIndex() *MemoryIndex {
	return &MemoryIndex{
		fields: make(map[string]*fieldIndex),
		docs:   make(map[string]struct{}),
	}
}

// IndexDocument analyzes every field and stores its term frequencies.
// Indexing an existing document ID replaces its previous postings. A
// document with no terms in any field holds no postings and is not kept.
func (m *MemoryIndex) IndexDocument(_ context.Context, docID string, fields map[string]string) error {
	analyzed := make(map[string]map[string]int, len(fields))
	for name, text := range fields {
		freqs, n := tokenizer.Frequencies(text)
		if n == 0 {
			continue
		}
		analyzed[name] = freqs
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.removeLocked(docID)
	for name, freqs := range analyzed {
		fi, ok := m.fields[name]
		if !ok {
			fi = newFieldIndex()
			m.fields[name] = fi
		}
		for term, freq := range freqs {
			if _, ok := fi.postings[term]; !ok {
				fi.postings[term] = make(map[string]int)
			}
			fi.postings[term][docID] = freq
			m.size += int64(len(name) + len(term) + len(docID) + 16)
		}
		fi.docs[docID] = freqs
	}
	if len(analyzed) > 0 {
		m.docs[docID] = struct{}{}
	}
	return nil
}

// DeleteDocument removes a document from every field. It reports whether
// the document was present.
func (m *MemoryIndex) DeleteDocument(_ context.Context, docID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.docs[docID]; !ok {
		return false, nil
	}
	m.removeLocked(docID)
	return true, nil
}

func (m *MemoryIndex) removeLocked(docID string) {
	if _, ok := m.docs[docID]; !ok {
		return
	}
	for name, fi := range m.fields {
		terms, ok := fi.docs[docID]
		if !ok {
			continue
		}
		for term := range terms {
			delete(fi.postings[term], docID)
			if len(fi.postings[term]) == 0 {
				delete(fi.postings, term)
			}
			m.size -= int64(len(name) + len(term) + len(docID) + 16)
		}
		delete(fi.docs, docID)
		if len(fi.docs) == 0 {
			delete(m.fields, name)
		}
	}
	delete(m.docs, docID)
}

// TermStats looks the term up verbatim; callers normalize query terms
// beforehand if they want analyzer-aligned matches.
func (m *MemoryIndex) TermStats(_ context.Context, field, term, docID string) (cosine.TermStats, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	fi, ok := m.fields[field]
	if !ok {
		return cosine.TermStats{}, nil
	}
	docs := fi.postings[term]
	return cosine.TermStats{
		DocFreq:  int64(len(docs)),
		TermFreq: int64(docs[docID]),
		DocCount: int64(len(fi.docs)),
	}, nil
}

// Candidates returns, sorted, the documents whose field holds any of terms.
func (m *MemoryIndex) Candidates(_ context.Context, field string, terms []string) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	fi, ok := m.fields[field]
	if !ok {
		return []string{}, nil
	}
	seen := make(map[string]struct{})
	for _, term := range terms {
		for docID := range fi.postings[term] {
			seen[docID] = struct{}{}
		}
	}
	result := make([]string, 0, len(seen))
	for docID := range seen {
		result = append(result, docID)
	}
	sort.Strings(result)
	return result, nil
}

func (m *MemoryIndex) Search(field, term string) PostingList {
	m.mu.RLock()
	defer m.mu.RUnlock()
	fi, ok := m.fields[field]
	if !ok {
		return nil
	}
	docs, exists := fi.postings[term]
	if !exists {
		return nil
	}
	result := make(PostingList, 0, len(docs))
	for docID, freq := range docs {
		result = append(result, Posting{DocID: docID, Frequency: freq})
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].DocID < result[j].DocID
	})
	return result
}

func (m *MemoryIndex) Snapshot() []TermEntry {
	m.mu.RLock()
	defer m.mu.RUnlock()
	entries := make([]TermEntry, 0)
	for name, fi := range m.fields {
		for term, docs := range fi.postings {
			postings := make(PostingList, 0, len(docs))
			for docID, freq := range docs {
				postings = append(postings, Posting{DocID: docID, Frequency: freq})
			}
			sort.Slice(postings, func(i, j int) bool {
				return postings[i].DocID < postings[j].DocID
			})
			entries = append(entries, TermEntry{
				Field:    name,
				Term:     term,
				Postings: postings,
			})
		}
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Field != entries[j].Field {
			return entries[i].Field < entries[j].Field
		}
		return entries[i].Term < entries[j].Term
	})
	return entries
}

// DocCount returns the number of documents with at least one term in field.
func (m *MemoryIndex) DocCount(field string) int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if fi, ok := m.fields[field]; ok {
		return len(fi.docs)
	}
	return 0
}

func (m *MemoryIndex) TotalDocs() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.docs)
}

func (m *MemoryIndex) Fields() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	names := make([]string, 0, len(m.fields))
	for name := range m.fields {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (m *MemoryIndex) Size() int64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.size
}
