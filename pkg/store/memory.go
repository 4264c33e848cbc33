package store

import (
	"context"
	"fmt"
	"sync"

	"github.com/jurisgraph/jurisgraph/pkg/types"
)

// MemStore is an in-memory Store used in tests and local dry runs.
type MemStore struct {
	mu        sync.Mutex
	docs      []types.SourceDocument
	converted map[string]bool
}

// NewMemStore creates a MemStore seeded with the given documents.
func NewMemStore(docs ...types.SourceDocument) *MemStore {
	return &MemStore{docs: docs, converted: make(map[string]bool)}
}

// Add appends a document to the store.
func (m *MemStore) Add(doc types.SourceDocument) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.docs = append(m.docs, doc)
}

func (m *MemStore) Ping(ctx context.Context) error { return nil }

func (m *MemStore) LoadAll(ctx context.Context) ([]types.SourceDocument, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]types.SourceDocument, len(m.docs))
	copy(out, m.docs)
	return out, nil
}

func (m *MemStore) LoadByIDs(ctx context.Context, docIDs []string) ([]types.SourceDocument, error) {
	wanted := make(map[string]bool, len(docIDs))
	for _, id := range docIDs {
		wanted[id] = true
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []types.SourceDocument
	for _, doc := range m.docs {
		if wanted[m.docID(doc)] {
			out = append(out, doc)
		}
	}
	return out, nil
}

func (m *MemStore) LoadUnconverted(ctx context.Context) ([]types.SourceDocument, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []types.SourceDocument
	for _, doc := range m.docs {
		if !m.converted[m.docID(doc)] {
			out = append(out, doc)
		}
	}
	return out, nil
}

func (m *MemStore) Count(ctx context.Context) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.docs), nil
}

func (m *MemStore) CountUnconverted(ctx context.Context) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, doc := range m.docs {
		if !m.converted[m.docID(doc)] {
			n++
		}
	}
	return n, nil
}

func (m *MemStore) MarkConverted(ctx context.Context, docIDs []string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, id := range docIDs {
		if !m.converted[id] {
			m.converted[id] = true
			n++
		}
	}
	return n, nil
}

func (m *MemStore) ResetConverted(ctx context.Context, docIDs []string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(docIDs) == 0 {
		n := len(m.converted)
		m.converted = make(map[string]bool)
		return n, nil
	}
	n := 0
	for _, id := range docIDs {
		if m.converted[id] {
			delete(m.converted, id)
			n++
		}
	}
	return n, nil
}

// IsConverted reports the converted flag for a doc_id; test helper.
func (m *MemStore) IsConverted(docID string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.converted[docID]
}

func (m *MemStore) docID(doc types.SourceDocument) string {
	if v, ok := doc.Fields["doc_id"]; ok && v != nil {
		return fmt.Sprintf("%v", v)
	}
	return doc.StoreID
}
