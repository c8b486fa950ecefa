package vectorstore

import (
	"context"
	"errors"
	"fmt"
	"runtime"

	"github.com/philippgille/chromem-go"
)

var errNoEmbedding = errors.New("memory index: record has no embedding")

// MemoryIndex is an in-process chromem collection ranked by cosine
// similarity. It is rebuilt from the catalog on every start.
type MemoryIndex struct {
	name       string
	collection *chromem.Collection
}

func NewMemoryIndex(name string) (*MemoryIndex, error) {
	db := chromem.NewDB()
	// Vectors are always supplied by the caller.
	collection, err := db.GetOrCreateCollection(name, map[string]string{"hnsw:space": "cosine"},
		func(ctx context.Context, text string) ([]float32, error) {
			return nil, errNoEmbedding
		})
	if err != nil {
		return nil, fmt.Errorf("memory index: create collection %q: %w", name, err)
	}
	return &MemoryIndex{name: name, collection: collection}, nil
}

func (m *MemoryIndex) Name() string { return m.name }

func (m *MemoryIndex) Len() int {
	return m.collection.Count()
}

// Upsert stores every record or none. An existing id is replaced.
func (m *MemoryIndex) Upsert(ctx context.Context, records []Record) error {
	if len(records) == 0 {
		return nil
	}

	docs := make([]chromem.Document, 0, len(records))
	for _, r := range records {
		if r.ID == "" {
			return errors.New("memory index: record without id")
		}
		if len(r.Values) == 0 {
			return fmt.Errorf("%w: %s", errNoEmbedding, r.ID)
		}
		vec := make([]float32, len(r.Values))
		copy(vec, r.Values)

		docs = append(docs, chromem.Document{
			ID:        r.ID,
			Metadata:  stringMetadata(r.Metadata),
			Embedding: vec,
			Content:   r.Document,
		})
	}

	if err := m.collection.AddDocuments(ctx, docs, runtime.NumCPU()); err != nil {
		return fmt.Errorf("memory index: upsert: %w", err)
	}
	return nil
}

func (m *MemoryIndex) Query(ctx context.Context, vector []float32, topK int) ([]Match, error) {
	if topK <= 0 {
		return nil, nil
	}
	// chromem rejects nResults above the collection size.
	if n := m.collection.Count(); topK > n {
		topK = n
	}
	if topK == 0 {
		return nil, nil
	}

	results, err := m.collection.QueryEmbedding(ctx, vector, topK, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("memory index: query: %w", err)
	}

	matches := make([]Match, 0, len(results))
	for _, r := range results {
		matches = append(matches, Match{ID: r.ID, Score: r.Similarity})
	}
	return matches, nil
}

func stringMetadata(meta map[string]any) map[string]string {
	if len(meta) == 0 {
		return nil
	}
	out := make(map[string]string, len(meta))
	for k, v := range meta {
		out[k] = fmt.Sprint(v)
	}
	return out
}
