package vectorstore

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/tidwall/gjson"
)

// ChromaIndex talks to a Chroma server over its v1 REST API.
type ChromaIndex struct {
	baseURL      string
	collection   string
	collectionID string
	httpClient   *http.Client
}

// NewChromaIndex gets or creates the named collection with cosine distance.
func NewChromaIndex(ctx context.Context, baseURL, collection string) (*ChromaIndex, error) {
	c := &ChromaIndex{
		baseURL:    strings.TrimRight(baseURL, "/"),
		collection: collection,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}

	body, err := c.post(ctx, "/api/v1/collections", map[string]any{
		"name":          collection,
		"get_or_create": true,
		"metadata":      map[string]any{"hnsw:space": "cosine"},
	})
	if err != nil {
		return nil, fmt.Errorf("chroma: get or create collection %q: %w", collection, err)
	}

	c.collectionID = gjson.GetBytes(body, "id").String()
	if c.collectionID == "" {
		return nil, fmt.Errorf("chroma: collection %q: response has no id", collection)
	}
	return c, nil
}

func (c *ChromaIndex) Name() string { return "chroma:" + c.collection }

func (c *ChromaIndex) Upsert(ctx context.Context, records []Record) error {
	if len(records) == 0 {
		return nil
	}

	ids := make([]string, len(records))
	embeddings := make([][]float32, len(records))
	documents := make([]string, len(records))
	metadatas := make([]map[string]any, len(records))
	for i, r := range records {
		ids[i] = r.ID
		embeddings[i] = r.Values
		documents[i] = r.Document
		metadatas[i] = r.Metadata
	}

	_, err := c.post(ctx, "/api/v1/collections/"+c.collectionID+"/upsert", map[string]any{
		"ids":        ids,
		"embeddings": embeddings,
		"documents":  documents,
		"metadatas":  metadatas,
	})
	if err != nil {
		return fmt.Errorf("chroma: upsert: %w", err)
	}
	return nil
}

// Query returns the nearest ids. Chroma reports cosine distance; Score is
// 1 - distance so higher is closer.
func (c *ChromaIndex) Query(ctx context.Context, vector []float32, topK int) ([]Match, error) {
	body, err := c.post(ctx, "/api/v1/collections/"+c.collectionID+"/query", map[string]any{
		"query_embeddings": [][]float32{vector},
		"n_results":        topK,
		"include":          []string{"distances"},
	})
	if err != nil {
		return nil, fmt.Errorf("chroma: query: %w", err)
	}

	ids := gjson.GetBytes(body, "ids.0").Array()
	distances := gjson.GetBytes(body, "distances.0").Array()

	matches := make([]Match, 0, len(ids))
	for i, id := range ids {
		m := Match{ID: id.String()}
		if i < len(distances) {
			m.Score = float32(1 - distances[i].Float())
		}
		matches = append(matches, m)
	}
	return matches, nil
}

func (c *ChromaIndex) post(ctx context.Context, path string, payload any) ([]byte, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 8<<20))
	if err != nil {
		return nil, err
	}
	if resp.StatusCode >= 300 {
		msg := gjson.GetBytes(body, "error").String()
		if msg == "" {
			msg = strings.TrimSpace(string(body))
		}
		if msg == "" {
			return nil, fmt.Errorf("status %d", resp.StatusCode)
		}
		return nil, errors.New(msg)
	}
	return body, nil
}
