package vectorstore

import (
	"context"
	"fmt"

	"github.com/pinecone-io/go-pinecone/pinecone"
	"go.uber.org/zap"
	"google.golang.org/protobuf/types/known/structpb"
)

type PineconeConfig struct {
	APIKey    string
	IndexName string
	Dimension int
	Cloud     string
	Region    string
}

// PineconeIndex is a serverless Pinecone index, created on first use.
type PineconeIndex struct {
	name string
	conn *pinecone.IndexConnection
}

func NewPineconeIndex(ctx context.Context, cfg PineconeConfig, logger *zap.Logger) (*PineconeIndex, error) {
	pc, err := pinecone.NewClient(pinecone.NewClientParams{ApiKey: cfg.APIKey})
	if err != nil {
		return nil, fmt.Errorf("pinecone: create client: %w", err)
	}

	indexes, err := pc.ListIndexes(ctx)
	if err != nil {
		return nil, fmt.Errorf("pinecone: list indexes: %w", err)
	}

	var idx *pinecone.Index
	for _, i := range indexes {
		if i.Name == cfg.IndexName {
			idx = i
			break
		}
	}

	if idx == nil {
		logger.Info("creating pinecone index",
			zap.String("index", cfg.IndexName),
			zap.Int("dimension", cfg.Dimension),
		)
		idx, err = pc.CreateServerlessIndex(ctx, &pinecone.CreateServerlessIndexRequest{
			Name:      cfg.IndexName,
			Dimension: int32(cfg.Dimension),
			Metric:    pinecone.Cosine,
			Cloud:     pinecone.Cloud(cfg.Cloud),
			Region:    cfg.Region,
		})
		if err != nil {
			return nil, fmt.Errorf("pinecone: create index %q: %w", cfg.IndexName, err)
		}
	}

	if idx.Host == "" {
		idx, err = pc.DescribeIndex(ctx, cfg.IndexName)
		if err != nil {
			return nil, fmt.Errorf("pinecone: describe index %q: %w", cfg.IndexName, err)
		}
	}

	conn, err := pc.Index(pinecone.NewIndexConnParams{Host: idx.Host})
	if err != nil {
		return nil, fmt.Errorf("pinecone: connect to %q: %w", cfg.IndexName, err)
	}

	return &PineconeIndex{name: cfg.IndexName, conn: conn}, nil
}

func (p *PineconeIndex) Name() string { return "pinecone:" + p.name }

func (p *PineconeIndex) Close() error {
	return p.conn.Close()
}

func (p *PineconeIndex) Upsert(ctx context.Context, records []Record) error {
	vectors := make([]*pinecone.Vector, 0, len(records))
	for _, r := range records {
		v := &pinecone.Vector{Id: r.ID, Values: r.Values}
		if len(r.Metadata) > 0 {
			md, err := structpb.NewStruct(withDocument(r))
			if err != nil {
				return fmt.Errorf("pinecone: metadata for %s: %w", r.ID, err)
			}
			v.Metadata = md
		}
		vectors = append(vectors, v)
	}

	if _, err := p.conn.UpsertVectors(ctx, vectors); err != nil {
		return fmt.Errorf("pinecone: upsert: %w", err)
	}
	return nil
}

func (p *PineconeIndex) Query(ctx context.Context, vector []float32, topK int) ([]Match, error) {
	resp, err := p.conn.QueryByVectorValues(ctx, &pinecone.QueryByVectorValuesRequest{
		Vector: vector,
		TopK:   uint32(topK),
	})
	if err != nil {
		return nil, fmt.Errorf("pinecone: query: %w", err)
	}

	matches := make([]Match, 0, len(resp.Matches))
	for _, m := range resp.Matches {
		if m == nil || m.Vector == nil {
			continue
		}
		matches = append(matches, Match{ID: m.Vector.Id, Score: m.Score})
	}
	return matches, nil
}

func withDocument(r Record) map[string]any {
	md := make(map[string]any, len(r.Metadata)+1)
	for k, v := range r.Metadata {
		md[k] = v
	}
	if r.Document != "" {
		md["features"] = r.Document
	}
	return md
}
