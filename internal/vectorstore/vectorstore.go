// Package vectorstore holds the vector indexes the car search capabilities
// query, and the startup seeding that fills them from the catalog.
package vectorstore

import (
	"context"
	"fmt"
	"runtime"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"carsales-backend/internal/catalog"
	"carsales-backend/internal/services"
)

// Record is one vector with the document and metadata stored next to it.
type Record struct {
	ID       string
	Values   []float32
	Document string
	Metadata map[string]any
}

// Match is a query hit. Higher Score is closer; the scale is the index's own.
type Match struct {
	ID    string
	Score float32
}

type Index interface {
	Name() string
	Upsert(ctx context.Context, records []Record) error
	Query(ctx context.Context, vector []float32, topK int) ([]Match, error)
}

// Seed embeds every car in the catalog and upserts one vector per car.
// Embeddings run concurrently, bounded by the CPU count.
func Seed(ctx context.Context, idx Index, cat *catalog.Catalog, embedder services.Embedder, logger *zap.Logger) error {
	cars := cat.All()
	records := make([]Record, len(cars))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.NumCPU())
	for i, car := range cars {
		g.Go(func() error {
			vec, err := embedder.Embed(gctx, catalog.EmbeddingText(car))
			if err != nil {
				return fmt.Errorf("embed %s: %w", car.ID, err)
			}
			records[i] = Record{
				ID:       car.ID,
				Values:   vec,
				Document: car.Features,
				Metadata: catalog.Metadata(car),
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return fmt.Errorf("seed %s: %w", idx.Name(), err)
	}

	if err := idx.Upsert(ctx, records); err != nil {
		return fmt.Errorf("seed %s: %w", idx.Name(), err)
	}

	logger.Info("vector index seeded",
		zap.String("index", idx.Name()),
		zap.Int("vectors", len(records)),
	)
	return nil
}

// IDs returns the match ids in rank order.
func IDs(matches []Match) []string {
	ids := make([]string, len(matches))
	for i, m := range matches {
		ids[i] = m.ID
	}
	return ids
}
