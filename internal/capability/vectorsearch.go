package capability

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"carsales-backend/internal/catalog"
	"carsales-backend/internal/models"
	"carsales-backend/internal/services"
	"carsales-backend/internal/vectorstore"
)

const (
	NameChroma   = "chromadb"
	NamePinecone = "pinecone"
)

// Recommender turns a user request plus retrieved cars into a recommendation.
type Recommender interface {
	Recommend(ctx context.Context, userInput, carContext string) (string, error)
}

type VectorSearchConfig struct {
	Name        string
	TopK        int
	Index       vectorstore.Index
	Embedder    services.Embedder
	Catalog     *catalog.Catalog
	Recommender Recommender
	Logger      *zap.Logger
}

type vectorSearchCapability struct {
	cfg VectorSearchConfig
}

// NewVectorSearch embeds the last user message, retrieves the TopK nearest
// cars and asks the recommender to pick one.
func NewVectorSearch(cfg VectorSearchConfig) Capability {
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	return &vectorSearchCapability{cfg: cfg}
}

func (c *vectorSearchCapability) Name() string { return c.cfg.Name }

func (c *vectorSearchCapability) Invoke(ctx context.Context, messages []models.ChatMessage) (*Result, error) {
	input := models.LastUserContent(messages)
	if input == "" {
		return nil, InvalidRequest(c.cfg.Name, errors.New("no user message to search for"))
	}

	vec, err := c.cfg.Embedder.Embed(ctx, input)
	if err != nil {
		return nil, Upstream(c.cfg.Name, err)
	}

	matches, err := c.cfg.Index.Query(ctx, vec, c.cfg.TopK)
	if err != nil {
		return nil, Upstream(c.cfg.Name, err)
	}

	cars := c.cfg.Catalog.Lookup(vectorstore.IDs(matches))
	c.cfg.Logger.Debug("vector search matched",
		zap.String("capability", c.cfg.Name),
		zap.Strings("ids", vectorstore.IDs(matches)),
		zap.Int("resolved", len(cars)),
	)

	text, err := c.cfg.Recommender.Recommend(ctx, input, catalog.BuildContext(cars))
	if err != nil {
		return nil, Upstream(c.cfg.Name, err)
	}
	return &Result{Message: text}, nil
}
