package services

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"
)

// Embedder turns text into a dense vector.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// EmbeddingClient is the subset of *openai.Client used for embeddings.
type EmbeddingClient interface {
	CreateEmbeddings(ctx context.Context, conv openai.EmbeddingRequestConverter) (openai.EmbeddingResponse, error)
}

type OpenAIEmbeddingService struct {
	client EmbeddingClient
	model  string
}

func NewOpenAIEmbeddingService(client EmbeddingClient, model string) *OpenAIEmbeddingService {
	return &OpenAIEmbeddingService{client: client, model: model}
}

func (s *OpenAIEmbeddingService) Embed(ctx context.Context, text string) ([]float32, error) {
	resp, err := s.client.CreateEmbeddings(ctx, openai.EmbeddingRequest{
		Input: []string{text},
		Model: openai.EmbeddingModel(s.model),
	})
	if err != nil {
		return nil, fmt.Errorf("create embedding: %w", err)
	}
	if len(resp.Data) == 0 {
		return nil, errors.New("embedding response has no data")
	}
	return resp.Data[0].Embedding, nil
}

// CachedEmbedder memoizes embeddings in Redis. Cache failures are logged and
// fall through to the wrapped embedder.
type CachedEmbedder struct {
	next   Embedder
	redis  *redis.Client
	prefix string
	ttl    time.Duration
	logger *zap.Logger
}

func NewCachedEmbedder(next Embedder, redisClient *redis.Client, model string, ttl time.Duration, logger *zap.Logger) *CachedEmbedder {
	return &CachedEmbedder{
		next:   next,
		redis:  redisClient,
		prefix: "embedding:" + model + ":",
		ttl:    ttl,
		logger: logger,
	}
}

func (c *CachedEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	key := c.key(text)

	cached, err := c.redis.Get(ctx, key).Bytes()
	if err == nil {
		var vec []float32
		if json.Unmarshal(cached, &vec) == nil && len(vec) > 0 {
			return vec, nil
		}
	} else if !errors.Is(err, redis.Nil) {
		c.logger.Warn("embedding cache read failed", zap.Error(err))
	}

	vec, err := c.next.Embed(ctx, text)
	if err != nil {
		return nil, err
	}

	data, _ := json.Marshal(vec)
	if err := c.redis.Set(ctx, key, data, c.ttl).Err(); err != nil {
		c.logger.Warn("embedding cache write failed", zap.Error(err))
	}
	return vec, nil
}

func (c *CachedEmbedder) key(text string) string {
	sum := sha256.Sum256([]byte(text))
	return c.prefix + hex.EncodeToString(sum[:])
}
