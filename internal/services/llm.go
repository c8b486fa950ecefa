package services

import (
	"context"
	"errors"
	"fmt"

	openai "github.com/sashabaranov/go-openai"

	"carsales-backend/internal/models"
)

// Completion is a provider-neutral chat completion result.
type Completion struct {
	ID      string
	Content string
}

// ChatCompleter produces one assistant message for a conversation.
type ChatCompleter interface {
	Complete(ctx context.Context, messages []models.ChatMessage) (*Completion, error)
}

// ChatCompletionClient is the subset of *openai.Client the services use.
type ChatCompletionClient interface {
	CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

// NewOpenAIClient builds a client for an OpenAI-compatible endpoint. apiType
// "azure" switches to Azure deployment routing.
func NewOpenAIClient(baseURL, apiKey, apiType, apiVersion string) *openai.Client {
	var cfg openai.ClientConfig
	if apiType == "azure" {
		cfg = openai.DefaultAzureConfig(apiKey, baseURL)
		if apiVersion != "" {
			cfg.APIVersion = apiVersion
		}
	} else {
		cfg = openai.DefaultConfig(apiKey)
		if baseURL != "" {
			cfg.BaseURL = baseURL
		}
	}
	return openai.NewClientWithConfig(cfg)
}

type OpenAIChatService struct {
	client ChatCompletionClient
	model  string
}

func NewOpenAIChatService(client ChatCompletionClient, model string) *OpenAIChatService {
	return &OpenAIChatService{client: client, model: model}
}

func (s *OpenAIChatService) Model() string {
	return s.model
}

func (s *OpenAIChatService) Complete(ctx context.Context, messages []models.ChatMessage) (*Completion, error) {
	resp, err := s.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:    s.model,
		Messages: ToOpenAIMessages(messages),
	})
	if err != nil {
		return nil, fmt.Errorf("chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, errors.New("chat completion returned no choices")
	}

	return &Completion{
		ID:      resp.ID,
		Content: resp.Choices[0].Message.Content,
	}, nil
}

func ToOpenAIMessages(messages []models.ChatMessage) []openai.ChatCompletionMessage {
	out := make([]openai.ChatCompletionMessage, 0, len(messages))
	for _, m := range messages {
		out = append(out, openai.ChatCompletionMessage{
			Role:    m.Role,
			Content: m.Content,
		})
	}
	return out
}
