package capability

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"carsales-backend/internal/models"
	"carsales-backend/internal/services"
)

const (
	NameWebSearch = "web_search"

	searchToolName = "tavily_search"
	maxAgentSteps  = 5
)

// WebSearcher runs one web search and returns its results as text.
type WebSearcher interface {
	Search(ctx context.Context, query string) (string, error)
}

type webSearchCapability struct {
	client   services.ChatCompletionClient
	model    string
	searcher WebSearcher
	logger   *zap.Logger
}

// NewWebSearch is a tool-using agent: the model may call tavily_search any
// number of times within maxAgentSteps model calls, and its final text answer
// is the reply.
func NewWebSearch(client services.ChatCompletionClient, model string, searcher WebSearcher, logger *zap.Logger) Capability {
	return &webSearchCapability{client: client, model: model, searcher: searcher, logger: logger}
}

func (c *webSearchCapability) Name() string { return NameWebSearch }

var searchTool = openai.Tool{
	Type: openai.ToolTypeFunction,
	Function: &openai.FunctionDefinition{
		Name:        searchToolName,
		Description: "A search engine optimized for comprehensive, accurate, and trusted results. Useful for when you need to answer questions about current events. Input should be a search query.",
		Parameters: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"query": map[string]any{
					"type":        "string",
					"description": "Search query to look up",
				},
			},
			"required": []string{"query"},
		},
	},
}

func (c *webSearchCapability) Invoke(ctx context.Context, messages []models.ChatMessage) (*Result, error) {
	conversation := services.ToOpenAIMessages(messages)

	for step := 0; step < maxAgentSteps; step++ {
		resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
			Model:    c.model,
			Messages: conversation,
			Tools:    []openai.Tool{searchTool},
		})
		if err != nil {
			return nil, Upstream(NameWebSearch, fmt.Errorf("chat completion: %w", err))
		}
		if len(resp.Choices) == 0 {
			return nil, Malformed(NameWebSearch, errors.New("chat completion returned no choices"))
		}

		msg := resp.Choices[0].Message
		if len(msg.ToolCalls) == 0 {
			return &Result{Message: msg.Content, ID: resp.ID}, nil
		}

		conversation = append(conversation, msg)
		for _, call := range msg.ToolCalls {
			conversation = append(conversation, openai.ChatCompletionMessage{
				Role:       openai.ChatMessageRoleTool,
				ToolCallID: call.ID,
				Name:       call.Function.Name,
				Content:    c.runTool(ctx, call),
			})
		}
	}

	return nil, Upstream(NameWebSearch, fmt.Errorf("agent did not answer within %d steps", maxAgentSteps))
}

// runTool executes a tool call. Failures are reported back to the model as
// the tool output so it can recover.
func (c *webSearchCapability) runTool(ctx context.Context, call openai.ToolCall) string {
	if call.Function.Name != searchToolName {
		return fmt.Sprintf("Error: %s is not a valid tool, try %s.", call.Function.Name, searchToolName)
	}

	var args struct {
		Query string `json:"query"`
	}
	if err := json.Unmarshal([]byte(call.Function.Arguments), &args); err != nil {
		return fmt.Sprintf("Error: invalid arguments: %v", err)
	}

	out, err := c.searcher.Search(ctx, args.Query)
	if err != nil {
		c.logger.Warn("web search tool failed", zap.String("query", args.Query), zap.Error(err))
		return fmt.Sprintf("Error: %v", err)
	}
	return out
}
