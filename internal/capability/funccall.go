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
	NameFunctionCall = "function_call"

	carDetailsTool = "get_car_details"

	// FallbackImageURL is served when the image lookup fails.
	FallbackImageURL = "https://giaxeotovinfast.net/wp-content/uploads/2023/01/312207264_637940821322100_2347147708676423923_n.jpg"
)

// ImageFinder returns the first image URL for a query, "" when none exists.
type ImageFinder interface {
	FirstImage(ctx context.Context, query string) (string, error)
}

type functionCallCapability struct {
	client services.ChatCompletionClient
	model  string
	images ImageFinder
	logger *zap.Logger
}

// NewFunctionCall forces the model to call get_car_details and looks up an
// image for the query it produced. An image lookup failure yields the
// fallback image with the error embedded in the result.
func NewFunctionCall(client services.ChatCompletionClient, model string, images ImageFinder, logger *zap.Logger) Capability {
	return &functionCallCapability{client: client, model: model, images: images, logger: logger}
}

func (c *functionCallCapability) Name() string { return NameFunctionCall }

var carDetailsDefinition = openai.Tool{
	Type: openai.ToolTypeFunction,
	Function: &openai.FunctionDefinition{
		Name:        carDetailsTool,
		Description: "Retrieve image url(s) for a specific car model. Call with {'query': 'make model year', 'imageCount': 1}.",
		Parameters: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"query": map[string]any{
					"type":        "string",
					"description": "Search query (car make/model) to find a real image",
				},
				"imageCount": map[string]any{
					"type":        "integer",
					"description": "Number of images to return",
					"default":     1,
				},
			},
			"required": []string{"query"},
		},
	},
}

type carDetailsArgs struct {
	Query      string `json:"query"`
	ImageCount int    `json:"imageCount"`
}

func (c *functionCallCapability) Invoke(ctx context.Context, messages []models.ChatMessage) (*Result, error) {
	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:    c.model,
		Messages: services.ToOpenAIMessages(messages),
		Tools:    []openai.Tool{carDetailsDefinition},
		ToolChoice: openai.ToolChoice{
			Type:     openai.ToolTypeFunction,
			Function: openai.ToolFunction{Name: carDetailsTool},
		},
	})
	if err != nil {
		return nil, Upstream(NameFunctionCall, fmt.Errorf("chat completion: %w", err))
	}
	if len(resp.Choices) == 0 || len(resp.Choices[0].Message.ToolCalls) == 0 {
		return nil, Malformed(NameFunctionCall, errors.New("model did not call "+carDetailsTool))
	}

	var args carDetailsArgs
	if err := json.Unmarshal([]byte(resp.Choices[0].Message.ToolCalls[0].Function.Arguments), &args); err != nil {
		return nil, Malformed(NameFunctionCall, fmt.Errorf("parse %s arguments: %w", carDetailsTool, err))
	}

	image, err := c.images.FirstImage(ctx, args.Query)
	if err != nil {
		c.logger.Warn("image lookup failed, serving fallback image",
			zap.String("query", args.Query),
			zap.Error(err),
		)
		return &Result{
			Images: []string{FallbackImageURL},
			Error:  err.Error(),
			Shaped: true,
		}, nil
	}

	res := &Result{ID: resp.ID, Shaped: true}
	if image != "" {
		res.Images = []string{image}
	}
	return res, nil
}
