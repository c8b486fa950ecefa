package capability

import (
	"context"

	"carsales-backend/internal/models"
	"carsales-backend/internal/services"
)

const NameChat = "chat"

type chatCapability struct {
	llm services.ChatCompleter
}

// NewChat sends the conversation unchanged to the chat model.
func NewChat(llm services.ChatCompleter) Capability {
	return &chatCapability{llm: llm}
}

func (c *chatCapability) Name() string { return NameChat }

func (c *chatCapability) Invoke(ctx context.Context, messages []models.ChatMessage) (*Result, error) {
	completion, err := c.llm.Complete(ctx, messages)
	if err != nil {
		return nil, Upstream(NameChat, err)
	}
	return &Result{Message: completion.Content, ID: completion.ID}, nil
}
