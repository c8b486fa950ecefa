package models

// ChatMessage represents a single message in a conversation.
type ChatMessage struct {
	Role    string `json:"role" validate:"required"` // "system" | "user" | "assistant"
	Content string `json:"content"`
}

// ChatRequest is the payload sent to the chat endpoint. The flags are
// independent on the wire; the dispatcher honors only the first true one.
type ChatRequest struct {
	PromptMessageList []ChatMessage `json:"promptMessageList" validate:"required,min=1,dive"`
	IsFunctionCall    bool          `json:"isFunctionCall"`
	IsDatabaseQuery   bool          `json:"isDatabaseQuery"`
	IsSimilarCarQuery bool          `json:"isSimilarCarQuery"`
	IsLangchainSearch bool          `json:"isLangchainSearch"`
}

// LastUserContent returns the content of the most recent user message,
// falling back to the last message of any role.
func (r *ChatRequest) LastUserContent() string {
	return LastUserContent(r.PromptMessageList)
}

func LastUserContent(messages []ChatMessage) string {
	for i := len(messages) - 1; i >= 0; i-- {
		if messages[i].Role == "user" {
			return messages[i].Content
		}
	}
	if n := len(messages); n > 0 {
		return messages[n-1].Content
	}
	return ""
}

// ReplyMessage is the text part of a chat reply.
type ReplyMessage struct {
	Message string `json:"message"`
	ID      string `json:"id"`
}

// ChatReply is the uniform reply envelope for every capability.
type ChatReply struct {
	Response *ReplyMessage     `json:"response,omitempty"`
	Images   []string          `json:"images,omitempty"`
	Error    string            `json:"error,omitempty"`
	Code     string            `json:"code,omitempty"`
	Fields   map[string]string `json:"fields,omitempty"`
}

// WSChatFrame wraps a reply sent over the websocket transport.
type WSChatFrame struct {
	Type      string    `json:"type"` // "chat_reply" | "error"
	RequestID string    `json:"request_id,omitempty"`
	Reply     ChatReply `json:"reply"`
}
