package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"carsales-backend/internal/models"
)

// GeminiChatService is the alternate chat provider, selected with
// LLM_PROVIDER=gemini.
type GeminiChatService struct {
	client    *genai.Client
	modelName string
	rateChan  chan struct{} // Token bucket
}

func NewGeminiChatService(apiKey, modelName string, concurrentReqs int) (*GeminiChatService, error) {
	ctx := context.Background()
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	if concurrentReqs <= 0 {
		concurrentReqs = 1
	}
	rateChan := make(chan struct{}, concurrentReqs)
	for i := 0; i < concurrentReqs; i++ {
		rateChan <- struct{}{}
	}

	return &GeminiChatService{
		client:    client,
		modelName: modelName,
		rateChan:  rateChan,
	}, nil
}

func (s *GeminiChatService) Close() {
	s.client.Close()
}

// acquireRate blocks until a rate slot is available
func (s *GeminiChatService) acquireRate(ctx context.Context) error {
	select {
	case <-s.rateChan:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(2 * time.Minute):
		return fmt.Errorf("timeout waiting for Gemini rate slot")
	}
}

func (s *GeminiChatService) releaseRate() {
	s.rateChan <- struct{}{}
}

func (s *GeminiChatService) Complete(ctx context.Context, messages []models.ChatMessage) (*Completion, error) {
	if len(messages) == 0 {
		return nil, errors.New("empty conversation")
	}
	system, history, last, err := splitForGemini(messages)
	if err != nil {
		return nil, err
	}

	if err := s.acquireRate(ctx); err != nil {
		return nil, err
	}
	defer s.releaseRate()

	// A model per call keeps SystemInstruction out of shared state.
	model := s.client.GenerativeModel(s.modelName)
	if system != "" {
		model.SystemInstruction = &genai.Content{Parts: []genai.Part{genai.Text(system)}}
	}

	cs := model.StartChat()
	cs.History = history

	resp, err := cs.SendMessage(ctx, genai.Text(last))
	if err != nil {
		return nil, fmt.Errorf("Gemini API error: %w", err)
	}

	return &Completion{Content: extractText(resp)}, nil
}

var errNoUserTurn = errors.New("conversation must end with a user message")

// splitForGemini maps an OpenAI-style conversation onto Gemini's chat
// session: system messages become the system instruction, the last
// non-system message is the one sent, and everything before it is history.
// The sent message must come from the user.
func splitForGemini(messages []models.ChatMessage) (system string, history []*genai.Content, last string, err error) {
	lastIdx := -1
	for i := len(messages) - 1; i >= 0; i-- {
		if messages[i].Role != "system" {
			lastIdx = i
			break
		}
	}
	if lastIdx < 0 || messages[lastIdx].Role != "user" {
		return "", nil, "", errNoUserTurn
	}

	var systemParts []string
	for i, m := range messages {
		if m.Role == "system" {
			systemParts = append(systemParts, m.Content)
			continue
		}
		if i == lastIdx {
			last = m.Content
			continue
		}
		role := "user"
		if m.Role == "assistant" {
			role = "model"
		}
		history = append(history, &genai.Content{
			Role:  role,
			Parts: []genai.Part{genai.Text(m.Content)},
		})
	}
	return strings.Join(systemParts, "\n\n"), history, last, nil
}

func extractText(resp *genai.GenerateContentResponse) string {
	var text strings.Builder
	for _, cand := range resp.Candidates {
		if cand.Content != nil {
			for _, part := range cand.Content.Parts {
				if t, ok := part.(genai.Text); ok {
					text.WriteString(string(t))
				}
			}
		}
	}
	return text.String()
}
