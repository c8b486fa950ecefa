package services

import (
	"context"
	"fmt"

	"carsales-backend/internal/models"
)

const recommendPersona = `Bạn là một chuyên gia sale trong lĩnh vực mua bán xe hơi.
Nếu như câu hỏi là những thứ ngoài lĩnh vực này thì hãy trả lời là:
Xin lỗi bạn đây là câu hỏi nằm ngoài lĩnh vực của tôi. Xin hãy đặt lại câu hỏi.`

// RecommendService asks the chat model to pick the best car out of a
// retrieved context block.
type RecommendService struct {
	llm ChatCompleter
}

func NewRecommendService(llm ChatCompleter) *RecommendService {
	return &RecommendService{llm: llm}
}

func (s *RecommendService) Recommend(ctx context.Context, userInput, carContext string) (string, error) {
	messages := []models.ChatMessage{
		{Role: "system", Content: recommendPersona},
		{Role: "user", Content: RecommendPrompt(userInput, carContext)},
	}

	completion, err := s.llm.Complete(ctx, messages)
	if err != nil {
		return "", fmt.Errorf("recommendation: %w", err)
	}
	return completion.Content, nil
}

func RecommendPrompt(userInput, carContext string) string {
	return fmt.Sprintf(
		"Yêu cầu người dùng: %s\n\nXe đề xuất:\n%s\n\nDựa vào yêu cầu bên trên và thông tin xe đã cho, hãy đề xuất chiếc xe phù hợp nhất với người dùng.",
		userInput, carContext,
	)
}
