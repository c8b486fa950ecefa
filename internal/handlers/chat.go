package handlers

import (
	"context"
	"net/http"

	"carsales-backend/internal/dispatch"
	"carsales-backend/internal/models"
)

type chatDispatcher interface {
	Dispatch(ctx context.Context, req *models.ChatRequest) (*models.ChatReply, error)
}

type ChatHandler struct {
	dispatcher chatDispatcher
}

func NewChatHandler(dispatcher chatDispatcher) *ChatHandler {
	return &ChatHandler{dispatcher: dispatcher}
}

// Chat routes the conversation to one capability. Capability failures are
// reported in the reply body with a status derived from their kind.
func (h *ChatHandler) Chat(w http.ResponseWriter, r *http.Request) {
	var req models.ChatRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, models.ChatReply{Error: "Invalid request body", Code: "VALIDATION_ERROR"})
		return
	}

	if fields := models.Validate(&req); fields != nil {
		writeJSON(w, http.StatusBadRequest, models.ChatReply{Error: "Validation failed", Code: "VALIDATION_ERROR", Fields: fields})
		return
	}

	reply, err := h.dispatcher.Dispatch(r.Context(), &req)
	if err != nil {
		writeJSON(w, dispatch.StatusFor(err), dispatch.ErrorReply(err))
		return
	}

	writeJSON(w, http.StatusOK, reply)
}
