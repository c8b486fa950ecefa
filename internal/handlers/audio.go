package handlers

import (
	"context"
	"errors"
	"net/http"
	"os"

	"go.uber.org/zap"

	"carsales-backend/internal/audio"
	"carsales-backend/internal/models"
)

type audioCache interface {
	GetOrCreate(ctx context.Context, id, text string) (string, error)
}

type AudioHandler struct {
	cache  audioCache
	logger *zap.Logger
}

func NewAudioHandler(cache audioCache, logger *zap.Logger) *AudioHandler {
	return &AudioHandler{cache: cache, logger: logger}
}

// GetAudio streams the WAV rendering of a reply, synthesizing it from text
// on a cache miss.
func (h *AudioHandler) GetAudio(w http.ResponseWriter, r *http.Request) {
	var req models.AudioRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid request body", r))
		return
	}
	if fields := models.Validate(&req); fields != nil {
		writeJSON(w, http.StatusBadRequest, errorRespWithFields("VALIDATION_ERROR", "Validation failed", fields, r))
		return
	}

	path, err := h.cache.GetOrCreate(r.Context(), req.ID, req.Text)
	switch {
	case errors.Is(err, audio.ErrInvalidID):
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", err.Error(), r))
		return
	case errors.Is(err, audio.ErrNotCached):
		writeJSON(w, http.StatusNotFound, errorResp("NOT_FOUND", err.Error(), r))
		return
	case err != nil:
		h.logger.Error("audio synthesis failed", zap.String("id", req.ID), zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, errorResp("UPSTREAM_ERROR", err.Error(), r))
		return
	}

	f, err := os.Open(path)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResp("INTERNAL_ERROR", "Failed to open audio", r))
		return
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResp("INTERNAL_ERROR", "Failed to open audio", r))
		return
	}

	w.Header().Set("Content-Type", "audio/wav")
	http.ServeContent(w, r, info.Name(), info.ModTime(), f)
}
