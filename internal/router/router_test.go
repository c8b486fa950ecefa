package router

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"

	"carsales-backend/internal/audio"
	"carsales-backend/internal/catalog"
	"carsales-backend/internal/handlers"
	"carsales-backend/internal/middleware"
	"carsales-backend/internal/models"
	"carsales-backend/internal/websocket"
)

type echoDispatcher struct{}

func (echoDispatcher) Dispatch(ctx context.Context, req *models.ChatRequest) (*models.ChatReply, error) {
	last := req.PromptMessageList[len(req.PromptMessageList)-1]
	return &models.ChatReply{Response: &models.ReplyMessage{Message: last.Content, ID: "r-1"}}, nil
}

type missCache struct{}

func (missCache) GetOrCreate(ctx context.Context, id, text string) (string, error) {
	return "", audio.ErrNotCached
}

func newTestRouter(limiter *middleware.RateLimiter) http.Handler {
	logger := zap.NewNop()
	d := echoDispatcher{}
	return New(
		handlers.NewChatHandler(d),
		handlers.NewAudioHandler(missCache{}, logger),
		handlers.NewCatalogHandler(catalog.New(catalog.DefaultCars()), catalog.DefaultShowrooms()),
		websocket.NewHub(d, logger),
		limiter,
		"*",
		logger,
	)
}

func TestHealth(t *testing.T) {
	h := newTestRouter(nil)

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/health", nil))

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	var body map[string]string
	if err := json.NewDecoder(rr.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body["status"] != "healthy" {
		t.Errorf("unexpected health body %v", body)
	}
}

func TestRoutes(t *testing.T) {
	h := newTestRouter(nil)

	tests := []struct {
		name   string
		method string
		path   string
		body   string
		want   int
	}{
		{"chat", http.MethodPost, "/api/chat", `{"promptMessageList":[{"role":"user","content":"hi"}]}`, http.StatusOK},
		{"chat wrong method", http.MethodGet, "/api/chat", "", http.StatusMethodNotAllowed},
		{"audio miss", http.MethodPost, "/api/getaudio", `{"id":"abc"}`, http.StatusNotFound},
		{"cars", http.MethodGet, "/api/cars", "", http.StatusOK},
		{"car by id", http.MethodGet, "/api/cars/car-01", "", http.StatusOK},
		{"unknown car", http.MethodGet, "/api/cars/nope", "", http.StatusNotFound},
		{"showrooms", http.MethodGet, "/api/showrooms", "", http.StatusOK},
		{"ws without upgrade", http.MethodGet, "/api/chat/ws", "", http.StatusBadRequest},
		{"unknown", http.MethodGet, "/api/unknown", "", http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, tt.path, strings.NewReader(tt.body))
			req.Header.Set("Content-Type", "application/json")
			rr := httptest.NewRecorder()
			h.ServeHTTP(rr, req)
			if rr.Code != tt.want {
				t.Errorf("%s %s: expected %d, got %d: %s", tt.method, tt.path, tt.want, rr.Code, rr.Body.String())
			}
		})
	}
}

func TestResponsesCarryRequestID(t *testing.T) {
	h := newTestRouter(nil)

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/health", nil))
	if rr.Header().Get("X-Request-ID") == "" {
		t.Error("expected X-Request-ID response header")
	}
}

func TestRateLimitAppliesToAPIOnly(t *testing.T) {
	limiter := middleware.NewRateLimiter(1, time.Minute)
	defer limiter.Close()
	h := newTestRouter(limiter)

	do := func(path string) int {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		req.RemoteAddr = "10.0.0.1:1234"
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, req)
		return rr.Code
	}

	if code := do("/api/cars"); code != http.StatusOK {
		t.Fatalf("first request: expected 200, got %d", code)
	}
	if code := do("/api/cars"); code != http.StatusTooManyRequests {
		t.Fatalf("second request: expected 429, got %d", code)
	}
	if code := do("/health"); code != http.StatusOK {
		t.Errorf("health should not be rate limited, got %d", code)
	}
}

func TestPanicIsRecovered(t *testing.T) {
	h := New(
		handlers.NewChatHandler(panicDispatcher{}),
		handlers.NewAudioHandler(missCache{}, zap.NewNop()),
		handlers.NewCatalogHandler(catalog.New(nil), nil),
		websocket.NewHub(panicDispatcher{}, zap.NewNop()),
		nil,
		"*",
		zap.NewNop(),
	)

	req := httptest.NewRequest(http.MethodPost, "/api/chat", strings.NewReader(`{"promptMessageList":[{"role":"user","content":"hi"}]}`))
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	if rr.Code != http.StatusInternalServerError {
		t.Errorf("expected 500 after panic, got %d", rr.Code)
	}
}

type panicDispatcher struct{}

func (panicDispatcher) Dispatch(ctx context.Context, req *models.ChatRequest) (*models.ChatReply, error) {
	panic(errors.New("boom"))
}
