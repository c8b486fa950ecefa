package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"carsales-backend/internal/audio"
	"carsales-backend/internal/capability"
	"carsales-backend/internal/catalog"
	"carsales-backend/internal/models"
)

// ─── Chat Handler Tests ───

type stubDispatcher struct {
	reply *models.ChatReply
	err   error
	got   *models.ChatRequest
}

func (s *stubDispatcher) Dispatch(ctx context.Context, req *models.ChatRequest) (*models.ChatReply, error) {
	s.got = req
	return s.reply, s.err
}

func postJSON(t *testing.T, h http.HandlerFunc, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	h(rr, req)
	return rr
}

func TestChatHandler_Success(t *testing.T) {
	d := &stubDispatcher{reply: &models.ChatReply{Response: &models.ReplyMessage{Message: "Chào bạn", ID: "chatcmpl-1"}}}
	h := NewChatHandler(d)

	rr := postJSON(t, h.Chat, "/api/chat", `{"promptMessageList":[{"role":"user","content":"chào"}],"isDatabaseQuery":true}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rr.Code, rr.Body.String())
	}

	var payload struct {
		Response struct {
			Message string `json:"message"`
			ID      string `json:"id"`
		} `json:"response"`
	}
	if err := json.NewDecoder(rr.Body).Decode(&payload); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if payload.Response.Message != "Chào bạn" || payload.Response.ID != "chatcmpl-1" {
		t.Errorf("unexpected payload %+v", payload)
	}
	if !d.got.IsDatabaseQuery || len(d.got.PromptMessageList) != 1 {
		t.Errorf("request not forwarded: %+v", d.got)
	}
}

func TestChatHandler_InvalidBodies(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"not json", `{"promptMessageList":`},
		{"empty body", ``},
		{"missing list", `{"isFunctionCall":true}`},
		{"empty list", `{"promptMessageList":[]}`},
		{"message without role", `{"promptMessageList":[{"content":"hi"}]}`},
		{"two json values", `{"promptMessageList":[{"role":"user","content":"hi"}]}{"isFunctionCall":true}`},
		{"trailing garbage", `{"promptMessageList":[{"role":"user","content":"hi"}]} x`},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			d := &stubDispatcher{}
			rr := postJSON(t, NewChatHandler(d).Chat, "/api/chat", tc.body)

			if rr.Code != http.StatusBadRequest {
				t.Fatalf("expected 400, got %d", rr.Code)
			}
			var reply models.ChatReply
			json.NewDecoder(rr.Body).Decode(&reply)
			if reply.Code != "VALIDATION_ERROR" || reply.Error == "" {
				t.Errorf("unexpected reply %+v", reply)
			}
			if d.got != nil {
				t.Error("invalid requests must not be dispatched")
			}
		})
	}
}

func TestChatHandler_TrailingWhitespaceAccepted(t *testing.T) {
	d := &stubDispatcher{reply: &models.ChatReply{Response: &models.ReplyMessage{Message: "ok", ID: "1"}}}
	rr := postJSON(t, NewChatHandler(d).Chat, "/api/chat", "{\"promptMessageList\":[{\"role\":\"user\",\"content\":\"hi\"}]}\n")
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rr.Code, rr.Body.String())
	}
}

func TestChatHandler_ErrorStatuses(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{"upstream", capability.Upstream("chat", errors.New("401 invalid api key")), http.StatusInternalServerError, "UPSTREAM_ERROR"},
		{"malformed", capability.Malformed("function_call", errors.New("bad json")), http.StatusInternalServerError, "MALFORMED_OUTPUT"},
		{"unavailable", capability.Unavailable("similar_car", errors.New("not configured")), http.StatusServiceUnavailable, "CAPABILITY_UNAVAILABLE"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			rr := postJSON(t, NewChatHandler(&stubDispatcher{err: tc.err}).Chat, "/api/chat",
				`{"promptMessageList":[{"role":"user","content":"x"}]}`)

			if rr.Code != tc.wantStatus {
				t.Fatalf("expected %d, got %d", tc.wantStatus, rr.Code)
			}
			var reply map[string]any
			json.NewDecoder(rr.Body).Decode(&reply)
			if reply["code"] != tc.wantCode || reply["error"] == "" {
				t.Errorf("unexpected body %v", reply)
			}
			if _, ok := reply["response"]; ok {
				t.Error("error replies must not carry a response")
			}
		})
	}
}

func TestChatHandler_FunctionCallFallbackIs200(t *testing.T) {
	d := &stubDispatcher{reply: &models.ChatReply{
		Images: []string{capability.FallbackImageURL},
		Error:  "image search: unexpected status 403",
	}}

	rr := postJSON(t, NewChatHandler(d).Chat, "/api/chat",
		`{"promptMessageList":[{"role":"user","content":"ảnh Civic"}],"isFunctionCall":true}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("fallback must be delivered with 200, got %d", rr.Code)
	}

	var reply models.ChatReply
	json.NewDecoder(rr.Body).Decode(&reply)
	if reply.Error == "" || len(reply.Images) != 1 || reply.Images[0] != capability.FallbackImageURL {
		t.Errorf("unexpected reply %+v", reply)
	}
}

// ─── Audio Handler Tests ───

type fakeTTS struct{ calls int }

func (f *fakeTTS) Synthesize(ctx context.Context, text string) ([]byte, error) {
	f.calls++
	return []byte("RIFF....WAVE" + text), nil
}

func newAudioHandler(t *testing.T) (*AudioHandler, *fakeTTS, *audio.Cache) {
	t.Helper()
	tts := &fakeTTS{}
	cache, err := audio.NewCache(filepath.Join(t.TempDir(), "audio"), tts, zap.NewNop())
	if err != nil {
		t.Fatalf("NewCache: %v", err)
	}
	return NewAudioHandler(cache, zap.NewNop()), tts, cache
}

func TestAudioHandler_SynthesizesThenServesCache(t *testing.T) {
	h, tts, _ := newAudioHandler(t)

	first := postJSON(t, h.GetAudio, "/api/getaudio", `{"id":"reply-1","text":"Xin chào"}`)
	if first.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", first.Code, first.Body.String())
	}
	if ct := first.Header().Get("Content-Type"); ct != "audio/wav" {
		t.Errorf("expected audio/wav, got %q", ct)
	}

	second := postJSON(t, h.GetAudio, "/api/getaudio", `{"id":"reply-1","text":"Xin chào"}`)
	if !bytes.Equal(first.Body.Bytes(), second.Body.Bytes()) {
		t.Error("expected byte-identical audio on cache hit")
	}
	if tts.calls != 1 {
		t.Errorf("expected one synthesis, got %d", tts.calls)
	}
}

func TestAudioHandler_Errors(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		wantStatus int
	}{
		{"invalid json", `{"id":`, http.StatusBadRequest},
		{"missing id", `{"text":"hi"}`, http.StatusBadRequest},
		{"path traversal", `{"id":"../secret","text":"hi"}`, http.StatusBadRequest},
		{"not cached without text", `{"id":"unknown"}`, http.StatusNotFound},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			h, _, _ := newAudioHandler(t)
			rr := postJSON(t, h.GetAudio, "/api/getaudio", tc.body)
			if rr.Code != tc.wantStatus {
				t.Fatalf("expected %d, got %d: %s", tc.wantStatus, rr.Code, rr.Body.String())
			}
		})
	}
}

type failingCache struct{}

func (failingCache) GetOrCreate(ctx context.Context, id, text string) (string, error) {
	return "", errors.New("synthesize reply-1: tts quota exceeded")
}

func TestAudioHandler_SynthesisFailure(t *testing.T) {
	h := NewAudioHandler(failingCache{}, zap.NewNop())
	rr := postJSON(t, h.GetAudio, "/api/getaudio", `{"id":"reply-1","text":"hi"}`)

	if rr.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rr.Code)
	}
	var body models.ErrorResponse
	json.NewDecoder(rr.Body).Decode(&body)
	if body.Code != "UPSTREAM_ERROR" || !strings.Contains(body.Error, "quota") {
		t.Errorf("unexpected body %+v", body)
	}
}

func TestAudioHandler_PurgedCacheNeedsText(t *testing.T) {
	h, _, cache := newAudioHandler(t)
	postJSON(t, h.GetAudio, "/api/getaudio", `{"id":"reply-1","text":"Xin chào"}`)

	if err := cache.Purge(); err != nil {
		t.Fatalf("Purge: %v", err)
	}
	rr := postJSON(t, h.GetAudio, "/api/getaudio", `{"id":"reply-1"}`)
	if rr.Code != http.StatusNotFound {
		t.Fatalf("expected 404 after purge, got %d", rr.Code)
	}
}

// ─── Catalog Handler Tests ───

func newCatalogHandler() *CatalogHandler {
	return NewCatalogHandler(catalog.New(catalog.DefaultCars()), catalog.DefaultShowrooms())
}

func getWithParam(h http.HandlerFunc, path, key, value string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if key != "" {
		rctx := chi.NewRouteContext()
		rctx.URLParams.Add(key, value)
		req = req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
	}
	rr := httptest.NewRecorder()
	h(rr, req)
	return rr
}

func TestCatalogHandler_ListCars(t *testing.T) {
	tests := []struct {
		query     string
		wantTotal int
	}{
		{"", 10},
		{"?segment=suv", 5},
		{"?min_seats=7", 2},
		{"?segment=mpv&min_seats=7", 1},
		{"?brand=TOYOTA", 3},
	}

	for _, tc := range tests {
		t.Run(tc.query, func(t *testing.T) {
			rr := getWithParam(newCatalogHandler().ListCars, "/api/cars"+tc.query, "", "")
			if rr.Code != http.StatusOK {
				t.Fatalf("expected 200, got %d", rr.Code)
			}
			var payload struct {
				Cars  []models.CarRecord `json:"cars"`
				Total int                `json:"total"`
			}
			json.NewDecoder(rr.Body).Decode(&payload)
			if payload.Total != tc.wantTotal || len(payload.Cars) != tc.wantTotal {
				t.Errorf("expected %d cars, got %d (%d)", tc.wantTotal, payload.Total, len(payload.Cars))
			}
		})
	}
}

func TestCatalogHandler_InvalidFilter(t *testing.T) {
	for _, q := range []string{"?min_seats=abc", "?max_price=-1"} {
		rr := getWithParam(newCatalogHandler().ListCars, "/api/cars"+q, "", "")
		if rr.Code != http.StatusBadRequest {
			t.Errorf("%s: expected 400, got %d", q, rr.Code)
		}
	}
}

func TestCatalogHandler_GetCar(t *testing.T) {
	rr := getWithParam(newCatalogHandler().GetCar, "/api/cars/car-10", "id", "car-10")
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	var car models.CarRecord
	json.NewDecoder(rr.Body).Decode(&car)
	if car.Name != "Xpander" || car.Seats != 7 {
		t.Errorf("unexpected car %+v", car)
	}

	rr = getWithParam(newCatalogHandler().GetCar, "/api/cars/nope", "id", "nope")
	if rr.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", rr.Code)
	}
}

func TestCatalogHandler_ListShowrooms(t *testing.T) {
	rr := getWithParam(newCatalogHandler().ListShowrooms, "/api/showrooms?brand=honda", "", "")
	body, _ := io.ReadAll(rr.Body)

	var payload struct {
		Showrooms []models.Showroom `json:"showrooms"`
		Total     int               `json:"total"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if payload.Total == 0 {
		t.Fatal("expected Honda showrooms")
	}
	for _, s := range payload.Showrooms {
		if !containsFold(s.Brands, "Honda") {
			t.Errorf("showroom %q does not sell Honda", s.Name)
		}
	}
}
