package capability

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"

	"carsales-backend/internal/models"
)

func TestWithBreaker_OpensAfterConsecutiveFailures(t *testing.T) {
	calls := 0
	failing := Func{
		CapabilityName: "chat",
		Fn: func(ctx context.Context, messages []models.ChatMessage) (*Result, error) {
			calls++
			return nil, Upstream("chat", errors.New("quota exceeded"))
		},
	}

	guarded := WithBreaker(failing, 2, time.Minute, zap.NewNop())

	for i := 0; i < 2; i++ {
		_, err := guarded.Invoke(context.Background(), nil)
		if KindOf(err) != KindUpstream {
			t.Fatalf("call %d: expected upstream error, got %v", i, err)
		}
	}

	_, err := guarded.Invoke(context.Background(), nil)
	if KindOf(err) != KindUnavailable {
		t.Fatalf("expected breaker to be open, got %v", err)
	}
	if calls != 2 {
		t.Fatalf("open breaker must not reach the upstream, got %d calls", calls)
	}
}

func TestWithBreaker_InvalidRequestDoesNotTrip(t *testing.T) {
	bad := Func{
		CapabilityName: "chromadb",
		Fn: func(ctx context.Context, messages []models.ChatMessage) (*Result, error) {
			return nil, InvalidRequest("chromadb", errors.New("no user message"))
		},
	}

	guarded := WithBreaker(bad, 1, time.Minute, zap.NewNop())
	for i := 0; i < 3; i++ {
		_, err := guarded.Invoke(context.Background(), nil)
		if KindOf(err) != KindInvalidRequest {
			t.Fatalf("call %d: expected invalid request, got %v", i, err)
		}
	}
}

func TestWithBreaker_PassesResultThrough(t *testing.T) {
	ok := Func{
		CapabilityName: "chat",
		Fn: func(ctx context.Context, messages []models.ChatMessage) (*Result, error) {
			return &Result{Message: "xin chào", ID: "chatcmpl-1"}, nil
		},
	}

	res, err := WithBreaker(ok, 3, time.Minute, zap.NewNop()).Invoke(context.Background(), nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Message != "xin chào" || res.ID != "chatcmpl-1" {
		t.Fatalf("unexpected result: %+v", res)
	}
}

func TestWithBreaker_DisabledReturnsSameCapability(t *testing.T) {
	ok := Func{CapabilityName: "chat"}
	if got := WithBreaker(ok, 0, time.Minute, zap.NewNop()); got.Name() != "chat" {
		t.Fatalf("unexpected capability %q", got.Name())
	}
}

func TestKindOf(t *testing.T) {
	wrapped := errors.Join(errors.New("context"), Malformed("function_call", errors.New("bad json")))

	tests := []struct {
		name string
		err  error
		want ErrorKind
	}{
		{"nil", nil, 0},
		{"plain error", errors.New("boom"), KindUpstream},
		{"wrapped malformed", wrapped, KindMalformedOutput},
		{"unavailable", Unavailable("pinecone", errors.New("not configured")), KindUnavailable},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := KindOf(tc.err); got != tc.want {
				t.Errorf("expected %v, got %v", tc.want, got)
			}
		})
	}
}
