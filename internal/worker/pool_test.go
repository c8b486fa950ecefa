package worker

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"

	"carsales-backend/internal/models"
)

type stubWarmer struct {
	mu   sync.Mutex
	seen map[string]string
	done chan struct{}
	err  error
}

func newStubWarmer(expected int) *stubWarmer {
	return &stubWarmer{seen: make(map[string]string), done: make(chan struct{}, expected)}
}

func (s *stubWarmer) GetOrCreate(ctx context.Context, id, text string) (string, error) {
	s.mu.Lock()
	s.seen[id] = text
	s.mu.Unlock()
	s.done <- struct{}{}
	return "/tmp/" + id + ".wav", s.err
}

func waitFor(t *testing.T, ch <-chan struct{}, n int) {
	t.Helper()
	for i := 0; i < n; i++ {
		select {
		case <-ch:
		case <-time.After(2 * time.Second):
			t.Fatalf("timed out after %d of %d jobs", i, n)
		}
	}
}

func TestPool_ProcessesReplies(t *testing.T) {
	warmer := newStubWarmer(2)
	p := NewPool(warmer, 2, 4, zap.NewNop())
	p.Start()
	defer p.Stop()

	p.EnqueueReply(&models.ChatReply{Response: &models.ReplyMessage{ID: "r1", Message: "Xin chào"}})
	p.EnqueueReply(&models.ChatReply{Response: &models.ReplyMessage{ID: "r2", Message: "Civic"}})
	waitFor(t, warmer.done, 2)

	warmer.mu.Lock()
	defer warmer.mu.Unlock()
	if warmer.seen["r1"] != "Xin chào" || warmer.seen["r2"] != "Civic" {
		t.Errorf("unexpected jobs %v", warmer.seen)
	}
}

func TestPool_SkipsRepliesWithoutText(t *testing.T) {
	p := NewPool(newStubWarmer(0), 1, 1, zap.NewNop())

	for _, reply := range []*models.ChatReply{
		nil,
		{Error: "boom"},
		{Response: &models.ReplyMessage{ID: "fc", Message: ""}, Images: []string{"x"}},
		{Response: &models.ReplyMessage{Message: "no id"}},
	} {
		p.EnqueueReply(reply)
	}
	if len(p.jobs) != 0 {
		t.Errorf("expected no queued jobs, got %d", len(p.jobs))
	}
}

func TestPool_EnqueueFullAndStopped(t *testing.T) {
	p := NewPool(newStubWarmer(0), 1, 1, zap.NewNop())

	if !p.Enqueue(models.AudioJob{ID: "a", Text: "a"}) {
		t.Fatal("first job should fit")
	}
	if p.Enqueue(models.AudioJob{ID: "b", Text: "b"}) {
		t.Error("full queue must reject")
	}

	p.Stop()
	<-p.jobs
	if p.Enqueue(models.AudioJob{ID: "c", Text: "c"}) {
		t.Error("stopped pool must reject")
	}
}

func TestPool_FailuresDoNotStopWorkers(t *testing.T) {
	warmer := newStubWarmer(2)
	warmer.err = errors.New("tts down")
	p := NewPool(warmer, 1, 4, zap.NewNop())
	p.Start()
	defer p.Stop()

	p.Enqueue(models.AudioJob{ID: "a", Text: "a"})
	p.Enqueue(models.AudioJob{ID: "b", Text: "b"})
	waitFor(t, warmer.done, 2)
}
