package worker

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"carsales-backend/internal/models"
)

// AudioWarmer is the cache the pool fills.
type AudioWarmer interface {
	GetOrCreate(ctx context.Context, id, text string) (string, error)
}

// Pool synthesizes audio for replies in the background so a later
// /api/getaudio call is a cache hit.
type Pool struct {
	cache       AudioWarmer
	jobs        chan models.AudioJob
	workerCount int
	timeout     time.Duration
	logger      *zap.Logger
	stopChan    chan struct{}
	wg          sync.WaitGroup
	stopOnce    sync.Once
}

func NewPool(cache AudioWarmer, workerCount, queueSize int, logger *zap.Logger) *Pool {
	if workerCount <= 0 {
		workerCount = 1
	}
	if queueSize <= 0 {
		queueSize = workerCount * 8
	}
	return &Pool{
		cache:       cache,
		jobs:        make(chan models.AudioJob, queueSize),
		workerCount: workerCount,
		timeout:     2 * time.Minute,
		logger:      logger,
		stopChan:    make(chan struct{}),
	}
}

func (p *Pool) Start() {
	for i := 0; i < p.workerCount; i++ {
		p.wg.Add(1)
		go p.worker(i)
	}

	p.logger.Info("audio prefetch workers started", zap.Int("workers", p.workerCount))
}

// Stop signals the workers and waits for in-flight jobs to finish. Queued
// jobs that have not started are dropped.
func (p *Pool) Stop() {
	p.stopOnce.Do(func() {
		close(p.stopChan)
	})
	p.wg.Wait()
}

// Enqueue schedules a job without blocking. It reports false when the queue
// is full or the pool is stopped.
func (p *Pool) Enqueue(job models.AudioJob) bool {
	select {
	case <-p.stopChan:
		return false
	default:
	}

	select {
	case p.jobs <- job:
		return true
	default:
		p.logger.Warn("audio prefetch queue full, dropping job", zap.String("id", job.ID))
		return false
	}
}

// EnqueueReply schedules prefetch for a chat reply with text content.
func (p *Pool) EnqueueReply(reply *models.ChatReply) {
	if reply == nil || reply.Response == nil || reply.Response.ID == "" || reply.Response.Message == "" {
		return
	}
	p.Enqueue(models.AudioJob{ID: reply.Response.ID, Text: reply.Response.Message})
}

func (p *Pool) worker(id int) {
	defer p.wg.Done()

	for {
		select {
		case <-p.stopChan:
			p.logger.Debug("audio worker shutting down", zap.Int("worker", id))
			return
		case job := <-p.jobs:
			p.process(id, job)
		}
	}
}

func (p *Pool) process(worker int, job models.AudioJob) {
	ctx, cancel := context.WithTimeout(context.Background(), p.timeout)
	defer cancel()

	start := time.Now()
	if _, err := p.cache.GetOrCreate(ctx, job.ID, job.Text); err != nil {
		p.logger.Warn("audio prefetch failed",
			zap.Int("worker", worker),
			zap.String("id", job.ID),
			zap.Error(err),
		)
		return
	}

	p.logger.Debug("audio prefetched",
		zap.Int("worker", worker),
		zap.String("id", job.ID),
		zap.Duration("took", time.Since(start)),
	)
}
