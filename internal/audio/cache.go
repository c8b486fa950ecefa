// Package audio caches WAV renderings of chat replies on disk, keyed by the
// reply id.
package audio

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

var (
	ErrInvalidID = errors.New("audio id must match [A-Za-z0-9._-]+")
	ErrNotCached = errors.New("audio is not cached and no text was given")
)

const synthesisTimeout = 2 * time.Minute

var validID = regexp.MustCompile(`^[A-Za-z0-9._-]+$`)

// Synthesizer renders text to WAV bytes.
type Synthesizer interface {
	Synthesize(ctx context.Context, text string) ([]byte, error)
}

// Cache is a write-once directory of <id>.wav files. Concurrent misses for
// the same id share one synthesis.
type Cache struct {
	dir    string
	tts    Synthesizer
	group  singleflight.Group
	logger *zap.Logger
}

func NewCache(dir string, tts Synthesizer, logger *zap.Logger) (*Cache, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create audio dir: %w", err)
	}
	return &Cache{dir: dir, tts: tts, logger: logger}, nil
}

func (c *Cache) Dir() string { return c.dir }

// Path is the cache file for id.
func (c *Cache) Path(id string) (string, error) {
	if id == "." || id == ".." || !validID.MatchString(id) {
		return "", ErrInvalidID
	}
	return filepath.Join(c.dir, id+".wav"), nil
}

// GetOrCreate returns the path of the cached rendering for id, synthesizing
// text first when the id is not cached yet.
func (c *Cache) GetOrCreate(ctx context.Context, id, text string) (string, error) {
	path, err := c.Path(id)
	if err != nil {
		return "", err
	}
	if _, err := os.Stat(path); err == nil {
		return path, nil
	}
	if text == "" {
		return "", ErrNotCached
	}

	// The synthesis outlives any single caller: a caller that gives up only
	// stops waiting, the others still get the file.
	ch := c.group.DoChan(id, func() (any, error) {
		// A concurrent caller may have finished while we waited.
		if _, err := os.Stat(path); err == nil {
			return nil, nil
		}

		synthCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), synthesisTimeout)
		defer cancel()

		audio, err := c.tts.Synthesize(synthCtx, text)
		if err != nil {
			return nil, fmt.Errorf("synthesize %s: %w", id, err)
		}
		if err := writeAtomic(c.dir, path, audio); err != nil {
			return nil, fmt.Errorf("write %s: %w", id, err)
		}

		c.logger.Debug("audio cached", zap.String("id", id), zap.Int("bytes", len(audio)))
		return nil, nil
	})

	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return "", res.Err
		}
		if res.Shared {
			c.logger.Debug("audio synthesis shared", zap.String("id", id))
		}
		return path, nil
	}
}

// Purge deletes every file in the cache directory.
func (c *Cache) Purge() error {
	entries, err := os.ReadDir(c.dir)
	if err != nil {
		return fmt.Errorf("read audio dir: %w", err)
	}

	removed := 0
	for _, e := range entries {
		if err := os.RemoveAll(filepath.Join(c.dir, e.Name())); err != nil {
			return fmt.Errorf("remove %s: %w", e.Name(), err)
		}
		removed++
	}

	c.logger.Info("audio cache purged", zap.String("dir", c.dir), zap.Int("removed", removed))
	return nil
}

func writeAtomic(dir, path string, data []byte) error {
	tmp, err := os.CreateTemp(dir, ".tmp-*.wav")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}
