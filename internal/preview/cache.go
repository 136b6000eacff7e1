package preview

import (
	"bytes"
	"io"
	"sync"
	"time"

	"lost-algorithm/internal/game"
)

const (
	DefaultCachedFrames = 8
	FrameTTL            = 5 * time.Second
)

// FrameCache keeps recently encoded PNG frames keyed by snapshot sequence,
// so concurrent pollers of the same frame share one render.
type FrameCache struct {
	renderer *Renderer

	mu      sync.Mutex
	frames  map[uint64]*cachedFrame
	order   []uint64 // oldest first
	maxSize int

	hits   uint64
	misses uint64
}

type cachedFrame struct {
	png        []byte
	renderedAt time.Time
}

// NewFrameCache wraps r with a cache of at most maxSize frames
func NewFrameCache(r *Renderer, maxSize int) *FrameCache {
	if maxSize <= 0 {
		maxSize = DefaultCachedFrames
	}
	return &FrameCache{
		renderer: r,
		frames:   make(map[uint64]*cachedFrame),
		order:    make([]uint64, 0, maxSize),
		maxSize:  maxSize,
	}
}

// RenderPNG writes the PNG for snap, rendering it only on a cache miss.
// Snapshots without a sequence are never cached.
func (c *FrameCache) RenderPNG(w io.Writer, snap *game.GameSnapshot) error {
	if snap == nil || snap.Sequence == 0 {
		return c.renderer.RenderPNG(w, snap)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if f, ok := c.frames[snap.Sequence]; ok && time.Since(f.renderedAt) <= FrameTTL {
		c.hits++
		_, err := w.Write(f.png)
		return err
	}
	c.misses++

	var buf bytes.Buffer
	if err := c.renderer.RenderPNG(&buf, snap); err != nil {
		return err
	}

	if _, exists := c.frames[snap.Sequence]; !exists {
		// Evict if at capacity
		if len(c.frames) >= c.maxSize {
			c.evict()
		}
		c.order = append(c.order, snap.Sequence)
	}
	c.frames[snap.Sequence] = &cachedFrame{png: buf.Bytes(), renderedAt: time.Now()}

	_, err := w.Write(buf.Bytes())
	return err
}

// evict removes the oldest cached frame
func (c *FrameCache) evict() {
	if len(c.order) == 0 {
		return
	}

	oldest := c.order[0]
	c.order = c.order[1:]
	delete(c.frames, oldest)
}

// Size returns the current cache size
func (c *FrameCache) Size() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.frames)
}

// Stats returns cache hits and misses
func (c *FrameCache) Stats() (hits, misses uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.hits, c.misses
}
