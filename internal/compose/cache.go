package compose

import (
	"context"
	"image"
	"sync"

	"AnimBoard/internal/logging"
	"AnimBoard/internal/raster"
)

// Decoded is the completion of one asynchronous decode.
type Decoded struct {
	Src   string
	Image image.Image
	Err   error
}

// ImageCache decodes encoded bitmaps off the caller's goroutine. Completions
// arrive on Done and take effect once the owner hands them to Accept, so
// nothing is redrawn from inside a decode.
type ImageCache struct {
	mu      sync.Mutex
	images  map[string]image.Image
	pending map[string]struct{}
	failed  map[string]struct{}
	done    chan Decoded
	decode  func(string) (image.Image, error)
}

// NewImageCache returns an empty cache decoding with raster.Decode.
func NewImageCache() *ImageCache {
	return &ImageCache{
		images:  make(map[string]image.Image),
		pending: make(map[string]struct{}),
		failed:  make(map[string]struct{}),
		done:    make(chan Decoded, 16),
		decode:  raster.Decode,
	}
}

// Done delivers decode completions.
func (c *ImageCache) Done() <-chan Decoded { return c.done }

// Get returns the decoded image for src. When it is not ready yet a decode
// is started and Get reports false; callers draw nothing for now. A source
// that failed to decode is never retried.
func (c *ImageCache) Get(src string) (image.Image, bool) {
	if src == "" {
		return nil, false
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if img, ok := c.images[src]; ok {
		return img, true
	}
	if _, ok := c.pending[src]; ok {
		return nil, false
	}
	if _, ok := c.failed[src]; ok {
		return nil, false
	}
	c.pending[src] = struct{}{}
	go func() {
		img, err := c.decode(src)
		c.done <- Decoded{Src: src, Image: img, Err: err}
	}()
	return nil, false
}

// Put stores an image that is already decoded, such as a freshly encoded
// layer, so that reading it back is synchronous.
func (c *ImageCache) Put(src string, img image.Image) {
	if src == "" || img == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.images[src] = img
	delete(c.pending, src)
}

// Accept records a completion and reports whether its image is now ready.
func (c *ImageCache) Accept(d Decoded) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.pending, d.Src)
	if d.Err != nil {
		c.failed[d.Src] = struct{}{}
		logging.Logger().Warn("[BOARD] image decode failed", "err", d.Err, "len", len(d.Src))
		return false
	}
	c.images[d.Src] = d.Image
	return true
}

// Failed reports whether src already failed to decode.
func (c *ImageCache) Failed(src string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.failed[src]
	return ok
}

// Retain drops every cached image not listed in keep.
func (c *ImageCache) Retain(keep ...string) {
	set := make(map[string]struct{}, len(keep))
	for _, k := range keep {
		set[k] = struct{}{}
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	for k := range c.images {
		if _, ok := set[k]; !ok {
			delete(c.images, k)
		}
	}
}

// Settle accepts completions until no decode is in flight or ctx ends.
func (c *ImageCache) Settle(ctx context.Context, accept func(Decoded)) error {
	for {
		c.mu.Lock()
		n := len(c.pending)
		c.mu.Unlock()
		if n == 0 {
			return nil
		}
		select {
		case d := <-c.done:
			accept(d)
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}
