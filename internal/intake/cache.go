package intake

import (
	"image"
	"sync"
)

// ImageCache holds decoded images keyed by the SHA-256 digest of their
// encoded bytes, so that identical uploads decode once.
//
// The cache keeps at most Capacity entries and evicts the oldest insertion
// first. It is safe for concurrent use.
type ImageCache struct {
	mu       sync.RWMutex
	capacity int
	images   map[string]image.Image
	order    []string
}

// NewImageCache creates an empty cache holding up to capacity images.
// A capacity below one is treated as one.
func NewImageCache(capacity int) *ImageCache {
	if capacity < 1 {
		capacity = 1
	}
	return &ImageCache{
		capacity: capacity,
		images:   make(map[string]image.Image),
	}
}

// Get returns the cached image for digest.
func (c *ImageCache) Get(digest string) (image.Image, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	img, ok := c.images[digest]
	return img, ok
}

// Put stores img under digest, evicting the oldest entry when full.
func (c *ImageCache) Put(digest string, img image.Image) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.images[digest]; ok {
		c.images[digest] = img
		return
	}
	for len(c.order) >= c.capacity {
		oldest := c.order[0]
		c.order = c.order[1:]
		delete(c.images, oldest)
	}
	c.images[digest] = img
	c.order = append(c.order, digest)
}

// Len returns the number of cached images.
func (c *ImageCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.images)
}
