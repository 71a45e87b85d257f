package imaging

import (
	"fmt"
	"image"

	"github.com/dgraph-io/ristretto/v2"

	"github.com/Faultbox/spritestudio/pkg/model"
)

// CacheConfig sizes the decoded art cache.
type CacheConfig struct {
	NumCounters int64 // keys tracked for admission, ~10x expected entries
	MaxCost     int64 // bytes of decoded pixels
}

// DefaultCacheConfig holds about 64 MiB of decoded pixels.
func DefaultCacheConfig() CacheConfig {
	return CacheConfig{
		NumCounters: 10000,
		MaxCost:     64 * 1024 * 1024,
	}
}

// Cache decodes art once per distinct content and shares the pixels between
// renders. Cached images are read-only. Safe for concurrent use.
type Cache struct {
	decoded *ristretto.Cache[uint64, *image.NRGBA]
	flipped *ristretto.Cache[uint64, *image.NRGBA]
}

// NewCache creates a decoded art cache.
func NewCache(cfg CacheConfig) (*Cache, error) {
	if cfg.NumCounters <= 0 || cfg.MaxCost <= 0 {
		cfg = DefaultCacheConfig()
	}
	decoded, err := newImageCache(cfg)
	if err != nil {
		return nil, fmt.Errorf("creating decode cache: %w", err)
	}
	flipped, err := newImageCache(cfg)
	if err != nil {
		decoded.Close()
		return nil, fmt.Errorf("creating mirror cache: %w", err)
	}
	return &Cache{decoded: decoded, flipped: flipped}, nil
}

func newImageCache(cfg CacheConfig) (*ristretto.Cache[uint64, *image.NRGBA], error) {
	return ristretto.NewCache[uint64, *image.NRGBA](&ristretto.Config[uint64, *image.NRGBA]{
		NumCounters: cfg.NumCounters,
		MaxCost:     cfg.MaxCost,
		BufferItems: 64,
	})
}

// Decode returns the decoded pixels of art.
func (c *Cache) Decode(art *model.Art) (*image.NRGBA, error) {
	if art == nil {
		return nil, ErrEmptyImage
	}
	key := art.Sum()
	if img, ok := c.decoded.Get(key); ok {
		return img, nil
	}
	img, _, err := Decode(art.Data)
	if err != nil {
		return nil, err
	}
	c.decoded.Set(key, img, imageCost(img))
	c.decoded.Wait()
	return img, nil
}

// DecodeMirrored returns the decoded pixels of art flipped horizontally.
func (c *Cache) DecodeMirrored(art *model.Art) (*image.NRGBA, error) {
	if art == nil {
		return nil, ErrEmptyImage
	}
	key := art.Sum()
	if img, ok := c.flipped.Get(key); ok {
		return img, nil
	}
	src, err := c.Decode(art)
	if err != nil {
		return nil, err
	}
	img := FlipH(src)
	c.flipped.Set(key, img, imageCost(img))
	c.flipped.Wait()
	return img, nil
}

// Clear drops every cached image.
func (c *Cache) Clear() {
	c.decoded.Clear()
	c.flipped.Clear()
}

// Close releases the cache's background goroutines.
func (c *Cache) Close() {
	c.decoded.Close()
	c.flipped.Close()
}

func imageCost(img *image.NRGBA) int64 {
	if n := int64(len(img.Pix)); n > 0 {
		return n
	}
	return 1
}
