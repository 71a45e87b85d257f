package model

import "github.com/cespare/xxhash/v2"

// Art is one authored raster image, kept in its encoded form.
// Art is immutable once created; replace it rather than editing Data.
type Art struct {
	Name string // source file name, informational
	Data []byte // encoded image bytes (PNG, TGA, ...)
	sum  uint64
}

// NewArt wraps encoded image bytes.
func NewArt(name string, data []byte) *Art {
	return &Art{Name: name, Data: data, sum: xxhash.Sum64(data)}
}

// Sum returns a content hash of Data, stable across identical images.
func (a *Art) Sum() uint64 {
	if a.sum != 0 {
		return a.sum
	}
	// Art built as a literal has no precomputed sum.
	return xxhash.Sum64(a.Data)
}
