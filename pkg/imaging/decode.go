// Package imaging decodes authored art, caches decoded pixels and encodes atlases.
package imaging

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/draw"
	"image/gif"
	"image/jpeg"
	"image/png"
	"io"

	"github.com/ftrvxmtrx/tga"
	"golang.org/x/image/bmp"
	"golang.org/x/image/webp"
)

// Decode errors.
var (
	ErrEmptyImage = errors.New("empty image data")
)

type decoder struct {
	name   string
	magic  string // '?' matches any byte
	decode func(io.Reader) (image.Image, error)
}

// The tga package registers itself with image.RegisterFormat under an empty
// magic, which matches any input, so image.Decode cannot be used here.
var decoders = []decoder{
	{"png", "\x89PNG\r\n\x1a\n", png.Decode},
	{"gif", "GIF8?a", gif.Decode},
	{"jpeg", "\xff\xd8", jpeg.Decode},
	{"bmp", "BM????\x00\x00\x00\x00", bmp.Decode},
	{"webp", "RIFF????WEBPVP8", webp.Decode},
}

func matchMagic(magic string, data []byte) bool {
	if len(data) < len(magic) {
		return false
	}
	for i := 0; i < len(magic); i++ {
		if magic[i] != '?' && magic[i] != data[i] {
			return false
		}
	}
	return true
}

// Decode decodes PNG, GIF, JPEG, BMP, WebP or TGA into straight-alpha NRGBA
// with its origin at (0,0). TGA has no magic number and is tried last.
func Decode(data []byte) (*image.NRGBA, string, error) {
	if len(data) == 0 {
		return nil, "", ErrEmptyImage
	}
	for _, d := range decoders {
		if !matchMagic(d.magic, data) {
			continue
		}
		img, err := d.decode(bytes.NewReader(data))
		if err != nil {
			return nil, "", fmt.Errorf("decoding %s image: %w", d.name, err)
		}
		return ToNRGBA(img), d.name, nil
	}
	img, err := tga.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, "", fmt.Errorf("decoding image: %w", image.ErrFormat)
	}
	return ToNRGBA(img), "tga", nil
}

// ToNRGBA converts src to NRGBA anchored at (0,0). An NRGBA already anchored
// there is returned as is.
func ToNRGBA(src image.Image) *image.NRGBA {
	b := src.Bounds()
	if n, ok := src.(*image.NRGBA); ok && b.Min == (image.Point{}) {
		return n
	}
	dst := image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(dst, dst.Bounds(), src, b.Min, draw.Src)
	return dst
}
