package imaging

import (
	"errors"
	"fmt"
	"image"
	"image/png"
	"io"
	"strings"

	"github.com/HugoSmits86/nativewebp"
)

// ErrUnknownFormat is returned for an unsupported atlas format.
var ErrUnknownFormat = errors.New("unknown image format")

// Format is an atlas container format.
type Format string

const (
	FormatPNG  Format = "png"
	FormatWebP Format = "webp"
)

// ParseFormat accepts "png" or "webp" (case-insensitive, optional leading dot).
// An empty string selects PNG.
func ParseFormat(s string) (Format, error) {
	switch strings.TrimPrefix(strings.ToLower(strings.TrimSpace(s)), ".") {
	case "", "png":
		return FormatPNG, nil
	case "webp":
		return FormatWebP, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownFormat, s)
	}
}

// Ext returns the file extension including the dot.
func (f Format) Ext() string {
	if f == FormatWebP {
		return ".webp"
	}
	return ".png"
}

// Encode writes img in the given format. Both formats are lossless.
func Encode(w io.Writer, img image.Image, f Format) error {
	switch f {
	case FormatPNG, "":
		enc := png.Encoder{CompressionLevel: png.BestCompression}
		if err := enc.Encode(w, img); err != nil {
			return fmt.Errorf("encoding PNG: %w", err)
		}
	case FormatWebP:
		if err := nativewebp.Encode(w, img, nil); err != nil {
			return fmt.Errorf("encoding WebP: %w", err)
		}
	default:
		return fmt.Errorf("%w: %q", ErrUnknownFormat, string(f))
	}
	return nil
}
