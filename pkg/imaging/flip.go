package imaging

import "image"

// FlipH returns a horizontally mirrored copy of src. Pixels are moved, never
// resampled.
func FlipH(src *image.NRGBA) *image.NRGBA {
	b := src.Bounds()
	w, h := b.Dx(), b.Dy()
	dst := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		srcRow := src.Pix[src.PixOffset(b.Min.X, b.Min.Y+y):]
		dstRow := dst.Pix[y*dst.Stride:]
		for x := 0; x < w; x++ {
			s := (w - 1 - x) * 4
			d := x * 4
			copy(dstRow[d:d+4], srcRow[s:s+4])
		}
	}
	return dst
}
