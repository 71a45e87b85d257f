package compositor

import (
	"fmt"
	"image"

	"golang.org/x/image/draw"

	"github.com/Faultbox/spritestudio/pkg/imaging"
	"github.com/Faultbox/spritestudio/pkg/model"
	"github.com/Faultbox/spritestudio/pkg/rotation"
)

// Decoder turns authored art into pixels.
type Decoder interface {
	Decode(art *model.Art) (*image.NRGBA, error)
	DecodeMirrored(art *model.Art) (*image.NRGBA, error)
}

// plainDecoder decodes on every call.
type plainDecoder struct{}

func (plainDecoder) Decode(art *model.Art) (*image.NRGBA, error) {
	if art == nil {
		return nil, imaging.ErrEmptyImage
	}
	img, _, err := imaging.Decode(art.Data)
	return img, err
}

func (d plainDecoder) DecodeMirrored(art *model.Art) (*image.NRGBA, error) {
	img, err := d.Decode(art)
	if err != nil {
		return nil, err
	}
	return imaging.FlipH(img), nil
}

// Render paints ops onto a transparent canvas in order, straight alpha over.
// Art extending past the canvas is clipped. An art decode failure makes the
// layer unresolvable.
func Render(ops []DrawOp, canvas image.Point, dec Decoder) (*image.NRGBA, error) {
	if canvas.X <= 0 || canvas.Y <= 0 {
		return nil, fmt.Errorf("%w: %dx%d", model.ErrInvalidCanvas, canvas.X, canvas.Y)
	}
	if dec == nil {
		dec = plainDecoder{}
	}

	dst := image.NewNRGBA(image.Rect(0, 0, canvas.X, canvas.Y))
	for _, op := range ops {
		var (
			src *image.NRGBA
			err error
		)
		if op.Mirrored {
			src, err = dec.DecodeMirrored(op.Art)
		} else {
			src, err = dec.Decode(op.Art)
		}
		if err != nil {
			return nil, fmt.Errorf("%w: layer %q art at %s°: %w", rotation.ErrUnresolvableAngle, op.Layer, op.Slot.Source, err)
		}

		r := src.Bounds().Sub(src.Bounds().Min).Add(image.Pt(op.X, op.Y))
		// draw clips r against dst bounds.
		draw.Draw(dst, r, src, src.Bounds().Min, draw.Over)
	}
	return dst, nil
}

// RenderFrame composites and renders one frame on the character's canvas.
func (c *Compositor) RenderFrame(ch *model.Character, anim *model.Animation, frameIndex int) (*image.NRGBA, error) {
	ops, err := c.Composite(ch, anim, frameIndex)
	if err != nil {
		return nil, err
	}
	var dec Decoder
	if c != nil {
		dec = c.decoder
	}
	img, err := Render(ops, ch.Canvas, dec)
	if err != nil {
		return nil, &model.FrameError{Animation: anim.Name, Frame: frameIndex, Err: err}
	}
	return img, nil
}
