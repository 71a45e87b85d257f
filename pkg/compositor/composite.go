// Package compositor turns an animation frame into ordered draw operations
// and flattens them into a single image.
package compositor

import (
	"fmt"
	"sort"

	"github.com/Faultbox/spritestudio/pkg/model"
	"github.com/Faultbox/spritestudio/pkg/rotation"
)

// DrawOp is one resolved, ready-to-render layer.
type DrawOp struct {
	Placement uint64
	Part      model.PartID
	Layer     string
	Art       *model.Art
	Slot      rotation.Slot
	Mirrored  bool // final flip: resolver mirror XOR user mirror
	X, Y      int  // top-left on the canvas
	Z         int
	ZTier     model.ZTier
	Order     int // index of the placement in the frame, breaks z ties
}

// Less orders ops back to front.
func (op DrawOp) Less(other DrawOp) bool {
	if op.Z != other.Z {
		return op.Z < other.Z
	}
	return op.Order < other.Order
}

// Compositor resolves frames against a character. The zero value is usable
// and resolves rotations without caching.
type Compositor struct {
	rotations *rotation.Cache
	decoder   Decoder
}

// New returns a compositor. Either argument may be nil.
func New(rotations *rotation.Cache, decoder Decoder) *Compositor {
	return &Compositor{rotations: rotations, decoder: decoder}
}

// Composite returns the draw operations of one frame, back to front.
// Hidden placements are skipped. Any placement failure fails the whole frame
// with a *model.FrameError.
func (c *Compositor) Composite(ch *model.Character, anim *model.Animation, frameIndex int) ([]DrawOp, error) {
	frame, err := anim.Frame(frameIndex)
	if err != nil {
		return nil, &model.FrameError{Animation: anim.Name, Frame: frameIndex,
			Err: fmt.Errorf("%w: %d of %d", err, frameIndex, anim.FrameCount())}
	}

	ops := make([]DrawOp, 0, len(frame.Placements))
	for i, pp := range frame.Placements {
		if !pp.Visible {
			continue
		}
		op, err := c.resolve(ch, anim, frame, pp)
		if err != nil {
			return nil, &model.FrameError{Animation: anim.Name, Frame: frameIndex, Layer: layerName(ch, pp), Err: err}
		}
		op.Order = i
		ops = append(ops, op)
	}

	sort.SliceStable(ops, func(i, j int) bool { return ops[i].Less(ops[j]) })
	return ops, nil
}

func (c *Compositor) resolve(ch *model.Character, anim *model.Animation, frame *model.Frame, pp *model.PlacedPart) (DrawOp, error) {
	part, state, err := ch.Lookup(pp)
	if err != nil {
		return DrawOp{}, err
	}

	var slot rotation.Slot
	if c != nil && c.rotations != nil {
		slot, err = c.rotations.Resolve(state, part.Resolution, pp.Angle)
	} else {
		slot, err = rotation.Resolve(state, part.Resolution, pp.Angle)
	}
	if err != nil {
		return DrawOp{}, fmt.Errorf("part %q state %q: %w", part.Name, state.Name, err)
	}

	z, tier := model.ResolveZ(part, anim, frame, pp)
	return DrawOp{
		Placement: pp.ID,
		Part:      part.ID,
		Layer:     layerName(ch, pp),
		Art:       state.ArtAt(slot.SourceOrdinal),
		Slot:      slot,
		Mirrored:  slot.Mirrored() != pp.Mirror,
		X:         pp.Offset.X,
		Y:         pp.Offset.Y,
		Z:         z,
		ZTier:     tier,
	}, nil
}

func layerName(ch *model.Character, pp *model.PlacedPart) string {
	if pp.LayerName != "" {
		return pp.LayerName
	}
	if p, ok := ch.Part(pp.Part); ok {
		return p.Name
	}
	return fmt.Sprintf("part#%d", pp.Part)
}

// Composite resolves a frame without a rotation cache.
func Composite(ch *model.Character, anim *model.Animation, frameIndex int) ([]DrawOp, error) {
	var c Compositor
	return c.Composite(ch, anim, frameIndex)
}
