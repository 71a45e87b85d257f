package model

// ZTier names the tier a resolved z value came from.
type ZTier uint8

const (
	ZTierCharacter ZTier = iota // Part.DefaultZ
	ZTierAnimation              // Animation.ZOverrides
	ZTierFrame                  // Frame.ZOverrides
	ZTierPlacement              // PlacedPart.ZOverride
)

// String returns the tier name.
func (t ZTier) String() string {
	switch t {
	case ZTierAnimation:
		return "animation"
	case ZTierFrame:
		return "frame"
	case ZTierPlacement:
		return "placement"
	default:
		return "character"
	}
}

// ResolveZ walks the override chain from the most specific tier down and
// returns the first value set. anim and frame may be nil.
func ResolveZ(part *Part, anim *Animation, frame *Frame, p *PlacedPart) (int, ZTier) {
	if p != nil && p.ZOverride != nil {
		return *p.ZOverride, ZTierPlacement
	}
	if frame != nil {
		if z, ok := frame.ZOverrides[part.ID]; ok {
			return z, ZTierFrame
		}
	}
	if anim != nil {
		if z, ok := anim.ZOverrides[part.ID]; ok {
			return z, ZTierAnimation
		}
	}
	return part.DefaultZ, ZTierCharacter
}
