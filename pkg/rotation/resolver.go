package rotation

import (
	"errors"
	"fmt"
)

// Resolution errors.
var (
	ErrInvalidAngle      = errors.New("invalid angle")
	ErrUnresolvableAngle = errors.New("unresolvable angle")
	ErrInvalidResolution = errors.New("invalid angle resolution")
)

// Source reports which canonical slots carry authored art.
type Source interface {
	HasArt(ordinal int) bool
}

// Mode describes how a canonical angle is satisfied.
type Mode uint8

const (
	// Missing means neither the angle nor its mirror partner is authored.
	Missing Mode = iota
	// Direct means art is authored at the angle itself.
	Direct
	// Mirrored means the mirror partner's art is flipped horizontally.
	Mirrored
)

// String returns a lowercase mode name.
func (m Mode) String() string {
	switch m {
	case Direct:
		return "direct"
	case Mirrored:
		return "mirrored"
	default:
		return "missing"
	}
}

// Slot is the resolution of one requested angle.
type Slot struct {
	Angle         Angle // requested angle
	Source        Angle // angle whose art is drawn
	SourceOrdinal int   // slot index of Source
	Mode          Mode
}

// Mirrored reports whether the art must be flipped horizontally.
func (s Slot) Mirrored() bool {
	return s.Mode == Mirrored
}

// Resolve picks the authored slot that renders angle.
//
// Direct art wins; otherwise the mirror partner is used flipped. Self-mirrored
// angles (0°, 180°) can only be satisfied directly.
func Resolve(src Source, res Resolution, angle Angle) (Slot, error) {
	if !res.Valid() {
		return Slot{}, fmt.Errorf("%w: %d", ErrInvalidResolution, uint8(res))
	}
	ord, ok := res.Ordinal(angle)
	if !ok {
		return Slot{}, fmt.Errorf("%w: %s° is not on the %s lattice", ErrInvalidAngle, angle, res)
	}
	if src != nil && src.HasArt(ord) {
		return Slot{Angle: angle, Source: angle, SourceOrdinal: ord, Mode: Direct}, nil
	}

	partner := MirrorPartner(angle)
	if partner != angle && src != nil {
		// The partner of a canonical angle is always canonical.
		pord, _ := res.Ordinal(partner)
		if src.HasArt(pord) {
			return Slot{Angle: angle, Source: partner, SourceOrdinal: pord, Mode: Mirrored}, nil
		}
	}
	return Slot{Angle: angle, Source: angle, SourceOrdinal: ord, Mode: Missing},
		fmt.Errorf("%w: no art at %s° or its mirror %s°", ErrUnresolvableAngle, angle, partner)
}

// Wheel resolves every canonical angle of res. Unresolvable angles are
// reported with Mode Missing instead of an error.
func Wheel(src Source, res Resolution) []Slot {
	angles := res.Angles()
	slots := make([]Slot, len(angles))
	for i, a := range angles {
		slots[i], _ = Resolve(src, res, a)
	}
	return slots
}

// MissingAngles returns the canonical angles that cannot be rendered.
func MissingAngles(src Source, res Resolution) []Angle {
	var out []Angle
	for _, s := range Wheel(src, res) {
		if s.Mode == Missing {
			out = append(out, s.Angle)
		}
	}
	return out
}
