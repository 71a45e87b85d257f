// Package rotation resolves pre-drawn rotation art for a part state.
//
// Art is authored at a fixed set of canonical angles. Missing angles may be
// synthesized by horizontally mirroring the art of their mirror partner; the
// package never interpolates or resamples pixels.
package rotation

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Angle is a rotation in tenths of a degree, normalized to [0, 3600).
// Tenths keep the 16-point lattice (22.5° steps) exact.
type Angle uint16

// FullTurn is one full rotation (360°).
const FullTurn Angle = 3600

// MaxSlots is the number of canonical angles in the finest resolution.
const MaxSlots = 16

// Degrees converts a value in degrees to the nearest Angle.
func Degrees(deg float64) Angle {
	t := int(math.Round(deg * 10))
	t %= int(FullTurn)
	if t < 0 {
		t += int(FullTurn)
	}
	return Angle(t)
}

// ParseAngle parses a degree value such as "45" or "22.5".
func ParseAngle(s string) (Angle, error) {
	s = strings.TrimSuffix(strings.TrimSpace(s), "°")
	deg, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidAngle, s)
	}
	return Degrees(deg), nil
}

// Degrees returns the angle in degrees.
func (a Angle) Degrees() float64 {
	return float64(a) / 10
}

// String returns the angle in degrees, e.g. "45" or "337.5".
func (a Angle) String() string {
	return strconv.FormatFloat(a.Degrees(), 'f', -1, 64)
}

// MirrorPartner returns the angle whose horizontally flipped art stands in for a.
// Formula: (360 - a) mod 360.
func MirrorPartner(a Angle) Angle {
	return (FullTurn - a%FullTurn) % FullTurn
}

// SelfMirrored reports whether a is its own mirror partner (0° and 180°).
// Such angles face the viewer head-on or away and must be authored directly.
func (a Angle) SelfMirrored() bool {
	return MirrorPartner(a) == a%FullTurn
}

// Resolution is the number of canonical angles a part is authored at.
type Resolution uint8

const (
	// Res8 is the 8-point set {0, 45, ..., 315}.
	Res8 Resolution = 8
	// Res16 is the 16-point set {0, 22.5, ..., 337.5}.
	Res16 Resolution = 16
)

// Valid reports whether r is a supported resolution.
func (r Resolution) Valid() bool {
	return r == Res8 || r == Res16
}

// Step returns the spacing between neighbouring canonical angles.
func (r Resolution) Step() Angle {
	if !r.Valid() {
		return 0
	}
	return FullTurn / Angle(r)
}

// Angles returns the canonical angles in ascending order.
func (r Resolution) Angles() []Angle {
	if !r.Valid() {
		return nil
	}
	out := make([]Angle, int(r))
	for i := range out {
		out[i] = r.AngleAt(i)
	}
	return out
}

// Ordinal returns the slot index of a within r.
// ok is false when a is not canonical for r.
func (r Resolution) Ordinal(a Angle) (ordinal int, ok bool) {
	step := r.Step()
	if step == 0 || a >= FullTurn || a%step != 0 {
		return 0, false
	}
	return int(a / step), true
}

// AngleAt returns the canonical angle at slot index ordinal.
func (r Resolution) AngleAt(ordinal int) Angle {
	return Angle(ordinal) * r.Step()
}

// String returns "8-point" or "16-point".
func (r Resolution) String() string {
	if !r.Valid() {
		return fmt.Sprintf("Resolution(%d)", uint8(r))
	}
	return fmt.Sprintf("%d-point", uint8(r))
}

// ParseResolution accepts 8 or 16 (optionally suffixed with "-point").
func ParseResolution(s string) (Resolution, error) {
	n, err := strconv.Atoi(strings.TrimSuffix(strings.TrimSpace(s), "-point"))
	if err != nil || (n != int(Res8) && n != int(Res16)) {
		return 0, fmt.Errorf("%w: %q", ErrInvalidResolution, s)
	}
	return Resolution(n), nil
}
