package model

import (
	"fmt"

	"github.com/Faultbox/spritestudio/pkg/rotation"
)

// PartID is a stable handle into a character's part arena. Zero is never assigned.
type PartID uint32

// PartState is one visual variant of a part ("straight", "flap1", ...) with
// art for a sparse subset of the part's canonical angles.
type PartState struct {
	Name string

	res   rotation.Resolution
	slots [rotation.MaxSlots]*Art
	rev   uint64
}

func newPartState(name string, res rotation.Resolution) *PartState {
	return &PartState{Name: name, res: res}
}

// Resolution returns the angle resolution inherited from the owning part.
func (s *PartState) Resolution() rotation.Resolution {
	return s.res
}

// Revision increments on every change to the authored art set.
func (s *PartState) Revision() uint64 {
	return s.rev
}

// HasArt reports whether slot ordinal carries authored art.
func (s *PartState) HasArt(ordinal int) bool {
	return ordinal >= 0 && ordinal < int(s.res) && s.slots[ordinal] != nil
}

// ArtAt returns the art at slot ordinal, or nil.
func (s *PartState) ArtAt(ordinal int) *Art {
	if !s.HasArt(ordinal) {
		return nil
	}
	return s.slots[ordinal]
}

// Art returns the art authored at angle, or nil.
func (s *PartState) Art(angle rotation.Angle) *Art {
	ord, ok := s.res.Ordinal(angle)
	if !ok {
		return nil
	}
	return s.slots[ord]
}

// SetArt authors art at a canonical angle. A nil art clears the slot.
func (s *PartState) SetArt(angle rotation.Angle, art *Art) error {
	ord, ok := s.res.Ordinal(angle)
	if !ok {
		return fmt.Errorf("%w: %s° is not on the %s lattice", rotation.ErrInvalidAngle, angle, s.res)
	}
	s.slots[ord] = art
	s.rev++
	return nil
}

// ClearArt removes the art at angle.
func (s *PartState) ClearArt(angle rotation.Angle) error {
	return s.SetArt(angle, nil)
}

// Authored returns the angles that carry art, ascending.
func (s *PartState) Authored() []rotation.Angle {
	var out []rotation.Angle
	for i := 0; i < int(s.res); i++ {
		if s.slots[i] != nil {
			out = append(out, s.res.AngleAt(i))
		}
	}
	return out
}

// Resolve returns the art that renders angle and whether it must be mirrored.
func (s *PartState) Resolve(angle rotation.Angle) (*Art, bool, error) {
	slot, err := rotation.Resolve(s, s.res, angle)
	if err != nil {
		return nil, false, err
	}
	return s.slots[slot.SourceOrdinal], slot.Mirrored(), nil
}

// Part is a named reusable visual element of a character.
type Part struct {
	ID         PartID
	Name       string
	Resolution rotation.Resolution
	DefaultZ   int // character-level z tier

	states []*PartState
}

// AddState creates a new empty state. State names are unique within a part.
func (p *Part) AddState(name string) (*PartState, error) {
	if name == "" {
		return nil, fmt.Errorf("%w: state of part %q", ErrEmptyName, p.Name)
	}
	if p.State(name) != nil {
		return nil, fmt.Errorf("%w: %q in part %q", ErrDuplicateState, name, p.Name)
	}
	st := newPartState(name, p.Resolution)
	p.states = append(p.states, st)
	return st, nil
}

// State returns the state with the given name, or nil.
func (p *Part) State(name string) *PartState {
	for _, st := range p.states {
		if st.Name == name {
			return st
		}
	}
	return nil
}

// States returns the part's states in creation order.
func (p *Part) States() []*PartState {
	return p.states
}

func (p *Part) removeState(name string) bool {
	for i, st := range p.states {
		if st.Name == name {
			p.states = append(p.states[:i], p.states[i+1:]...)
			return true
		}
	}
	return false
}
