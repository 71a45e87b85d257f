// Package model holds the in-memory character graph the engine renders from.
//
// A Character owns its parts and animations. Placements refer to parts by
// PartID handle only, so the graph has no ownership cycles. Mutation must not
// overlap any in-flight render; concurrent readers are safe.
package model

import (
	"fmt"
	"image"

	"github.com/Faultbox/spritestudio/pkg/rotation"
)

// DefaultCanvasSize is the canvas of a new character.
var DefaultCanvasSize = image.Pt(64, 64)

// Character is a named collection of parts and the animations built from them.
type Character struct {
	Name       string
	Canvas     image.Point // width, height shared by all animations
	Animations []*Animation

	parts    map[PartID]*Part
	order    []PartID
	nextPart PartID
}

// NewCharacter returns an empty character with the default canvas.
func NewCharacter(name string) *Character {
	return &Character{
		Name:     name,
		Canvas:   DefaultCanvasSize,
		parts:    make(map[PartID]*Part),
		nextPart: 1,
	}
}

// SetCanvas changes the canvas size.
func (c *Character) SetCanvas(w, h int) error {
	if w <= 0 || h <= 0 {
		return fmt.Errorf("%w: %dx%d", ErrInvalidCanvas, w, h)
	}
	c.Canvas = image.Pt(w, h)
	return nil
}

// AddPart creates a part. Part names are unique within a character.
func (c *Character) AddPart(name string, res rotation.Resolution) (*Part, error) {
	if name == "" {
		return nil, fmt.Errorf("%w: part", ErrEmptyName)
	}
	if !res.Valid() {
		return nil, fmt.Errorf("%w: %d", rotation.ErrInvalidResolution, uint8(res))
	}
	if c.PartByName(name) != nil {
		return nil, fmt.Errorf("%w: %q", ErrDuplicatePart, name)
	}
	if c.parts == nil {
		c.parts = make(map[PartID]*Part)
	}
	if c.nextPart == 0 {
		c.nextPart = 1
	}
	p := &Part{ID: c.nextPart, Name: name, Resolution: res}
	c.nextPart++
	c.parts[p.ID] = p
	c.order = append(c.order, p.ID)
	return p, nil
}

// Part returns the part behind a handle.
func (c *Character) Part(id PartID) (*Part, bool) {
	p, ok := c.parts[id]
	return p, ok
}

// PartByName returns the part with the given name, or nil.
func (c *Character) PartByName(name string) *Part {
	for _, id := range c.order {
		if p := c.parts[id]; p.Name == name {
			return p
		}
	}
	return nil
}

// Parts returns all parts in creation order.
func (c *Character) Parts() []*Part {
	out := make([]*Part, 0, len(c.order))
	for _, id := range c.order {
		out = append(out, c.parts[id])
	}
	return out
}

// PlacementRef locates one placement inside the character's animations.
type PlacementRef struct {
	Animation string
	Frame     int
	Placement *PlacedPart
}

// References returns every placement that uses part id.
func (c *Character) References(id PartID) []PlacementRef {
	var refs []PlacementRef
	for _, anim := range c.Animations {
		for fi, f := range anim.Frames {
			for _, p := range f.Placements {
				if p.Part == id {
					refs = append(refs, PlacementRef{Animation: anim.Name, Frame: fi, Placement: p})
				}
			}
		}
	}
	return refs
}

// DeletePart frees a part's arena slot. It is rejected, leaving the
// character untouched, while any placement still references the part.
func (c *Character) DeletePart(id PartID) error {
	p, ok := c.parts[id]
	if !ok {
		return fmt.Errorf("%w: id %d", ErrPartNotFound, id)
	}
	if refs := c.References(id); len(refs) > 0 {
		first := refs[0]
		return fmt.Errorf("%w: %q is placed %d time(s), first in animation %q frame %d",
			ErrPartInUse, p.Name, len(refs), first.Animation, first.Frame)
	}

	delete(c.parts, id)
	for i, oid := range c.order {
		if oid == id {
			c.order = append(c.order[:i], c.order[i+1:]...)
			break
		}
	}
	for _, anim := range c.Animations {
		delete(anim.ZOverrides, id)
		for _, f := range anim.Frames {
			delete(f.ZOverrides, id)
		}
	}
	return nil
}

// DeleteState removes a part state, rejected while any placement uses it.
func (c *Character) DeleteState(id PartID, state string) error {
	p, ok := c.parts[id]
	if !ok {
		return fmt.Errorf("%w: id %d", ErrPartNotFound, id)
	}
	if p.State(state) == nil {
		return fmt.Errorf("%w: %q in part %q", ErrStateNotFound, state, p.Name)
	}
	for _, ref := range c.References(id) {
		if ref.Placement.State == state {
			return fmt.Errorf("%w: %q/%q in animation %q frame %d",
				ErrStateInUse, p.Name, state, ref.Animation, ref.Frame)
		}
	}
	p.removeState(state)
	return nil
}

// AddAnimation creates an animation. Animation names are unique within a character.
func (c *Character) AddAnimation(name string) (*Animation, error) {
	if name == "" {
		return nil, fmt.Errorf("%w: animation", ErrEmptyName)
	}
	if c.Animation(name) != nil {
		return nil, fmt.Errorf("%w: %q", ErrDuplicateAnimation, name)
	}
	a := NewAnimation(name)
	c.Animations = append(c.Animations, a)
	return a, nil
}

// Animation returns the animation with the given name, or nil.
func (c *Character) Animation(name string) *Animation {
	for _, a := range c.Animations {
		if a.Name == name {
			return a
		}
	}
	return nil
}

// RemoveAnimation deletes the animation with the given name.
func (c *Character) RemoveAnimation(name string) error {
	for i, a := range c.Animations {
		if a.Name == name {
			c.Animations = append(c.Animations[:i], c.Animations[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("%w: %q", ErrAnimationNotFound, name)
}

// Validate checks every placement against the part arena: the part must
// exist, the state must exist and the angle must be canonical. Art coverage
// is not checked; missing art is reported per frame at render time.
func (c *Character) Validate() error {
	if c.Canvas.X <= 0 || c.Canvas.Y <= 0 {
		return fmt.Errorf("%w: %dx%d", ErrInvalidCanvas, c.Canvas.X, c.Canvas.Y)
	}
	for _, anim := range c.Animations {
		for fi, f := range anim.Frames {
			for _, pp := range f.Placements {
				if err := c.checkPlacement(pp); err != nil {
					return &FrameError{Animation: anim.Name, Frame: fi, Layer: pp.LayerName, Err: err}
				}
			}
		}
	}
	return nil
}

// Lookup returns the part and state a placement refers to.
func (c *Character) Lookup(pp *PlacedPart) (*Part, *PartState, error) {
	p, ok := c.parts[pp.Part]
	if !ok {
		return nil, nil, fmt.Errorf("%w: part id %d", ErrDanglingPartReference, pp.Part)
	}
	st := p.State(pp.State)
	if st == nil {
		return p, nil, fmt.Errorf("%w: %q in part %q", ErrStateNotFound, pp.State, p.Name)
	}
	return p, st, nil
}

func (c *Character) checkPlacement(pp *PlacedPart) error {
	p, _, err := c.Lookup(pp)
	if err != nil {
		return err
	}
	if _, ok := p.Resolution.Ordinal(pp.Angle); !ok {
		return fmt.Errorf("%w: %s° for part %q (%s)", rotation.ErrInvalidAngle, pp.Angle, p.Name, p.Resolution)
	}
	return nil
}
