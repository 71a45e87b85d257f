package project

import (
	"encoding/base64"
	"fmt"
	"image"
	"math"

	"github.com/goccy/go-json"

	"github.com/Faultbox/spritestudio/pkg/model"
	"github.com/Faultbox/spritestudio/pkg/rotation"
)

// UntitledAnimation is given to characters left without animations by a
// legacy migration.
const UntitledAnimation = "Untitled Animation"

const multiCharSuffix = " (multi-char)"

// Unmarshal parses a project file. Recoverable problems such as undecodable
// art or references to unknown parts are collected in Warnings; the affected
// slot stays empty or the placement dangles.
func Unmarshal(data []byte) (*Project, error) {
	var f fileProject
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidProject, err)
	}

	d := &decoder{}
	p := &Project{Version: f.Version, Name: f.Name}
	if len(f.Animations) > 0 {
		d.migrateAnimations(&f)
		p.Version = Version
		p.Migrated = true
	}
	migrateCanvas(&f)

	for _, fc := range f.Characters {
		if p.Character(fc.Name) != nil {
			d.warnf("character %q: duplicate name, skipped", fc.Name)
			continue
		}
		c, err := d.character(fc)
		if err != nil {
			return nil, fmt.Errorf("%w: character %q: %w", ErrInvalidProject, fc.Name, err)
		}
		p.Characters = append(p.Characters, c)
	}

	p.assignPlacementIDs()
	p.Warnings = d.warnings
	return p, nil
}

type decoder struct {
	warnings []string
}

func (d *decoder) warnf(format string, args ...any) {
	d.warnings = append(d.warnings, fmt.Sprintf(format, args...))
}

// migrateAnimations moves project-level animations onto the character their
// placements use. Animations spanning characters go to the first one
// referenced, renamed with a suffix; animations referencing none are dropped.
func (d *decoder) migrateAnimations(f *fileProject) {
	index := make(map[string]int, len(f.Characters))
	for i, c := range f.Characters {
		index[c.Name] = i
	}

	for _, anim := range f.Animations {
		var used []string
		seen := map[string]bool{}
		for _, fr := range anim.Frames {
			for _, pp := range fr.PlacedParts {
				if !seen[pp.CharacterName] {
					seen[pp.CharacterName] = true
					used = append(used, pp.CharacterName)
				}
			}
		}
		if len(used) == 0 {
			d.warnf("animation %q: references no character, dropped", anim.Name)
			continue
		}
		ci, ok := index[used[0]]
		if !ok {
			d.warnf("animation %q: character %q not found, dropped", anim.Name, used[0])
			continue
		}
		if len(used) > 1 {
			anim.Name += multiCharSuffix
		}
		f.Characters[ci].Animations = append(f.Characters[ci].Animations, anim)
	}
	f.Animations = nil

	for i := range f.Characters {
		if len(f.Characters[i].Animations) == 0 {
			f.Characters[i].Animations = []fileAnimation{{Name: UntitledAnimation, Frames: []fileFrame{{}}}}
		}
	}
}

// migrateCanvas hands a non-default project canvas to characters still on
// the default one.
func migrateCanvas(f *fileProject) {
	def := [2]int{model.DefaultCanvasSize.X, model.DefaultCanvasSize.Y}
	projectCanvas := def
	if f.CanvasSize != nil {
		projectCanvas = *f.CanvasSize
	}
	for i := range f.Characters {
		c := &f.Characters[i]
		canvas := def
		if c.CanvasSize != nil {
			canvas = *c.CanvasSize
		}
		if canvas == def && projectCanvas != def {
			canvas = projectCanvas
		}
		c.CanvasSize = &canvas
	}
	f.CanvasSize = nil
}

func (d *decoder) character(fc fileCharacter) (*model.Character, error) {
	c := model.NewCharacter(fc.Name)
	if fc.CanvasSize != nil {
		if err := c.SetCanvas(fc.CanvasSize[0], fc.CanvasSize[1]); err != nil {
			return nil, err
		}
	}

	for _, fp := range fc.Parts {
		d.part(c, fp)
	}
	for _, fa := range fc.Animations {
		d.animation(c, fa)
	}
	return c, nil
}

func (d *decoder) part(c *model.Character, fp filePart) {
	res := rotation.Res8
	for _, fs := range fp.States {
		if fs.RotationMode == modeDeg22_5 {
			res = rotation.Res16
		}
	}
	part, err := c.AddPart(fp.Name, res)
	if err != nil {
		d.warnf("character %q: part %q: %v, skipped", c.Name, fp.Name, err)
		return
	}
	part.DefaultZ = fp.DefaultZ

	for _, fs := range fp.States {
		st, err := part.AddState(fs.Name)
		if err != nil {
			d.warnf("part %q: state %q: %v, skipped", part.Name, fs.Name, err)
			continue
		}
		for _, fr := range fs.Rotations {
			if fr.ImageData == nil {
				continue
			}
			angle, ok := fromDegrees(res, fr.Angle)
			if !ok {
				d.warnf("part %q state %q: angle %d is not on the %s wheel, art dropped", part.Name, st.Name, fr.Angle, res)
				continue
			}
			data, err := base64.StdEncoding.DecodeString(*fr.ImageData)
			if err != nil {
				d.warnf("part %q state %q angle %s: bad image data: %v", part.Name, st.Name, angle, err)
				continue
			}
			name := fmt.Sprintf("%s/%s/%s", part.Name, st.Name, angle)
			if err := st.SetArt(angle, model.NewArt(name, data)); err != nil {
				d.warnf("part %q state %q: %v", part.Name, st.Name, err)
			}
		}
	}
}

func (d *decoder) animation(c *model.Character, fa fileAnimation) {
	anim, err := c.AddAnimation(fa.Name)
	if err != nil {
		d.warnf("character %q: animation %q: %v, skipped", c.Name, fa.Name, err)
		return
	}
	if fa.FPS != nil && *fa.FPS > 0 {
		anim.FPS = *fa.FPS
	}
	for name, z := range fa.ZOverrides {
		if part := c.PartByName(name); part != nil {
			anim.SetZ(part.ID, z)
		} else {
			d.warnf("animation %q: z override for unknown part %q dropped", anim.Name, name)
		}
	}

	for fi, ff := range fa.Frames {
		frame := anim.AddFrame()
		for name, z := range ff.ZOverrides {
			if part := c.PartByName(name); part != nil {
				frame.SetZ(part.ID, z)
			} else {
				d.warnf("animation %q frame %d: z override for unknown part %q dropped", anim.Name, fi, name)
			}
		}
		if r := ff.Reference; r != nil {
			ref := model.NewReferenceLayer(r.FilePath)
			ref.X, ref.Y = r.Position[0], r.Position[1]
			if r.Scale > 0 {
				ref.Scale = r.Scale
			}
			frame.Reference = ref
		}
		for _, fp := range ff.PlacedParts {
			frame.Place(d.placement(c, anim.Name, fi, fp))
		}
	}
}

func (d *decoder) placement(c *model.Character, anim string, frame int, fp filePlaced) *model.PlacedPart {
	var (
		id    model.PartID
		angle = rotation.Degrees(float64(fp.Rotation))
	)
	if part := c.PartByName(fp.PartName); part != nil {
		id = part.ID
		if a, ok := fromDegrees(part.Resolution, fp.Rotation); ok {
			angle = a
		}
	} else {
		d.warnf("animation %q frame %d: placement %d references unknown part %q", anim, frame, fp.ID, fp.PartName)
	}

	pp := model.NewPlacedPart(id, fp.StateName, angle)
	pp.ID = fp.ID
	if fp.LayerName != fp.PartName {
		pp.LayerName = fp.LayerName
	}
	pp.Offset = image.Pt(int(math.Round(fp.Position[0])), int(math.Round(fp.Position[1])))
	if fp.ZOverride != nil {
		pp.SetZ(*fp.ZOverride)
	}
	if fp.Visible != nil {
		pp.Visible = *fp.Visible
	}
	pp.Mirror = fp.Mirror
	return pp
}

// assignPlacementIDs sets NextPlacementID past the highest stored ID and
// gives placements without one a fresh ID.
func (p *Project) assignPlacementIDs() {
	var highest uint64
	p.eachPlacement(func(pp *model.PlacedPart) {
		if pp.ID > highest {
			highest = pp.ID
		}
	})
	p.NextPlacementID = highest + 1
	p.eachPlacement(func(pp *model.PlacedPart) {
		if pp.ID == 0 {
			pp.ID = p.NextID()
		}
	})
}

func (p *Project) eachPlacement(fn func(*model.PlacedPart)) {
	for _, c := range p.Characters {
		for _, a := range c.Animations {
			for _, f := range a.Frames {
				for _, pp := range f.Placements {
					fn(pp)
				}
			}
		}
	}
}

// degrees is the whole-degree form of a stored in the file.
func degrees(a rotation.Angle) int {
	return int(a) / 10
}

func fromDegrees(res rotation.Resolution, deg int) (rotation.Angle, bool) {
	for _, a := range res.Angles() {
		if degrees(a) == deg {
			return a, true
		}
	}
	return 0, false
}
