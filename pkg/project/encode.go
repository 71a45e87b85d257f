package project

import (
	"encoding/base64"
	"fmt"
	"math"
	"strconv"

	"github.com/goccy/go-json"

	"github.com/Faultbox/spritestudio/pkg/model"
	"github.com/Faultbox/spritestudio/pkg/rotation"
)

// Marshal encodes the project as indented JSON.
func (p *Project) Marshal() ([]byte, error) {
	f := fileProject{Version: Version, Name: p.Name, Characters: make([]fileCharacter, 0, len(p.Characters))}
	for _, c := range p.Characters {
		f.Characters = append(f.Characters, encodeCharacter(c))
	}
	data, err := json.MarshalIndent(f, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encoding project: %w", err)
	}
	return data, nil
}

func encodeCharacter(c *model.Character) fileCharacter {
	canvas := [2]int{c.Canvas.X, c.Canvas.Y}
	fc := fileCharacter{
		Name:       c.Name,
		Parts:      make([]filePart, 0),
		Animations: make([]fileAnimation, 0, len(c.Animations)),
		CanvasSize: &canvas,
	}
	for _, part := range c.Parts() {
		fc.Parts = append(fc.Parts, encodePart(part))
	}

	partName := func(id model.PartID) string {
		if p, ok := c.Part(id); ok {
			return p.Name
		}
		return ""
	}
	zNames := func(z map[model.PartID]int) map[string]int {
		out := make(map[string]int, len(z))
		for id, v := range z {
			if name := partName(id); name != "" {
				out[name] = v
			}
		}
		return out
	}

	for _, a := range c.Animations {
		fa := fileAnimation{Name: a.Name, ZOverrides: zNames(a.ZOverrides), Frames: make([]fileFrame, 0, len(a.Frames))}
		if a.FPS > 0 {
			fps := a.FPS
			fa.FPS = &fps
		}
		duration := int(math.Round(1000 / a.EffectiveFPS(0)))
		for _, fr := range a.Frames {
			ff := fileFrame{DurationMS: duration, ZOverrides: zNames(fr.ZOverrides), PlacedParts: make([]filePlaced, 0, len(fr.Placements))}
			if r := fr.Reference; r != nil {
				ff.Reference = &fileReference{FilePath: r.Path, Position: [2]float64{r.X, r.Y}, Scale: r.Scale}
			}
			for _, pp := range fr.Placements {
				name := partName(pp.Part)
				layer := pp.LayerName
				if layer == "" {
					layer = name
				}
				visible := pp.Visible
				ff.PlacedParts = append(ff.PlacedParts, filePlaced{
					ID:            pp.ID,
					CharacterName: c.Name,
					PartName:      name,
					LayerName:     layer,
					StateName:     pp.State,
					Rotation:      degrees(pp.Angle),
					Position:      [2]float64{float64(pp.Offset.X), float64(pp.Offset.Y)},
					ZOverride:     pp.ZOverride,
					Visible:       &visible,
					Mirror:        pp.Mirror,
				})
			}
			fa.Frames = append(fa.Frames, ff)
		}
		fc.Animations = append(fc.Animations, fa)
	}
	return fc
}

func encodePart(part *model.Part) filePart {
	mode := modeDeg45
	if part.Resolution == rotation.Res16 {
		mode = modeDeg22_5
	}
	fp := filePart{Name: part.Name, DefaultZ: part.DefaultZ, States: make([]fileState, 0)}
	for _, st := range part.States() {
		fs := fileState{Name: st.Name, RotationMode: mode, Rotations: make(map[string]fileRotation)}
		for _, a := range part.Resolution.Angles() {
			r := fileRotation{Angle: degrees(a)}
			if art := st.Art(a); art != nil {
				s := base64.StdEncoding.EncodeToString(art.Data)
				r.ImageData = &s
			}
			fs.Rotations[strconv.Itoa(r.Angle)] = r
		}
		fp.States = append(fp.States, fs)
	}
	return fp
}
