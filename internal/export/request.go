// Package export runs spritesheet export jobs: it renders the selected
// animation frames on a worker pool, packs the survivors into one atlas and
// commits atlas and metadata together.
package export

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/Faultbox/spritestudio/pkg/model"
	"github.com/Faultbox/spritestudio/pkg/spritesheet"
)

// ErrInvalidRange is returned for a selection outside its animation.
var ErrInvalidRange = errors.New("invalid frame range")

// Selection picks frames [Start, End) of one animation. End 0 means through
// the last frame.
type Selection struct {
	Animation string `yaml:"animation"`
	Start     int    `yaml:"start,omitempty"`
	End       int    `yaml:"end,omitempty"`
}

// Request describes one export job.
type Request struct {
	Character  string             `yaml:"character"`
	Selections []Selection        `yaml:"selections"`
	Layout     spritesheet.Layout `yaml:"layout"`
	Format     string             `yaml:"format,omitempty"`
	Output     string             `yaml:"output,omitempty"` // atlas path
	Workers    int                `yaml:"workers,omitempty"`
}

// LoadRequest reads a YAML request file.
func LoadRequest(path string) (Request, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Request{}, fmt.Errorf("reading request: %w", err)
	}
	var req Request
	if err := yaml.Unmarshal(data, &req); err != nil {
		return Request{}, fmt.Errorf("parsing request %s: %w", path, err)
	}
	return req, nil
}

// AllAnimations selects every frame of every animation of ch, in order.
func AllAnimations(ch *model.Character) []Selection {
	sel := make([]Selection, 0, len(ch.Animations))
	for _, a := range ch.Animations {
		sel = append(sel, Selection{Animation: a.Name})
	}
	return sel
}

// item is one unit of work: a single animation frame.
type item struct {
	anim  *model.Animation
	index int
}

// plan expands selections into the ordered work queue. Unknown animations
// and bad ranges reject the whole request before anything renders.
func plan(ch *model.Character, sels []Selection) ([]item, error) {
	var items []item
	for _, s := range sels {
		anim := ch.Animation(s.Animation)
		if anim == nil {
			return nil, fmt.Errorf("%w: %q", model.ErrAnimationNotFound, s.Animation)
		}
		n := anim.FrameCount()
		end := s.End
		if end == 0 {
			end = n
		}
		if s.Start < 0 || s.Start > end || end > n {
			return nil, fmt.Errorf("%w: %q [%d, %d) of %d frames", ErrInvalidRange, s.Animation, s.Start, s.End, n)
		}
		for i := s.Start; i < end; i++ {
			items = append(items, item{anim: anim, index: i})
		}
	}
	if len(items) == 0 {
		return nil, spritesheet.ErrEmptyExportJob
	}
	return items, nil
}

// SanitizeName maps a name to a file-name-safe form. Letters, digits, '_'
// and '-' are kept; everything else becomes '_'.
func SanitizeName(name string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_', r == '-':
			return r
		}
		return '_'
	}, name)
}
