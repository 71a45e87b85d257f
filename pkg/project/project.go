// Package project reads and writes project files: every character of a
// session with its parts, authored art and animations, stored as JSON with
// base64 PNG art.
//
// Files written by older versions keep their animations at project level;
// they are moved onto characters on load.
package project

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/Faultbox/spritestudio/pkg/model"
)

// Version is written into every saved file.
const Version = "2.0"

// Project errors.
var (
	ErrInvalidProject     = errors.New("invalid project file")
	ErrDuplicateCharacter = errors.New("duplicate character name")
	ErrCharacterNotFound  = errors.New("character not found")
)

// Project is the unit of persistence.
type Project struct {
	Version    string
	Name       string
	Characters []*model.Character

	// NextPlacementID is the next free placement ID across all characters.
	NextPlacementID uint64
	// Migrated is set when a legacy file was upgraded during load.
	Migrated bool
	// Warnings lists recoverable problems found during load.
	Warnings []string
}

// New returns an empty project.
func New(name string) *Project {
	return &Project{Version: Version, Name: name, NextPlacementID: 1}
}

// Character returns the character with the given name, or nil.
func (p *Project) Character(name string) *model.Character {
	for _, c := range p.Characters {
		if c.Name == name {
			return c
		}
	}
	return nil
}

// Lookup is Character with an error for the missing case. An empty name
// selects the only character of a single-character project.
func (p *Project) Lookup(name string) (*model.Character, error) {
	if name == "" && len(p.Characters) == 1 {
		return p.Characters[0], nil
	}
	if c := p.Character(name); c != nil {
		return c, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrCharacterNotFound, name)
}

// AddCharacter creates a character with the default canvas.
func (p *Project) AddCharacter(name string) (*model.Character, error) {
	if name == "" {
		return nil, fmt.Errorf("%w: character", model.ErrEmptyName)
	}
	if p.Character(name) != nil {
		return nil, fmt.Errorf("%w: %q", ErrDuplicateCharacter, name)
	}
	c := model.NewCharacter(name)
	p.Characters = append(p.Characters, c)
	return c, nil
}

// NextID hands out a project-unique placement ID.
func (p *Project) NextID() uint64 {
	if p.NextPlacementID == 0 {
		p.NextPlacementID = 1
	}
	id := p.NextPlacementID
	p.NextPlacementID++
	return id
}

// Place creates a placement with a fresh ID and appends it to f.
func (p *Project) Place(f *model.Frame, pp *model.PlacedPart) *model.PlacedPart {
	pp.ID = p.NextID()
	f.Place(pp)
	return pp
}

// Load reads a project file.
func Load(path string) (*Project, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading project: %w", err)
	}
	p, err := Unmarshal(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return p, nil
}

// Save writes the project to path through a temp file in the same
// directory, so readers never see a half-written file.
func (p *Project) Save(path string) error {
	data, err := p.Marshal()
	if err != nil {
		return err
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}
	f, err := os.CreateTemp(dir, ".project-*.tmp")
	if err != nil {
		return err
	}
	tmp := f.Name()
	_, werr := f.Write(data)
	if werr == nil {
		werr = f.Sync()
	}
	if err := errors.Join(werr, f.Close()); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("writing project: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("committing project: %w", err)
	}
	return nil
}
