package spritesheet

import (
	"fmt"
	"image"
	"io"
	"os"

	"github.com/goccy/go-json"
)

// Size is a width/height pair.
type Size struct {
	W int `json:"w" yaml:"w"`
	H int `json:"h" yaml:"h"`
}

// Failure names a frame that was skipped during export.
type Failure struct {
	Animation  string `json:"animation" yaml:"animation"`
	FrameIndex int    `json:"frameIndex" yaml:"frameIndex"`
	Reason     string `json:"reason" yaml:"reason"`
}

// Metadata is the document written next to the atlas.
type Metadata struct {
	Image       string      `json:"image" yaml:"image"`
	Character   string      `json:"character,omitempty" yaml:"character,omitempty"`
	Size        Size        `json:"size" yaml:"size"`
	FrameWidth  int         `json:"frameWidth" yaml:"frameWidth"`
	FrameHeight int         `json:"frameHeight" yaml:"frameHeight"`
	Columns     int         `json:"columns" yaml:"columns"`
	Rows        int         `json:"rows" yaml:"rows"`
	Frames      []FrameMeta `json:"frames" yaml:"frames"`
	Failures    []Failure   `json:"failures,omitempty" yaml:"failures,omitempty"`
}

// Metadata builds the document for s. image is the atlas file name.
func (s *Sheet) Metadata(character, imageName string) Metadata {
	size := s.Size()
	return Metadata{
		Image:       imageName,
		Character:   character,
		Size:        Size{W: size.X, H: size.Y},
		FrameWidth:  s.Cell.X,
		FrameHeight: s.Cell.Y,
		Columns:     s.Columns,
		Rows:        s.Rows,
		Frames:      s.Frames,
	}
}

// Encode writes the document as indented JSON.
func (m Metadata) Encode(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(m); err != nil {
		return fmt.Errorf("encoding metadata: %w", err)
	}
	return nil
}

// Lookup returns the atlas rectangle of animation frame index.
func (m Metadata) Lookup(animation string, index int) (image.Rectangle, bool) {
	for _, f := range m.Frames {
		if f.Animation == animation && f.FrameIndex == index {
			return f.Rect(), true
		}
	}
	return image.Rectangle{}, false
}

// ReadMetadata parses a metadata document from disk.
func ReadMetadata(path string) (Metadata, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Metadata{}, fmt.Errorf("reading metadata: %w", err)
	}
	var m Metadata
	if err := json.Unmarshal(data, &m); err != nil {
		return Metadata{}, fmt.Errorf("parsing metadata %s: %w", path, err)
	}
	return m, nil
}
