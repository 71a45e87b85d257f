package spritesheet

import (
	"fmt"
	"image"

	"golang.org/x/image/draw"
)

// Frame is one rendered image to place in the atlas.
type Frame struct {
	Animation string
	Index     int // frame index within its animation
	Image     image.Image
}

// FrameMeta locates one frame inside the atlas.
type FrameMeta struct {
	Animation  string `json:"animation" yaml:"animation"`
	FrameIndex int    `json:"frameIndex" yaml:"frameIndex"`
	X          int    `json:"x" yaml:"x"`
	Y          int    `json:"y" yaml:"y"`
	Width      int    `json:"width" yaml:"width"`
	Height     int    `json:"height" yaml:"height"`
}

// Rect returns the frame's atlas rectangle.
func (m FrameMeta) Rect() image.Rectangle {
	return image.Rect(m.X, m.Y, m.X+m.Width, m.Y+m.Height)
}

// Sheet is a packed atlas.
type Sheet struct {
	Image   *image.NRGBA
	Frames  []FrameMeta
	Columns int
	Rows    int
	Cell    image.Point
}

// Size returns the atlas dimensions.
func (s *Sheet) Size() image.Point {
	return s.Image.Bounds().Size()
}

// Pack lays frames out row-major in the given order on a uniform grid of
// cell-sized slots. Frames larger than a cell are clipped to it.
func Pack(frames []Frame, cell image.Point, layout Layout) (*Sheet, error) {
	if len(frames) == 0 {
		return nil, ErrEmptyExportJob
	}
	if cell.X <= 0 || cell.Y <= 0 {
		return nil, fmt.Errorf("%w: %dx%d", ErrInvalidCellSize, cell.X, cell.Y)
	}
	if err := layout.Validate(); err != nil {
		return nil, err
	}

	cols, rows := layout.Grid(len(frames))
	atlas := image.NewNRGBA(image.Rect(0, 0, cols*cell.X, rows*cell.Y))
	meta := make([]FrameMeta, len(frames))

	for i, f := range frames {
		col, row := Cell(i, cols)
		x, y := col*cell.X, row*cell.Y
		dst := image.Rect(x, y, x+cell.X, y+cell.Y)
		if f.Image != nil {
			draw.Copy(atlas, dst.Min, f.Image, f.Image.Bounds().Intersect(cellAt(f.Image, cell)), draw.Src, nil)
		}
		meta[i] = FrameMeta{
			Animation:  f.Animation,
			FrameIndex: f.Index,
			X:          x,
			Y:          y,
			Width:      cell.X,
			Height:     cell.Y,
		}
	}

	return &Sheet{
		Image:   atlas,
		Frames:  meta,
		Columns: cols,
		Rows:    rows,
		Cell:    cell,
	}, nil
}

// cellAt is the cell-sized window at the image origin.
func cellAt(img image.Image, cell image.Point) image.Rectangle {
	origin := img.Bounds().Min
	return image.Rectangle{Min: origin, Max: origin.Add(cell)}
}
