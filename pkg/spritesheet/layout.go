// Package spritesheet packs equally sized frames into a grid atlas.
package spritesheet

import (
	"errors"
	"fmt"
	"math"
)

// Packing errors.
var (
	ErrEmptyExportJob  = errors.New("empty export job: no frames selected")
	ErrInvalidLayout   = errors.New("invalid layout")
	ErrInvalidCellSize = errors.New("invalid cell size")
)

// Layout controls grid placement. Columns == 0 selects the most square grid.
type Layout struct {
	Columns int `yaml:"columns" json:"columns"`
}

// AutoLayout picks ceil(sqrt(n)) columns.
var AutoLayout = Layout{}

// Validate rejects negative column counts.
func (l Layout) Validate() error {
	if l.Columns < 0 {
		return fmt.Errorf("%w: %d columns", ErrInvalidLayout, l.Columns)
	}
	return nil
}

// Grid returns the column and row count for n frames. Explicit column counts
// larger than n are clamped to n so the atlas has no empty trailing columns.
func (l Layout) Grid(n int) (cols, rows int) {
	if n <= 0 {
		return 0, 0
	}
	cols = l.Columns
	if cols <= 0 {
		cols = int(math.Ceil(math.Sqrt(float64(n))))
	}
	if cols > n {
		cols = n
	}
	rows = (n + cols - 1) / cols
	return cols, rows
}

// Cell returns the row-major grid position of frame i.
func Cell(i, cols int) (col, row int) {
	return i % cols, i / cols
}
