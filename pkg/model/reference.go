package model

// ReferenceLayer is an editor-only tracing overlay. It is stored with the
// frame for round-tripping and never rendered into exports.
type ReferenceLayer struct {
	Path     string // original file path
	Image    *Art
	X, Y     float64
	Scale    float64
	Rotation float64 // degrees
	Opacity  float64
	Visible  bool
}

// NewReferenceLayer returns a visible overlay at half opacity and unit scale.
func NewReferenceLayer(path string) *ReferenceLayer {
	return &ReferenceLayer{
		Path:    path,
		Scale:   1.0,
		Opacity: 0.5,
		Visible: true,
	}
}
