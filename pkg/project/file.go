package project

// On-disk shapes of the project file. Angles are whole degrees, truncated
// for the 22.5 degree steps (22, 67, 112, ...).

type fileProject struct {
	Version    string          `json:"version"`
	Name       string          `json:"name"`
	Characters []fileCharacter `json:"characters"`

	// Legacy v1 fields, read but never written.
	CanvasSize *[2]int         `json:"canvas_size,omitempty"`
	Animations []fileAnimation `json:"animations,omitempty"`
}

type fileCharacter struct {
	Name       string          `json:"name"`
	Parts      []filePart      `json:"parts"`
	Animations []fileAnimation `json:"animations"`
	CanvasSize *[2]int         `json:"canvas_size,omitempty"`
}

type filePart struct {
	Name     string      `json:"name"`
	States   []fileState `json:"states"`
	DefaultZ int         `json:"default_z"`
}

type fileState struct {
	Name         string                  `json:"name"`
	RotationMode string                  `json:"rotation_mode"`
	Rotations    map[string]fileRotation `json:"rotations"`
}

type fileRotation struct {
	Angle     int     `json:"angle"`
	ImageData *string `json:"image_data"`
}

type fileAnimation struct {
	Name       string         `json:"name"`
	Frames     []fileFrame    `json:"frames"`
	ZOverrides map[string]int `json:"z_overrides"`
	FPS        *float64       `json:"fps,omitempty"`
}

type fileFrame struct {
	DurationMS  int            `json:"duration_ms"`
	PlacedParts []filePlaced   `json:"placed_parts"`
	ZOverrides  map[string]int `json:"z_overrides"`
	Reference   *fileReference `json:"reference,omitempty"`
}

type filePlaced struct {
	ID            uint64     `json:"id"`
	CharacterName string     `json:"character_name"`
	PartName      string     `json:"part_name"`
	LayerName     string     `json:"layer_name"`
	StateName     string     `json:"state_name"`
	Rotation      int        `json:"rotation"`
	Position      [2]float64 `json:"position"`
	ZOverride     *int       `json:"z_override"`
	Visible       *bool      `json:"visible,omitempty"`
	Mirror        bool       `json:"mirror,omitempty"`
}

type fileReference struct {
	FilePath string     `json:"file_path"`
	Position [2]float64 `json:"position"`
	Scale    float64    `json:"scale"`
}

const (
	modeDeg45   = "Deg45"
	modeDeg22_5 = "Deg22_5"
)
