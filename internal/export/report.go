package export

import (
	"time"

	"go.uber.org/multierr"

	"github.com/Faultbox/spritestudio/pkg/spritesheet"
)

// Failure is a frame that was skipped.
type Failure struct {
	Animation  string
	FrameIndex int
	Err        error
}

// Report is the outcome of a job that produced an atlas.
type Report struct {
	Sheet     *spritesheet.Sheet
	Metadata  spritesheet.Metadata
	Failures  []Failure
	AtlasPath string
	MetaPath  string
	Duration  time.Duration
}

// Placed returns the number of frames in the atlas.
func (r *Report) Placed() int {
	if r == nil || r.Sheet == nil {
		return 0
	}
	return len(r.Sheet.Frames)
}

// Err combines every frame failure into one error, nil on full success.
func (r *Report) Err() error {
	if r == nil {
		return nil
	}
	var err error
	for _, f := range r.Failures {
		err = multierr.Append(err, f.Err)
	}
	return err
}

func metadataFailures(fs []Failure) []spritesheet.Failure {
	if len(fs) == 0 {
		return nil
	}
	out := make([]spritesheet.Failure, len(fs))
	for i, f := range fs {
		out[i] = spritesheet.Failure{Animation: f.Animation, FrameIndex: f.FrameIndex, Reason: f.Err.Error()}
	}
	return out
}
