// Package sequencer maps playback time to animation frame indices.
//
// Playback loops with constant-duration frames. A Sequencer holds no mutable
// state and may be shared by any number of goroutines.
package sequencer

import (
	"math"
	"time"

	"github.com/Faultbox/spritestudio/pkg/model"
)

// NoFrame is returned for animations without frames.
const NoFrame = -1

// Sequencer resolves frame indices. DefaultFPS applies to animations that do
// not set their own rate; zero means model.DefaultFPS.
type Sequencer struct {
	DefaultFPS float64
}

// New returns a sequencer with the given project default rate.
func New(defaultFPS float64) Sequencer {
	return Sequencer{DefaultFPS: defaultFPS}
}

// FPS returns the rate anim plays at.
func (s Sequencer) FPS(anim *model.Animation) float64 {
	return anim.EffectiveFPS(s.DefaultFPS)
}

// FrameAt returns floor(elapsed * fps) mod frameCount, or NoFrame.
func (s Sequencer) FrameAt(anim *model.Animation, elapsed time.Duration) int {
	n := anim.FrameCount()
	if n == 0 {
		return NoFrame
	}
	counter := math.Floor(float64(elapsed) * s.FPS(anim) / float64(time.Second))
	return wrap(int64(counter), n)
}

// FrameAtCounter returns counter mod frameCount for discrete stepping, or NoFrame.
func (s Sequencer) FrameAtCounter(anim *model.Animation, counter int) int {
	n := anim.FrameCount()
	if n == 0 {
		return NoFrame
	}
	return wrap(int64(counter), n)
}

// FrameDuration returns how long each frame is shown, rounded up to the next
// nanosecond so that FrameAt(k*FrameDuration) lands on frame k.
func (s Sequencer) FrameDuration(anim *model.Animation) time.Duration {
	return time.Duration(math.Ceil(float64(time.Second) / s.FPS(anim)))
}

// LoopDuration returns the length of one full pass over the animation.
func (s Sequencer) LoopDuration(anim *model.Animation) time.Duration {
	return time.Duration(float64(anim.FrameCount()) * float64(time.Second) / s.FPS(anim))
}

// FrameAt uses model.DefaultFPS for animations without a rate.
func FrameAt(anim *model.Animation, elapsed time.Duration) int {
	return Sequencer{}.FrameAt(anim, elapsed)
}

// FrameAtCounter steps through anim one frame per counter tick.
func FrameAtCounter(anim *model.Animation, counter int) int {
	return Sequencer{}.FrameAtCounter(anim, counter)
}

// wrap is a modulo that stays non-negative for rewinding playback.
func wrap(v int64, n int) int {
	m := v % int64(n)
	if m < 0 {
		m += int64(n)
	}
	return int(m)
}
