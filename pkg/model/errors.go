package model

import (
	"errors"
	"fmt"
)

// Model errors.
var (
	ErrDuplicatePart         = errors.New("duplicate part name")
	ErrDuplicateState        = errors.New("duplicate state name")
	ErrDuplicateAnimation    = errors.New("duplicate animation name")
	ErrPartNotFound          = errors.New("part not found")
	ErrStateNotFound         = errors.New("state not found")
	ErrAnimationNotFound     = errors.New("animation not found")
	ErrFrameOutOfRange       = errors.New("frame index out of range")
	ErrPartInUse             = errors.New("part is referenced by placed parts")
	ErrStateInUse            = errors.New("state is referenced by placed parts")
	ErrDanglingPartReference = errors.New("dangling part reference")
	ErrInvalidCanvas         = errors.New("invalid canvas size")
	ErrEmptyName             = errors.New("empty name")
)

// FrameError reports a failure isolated to one animation frame.
type FrameError struct {
	Animation string
	Frame     int
	Layer     string // placement layer that failed, if known
	Err       error
}

func (e *FrameError) Error() string {
	if e.Layer != "" {
		return fmt.Sprintf("animation %q frame %d layer %q: %v", e.Animation, e.Frame, e.Layer, e.Err)
	}
	return fmt.Sprintf("animation %q frame %d: %v", e.Animation, e.Frame, e.Err)
}

func (e *FrameError) Unwrap() error {
	return e.Err
}
