package renderer

import "errors"

var (
	ErrNoTracers          = errors.New("renderer: no tracers attached")
	ErrSceneNotDefined    = errors.New("renderer: no scene defined")
	ErrCameraNotDefined   = errors.New("renderer: no camera defined")
	ErrInterrupted        = errors.New("renderer: interrupted while rendering")
	ErrInvalidFrameDims   = errors.New("renderer: frame dimensions must be non-zero")
	ErrInvalidSampleCount = errors.New("renderer: samples per pixel must be non-zero")
)
