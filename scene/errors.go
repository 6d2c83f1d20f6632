package scene

import "errors"

var (
	ErrDegenerateView       = errors.New("scene: camera look-from and look-at points coincide")
	ErrDegenerateUp         = errors.New("scene: camera up vector is parallel to the view direction")
	ErrInvalidFov           = errors.New("scene: camera vertical field of view must be in (0, 180) degrees")
	ErrInvalidAspect        = errors.New("scene: camera aspect ratio must be positive")
	ErrInvalidFocusDistance = errors.New("scene: camera focus distance must be positive")
	ErrNegativeAperture     = errors.New("scene: camera aperture must not be negative")
)
