package scene

import (
	"fmt"
	"math"
	"math/rand"

	"github.com/achilleasa/cpupath/types"
)

// Camera construction parameters.
type CameraOptions struct {
	LookFrom types.Vec3
	LookAt   types.Vec3
	Up       types.Vec3

	// Vertical field of view in degrees.
	VFov float64

	// Frame width / frame height.
	Aspect float64

	// Lens diameter. A zero aperture yields a pinhole camera.
	Aperture float64

	// Distance to the plane in perfect focus.
	FocusDist float64
}

// A thin lens camera. All fields are derived once by NewCamera and never
// modified afterwards so a camera can be shared between tracers.
type Camera struct {
	origin          types.Vec3
	upperLeftCorner types.Vec3
	horizontal      types.Vec3
	vertical        types.Vec3

	// Camera basis.
	u, v, w types.Vec3

	lensRadius float64
}

// Create a new camera. An error is returned if the options describe a
// degenerate view.
func NewCamera(opts CameraOptions) (*Camera, error) {
	view := opts.LookFrom.Sub(opts.LookAt)
	switch {
	case view.NearZero():
		return nil, ErrDegenerateView
	case !(opts.VFov > 0 && opts.VFov < 180):
		return nil, ErrInvalidFov
	case !(opts.Aspect > 0):
		return nil, ErrInvalidAspect
	case !(opts.FocusDist > 0):
		return nil, ErrInvalidFocusDistance
	case opts.Aperture < 0:
		return nil, ErrNegativeAperture
	}

	w := view.Normalize()
	side := opts.Up.Cross(w)
	if side.NearZero() {
		return nil, ErrDegenerateUp
	}
	u := side.Normalize()
	v := w.Cross(u)

	theta := opts.VFov * math.Pi / 180
	viewportH := 2.0 * math.Tan(theta/2)
	viewportW := opts.Aspect * viewportH

	// The vertical axis is flipped so that increasing image rows move down.
	horizontal := u.Mul(viewportW * opts.FocusDist)
	vertical := v.Mul(-viewportH * opts.FocusDist)

	return &Camera{
		origin:          opts.LookFrom,
		upperLeftCorner: opts.LookFrom.Sub(horizontal.Div(2)).Sub(vertical.Div(2)).Sub(w.Mul(opts.FocusDist)),
		horizontal:      horizontal,
		vertical:        vertical,
		u:               u,
		v:               v,
		w:               w,
		lensRadius:      opts.Aperture / 2,
	}, nil
}

// Generate a ray for the normalized image coordinates (s, t) where (0, 0) is
// the upper left corner. The ray origin is jittered across the lens disk.
func (c *Camera) GetRay(rng *rand.Rand, s, t float64) types.Ray {
	var offset types.Vec3
	if c.lensRadius > 0 {
		rd := types.RandomInUnitDisk(rng).Mul(c.lensRadius)
		offset = c.u.Mul(rd[0]).Add(c.v.Mul(rd[1]))
	}

	origin := c.origin.Add(offset)
	target := c.upperLeftCorner.Add(c.horizontal.Mul(s)).Add(c.vertical.Mul(t))
	return types.NewRay(origin, target.Sub(origin))
}

func (c *Camera) String() string {
	return fmt.Sprintf(
		"Camera:\nOrigin     : %v\nUpper left : %v\nHorizontal : %v\nVertical   : %v\nLens radius: %3.3f",
		c.origin, c.upperLeftCorner, c.horizontal, c.vertical, c.lensRadius,
	)
}
