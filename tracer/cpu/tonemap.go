package cpu

import (
	"math"

	"github.com/achilleasa/cpupath/types"
)

// Largest channel value before scaling to 8 bits.
const maxIntensity = 0.999

// Average an accumulated linear color over the sample count, apply gamma 2
// correction and quantize to 8 bits per channel.
func ToneMap(sum types.Vec3, samples uint32) [3]uint8 {
	var out [3]uint8
	scale := 1.0 / float64(samples)
	for c := 0; c < 3; c++ {
		v := math.Sqrt(sum[c] * scale)

		// NaN fails both comparisons and maps to black
		if !(v > 0) {
			v = 0
		} else if v > maxIntensity {
			v = maxIntensity
		}
		out[c] = uint8(256 * v)
	}
	return out
}
