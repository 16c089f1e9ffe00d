package xcorr

import (
	"fmt"
	"math"
)

// DefaultTaper is the Tukey fraction Shift applies before correlating.
const DefaultTaper = 0.1

// Taper multiplies src by a Tukey window whose cosine edges together cover
// the fraction alpha of the samples, writing into dst. alpha 0 leaves the
// data unchanged and alpha 1 is a Hann window. dst may alias src.
func Taper(dst, src []float64, alpha float64) error {
	if len(dst) != len(src) {
		return fmt.Errorf("xcorr: taper: dst has %d samples, src %d", len(dst), len(src))
	}
	if alpha < 0 || alpha > 1 || math.IsNaN(alpha) {
		return fmt.Errorf("xcorr: taper alpha must be in [0,1]: %f", alpha)
	}
	n := len(src)
	for i, v := range src {
		dst[i] = v * tukeyAt(position(i, n), alpha)
	}
	return nil
}

func position(i, n int) float64 {
	if n <= 1 {
		return 0.5
	}
	return float64(i) / float64(n-1)
}

func tukeyAt(x, alpha float64) float64 {
	if alpha <= 0 {
		return 1
	}
	a := alpha / 2
	switch {
	case x < a:
		return 0.5 * (1 + math.Cos(math.Pi*(2*x/alpha-1)))
	case x <= 1-a:
		return 1
	default:
		return 0.5 * (1 + math.Cos(math.Pi*(2*x/alpha-2/alpha+1)))
	}
}
