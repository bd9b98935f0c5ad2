package wiring

import (
	"fmt"
	"math"
)

// arcMaxError bounds the binary search for the subtended angle alpha.
const arcMaxError = 0.0001

// arcHeight returns the height of the arc a cable of the given length
// forms when spanning the given straight-line distance, modelling the
// cable as a circular arc. If the cable is long enough to exceed a
// semicircle (length >= distance*pi/2), it is instead modelled as a
// semicircle offset away from the straight line.
func arcHeight(length, distance float64) float64 {
	semicircleLength := (distance * math.Pi) / 2.0
	if length >= semicircleLength {
		offset := (length - semicircleLength) / 2.0
		return offset + distance/2.0
	}

	lhs := (distance * distance) / (2.0 * length * length)
	rhs := func(alpha float64) float64 {
		return (1.0 - math.Cos(alpha)) / (alpha * alpha)
	}

	// rhs is monotonically decreasing over (0, pi], so bisection converges.
	low, high := 0.0, math.Pi
	var alpha float64
	for {
		alpha = (low + high) / 2.0
		err := rhs(alpha) - lhs
		if math.Abs(err) < arcMaxError {
			break
		}
		if err < 0.0 {
			high = alpha
		} else {
			low = alpha
		}
	}

	r := length / alpha
	return r * (1.0 - math.Cos(alpha/2.0))
}

// assignCable picks the shortest cable in lengths (assumed sorted
// ascending) that spans distance while forming an arc at least
// minArcHeight tall. It returns the chosen length and its slack
// (length - distance), or a *PlanError if no cable qualifies.
func assignCable(distance float64, lengths []float64, minArcHeight float64) (length, slack float64, err error) {
	for _, l := range lengths {
		if l < distance {
			continue
		}
		if minArcHeight > 0 && arcHeight(l, distance) < minArcHeight {
			continue
		}
		return l, l - distance, nil
	}

	return 0, 0, &PlanError{Msg: fmt.Sprintf("no cable in inventory spans a %0.3fm gap", distance)}
}
