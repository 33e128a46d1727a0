// Package mathutil holds the numeric helpers used by filter design and
// stage planning.
package mathutil

import "math"

// BesselI0 computes the modified Bessel function of the first kind, order
// zero, by summing its power series until terms stop contributing.
//
//	I0(x) = sum_k ((x/2)^k / k!)^2
func BesselI0(x float64) float64 {
	half := x / 2
	sum, term := 1.0, 1.0
	for k := 1; k < besselMaxTerms; k++ {
		f := half / float64(k)
		term *= f * f
		sum += term
		if term < sum*besselEpsilon {
			break
		}
	}
	return sum
}

// KaiserBeta returns the Kaiser window beta giving the requested stopband
// attenuation in dB (Kaiser & Schafer):
//
//	att > 50:        0.1102 (att - 8.7)
//	21 <= att <= 50: 0.5842 (att - 21)^0.4 + 0.07886 (att - 21)
//	att < 21:        0
func KaiserBeta(attenuation float64) float64 {
	switch {
	case attenuation > kaiserAttHigh:
		return kaiserBetaHighCoeff * (attenuation - kaiserBetaHighOffset)
	case attenuation >= kaiserAttMedium:
		d := attenuation - kaiserAttMedium
		return kaiserBetaMediumCoeff1*math.Pow(d, kaiserBetaMediumPower) + kaiserBetaMediumCoeff2*d
	default:
		return 0
	}
}

// EstimateFilterLength estimates the odd number of taps a Kaiser-windowed
// FIR needs for the given attenuation (dB) and transition bandwidth
// (fraction of the sample rate):
//
//	N = (att - 7.95) / (14.36 * tw) + 1
func EstimateFilterLength(attenuation, transitionBW float64) int {
	if transitionBW <= 0 {
		transitionBW = defaultTransitionBW
	}
	taps := int(math.Ceil((attenuation-kaiserLengthOffset)/(kaiserLengthDivisor*transitionBW))) + 1
	if taps%2 == 0 {
		taps++
	}
	return min(max(taps, minFilterLength), maxFilterLength)
}
