// Package filter designs the FIR kernels used by the resampling stages:
// Kaiser-windowed sinc low-pass prototypes, half-band kernels and
// polyphase phase tables.
package filter

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"

	"github.com/tphakala/go-audio-dsp/internal/mathutil"
)

// ErrInvalidParams is wrapped by every design-parameter error.
var ErrInvalidParams = errors.New("invalid filter parameters")

const (
	minFilterTaps = 3
	maxFilterTaps = 16383

	sincZeroThreshold = 1e-10
	defaultNumPoints  = 512
)

// KaiserWindow returns a symmetric Kaiser window of the given length:
//
//	w[n] = I0(beta * sqrt(1 - ((n-a)/a)^2)) / I0(beta),  a = (length-1)/2
func KaiserWindow(length int, beta float64) []float64 {
	if length < 1 {
		return []float64{}
	}
	window := make([]float64, length)
	if length == 1 {
		window[0] = 1
		return window
	}
	alpha := float64(length-1) / 2
	i0Beta := mathutil.BesselI0(beta)
	for n := range window {
		window[n] = kaiserAt((float64(n)-alpha)/alpha, beta, i0Beta)
	}
	return window
}

// kaiserAt evaluates the Kaiser window at x in [-1, 1].
func kaiserAt(x, beta, i0Beta float64) float64 {
	if x <= -1 || x >= 1 {
		return 1 / i0Beta
	}
	return mathutil.BesselI0(beta*math.Sqrt(1-x*x)) / i0Beta
}

// sinc is the normalized sinc, sin(pi x)/(pi x).
func sinc(x float64) float64 {
	if math.Abs(x) < sincZeroThreshold {
		return 1
	}
	return math.Sin(math.Pi*x) / (math.Pi * x)
}

// LowPassParams describes a windowed-sinc low-pass design.
type LowPassParams struct {
	// NumTaps is the filter length; odd lengths give an integer delay.
	NumTaps int

	// Cutoff is normalized to the sample rate, in (0, 0.5).
	Cutoff float64

	// Attenuation is the stopband attenuation in dB.
	Attenuation float64

	// Gain is the DC gain after normalization.
	Gain float64
}

// Validate checks the parameters.
func (p *LowPassParams) Validate() error {
	switch {
	case p.NumTaps < minFilterTaps || p.NumTaps > maxFilterTaps:
		return fmt.Errorf("%w: %d taps outside [%d, %d]", ErrInvalidParams, p.NumTaps, minFilterTaps, maxFilterTaps)
	case p.Cutoff <= 0 || p.Cutoff >= 0.5:
		return fmt.Errorf("%w: cutoff %g outside (0, 0.5)", ErrInvalidParams, p.Cutoff)
	case p.Attenuation < 0:
		return fmt.Errorf("%w: attenuation %g dB is negative", ErrInvalidParams, p.Attenuation)
	case p.Gain <= 0:
		return fmt.Errorf("%w: gain %g must be positive", ErrInvalidParams, p.Gain)
	}
	return nil
}

// DesignLowPass returns a Kaiser-windowed sinc low-pass filter normalized
// to the requested DC gain.
func DesignLowPass(p LowPassParams) ([]float64, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	window := KaiserWindow(p.NumTaps, mathutil.KaiserBeta(p.Attenuation))
	center := float64(p.NumTaps-1) / 2
	h := make([]float64, p.NumTaps)
	for n := range h {
		h[n] = 2 * p.Cutoff * sinc(2*p.Cutoff*(float64(n)-center)) * window[n]
	}
	if sum := floats.Sum(h); math.Abs(sum) > sincZeroThreshold {
		floats.Scale(p.Gain/sum, h)
	}
	return h, nil
}

// Response is a sampled frequency response.
type Response struct {
	Frequencies []float64 // normalized, 0 to 0.5
	Magnitude   []float64 // linear
}

// FrequencyResponse evaluates the DTFT of coeffs at numPoints frequencies
// from DC up to (not including) Nyquist.
func FrequencyResponse(coeffs []float64, numPoints int) Response {
	if numPoints <= 0 {
		numPoints = defaultNumPoints
	}
	r := Response{
		Frequencies: make([]float64, numPoints),
		Magnitude:   make([]float64, numPoints),
	}
	for k := range numPoints {
		f := float64(k) / float64(2*numPoints)
		omega := 2 * math.Pi * f
		var re, im float64
		for n, h := range coeffs {
			re += h * math.Cos(omega*float64(n))
			im -= h * math.Sin(omega*float64(n))
		}
		r.Frequencies[k] = f
		r.Magnitude[k] = math.Hypot(re, im)
	}
	return r
}

// MagnitudeDB converts a linear magnitude to dB, floored at -200 dB.
func MagnitudeDB(magnitude float64) float64 {
	const floor = 1e-10
	return 20 * math.Log10(math.Max(magnitude, floor))
}
