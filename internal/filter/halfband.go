package filter

import (
	"fmt"
	"math"

	"github.com/tphakala/go-audio-dsp/internal/mathutil"
)

const (
	halfbandCutoff    = 0.25
	halfbandZeroTol   = 1e-12
	halfbandSymTol    = 1e-12
	minHalfbandOrder  = 1
	maxHalfbandOrder  = 256
	fftHalfbandTrBw   = 0.05
	minFFTHalfbandLen = 9
)

// Halfband kernels are stored with length 4k: the 4k-1 taps of the
// symmetric filter followed by one zero. The center sits at index 2k-1,
// taps at even distances from it are zero, and the 2k taps at odd
// distances form the single non-trivial polyphase branch.

// DesignHalfband returns a 4k-length half-band kernel with center 0.5 and
// odd-distance taps normalized to sum to 0.5, giving unity DC gain.
func DesignHalfband(k int, attenuation float64) ([]float64, error) {
	if k < minHalfbandOrder || k > maxHalfbandOrder {
		return nil, fmt.Errorf("%w: half-band order %d outside [%d, %d]", ErrInvalidParams, k, minHalfbandOrder, maxHalfbandOrder)
	}
	n := 4*k - 1
	center := 2*k - 1
	window := KaiserWindow(n, mathutil.KaiserBeta(attenuation))

	h := make([]float64, 4*k)
	var odd float64
	for i := 1; i <= center; i += 2 {
		v := 2 * halfbandCutoff * sinc(2*halfbandCutoff*float64(i)) * window[center+i]
		h[center-i] = v
		h[center+i] = v
		odd += 2 * v
	}
	for i := 1; i <= center; i += 2 {
		h[center-i] *= 0.5 / odd
		h[center+i] *= 0.5 / odd
	}
	h[center] = 0.5
	return h, nil
}

// AllPassHalfband returns a 4k-length kernel whose only non-zero tap is a
// unit center. Upsampling with it inserts zeros; downsampling picks every
// other frame.
func AllPassHalfband(k int) []float64 {
	h := make([]float64, 4*k)
	h[2*k-1] = 1
	return h
}

// ValidateHalfband checks the structural constraints of a 4k kernel and
// returns k.
func ValidateHalfband(h []float64) (int, error) {
	if len(h) < 4 || len(h)%4 != 0 {
		return 0, fmt.Errorf("%w: half-band length %d is not a positive multiple of 4", ErrInvalidParams, len(h))
	}
	k := len(h) / 4
	center := 2*k - 1
	if h[len(h)-1] != 0 {
		return 0, fmt.Errorf("%w: half-band padding tap must be zero", ErrInvalidParams)
	}
	if h[center] == 0 || math.IsNaN(h[center]) {
		return 0, fmt.Errorf("%w: half-band center tap must be non-zero", ErrInvalidParams)
	}
	for i := 1; i <= center; i++ {
		lo, hi := h[center-i], h[center+i]
		if math.IsNaN(lo) || math.IsInf(lo, 0) || math.Abs(lo-hi) > halfbandSymTol {
			return 0, fmt.Errorf("%w: half-band kernel not symmetric at offset %d", ErrInvalidParams, i)
		}
		if i%2 == 0 && math.Abs(lo) > halfbandZeroTol {
			return 0, fmt.Errorf("%w: half-band tap at even offset %d is %g, want 0", ErrInvalidParams, i, lo)
		}
	}
	return k, nil
}

// HalfbandBranch extracts the 2k odd-distance taps in time order, scaled
// by gain.
func HalfbandBranch(h []float64, gain float64) []float64 {
	k := len(h) / 4
	branch := make([]float64, 2*k)
	for q := range branch {
		branch[q] = gain * h[2*q]
	}
	return branch
}

// HalfbandCenter returns the center tap of a 4k kernel.
func HalfbandCenter(h []float64) float64 {
	return h[len(h)/2-1]
}

// DesignFFTHalfband returns an odd-length low-pass with cutoff at a quarter
// of the sample rate and length 4q+1, so its group delay 2q is even. This
// is the filter the block-transform 2x stages run.
func DesignFFTHalfband(attenuation float64) ([]float64, error) {
	n := mathutil.EstimateFilterLength(attenuation, fftHalfbandTrBw)
	n = max(n, minFFTHalfbandLen)
	if r := (n - 1) % 4; r != 0 {
		n += 4 - r
	}
	return DesignLowPass(LowPassParams{
		NumTaps:     n,
		Cutoff:      halfbandCutoff,
		Attenuation: attenuation,
		Gain:        1,
	})
}
