// Package kernel implements the inner convolution operators shared by the
// resampling stages, in several interchangeable variants.
//
// Every variant computes the same mathematical result; they differ only in
// summation order. The generic variant is the scalar reference the others
// are tested against. Best picks the highest priority variant the running
// CPU supports, once per process.
package kernel

import (
	"errors"

	"github.com/tphakala/go-audio-dsp/internal/simdops"
)

// Float is the sample type constraint.
type Float = simdops.Float

var (
	// ErrUnknownVariant is returned by Lookup for an unregistered name.
	ErrUnknownVariant = errors.New("unknown kernel variant")

	// ErrUnsupportedVariant is returned by Lookup when the CPU lacks the
	// instructions a variant needs.
	ErrUnsupportedVariant = errors.New("kernel variant not supported on this CPU")
)

// Kernel is a resolved set of operators for sample type F.
type Kernel[F Float] struct {
	// Name of the variant the operators come from.
	Name string

	// Convolve returns sum(src[i]*coeffs[i]) for i < len(coeffs),
	// accumulated in F.
	Convolve func(src, coeffs []F) F

	// HalfbandConvolve returns sum(src[i]*branch[i]) for a symmetric
	// branch of even length; len(src) >= len(branch).
	HalfbandConvolve func(src, branch []F) F

	// DualCopy copies src into both dst1 and dst2.
	DualCopy func(dst1, dst2, src []F)
}

type impl[F Float] struct {
	convolve func(src, coeffs []F) F
	halfband func(src, branch []F) F
	dualCopy func(dst1, dst2, src []F)
}

func (k impl[F]) resolve(name string) Kernel[F] {
	return Kernel[F]{Name: name, Convolve: k.convolve, HalfbandConvolve: k.halfband, DualCopy: k.dualCopy}
}

// ConvolveFrame computes one output frame from planar channel lines:
// dst[c] = Convolve(lines[c][off:], coeffs).
func (k Kernel[F]) ConvolveFrame(dst []F, lines [][]F, off int, coeffs []F) {
	for c, line := range lines {
		dst[c] = k.Convolve(line[off:off+len(coeffs)], coeffs)
	}
}

// HalfbandFrame is ConvolveFrame for the symmetric half-band branch.
func (k Kernel[F]) HalfbandFrame(dst []F, lines [][]F, off int, branch []F) {
	for c, line := range lines {
		dst[c] = k.HalfbandConvolve(line[off:off+len(branch)], branch)
	}
}
