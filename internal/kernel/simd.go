package kernel

import "github.com/tphakala/go-audio-dsp/internal/simdops"

// Variant backed by the tphakala/simd assembly routines. The half-band
// branch is not folded here: a full-length vector dot product is cheaper
// than a scalar fold followed by a half-length one.

func simdImpl[F Float]() impl[F] {
	ops := simdops.For[F]()
	return impl[F]{
		convolve: func(src, coeffs []F) F {
			return ops.DotProductUnsafe(src[:len(coeffs)], coeffs)
		},
		halfband: func(src, branch []F) F {
			return ops.DotProductUnsafe(src[:len(branch)], branch)
		},
		dualCopy: dualCopyUnrolled[F],
	}
}
