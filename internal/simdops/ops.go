// Package simdops exposes the tphakala/simd vector routines behind one
// generic function table, so kernels and stages written over F can reach
// the float32 or float64 implementation without a type switch per call.
package simdops

import (
	"github.com/tphakala/simd/f32"
	"github.com/tphakala/simd/f64"
)

// Float is the type constraint for supported sample types.
type Float interface {
	float32 | float64
}

// Ops holds vector routines for type F.
type Ops[F Float] struct {
	// DotProductUnsafe computes sum(a[i]*b[i]) without bounds checking.
	// Both slices must have equal length.
	DotProductUnsafe func(a, b []F) F

	// Interleave2 writes dst[2i]=a[i], dst[2i+1]=b[i].
	Interleave2 func(dst, a, b []F)

	// Sum returns the sum of all elements.
	Sum func(a []F) F

	// Scale computes dst[i] = a[i] * s.
	Scale func(dst, a []F, s F)
}

var (
	ops32 = Ops[float32]{
		DotProductUnsafe: f32.DotProductUnsafe,
		Interleave2:      f32.Interleave2,
		Sum:              f32.Sum,
		Scale:            f32.Scale,
	}
	ops64 = Ops[float64]{
		DotProductUnsafe: f64.DotProductUnsafe,
		Interleave2:      f64.Interleave2,
		Sum:              f64.Sum,
		Scale:            f64.Scale,
	}
)

// For returns the Ops table for F. The type switch runs once per call
// site setup, not per sample.
func For[F Float]() *Ops[F] {
	var zero F
	switch any(zero).(type) {
	case float32:
		return any(&ops32).(*Ops[F])
	default:
		return any(&ops64).(*Ops[F])
	}
}

// Deinterleave2 splits interleaved stereo src into a and b.
// len(a) frames are read.
func Deinterleave2[F Float](a, b, src []F) {
	_ = src[2*len(a)-1]
	_ = b[len(a)-1]
	for i := range a {
		a[i] = src[2*i]
		b[i] = src[2*i+1]
	}
}

// Interleave writes planar channel lines into interleaved dst for n
// frames. Stereo goes through the vector routine.
func Interleave[F Float](dst []F, lines [][]F, n int) {
	switch len(lines) {
	case 1:
		copy(dst[:n], lines[0][:n])
	case 2:
		For[F]().Interleave2(dst[:2*n], lines[0][:n], lines[1][:n])
	default:
		ch := len(lines)
		for c, line := range lines {
			for i := range n {
				dst[i*ch+c] = line[i]
			}
		}
	}
}

// Deinterleave splits n interleaved frames of src into planar lines.
func Deinterleave[F Float](lines [][]F, src []F, n int) {
	switch len(lines) {
	case 1:
		copy(lines[0][:n], src[:n])
	case 2:
		if n > 0 {
			Deinterleave2(lines[0][:n], lines[1][:n], src)
		}
	default:
		ch := len(lines)
		for c, line := range lines {
			for i := range n {
				line[i] = src[i*ch+c]
			}
		}
	}
}
