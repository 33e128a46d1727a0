// Package testutil provides test helpers shared by the DSP packages.
package testutil

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Float mirrors the sample type constraint of the library.
type Float interface {
	float32 | float64
}

// AssertSymmetric verifies s[i] == s[n-1-i].
func AssertSymmetric(t *testing.T, s []float64, tolerance float64) bool {
	t.Helper()
	n := len(s)
	for i := range n / 2 {
		j := n - 1 - i
		if !assert.InDelta(t, s[i], s[j], tolerance, "not symmetric: s[%d]=%g s[%d]=%g", i, s[i], j, s[j]) {
			return false
		}
	}
	return true
}

// AssertNoNaNOrInf verifies every element is finite.
func AssertNoNaNOrInf[F Float](t *testing.T, s []F) bool {
	t.Helper()
	for i, v := range s {
		if math.IsNaN(float64(v)) || math.IsInf(float64(v), 0) {
			return assert.Fail(t, "non-finite value", "s[%d] = %v", i, v)
		}
	}
	return true
}

// AssertDCGain verifies that the coefficients sum to expectedGain.
func AssertDCGain(t *testing.T, coeffs []float64, expectedGain, tolerance float64) bool {
	t.Helper()
	var sum float64
	for _, c := range coeffs {
		sum += c
	}
	return assert.InDelta(t, expectedGain, sum, tolerance, "DC gain = %g, want %g", sum, expectedGain)
}

// AssertRelativeError verifies |actual-expected|/|expected| <= tolerance.
func AssertRelativeError(t *testing.T, expected, actual, tolerance float64, msgAndArgs ...any) bool {
	t.Helper()
	if expected == 0 {
		return assert.InDelta(t, expected, actual, tolerance, msgAndArgs...)
	}
	rel := math.Abs(actual-expected) / math.Abs(expected)
	return assert.LessOrEqual(t, rel, tolerance,
		"relative error %e exceeds %e (expected=%g, actual=%g)", rel, tolerance, expected, actual)
}

// AssertInRange verifies minVal <= value <= maxVal.
func AssertInRange(t *testing.T, value, minVal, maxVal float64) bool {
	t.Helper()
	if value < minVal || value > maxVal {
		return assert.Fail(t, "value out of range", "%g outside [%g, %g]", value, minVal, maxVal)
	}
	return true
}

// AssertSlicesInDelta compares two sample slices element by element.
func AssertSlicesInDelta[F Float](t *testing.T, want, got []F, delta float64) bool {
	t.Helper()
	if !assert.Len(t, got, len(want)) {
		return false
	}
	for i := range want {
		if !assert.InDelta(t, float64(want[i]), float64(got[i]), delta, "index %d", i) {
			return false
		}
	}
	return true
}

// Sine returns n interleaved frames of a sine at freq Hz, the same on
// every channel.
func Sine[F Float](n, channels int, freq, rate float64) []F {
	out := make([]F, n*channels)
	for i := range n {
		v := F(math.Sin(2 * math.Pi * freq * float64(i) / rate))
		for c := range channels {
			out[i*channels+c] = v
		}
	}
	return out
}

// Ramp returns n interleaved frames where channel c of frame i holds
// (i+1) * (c+1).
func Ramp[F Float](n, channels int) []F {
	out := make([]F, n*channels)
	for i := range n {
		for c := range channels {
			out[i*channels+c] = F((i + 1) * (c + 1))
		}
	}
	return out
}

// Stream is the push/pull contract shared by stages and resamplers.
type Stream[F Float] interface {
	NumCanPut() int
	NumCanGet() int
	PutN(src []F, n int) error
	GetN(dst []F, n int) error
	Flush() error
}

// Drive pushes input through s in chunks sized by next (nil means as large
// as allowed), flushes, and returns everything s produced.
func Drive[F Float](t testing.TB, s Stream[F], input []F, channels int, next func() int) []F {
	t.Helper()
	total := len(input) / channels
	var out []F
	buf := make([]F, 0)

	drain := func() {
		for {
			n := s.NumCanGet()
			if n == 0 {
				return
			}
			if next != nil {
				n = min(n, next())
			}
			if cap(buf) < n*channels {
				buf = make([]F, n*channels)
			}
			require.NoError(t, s.GetN(buf[:n*channels], n))
			out = append(out, buf[:n*channels]...)
		}
	}

	pos := 0
	for pos < total {
		n := min(total-pos, s.NumCanPut())
		if next != nil {
			n = min(n, next())
		}
		require.Positive(t, n, "stream stalled with %d frames pending", total-pos)
		require.NoError(t, s.PutN(input[pos*channels:], n))
		pos += n
		drain()
	}
	require.NoError(t, s.Flush())
	drain()
	require.Zero(t, s.NumCanGet())
	return out
}
