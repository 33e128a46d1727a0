package engine

import (
	"math"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/tphakala/go-audio-dsp/internal/kernel"
)

const (
	testBlock  = 64
	testRate   = 48000.0
	testMaxRun = 10
)

var (
	_ Stage[float32] = (*HalfbandStage[float32])(nil)
	_ Stage[float64] = (*PolyphaseStage[float64])(nil)
	_ Stage[float64] = (*FFTStage[float64, complex128])(nil)
	_ Stage[float32] = (*FFTStage[float32, complex64])(nil)
)

func genericKernel[F Float](t testing.TB) kernel.Kernel[F] {
	t.Helper()
	k, err := kernel.Lookup[F](kernel.VariantGeneric)
	require.NoError(t, err)
	return k
}

// randomChunks returns a chunk size source in [1, testMaxRun].
func randomChunks(seed uint64) func() int {
	rng := rand.New(rand.NewPCG(seed, seed+1))
	return func() int { return 1 + rng.IntN(testMaxRun) }
}

// constant returns n frames of value v on every channel.
func constant[F Float](n, channels int, v F) []F {
	out := make([]F, n*channels)
	for i := range out {
		out[i] = v
	}
	return out
}

// sineAt is the ideal value of a unit sine at freq Hz sampled at time
// j*m/l input frames.
func sineAt(j, l, m int, freq float64) float64 {
	return math.Sin(2 * math.Pi * freq * float64(j) * float64(m) / float64(l) / testRate)
}
