package engine

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tphakala/go-audio-dsp/fft"
	"github.com/tphakala/go-audio-dsp/internal/filter"
	"github.com/tphakala/go-audio-dsp/internal/testutil"
)

func fftTaps(t testing.TB) []float64 {
	t.Helper()
	h, err := filter.DesignFFTHalfband(100)
	require.NoError(t, err)
	return h
}

func newFFT[F Float, C fft.Complex](t testing.TB, dir Direction, channels int) *FFTStage[F, C] {
	t.Helper()
	s, err := NewFFTHalfband[F, C](dir, fftTaps(t), channels, testBlock, fft.Gonum{})
	require.NoError(t, err)
	return s
}

// singleOnly offers complex64 transforms only.
type singleOnly struct{ fft.Gonum }

func (singleOnly) Name() string                     { return "single-only" }
func (singleOnly) IsSupported(p fft.Precision) bool { return p == fft.Single }
func (singleOnly) Setup128(int) (fft.Transform[complex128], error) {
	return nil, errors.New("no double precision")
}

func TestFFTStage_OutputCount(t *testing.T) {
	s := newFFT[float64, complex128](t, Up, 1)
	b := s.BlockFrames()
	for _, n := range []int{0, 1, 5, b - 1, b, b + 1, 3*b + 7} {
		up := newFFT[float64, complex128](t, Up, 2)
		out := testutil.Drive[float64](t, up, testutil.Ramp[float64](n, 2), 2, nil)
		assert.Len(t, out, 2*n*2, "up n=%d", n)
		assert.True(t, up.Drained())

		down := newFFT[float32, complex64](t, Down, 1)
		got := testutil.Drive[float32](t, down, testutil.Ramp[float32](n, 1), 1, nil)
		assert.Len(t, got, (n+1)/2, "down n=%d", n)
		assert.Equal(t, StateDrained, down.State())
	}
}

func TestFFTStage_SineAccuracy(t *testing.T) {
	const n, freq = 2000, 1000.0
	margin := len(fftTaps(t))
	in := testutil.Sine[float64](n, 1, freq, testRate)

	up := testutil.Drive[float64](t, newFFT[float64, complex128](t, Up, 1), in, 1, nil)
	for j := margin; j < len(up)-margin; j++ {
		require.InDelta(t, sineAt(j, 2, 1, freq), up[j], 1e-3, "up output %d", j)
	}

	down := testutil.Drive[float64](t, newFFT[float64, complex128](t, Down, 1), in, 1, nil)
	for j := margin / 2; j < len(down)-margin/2; j++ {
		require.InDelta(t, sineAt(j, 1, 2, freq), down[j], 1e-3, "down output %d", j)
	}
}

// A constant input must come out at the same level in both directions;
// a missing filter multiply shows up as zero-stuffed spikes here.
func TestFFTStage_DCGain(t *testing.T) {
	const n = 3000
	margin := len(fftTaps(t))
	in := make([]float64, n*2)
	for i := range in {
		in[i] = 0.5
	}
	in32 := make([]float32, len(in))
	for i, v := range in {
		in32[i] = float32(v)
	}

	for _, dir := range []Direction{Up, Down} {
		t.Run(dir.String(), func(t *testing.T) {
			out := testutil.Drive[float64](t, newFFT[float64, complex128](t, dir, 2), in, 2, nil)
			out32 := testutil.Drive[float32](t, newFFT[float32, complex64](t, dir, 2), in32, 2, nil)
			for j := 2 * margin; j < len(out)-2*margin; j++ {
				require.InDelta(t, 0.5, out[j], 1e-4, "double sample %d", j)
				require.InDelta(t, 0.5, float64(out32[j]), 1e-3, "single sample %d", j)
			}
		})
	}
}

func TestFFTStage_SinglePrecisionTracksDouble(t *testing.T) {
	in64 := testutil.Sine[float64](1500, 2, 3000, testRate)
	in32 := testutil.Sine[float32](1500, 2, 3000, testRate)
	for _, dir := range []Direction{Up, Down} {
		ref := testutil.Drive[float64](t, newFFT[float64, complex128](t, dir, 2), in64, 2, nil)
		got := testutil.Drive[float32](t, newFFT[float32, complex64](t, dir, 2), in32, 2, nil)
		require.Len(t, got, len(ref))
		for i := range ref {
			require.InDelta(t, ref[i], float64(got[i]), 1e-3, "%s sample %d", dir, i)
		}
	}
}

func TestFFTStage_StereoChannelsStaySeparate(t *testing.T) {
	const n = 700
	mono := testutil.Sine[float64](n, 1, 2000, testRate)
	stereo := make([]float64, 2*n)
	for i, v := range mono {
		stereo[2*i] = v
		stereo[2*i+1] = -2 * v
	}
	for _, dir := range []Direction{Up, Down} {
		ref := testutil.Drive[float64](t, newFFT[float64, complex128](t, dir, 1), mono, 1, nil)
		got := testutil.Drive[float64](t, newFFT[float64, complex128](t, dir, 2), stereo, 2, nil)
		require.Len(t, got, 2*len(ref))
		for i, v := range ref {
			require.InDelta(t, v, got[2*i], 1e-9, "%s left %d", dir, i)
			require.InDelta(t, -2*v, got[2*i+1], 1e-9, "%s right %d", dir, i)
		}
	}
}

func TestFFTStage_ChunkingDoesNotChangeOutput(t *testing.T) {
	in := testutil.Sine[float64](1100, 2, 1500, testRate)
	for _, dir := range []Direction{Up, Down} {
		whole := testutil.Drive[float64](t, newFFT[float64, complex128](t, dir, 2), in, 2, nil)
		chunked := testutil.Drive[float64](t, newFFT[float64, complex128](t, dir, 2), in, 2, randomChunks(7))
		assert.Equal(t, whole, chunked, dir.String())
	}
}

func TestFFTStage_PutAfterFlush(t *testing.T) {
	s := newFFT[float32, complex64](t, Down, 1)
	require.NoError(t, s.PutN([]float32{1, 2, 3}, 3))
	require.NoError(t, s.Flush())
	assert.Equal(t, StateFlushing, s.State())
	require.ErrorIs(t, s.PutN([]float32{1}, 1), ErrInvalidState)

	out := make([]float32, 4)
	require.ErrorIs(t, s.GetN(out, 3), ErrPrecondition)
	require.NoError(t, s.GetN(out, 2))
	assert.True(t, s.Drained())
}

func TestNewFFTHalfband_Errors(t *testing.T) {
	taps := fftTaps(t)

	_, err := NewFFTHalfband[float64, complex128](Up, taps, 1, testBlock, singleOnly{})
	require.ErrorIs(t, err, ErrNotSupported)
	require.ErrorIs(t, err, fft.ErrUnsupported)

	_, err = NewFFTHalfband[float32, complex64](Up, taps, 1, testBlock, singleOnly{})
	require.NoError(t, err)

	_, err = NewFFTHalfband[float64, complex128](Up, taps[:len(taps)-1], 1, testBlock, nil)
	require.ErrorIs(t, err, ErrInvalidConfig)

	skewed := append([]float64(nil), taps...)
	skewed[0] += 0.1
	_, err = NewFFTHalfband[float64, complex128](Down, skewed, 1, testBlock, nil)
	require.ErrorIs(t, err, ErrInvalidConfig)

	_, err = NewFFTHalfband[float64, complex128](Down, taps, 3, testBlock, nil)
	require.ErrorIs(t, err, ErrInvalidConfig)
}
