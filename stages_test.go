package audiodsp

import (
	"math/cmplx"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tphakala/go-audio-dsp/fft"
	"github.com/tphakala/go-audio-dsp/internal/testutil"
)

func TestStandaloneStages_OutputCount(t *testing.T) {
	const n = 301
	opts := StageOptions{Channels: 2, BlockFrames: 128}

	hbUp, err := NewHalfbandStage[float32](Up, 8, opts)
	require.NoError(t, err)
	hbDown, err := NewHalfbandStage[float32](Down, 8, opts)
	require.NoError(t, err)
	fftUp, err := NewFFTHalfbandStage[float32](Up, fft.Single, nil, opts)
	require.NoError(t, err)
	fftDown, err := NewFFTHalfbandStage[float32](Down, fft.Double, nil, opts)
	require.NoError(t, err)
	poly, err := NewPolyphaseStage[float32](3, 2, 16, 0.9, opts)
	require.NoError(t, err)

	tests := []struct {
		stage Stage[float32]
		want  int
	}{
		{hbUp, 2 * n},
		{hbDown, (n + 1) / 2},
		{fftUp, 2 * n},
		{fftDown, (n + 1) / 2},
		{poly, (3*n + 1) / 2},
	}
	in := testutil.Ramp[float32](n, 2)
	for _, tt := range tests {
		t.Run(tt.stage.Name(), func(t *testing.T) {
			out := testutil.Drive[float32](t, tt.stage, in, 2, randomChunks(3))
			assert.Len(t, out, tt.want*2)
			assert.Equal(t, StateDrained, tt.stage.State())
		})
	}
}

func TestNewHalfbandStageFromCoeffs_AllPass(t *testing.T) {
	// h = [-1/16, 0, 9/16, 1, 9/16, 0, -1/16, 0] up to the 1/2 gain:
	// even outputs copy the input exactly.
	coeffs := []float64{-1.0 / 32, 0, 9.0 / 32, 0.5, 9.0 / 32, 0, -1.0 / 32, 0}
	s, err := NewHalfbandStageFromCoeffs[float64](Up, coeffs, StageOptions{Channels: 1})
	require.NoError(t, err)

	in := testutil.Ramp[float64](16, 1)
	out := testutil.Drive[float64](t, s, in, 1, nil)
	require.Len(t, out, 32)
	for i, v := range in {
		assert.InDelta(t, v, out[2*i], 1e-12, "frame %d", i)
	}
}

func TestStageConstructors_Errors(t *testing.T) {
	_, err := NewHalfbandStage[float32](Up, 0, StageOptions{Channels: 1})
	require.ErrorIs(t, err, ErrInvalidConfig)

	_, err = NewHalfbandStage[float32](Up, 8, StageOptions{Channels: 3})
	require.ErrorIs(t, err, ErrInvalidConfig)

	_, err = NewHalfbandStage[float32](Up, 8, StageOptions{Channels: 1, Kernel: "nope"})
	require.ErrorIs(t, err, ErrNotSupported)

	_, err = NewHalfbandStageFromCoeffs[float32](Down, []float64{1, 2, 3}, StageOptions{Channels: 1})
	require.ErrorIs(t, err, ErrInvalidConfig)

	_, err = NewFFTHalfbandStage[float64](Up, fft.Precision(7), nil, StageOptions{Channels: 1})
	require.ErrorIs(t, err, ErrInvalidConfig)

	_, err = NewFFTHalfbandStage[float64](Up, fft.Double, singleOnly{}, StageOptions{Channels: 1})
	require.ErrorIs(t, err, ErrNotSupported)

	_, err = NewPolyphaseStage[float64](3, 2, 16, 1.5, StageOptions{Channels: 1})
	require.ErrorIs(t, err, ErrInvalidConfig)

	_, err = NewPolyphaseStage[float64](3, 2, 16, 0.9, StageOptions{Channels: 1, BlockFrames: -2})
	require.ErrorIs(t, err, ErrInvalidConfig)
}

func TestNewBiquad(t *testing.T) {
	// One-pole smoother y = 0.5x + 0.5y[-1] in biquad form.
	b, err := NewBiquad[float32](1, BiquadCoefficients{B0: 0.5, A0: 1, A1: -0.5})
	require.NoError(t, err)
	assert.InDelta(t, 1, cmplx.Abs(b.Response(0)), 1e-12)

	buf := []float32{1, 0, 0, 0}
	require.NoError(t, b.Process(buf, buf, 4))
	testutil.AssertSlicesInDelta(t, []float32{0.5, 0.25, 0.125, 0.0625}, buf, 1e-7)

	_, err = NewBiquad[float32](1, BiquadCoefficients{B0: 1, A2: 1.2})
	require.ErrorIs(t, err, ErrInvalidConfig)
}

func TestKernelVariants_IncludeGeneric(t *testing.T) {
	var found bool
	for _, v := range KernelVariants() {
		if v.Name == "generic" {
			found = true
			assert.True(t, v.Supported)
		}
	}
	assert.True(t, found)
}
