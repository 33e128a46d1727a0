package audiodsp

import (
	"bytes"
	"fmt"
	"log/slog"
	"math"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tphakala/go-audio-dsp/fft"
	"github.com/tphakala/go-audio-dsp/internal/kernel"
	"github.com/tphakala/go-audio-dsp/internal/testutil"
)

const testMaxRun = 10

func newResampler[F Float](t testing.TB, in, out, channels int, preset QualityPreset) *Resampler[F] {
	t.Helper()
	r, err := New[F](&Config{
		InputRate:   in,
		OutputRate:  out,
		Channels:    channels,
		Quality:     QualitySpec{Preset: preset},
		BlockFrames: 256,
	})
	require.NoError(t, err)
	return r
}

func randomChunks(seed uint64) func() int {
	rng := rand.New(rand.NewPCG(seed, 0x5eed))
	return func() int { return 1 + rng.IntN(testMaxRun) }
}

// rateLaw is the composite output length for n input frames.
func rateLaw(n, l, m int) int {
	if n == 0 {
		return 0
	}
	return (n-1)*l/m + 1
}

func TestResampler_RateLaw(t *testing.T) {
	pairs := []struct{ in, out int }{
		{44100, 48000},
		{48000, 44100},
		{48000, 96000},
		{96000, 48000},
		{192000, 44100},
		{8000, 48000},
		{44100, 44100},
		{48000, 16000},
	}
	presets := []QualityPreset{QualityQuick, QualityMedium, QualityHigh, QualityVeryHigh}
	lengths := []int{0, 1, 2, 3, 17, 640}

	for _, p := range pairs {
		for _, preset := range presets {
			t.Run(fmt.Sprintf("%d-%d/%s", p.in, p.out, preset), func(t *testing.T) {
				for _, n := range lengths {
					r := newResampler[float32](t, p.in, p.out, stereoChannels, preset)
					l, m := r.Ratio()
					out := testutil.Drive[float32](t, r, testutil.Ramp[float32](n, stereoChannels), stereoChannels, nil)
					assert.Len(t, out, rateLaw(n, l, m)*stereoChannels, "n=%d", n)
					assert.True(t, r.Drained(), "n=%d", n)
				}
			})
		}
	}
}

func TestResampler_SingleFrameYieldsOne(t *testing.T) {
	r := newResampler[float64](t, 44100, 48000, 1, QualityMedium)
	require.NoError(t, r.PutN([]float64{0.5}, 1))
	require.NoError(t, r.Flush())
	assert.Equal(t, 1, r.NumCanGet())
}

func TestResampler_EmptyInputDrainsImmediately(t *testing.T) {
	r := newResampler[float32](t, 48000, 44100, 2, QualityHigh)
	require.NoError(t, r.Flush())
	assert.Zero(t, r.NumCanGet())
	assert.True(t, r.Drained())
}

func TestResampler_ChunkingDoesNotChangeOutput(t *testing.T) {
	input := testutil.Sine[float32](900, stereoChannels, 1000, 44100)
	for _, preset := range []QualityPreset{QualityLow, QualityHigh, QualityVeryHigh} {
		t.Run(preset.String(), func(t *testing.T) {
			whole, err := newResampler[float32](t, 44100, 48000, stereoChannels, preset).Process(input)
			require.NoError(t, err)
			for seed := range uint64(3) {
				r := newResampler[float32](t, 44100, 48000, stereoChannels, preset)
				got := testutil.Drive[float32](t, r, input, stereoChannels, randomChunks(seed))
				assert.Equal(t, whole, got, "seed %d", seed)
			}
		})
	}
}

func TestResampler_SineAccuracy(t *testing.T) {
	const (
		freq   = 1000.0
		frames = 4000
		margin = 200
	)
	tests := []struct {
		in, out int
		preset  QualityPreset
	}{
		{44100, 48000, QualityMedium},
		{48000, 44100, QualityHigh},
		{44100, 96000, QualityVeryHigh},
		{48000, 96000, QualityHigh},
		{96000, 16000, QualityMedium},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprintf("%d-%d/%s", tt.in, tt.out, tt.preset), func(t *testing.T) {
			out, err := ResampleMono(testutil.Sine[float64](frames, 1, freq, float64(tt.in)), tt.in, tt.out, tt.preset)
			require.NoError(t, err)
			testutil.AssertNoNaNOrInf(t, out)
			for j := margin; j < len(out)-margin; j++ {
				want := math.Sin(2 * math.Pi * freq * float64(j) / float64(tt.out))
				require.InDelta(t, want, out[j], 2e-3, "output %d", j)
			}
		})
	}
}

func TestResampler_PassthroughIsExact(t *testing.T) {
	in := testutil.Ramp[float64](123, 2)
	r := newResampler[float64](t, 48000, 48000, 2, QualityVeryHigh)
	assert.Empty(t, r.Stages())
	out, err := r.Process(in)
	require.NoError(t, err)
	assert.Equal(t, in, out)
}

func TestResampler_StateErrors(t *testing.T) {
	r := newResampler[float32](t, 44100, 48000, 1, QualityMedium)
	buf := make([]float32, 8)

	require.ErrorIs(t, r.GetN(buf, 1), ErrPrecondition)
	require.ErrorIs(t, r.PutN(buf, r.NumCanPut()+1), ErrPrecondition)

	require.NoError(t, r.PutN(buf, 8))
	require.NoError(t, r.Flush())
	require.NoError(t, r.Flush())
	assert.Zero(t, r.NumCanPut())

	err := r.PutN(buf, 1)
	require.ErrorIs(t, err, ErrInvalidState)
	require.ErrorIs(t, err, ErrPrecondition)
	require.ErrorIs(t, r.GetN(buf, r.NumCanGet()+1), ErrPrecondition)
}

func TestResampler_ResetReplays(t *testing.T) {
	in := testutil.Sine[float64](700, 1, 440, 48000)
	r := newResampler[float64](t, 48000, 22050, 1, QualityHigh)
	first := testutil.Drive[float64](t, r, in, 1, nil)
	r.Reset()
	assert.False(t, r.Drained())
	second := testutil.Drive[float64](t, r, in, 1, randomChunks(9))
	assert.Equal(t, first, second)
}

func TestResampler_Float32TracksFloat64(t *testing.T) {
	in64 := testutil.Sine[float64](2000, 1, 3000, 44100)
	in32 := testutil.Sine[float32](2000, 1, 3000, 44100)

	out64, err := ResampleMono(in64, 44100, 48000, QualityVeryHigh)
	require.NoError(t, err)
	out32, err := ResampleMono(in32, 44100, 48000, QualityVeryHigh)
	require.NoError(t, err)

	require.Len(t, out32, len(out64))
	for i := range out64 {
		require.InDelta(t, out64[i], float64(out32[i]), 1e-4, "sample %d", i)
	}
}

func TestResampler_KernelVariantsAgree(t *testing.T) {
	in := testutil.Sine[float32](1500, 2, 700, 44100)
	var ref []float32
	for _, v := range KernelVariants() {
		if !v.Supported {
			continue
		}
		r, err := New[float32](&Config{
			InputRate: 44100, OutputRate: 48000, Channels: 2,
			Quality: QualitySpec{Preset: QualityMedium},
			Kernel:  v.Name,
		})
		require.NoError(t, err)
		assert.Equal(t, v.Name, r.Info().Kernel)
		out, err := r.Process(in)
		require.NoError(t, err)
		if ref == nil {
			ref = out
			continue
		}
		testutil.AssertSlicesInDelta(t, ref, out, 1e-5)
	}
}

type singleOnly struct{ fft.Gonum }

func (singleOnly) IsSupported(p fft.Precision) bool { return p == fft.Single }

func TestNew_Unsupported(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
	}{
		{"too many phases", Config{InputRate: 44100, OutputRate: 44101, Channels: 1}},
		{"unknown kernel", Config{InputRate: 44100, OutputRate: 48000, Channels: 1, Kernel: "vliw"}},
		{"backend lacks double", Config{
			InputRate: 48000, OutputRate: 96000, Channels: 1,
			Quality:    QualitySpec{Preset: QualityVeryHigh},
			FFTBackend: singleOnly{},
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New[float32](&tt.cfg)
			require.ErrorIs(t, err, ErrNotSupported)
		})
	}

	// The same backend serves single precision.
	_, err := New[float32](&Config{
		InputRate: 48000, OutputRate: 96000, Channels: 1,
		Quality:    QualitySpec{Preset: QualityHigh},
		FFTBackend: singleOnly{},
	})
	require.NoError(t, err)
}

func TestNew_NilConfig(t *testing.T) {
	_, err := New[float64](nil)
	require.ErrorIs(t, err, ErrInvalidConfig)
}

func TestResampler_Info(t *testing.T) {
	r, err := New[float64](&Config{
		InputRate: 44100, OutputRate: 96000, Channels: 2,
		Quality: QualitySpec{Preset: QualityMedium},
		Kernel:  kernel.VariantGeneric,
	})
	require.NoError(t, err)

	info := r.Info()
	assert.Equal(t, 320, info.L)
	assert.Equal(t, 147, info.M)
	assert.Equal(t, 2, info.Channels)
	assert.Equal(t, "halfband-up(k=12) -> polyphase(160/147, 24 taps)", info.Plan)
	assert.Len(t, info.Stages, 2)
	assert.Equal(t, kernel.VariantGeneric, info.Kernel)
	assert.Equal(t, "gonum", info.FFTBackend)
	assert.NotEmpty(t, info.CPU)
	assert.Equal(t, GetPresetSpec(QualityMedium), info.Quality)
}

func TestSetLogger_LogsPlan(t *testing.T) {
	var buf bytes.Buffer
	SetLogger(slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})))
	t.Cleanup(func() { SetLogger(nil) })

	_ = newResampler[float32](t, 44100, 96000, 1, QualityMedium)
	out := buf.String()
	assert.Contains(t, out, "resampler created")
	assert.Contains(t, out, "polyphase(160/147")
	assert.Contains(t, out, "quality=medium")

	SetLogger(nil)
	buf.Reset()
	_ = newResampler[float32](t, 44100, 96000, 1, QualityMedium)
	assert.Empty(t, buf.String())
}
