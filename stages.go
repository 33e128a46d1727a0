package audiodsp

import (
	"fmt"

	"github.com/tphakala/go-audio-dsp/fft"
	"github.com/tphakala/go-audio-dsp/internal/biquad"
	"github.com/tphakala/go-audio-dsp/internal/engine"
	"github.com/tphakala/go-audio-dsp/internal/filter"
	"github.com/tphakala/go-audio-dsp/internal/kernel"
)

// Stage is a single streaming resampling operator. Every Stage follows the
// same push/pull contract as Resampler, but a standalone stage emits
// ceil(n*L/M) frames after Flush rather than trimming to the rate law.
type Stage[F Float] = engine.Stage[F]

// Direction selects doubling or halving for the 2x stages.
type Direction = engine.Direction

// Directions.
const (
	Up   = engine.Up
	Down = engine.Down
)

// State is the lifecycle position of a stage.
type State = engine.State

// Stage states.
const (
	StateFilling   = engine.StateFilling
	StateProducing = engine.StateProducing
	StateFlushing  = engine.StateFlushing
	StateDrained   = engine.StateDrained
)

// StageOptions are the settings shared by the standalone stage
// constructors.
type StageOptions struct {
	Channels int

	// BlockFrames sizes the stage buffers; 0 selects 1024.
	BlockFrames int

	// Kernel names the convolution variant; empty selects the best one.
	Kernel string

	// Attenuation is the stopband attenuation in dB; 0 selects 100.
	Attenuation float64
}

// Stage defaults.
const (
	defaultStageBlock       = 1024
	defaultStageAttenuation = 100.0
)

func (o StageOptions) withDefaults() StageOptions {
	if o.BlockFrames == 0 {
		o.BlockFrames = defaultStageBlock
	}
	if o.Attenuation == 0 {
		o.Attenuation = defaultStageAttenuation
	}
	return o
}

func (o StageOptions) validate() error {
	if o.BlockFrames < 1 || o.BlockFrames > maxBlockFrames {
		return fmt.Errorf("%w: block size %d outside [1, %d]", ErrInvalidConfig, o.BlockFrames, maxBlockFrames)
	}
	return nil
}

func lookupKernel[F Float](name string) (kernel.Kernel[F], error) {
	k, err := kernel.Lookup[F](name)
	if err != nil {
		return k, fmt.Errorf("%w: %w", ErrNotSupported, err)
	}
	return k, nil
}

// asStage keeps a failed constructor from yielding a typed nil Stage.
func asStage[F Float, S Stage[F]](s S, err error) (Stage[F], error) {
	if err != nil {
		return nil, err
	}
	return s, nil
}

// NewHalfbandStage returns a 2x stage running a designed 4k-tap half-band
// kernel of order k in the time domain.
func NewHalfbandStage[F Float](dir Direction, k int, opts StageOptions) (Stage[F], error) {
	opts = opts.withDefaults()
	if err := opts.validate(); err != nil {
		return nil, err
	}
	kern, err := lookupKernel[F](opts.Kernel)
	if err != nil {
		return nil, err
	}
	h, err := filter.DesignHalfband(k, opts.Attenuation)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	return asStage[F](engine.NewHalfband(dir, h, opts.Channels, opts.BlockFrames, kern))
}

// NewHalfbandStageFromCoeffs is NewHalfbandStage for caller-supplied
// half-band coefficients.
func NewHalfbandStageFromCoeffs[F Float](dir Direction, coeffs []float64, opts StageOptions) (Stage[F], error) {
	opts = opts.withDefaults()
	if err := opts.validate(); err != nil {
		return nil, err
	}
	kern, err := lookupKernel[F](opts.Kernel)
	if err != nil {
		return nil, err
	}
	return asStage[F](engine.NewHalfband(dir, coeffs, opts.Channels, opts.BlockFrames, kern))
}

// NewFFTHalfbandStage returns a 2x stage that filters by block FFT
// convolution in the given precision. A nil backend selects gonum.
func NewFFTHalfbandStage[F Float](dir Direction, precision fft.Precision, backend fft.Backend, opts StageOptions) (Stage[F], error) {
	opts = opts.withDefaults()
	if err := opts.validate(); err != nil {
		return nil, err
	}
	taps, err := filter.DesignFFTHalfband(opts.Attenuation)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	switch precision {
	case fft.Single:
		return asStage[F](engine.NewFFTHalfband[F, complex64](dir, taps, opts.Channels, opts.BlockFrames, backend))
	case fft.Double:
		return asStage[F](engine.NewFFTHalfband[F, complex128](dir, taps, opts.Channels, opts.BlockFrames, backend))
	default:
		return nil, fmt.Errorf("%w: unknown FFT precision %d", ErrInvalidConfig, int(precision))
	}
}

// NewPolyphaseStage returns a rational l/m stage with tapsPerPhase taps
// per phase and a cutoff relative to the lower Nyquist rate.
func NewPolyphaseStage[F Float](l, m, tapsPerPhase int, cutoff float64, opts StageOptions) (Stage[F], error) {
	opts = opts.withDefaults()
	if err := opts.validate(); err != nil {
		return nil, err
	}
	kern, err := lookupKernel[F](opts.Kernel)
	if err != nil {
		return nil, err
	}
	table, err := filter.DesignPhaseTable(filter.PhaseParams{
		L:            l,
		M:            m,
		TapsPerPhase: tapsPerPhase,
		Cutoff:       cutoff,
		Attenuation:  opts.Attenuation,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	return asStage[F](engine.NewPolyphase(table, opts.Channels, opts.BlockFrames, kern))
}

// BiquadCoefficients are raw second-order IIR coefficients.
type BiquadCoefficients = biquad.Coefficients

// Biquad is a cascade of second-order IIR sections over interleaved
// frames.
type Biquad[F Float] = biquad.Cascade[F]

// NewBiquad validates every section and returns the cascade. Unstable or
// non-finite coefficients fail with ErrInvalidConfig.
func NewBiquad[F Float](channels int, sections ...BiquadCoefficients) (*Biquad[F], error) {
	return biquad.NewCascade[F](channels, sections...)
}

// KernelInfo describes one convolution variant.
type KernelInfo = kernel.Info

// KernelVariants lists the convolution variants and whether this CPU
// supports each.
func KernelVariants() []KernelInfo {
	return kernel.Variants()
}
