package audiodsp

import (
	"fmt"

	"github.com/tphakala/go-audio-dsp/fft"
	"github.com/tphakala/go-audio-dsp/internal/engine"
	"github.com/tphakala/go-audio-dsp/internal/pipeline"
)

// Float is the sample type constraint: float32 or float64.
type Float = engine.Float

// Config holds resampling configuration.
type Config struct {
	// InputRate is the sample rate of input audio in Hz.
	InputRate int

	// OutputRate is the desired output sample rate in Hz.
	OutputRate int

	// Channels is the number of interleaved channels, 1 or 2.
	Channels int

	// Quality determines the stage plan and filter parameters.
	Quality QualitySpec

	// BlockFrames sizes the internal buffers of every stage.
	// Set to 0 to use the default.
	BlockFrames int

	// Kernel names the convolution variant ("generic", "unrolled", "simd").
	// Empty selects the fastest variant this CPU supports.
	Kernel string

	// FFTBackend provides transforms for the FFT half-band stages.
	// nil selects the gonum backend.
	FFTBackend fft.Backend
}

// QualitySpec defines resampling quality parameters.
//
// For a named preset, non-zero fields override the preset's values. With
// QualityCustom every field is taken as given and zero fields fall back to
// the pipeline defaults.
type QualitySpec struct {
	Preset QualityPreset

	// MaxHalfbandStages caps the 2x stages peeled off the ratio, 0 to 8.
	MaxHalfbandStages int

	// Halfband selects time-domain or FFT evaluation of the 2x stages.
	Halfband HalfbandMode

	// HalfbandOrder is k of the 4k-tap time-domain half-band kernel.
	HalfbandOrder int

	// TapsPerPhase of the polyphase stage.
	TapsPerPhase int

	// Cutoff of the polyphase stage as a fraction of the lower Nyquist
	// rate, in (0, 1].
	Cutoff float64

	// Attenuation is the stopband attenuation in dB.
	Attenuation float64
}

// QualityPreset enumerates predefined quality levels.
type QualityPreset int

const (
	// QualityQuick uses one short half-band stage and an 8-tap polyphase.
	QualityQuick QualityPreset = iota

	// QualityLow suits speech and previews.
	QualityLow

	// QualityMedium suits most music playback.
	QualityMedium

	// QualityHigh runs the 2x stages as single precision block convolution.
	QualityHigh

	// QualityVeryHigh runs the 2x stages in double precision.
	QualityVeryHigh

	// QualityCustom indicates manual configuration of parameters.
	QualityCustom
)

func (q QualityPreset) String() string {
	switch q {
	case QualityQuick:
		return "quick"
	case QualityLow:
		return "low"
	case QualityMedium:
		return "medium"
	case QualityHigh:
		return "high"
	case QualityVeryHigh:
		return "very-high"
	case QualityCustom:
		return "custom"
	default:
		return fmt.Sprintf("QualityPreset(%d)", int(q))
	}
}

// HalfbandMode selects how the 2x stages are evaluated.
type HalfbandMode = pipeline.HalfbandMode

// Half-band modes.
const (
	HalfbandTimeDomain = pipeline.HalfbandTimeDomain
	HalfbandFFTSingle  = pipeline.HalfbandFFTSingle
	HalfbandFFTDouble  = pipeline.HalfbandFFTDouble
)

// Errors returned by the resampler and its stages. Test with errors.Is.
var (
	// ErrInvalidConfig indicates invalid configuration parameters.
	ErrInvalidConfig = engine.ErrInvalidConfig

	// ErrNotSupported indicates a valid configuration this build or CPU
	// cannot run.
	ErrNotSupported = engine.ErrNotSupported

	// ErrPrecondition indicates a put or get beyond the advertised headroom.
	ErrPrecondition = engine.ErrPrecondition

	// ErrInvalidState indicates an operation illegal after Flush.
	// It wraps ErrPrecondition.
	ErrInvalidState = engine.ErrInvalidState
)

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.InputRate <= 0 || c.OutputRate <= 0 {
		return fmt.Errorf("%w: sample rates must be positive", ErrInvalidConfig)
	}

	if c.Channels < 1 {
		return fmt.Errorf("%w: channels must be at least 1", ErrInvalidConfig)
	}

	if c.Channels > maxChannels {
		return fmt.Errorf("%w: too many channels (max %d)", ErrInvalidConfig, maxChannels)
	}

	// Integer form of minRatio <= out/in <= maxRatio.
	in, out := int64(c.InputRate), int64(c.OutputRate)
	if out*maxRatioFactor < in || out > in*maxRatioFactor {
		return fmt.Errorf("%w: resampling ratio %d/%d out of range (1/%d to %d)",
			ErrInvalidConfig, c.OutputRate, c.InputRate, maxRatioFactor, maxRatioFactor)
	}

	if c.BlockFrames < 0 || c.BlockFrames > maxBlockFrames {
		return fmt.Errorf("%w: block size %d outside [0, %d]", ErrInvalidConfig, c.BlockFrames, maxBlockFrames)
	}

	return c.Quality.Validate()
}

// Validate checks if the quality specification is valid.
func (q *QualitySpec) Validate() error {
	if q.Preset < QualityQuick || q.Preset > QualityCustom {
		return fmt.Errorf("%w: unknown quality preset %d", ErrInvalidConfig, int(q.Preset))
	}

	if q.MaxHalfbandStages < 0 || q.MaxHalfbandStages > maxHalfbandStages {
		return fmt.Errorf("%w: half-band stages must be 0-%d", ErrInvalidConfig, maxHalfbandStages)
	}

	if q.Halfband < HalfbandTimeDomain || q.Halfband > HalfbandFFTDouble {
		return fmt.Errorf("%w: unknown half-band mode %d", ErrInvalidConfig, int(q.Halfband))
	}

	if q.HalfbandOrder < 0 || q.TapsPerPhase < 0 {
		return fmt.Errorf("%w: filter lengths must not be negative", ErrInvalidConfig)
	}

	if q.Cutoff < 0 || q.Cutoff > 1 {
		return fmt.Errorf("%w: cutoff must be in (0, 1]", ErrInvalidConfig)
	}

	if q.Attenuation < 0 {
		return fmt.Errorf("%w: attenuation must not be negative", ErrInvalidConfig)
	}

	return nil
}

// Resolve returns the effective parameters: the preset's values with any
// non-zero fields of q applied on top.
func (q QualitySpec) Resolve() QualitySpec {
	if q.Preset == QualityCustom {
		return q
	}
	r := GetPresetSpec(q.Preset)
	if q.MaxHalfbandStages != 0 {
		r.MaxHalfbandStages = q.MaxHalfbandStages
	}
	if q.Halfband != HalfbandTimeDomain {
		r.Halfband = q.Halfband
	}
	if q.HalfbandOrder != 0 {
		r.HalfbandOrder = q.HalfbandOrder
	}
	if q.TapsPerPhase != 0 {
		r.TapsPerPhase = q.TapsPerPhase
	}
	if q.Cutoff != 0 {
		r.Cutoff = q.Cutoff
	}
	if q.Attenuation != 0 {
		r.Attenuation = q.Attenuation
	}
	return r
}

// GetPresetSpec returns the quality specification for a preset.
func GetPresetSpec(preset QualityPreset) QualitySpec {
	switch preset {
	case QualityQuick:
		return QualitySpec{
			Preset:            QualityQuick,
			MaxHalfbandStages: quickHalfbandStages,
			Halfband:          HalfbandTimeDomain,
			HalfbandOrder:     quickHalfbandOrder,
			TapsPerPhase:      quickTapsPerPhase,
			Cutoff:            quickCutoff,
			Attenuation:       quickAttenuation,
		}

	case QualityLow:
		return QualitySpec{
			Preset:            QualityLow,
			MaxHalfbandStages: lowHalfbandStages,
			Halfband:          HalfbandTimeDomain,
			HalfbandOrder:     lowHalfbandOrder,
			TapsPerPhase:      lowTapsPerPhase,
			Cutoff:            lowCutoff,
			Attenuation:       lowAttenuation,
		}

	case QualityMedium:
		return QualitySpec{
			Preset:            QualityMedium,
			MaxHalfbandStages: mediumHalfbandStages,
			Halfband:          HalfbandTimeDomain,
			HalfbandOrder:     mediumHalfbandOrder,
			TapsPerPhase:      mediumTapsPerPhase,
			Cutoff:            mediumCutoff,
			Attenuation:       mediumAttenuation,
		}

	case QualityHigh:
		return QualitySpec{
			Preset:            QualityHigh,
			MaxHalfbandStages: maxHalfbandStages,
			Halfband:          HalfbandFFTSingle,
			TapsPerPhase:      highTapsPerPhase,
			Cutoff:            highCutoff,
			Attenuation:       highAttenuation,
		}

	case QualityVeryHigh:
		return QualitySpec{
			Preset:            QualityVeryHigh,
			MaxHalfbandStages: maxHalfbandStages,
			Halfband:          HalfbandFFTDouble,
			TapsPerPhase:      veryHighTapsPerPhase,
			Cutoff:            veryHighCutoff,
			Attenuation:       veryHighAttenuation,
		}

	default:
		return GetPresetSpec(QualityMedium)
	}
}

// Info describes a constructed resampler.
type Info struct {
	InputRate, OutputRate int

	// L/M is OutputRate/InputRate in lowest terms.
	L, M int

	Channels int

	// Quality is the resolved quality specification.
	Quality QualitySpec

	// Plan lists the stages in order, or "passthrough".
	Plan string

	// Stages holds each instantiated stage's name.
	Stages []string

	// Kernel is the convolution variant in use.
	Kernel string

	// FFTBackend names the transform provider.
	FFTBackend string

	// CPU summarizes the detected SIMD features.
	CPU string
}
