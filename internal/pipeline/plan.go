// Package pipeline decomposes a rate conversion into stages and runs them
// as one stream.
//
// A plan reduces the rates to L/M, peels off as many factors of two as the
// quality allows as 2x half-band stages, and hands any remaining fraction
// to a single polyphase stage. A chain instantiates the plan, moves frames
// between the stages and carries Flush down the line.
package pipeline

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/tphakala/go-audio-dsp/fft"
	"github.com/tphakala/go-audio-dsp/internal/engine"
	"github.com/tphakala/go-audio-dsp/internal/mathutil"
)

// HalfbandMode selects how the 2x stages are evaluated.
type HalfbandMode int

const (
	// HalfbandTimeDomain runs the short 4k-tap half-band kernel directly.
	HalfbandTimeDomain HalfbandMode = iota
	// HalfbandFFTSingle runs a long filter by block convolution in complex64.
	HalfbandFFTSingle
	// HalfbandFFTDouble runs a long filter by block convolution in complex128.
	HalfbandFFTDouble
)

func (m HalfbandMode) String() string {
	switch m {
	case HalfbandTimeDomain:
		return "time-domain"
	case HalfbandFFTSingle:
		return "fft-single"
	case HalfbandFFTDouble:
		return "fft-double"
	default:
		return fmt.Sprintf("HalfbandMode(%d)", int(m))
	}
}

// StageKind identifies the stage implementation.
type StageKind int

const (
	KindHalfband StageKind = iota
	KindFFTHalfband
	KindPolyphase
)

func (k StageKind) String() string {
	switch k {
	case KindHalfband:
		return "halfband"
	case KindFFTHalfband:
		return "fft-halfband"
	case KindPolyphase:
		return "polyphase"
	default:
		return fmt.Sprintf("StageKind(%d)", int(k))
	}
}

// Params are the quality-dependent choices of a plan.
type Params struct {
	// MaxHalfbandStages caps the 2x stages, 0 to 8.
	MaxHalfbandStages int

	// Halfband selects the 2x stage implementation.
	Halfband HalfbandMode

	// HalfbandOrder is k of the 4k-tap time-domain kernel.
	HalfbandOrder int

	// TapsPerPhase of the polyphase stage.
	TapsPerPhase int

	// Cutoff of the polyphase stage as a fraction of the lower Nyquist rate.
	Cutoff float64

	// Attenuation in dB, shared by all stage designs.
	Attenuation float64
}

func (p Params) withDefaults() Params {
	if p.HalfbandOrder == 0 {
		p.HalfbandOrder = defaultHalfbandOrder
	}
	if p.TapsPerPhase == 0 {
		p.TapsPerPhase = defaultTapsPerPhase
	}
	if p.Cutoff == 0 {
		p.Cutoff = defaultCutoff
	}
	if p.Attenuation == 0 {
		p.Attenuation = defaultAttenuation
	}
	return p
}

func (p Params) validate() error {
	switch {
	case p.MaxHalfbandStages < 0 || p.MaxHalfbandStages > maxHalfbandStages:
		return fmt.Errorf("%w: %d half-band stages outside [0, %d]", engine.ErrInvalidConfig, p.MaxHalfbandStages, maxHalfbandStages)
	case p.Halfband < HalfbandTimeDomain || p.Halfband > HalfbandFFTDouble:
		return fmt.Errorf("%w: unknown half-band mode %d", engine.ErrInvalidConfig, int(p.Halfband))
	}
	return nil
}

// StageSpec describes one stage of a plan.
type StageSpec struct {
	Kind StageKind

	// L and M are the stage rate ratio.
	L, M int

	// Dir of a 2x stage.
	Dir engine.Direction

	// Order is k for time-domain half-band stages.
	Order int

	// Precision of an FFT stage.
	Precision fft.Precision

	// TapsPerPhase, Cutoff: polyphase only.
	TapsPerPhase int
	Cutoff       float64

	Attenuation float64
}

func (s StageSpec) String() string {
	switch s.Kind {
	case KindHalfband:
		return fmt.Sprintf("halfband-%s(k=%d)", s.Dir, s.Order)
	case KindFFTHalfband:
		return fmt.Sprintf("fft-halfband-%s(%s)", s.Dir, s.Precision)
	default:
		return fmt.Sprintf("polyphase(%d/%d, %d taps)", s.L, s.M, s.TapsPerPhase)
	}
}

// Plan is the stage decomposition of one rate conversion.
type Plan struct {
	SrcRate, DstRate int

	// L/M is dst/src in lowest terms.
	L, M int

	Stages []StageSpec
}

// BuildPlan decomposes src -> dst. Equal rates give an empty plan.
func BuildPlan(src, dst int, p Params) (*Plan, error) {
	if src < 1 || dst < 1 {
		return nil, fmt.Errorf("%w: rates %d -> %d must be positive", engine.ErrInvalidConfig, src, dst)
	}
	if err := p.validate(); err != nil {
		return nil, err
	}
	p = p.withDefaults()

	l, m := mathutil.ReduceRatio(src, dst)
	plan := &Plan{SrcRate: src, DstRate: dst, L: l, M: m}
	if l == m {
		return plan, nil
	}

	// Halve only while the remaining conversion still goes the same way.
	dir := engine.Up
	var s int
	if l > m {
		s = min(mathutil.TrailingZeros(l), p.MaxHalfbandStages)
		for s > 0 && l>>s < m {
			s--
		}
	} else {
		dir = engine.Down
		s = min(mathutil.TrailingZeros(m), p.MaxHalfbandStages)
		for s > 0 && l > m>>s {
			s--
		}
	}
	for range s {
		plan.Stages = append(plan.Stages, halfbandSpec(dir, p))
	}

	rl, rm := l, m
	if dir == engine.Up {
		rl >>= s
	} else {
		rm >>= s
	}
	if rl != rm {
		if rl > maxPhases {
			return nil, fmt.Errorf("%w: %d -> %d needs %d polyphase phases, limit %d",
				engine.ErrNotSupported, src, dst, rl, maxPhases)
		}
		plan.Stages = append(plan.Stages, StageSpec{
			Kind:         KindPolyphase,
			L:            rl,
			M:            rm,
			TapsPerPhase: p.TapsPerPhase,
			Cutoff:       p.Cutoff,
			Attenuation:  p.Attenuation,
		})
	}
	return plan, nil
}

func halfbandSpec(dir engine.Direction, p Params) StageSpec {
	s := StageSpec{Kind: KindHalfband, Dir: dir, Order: p.HalfbandOrder, Attenuation: p.Attenuation}
	s.L, s.M = 2, 1
	if dir == engine.Down {
		s.L, s.M = 1, 2
	}
	switch p.Halfband {
	case HalfbandFFTSingle:
		s.Kind, s.Order, s.Precision = KindFFTHalfband, 0, fft.Single
	case HalfbandFFTDouble:
		s.Kind, s.Order, s.Precision = KindFFTHalfband, 0, fft.Double
	}
	return s
}

// String lists the stages in order.
func (p *Plan) String() string {
	if len(p.Stages) == 0 {
		return "passthrough"
	}
	names := make([]string, len(p.Stages))
	for i, s := range p.Stages {
		names[i] = s.String()
	}
	return strings.Join(names, " -> ")
}

// LogValue implements slog.LogValuer.
func (p *Plan) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int("src", p.SrcRate),
		slog.Int("dst", p.DstRate),
		slog.String("ratio", fmt.Sprintf("%d/%d", p.L, p.M)),
		slog.String("stages", p.String()),
	)
}
