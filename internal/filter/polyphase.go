package filter

import (
	"fmt"
	"math"

	"github.com/tphakala/go-audio-dsp/internal/mathutil"
)

const (
	minTapsPerPhase = 2
	maxTapsPerPhase = 4096
	maxPhases       = 4096
)

// PhaseParams describes a rational L/M polyphase design.
type PhaseParams struct {
	// L is the interpolation factor (number of phases), M the decimation.
	L, M int

	// TapsPerPhase at unity ratio; widened by M/L when decimating so the
	// narrower cutoff keeps the same transition quality.
	TapsPerPhase int

	// Cutoff as a fraction of the lower of the two Nyquist rates, in (0, 1].
	Cutoff float64

	// Attenuation is the stopband attenuation in dB.
	Attenuation float64
}

// Validate checks the parameters.
func (p *PhaseParams) Validate() error {
	switch {
	case p.L < 1 || p.L > maxPhases:
		return fmt.Errorf("%w: %d phases outside [1, %d]", ErrInvalidParams, p.L, maxPhases)
	case p.M < 1:
		return fmt.Errorf("%w: decimation %d must be positive", ErrInvalidParams, p.M)
	case p.TapsPerPhase < minTapsPerPhase || p.TapsPerPhase > maxTapsPerPhase:
		return fmt.Errorf("%w: %d taps per phase outside [%d, %d]", ErrInvalidParams, p.TapsPerPhase, minTapsPerPhase, maxTapsPerPhase)
	case p.Cutoff <= 0 || p.Cutoff > 1:
		return fmt.Errorf("%w: cutoff %g outside (0, 1]", ErrInvalidParams, p.Cutoff)
	case p.Attenuation < 0:
		return fmt.Errorf("%w: attenuation %g dB is negative", ErrInvalidParams, p.Attenuation)
	}
	return nil
}

// PhaseTable holds L coefficient rows of Taps entries each. Row p weights
// the Taps input frames x[b-Taps/2+1] .. x[b+Taps/2] for an output at input
// time b + p/L.
type PhaseTable struct {
	L, M   int
	Taps   int
	Coeffs []float64
}

// Phase returns the coefficient row for phase p.
func (t *PhaseTable) Phase(p int) []float64 {
	return t.Coeffs[p*t.Taps : (p+1)*t.Taps]
}

// DesignPhaseTable samples a Kaiser-windowed sinc at the L sub-sample
// offsets and normalizes every row to unity DC gain.
func DesignPhaseTable(p PhaseParams) (*PhaseTable, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}

	ratio := float64(p.L) / float64(p.M)
	fc := p.Cutoff * math.Min(1, ratio)

	taps := p.TapsPerPhase
	if p.M > p.L {
		taps = (taps*p.M + p.L - 1) / p.L
	}
	taps += taps % 2
	if taps > maxTapsPerPhase {
		return nil, fmt.Errorf("%w: ratio %d/%d needs %d taps per phase", ErrInvalidParams, p.L, p.M, taps)
	}

	beta := mathutil.KaiserBeta(p.Attenuation)
	i0Beta := mathutil.BesselI0(beta)
	radius := float64(taps/2) * float64(p.L)

	t := &PhaseTable{L: p.L, M: p.M, Taps: taps, Coeffs: make([]float64, p.L*taps)}
	for ph := range p.L {
		row := t.Phase(ph)
		var sum float64
		for i := range row {
			m := i - taps/2 + 1
			u := float64(ph - p.L*m) // distance in 1/L input frames
			row[i] = fc * sinc(fc*u/float64(p.L)) * kaiserAt(u/radius, beta, i0Beta)
			sum += row[i]
		}
		for i := range row {
			row[i] /= sum
		}
	}
	return t, nil
}
