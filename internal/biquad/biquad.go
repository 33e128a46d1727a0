// Package biquad implements second-order IIR sections in transposed
// direct form II over interleaved frames, and cascades of them.
//
// Coefficients are raw: callers supply b0..b2 and a0..a2 from whatever
// design they like. New normalizes by a0 and rejects sections whose poles
// lie on or outside the unit circle.
package biquad

import (
	"fmt"
	"math"

	"github.com/tphakala/go-audio-dsp/internal/engine"
)

// Float is the sample type processed by a section.
type Float interface {
	float32 | float64
}

// Coefficients of H(z) = (B0 + B1 z^-1 + B2 z^-2) / (A0 + A1 z^-1 + A2 z^-2).
// A zero A0 is read as 1.
type Coefficients struct {
	B0, B1, B2 float64
	A0, A1, A2 float64
}

// Normalized returns c divided through by A0, with A0 set to 1.
func (c Coefficients) Normalized() Coefficients {
	a0 := c.A0
	if a0 == 0 {
		a0 = 1
	}
	return Coefficients{
		B0: c.B0 / a0, B1: c.B1 / a0, B2: c.B2 / a0,
		A0: 1, A1: c.A1 / a0, A2: c.A2 / a0,
	}
}

// Validate reports non-finite coefficients and unstable pole pairs.
func (c Coefficients) Validate() error {
	for _, v := range [...]float64{c.B0, c.B1, c.B2, c.A0, c.A1, c.A2} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("%w: non-finite biquad coefficient %v", engine.ErrInvalidConfig, v)
		}
	}
	n := c.Normalized()
	// Stability triangle for z^2 + a1 z + a2.
	if math.Abs(n.A2) >= 1 || math.Abs(n.A1) >= 1+n.A2 {
		return fmt.Errorf("%w: unstable biquad (a1=%g, a2=%g)", engine.ErrInvalidConfig, n.A1, n.A2)
	}
	return nil
}

// Response evaluates H at normalized frequency f (cycles per sample).
func (c Coefficients) Response(f float64) complex128 {
	n := c.Normalized()
	z1 := complex(math.Cos(2*math.Pi*f), -math.Sin(2*math.Pi*f))
	z2 := z1 * z1
	num := complex(n.B0, 0) + complex(n.B1, 0)*z1 + complex(n.B2, 0)*z2
	den := 1 + complex(n.A1, 0)*z1 + complex(n.A2, 0)*z2
	return num / den
}

// Section is one biquad with independent state per channel. State is
// kept in float64 regardless of F.
type Section[F Float] struct {
	c        Coefficients
	channels int
	d0, d1   []float64
}

// New validates c and returns a section for the given channel count.
func New[F Float](c Coefficients, channels int) (*Section[F], error) {
	if channels < 1 || channels > engine.MaxChannels {
		return nil, fmt.Errorf("%w: %d channels (want 1..%d)", engine.ErrInvalidConfig, channels, engine.MaxChannels)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &Section[F]{
		c:        c.Normalized(),
		channels: channels,
		d0:       make([]float64, channels),
		d1:       make([]float64, channels),
	}, nil
}

// Coefficients returns the normalized coefficients.
func (s *Section[F]) Coefficients() Coefficients { return s.c }

// Channels returns the samples per frame.
func (s *Section[F]) Channels() int { return s.channels }

// Process filters n interleaved frames of src into dst. dst and src may
// be the same slice.
func (s *Section[F]) Process(dst, src []F, n int) error {
	if err := s.check(dst, src, n); err != nil {
		return err
	}
	s.process(dst, src, n)
	return nil
}

func (s *Section[F]) check(dst, src []F, n int) error {
	need := n * s.channels
	if n < 0 || len(src) < need || len(dst) < need {
		return fmt.Errorf("%w: %d frames with src=%d dst=%d samples", engine.ErrPrecondition, n, len(src), len(dst))
	}
	return nil
}

func (s *Section[F]) process(dst, src []F, n int) {
	b0, b1, b2, a1, a2 := s.c.B0, s.c.B1, s.c.B2, s.c.A1, s.c.A2
	ch := s.channels
	for c := range ch {
		d0, d1 := s.d0[c], s.d1[c]
		for i := c; i < n*ch; i += ch {
			x := float64(src[i])
			y := b0*x + d0
			d0 = b1*x - a1*y + d1
			d1 = b2*x - a2*y
			dst[i] = F(y)
		}
		s.d0[c], s.d1[c] = d0, d1
	}
}

// Reset clears the filter memory.
func (s *Section[F]) Reset() {
	clear(s.d0)
	clear(s.d1)
}

// Cascade runs sections in series.
type Cascade[F Float] struct {
	sections []*Section[F]
	channels int
}

// NewCascade builds one section per coefficient set. An empty list is a
// passthrough.
func NewCascade[F Float](channels int, coeffs ...Coefficients) (*Cascade[F], error) {
	if channels < 1 || channels > engine.MaxChannels {
		return nil, fmt.Errorf("%w: %d channels (want 1..%d)", engine.ErrInvalidConfig, channels, engine.MaxChannels)
	}
	c := &Cascade[F]{channels: channels, sections: make([]*Section[F], len(coeffs))}
	for i, co := range coeffs {
		s, err := New[F](co, channels)
		if err != nil {
			return nil, fmt.Errorf("section %d: %w", i, err)
		}
		c.sections[i] = s
	}
	return c, nil
}

// Len returns the number of sections.
func (c *Cascade[F]) Len() int { return len(c.sections) }

// Order returns the filter order, two per section.
func (c *Cascade[F]) Order() int { return 2 * len(c.sections) }

// Process filters n frames of src into dst through every section. dst and
// src may be the same slice.
func (c *Cascade[F]) Process(dst, src []F, n int) error {
	need := n * c.channels
	if n < 0 || len(src) < need || len(dst) < need {
		return fmt.Errorf("%w: %d frames with src=%d dst=%d samples", engine.ErrPrecondition, n, len(src), len(dst))
	}
	if len(c.sections) == 0 {
		copy(dst[:need], src[:need])
		return nil
	}
	c.sections[0].process(dst, src, n)
	for _, s := range c.sections[1:] {
		s.process(dst, dst, n)
	}
	return nil
}

// Response is the product of the section responses at f.
func (c *Cascade[F]) Response(f float64) complex128 {
	h := complex(1, 0)
	for _, s := range c.sections {
		h *= s.c.Response(f)
	}
	return h
}

// Reset clears every section.
func (c *Cascade[F]) Reset() {
	for _, s := range c.sections {
		s.Reset()
	}
}
