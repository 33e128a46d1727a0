package engine

import (
	"fmt"

	"github.com/tphakala/go-audio-dsp/internal/filter"
	"github.com/tphakala/go-audio-dsp/internal/kernel"
	"github.com/tphakala/go-audio-dsp/internal/ringbuf"
	"github.com/tphakala/go-audio-dsp/internal/simdops"
)

// PolyphaseStage resamples by a rational L/M with one Taps-long coefficient
// row per output phase.
//
// Each channel keeps a mirrored history line of 2*Taps samples: every frame
// is written at w and w+Taps, so the newest Taps frames are always the
// contiguous slice line[w:w+Taps].
type PolyphaseStage[F Float] struct {
	channels int
	l, m     int
	taps     int
	rows     [][]F
	kern     kernel.Kernel[F]

	in      *ringbuf.Ring[F]
	hist    [][]F
	w       int
	pushed  int64 // frames written to the history lines
	pad     int   // flush silence not yet written
	ahead   int
	cur     cursor
	flushed bool

	scratch []F   // interleaved frames taken from the ring
	chunk   [][]F // the same frames, planar
	frame   []F
}

// NewPolyphase builds a stage from a designed phase table.
func NewPolyphase[F Float](table *filter.PhaseTable, channels, blockFrames int, kern kernel.Kernel[F]) (*PolyphaseStage[F], error) {
	if err := checkChannels(channels); err != nil {
		return nil, err
	}
	if blockFrames < 1 {
		return nil, configErr("block size %d must be positive", blockFrames)
	}
	if table == nil || table.L < 1 || table.M < 1 || table.Taps < 2 || table.Taps%2 != 0 ||
		len(table.Coeffs) != table.L*table.Taps {
		return nil, configErr("malformed phase table")
	}

	s := &PolyphaseStage[F]{
		channels: channels,
		l:        table.L,
		m:        table.M,
		taps:     table.Taps,
		kern:     kern,
		ahead:    table.Taps / 2,
		in:       ringbuf.New[F](blockFrames+table.Taps+(table.M+table.L-1)/table.L, channels),
		hist:     planar[F](channels, 2*table.Taps),
		chunk:    planar[F](channels, table.Taps),
		scratch:  make([]F, table.Taps*channels),
		frame:    make([]F, channels),
	}
	s.rows = make([][]F, table.L)
	for p := range s.rows {
		s.rows[p] = convert[F](table.Phase(p))
	}
	s.Reset()
	return s, nil
}

// Name implements Stage.
func (s *PolyphaseStage[F]) Name() string {
	return fmt.Sprintf("polyphase(%d/%d, %d taps)", s.l, s.m, s.taps)
}

// Channels implements Stage.
func (s *PolyphaseStage[F]) Channels() int { return s.channels }

// Ratio implements Stage.
func (s *PolyphaseStage[F]) Ratio() (l, m int) { return s.l, s.m }

// Taps returns the taps per phase.
func (s *PolyphaseStage[F]) Taps() int { return s.taps }

// State implements Stage.
func (s *PolyphaseStage[F]) State() State { return stateOf(s.flushed, s.Drained(), s.NumCanGet()) }

// NumCanPut implements Stage.
func (s *PolyphaseStage[F]) NumCanPut() int {
	if s.flushed {
		return 0
	}
	return s.in.NumCanPut()
}

// NumCanGet implements Stage.
func (s *PolyphaseStage[F]) NumCanGet() int {
	end := s.pushed + int64(s.in.NumCanGet()) + int64(s.pad)
	return s.cur.available(end, s.ahead)
}

// PutN implements Stage.
func (s *PolyphaseStage[F]) PutN(src []F, n int) error {
	if err := checkPut(s.flushed, s.NumCanPut(), n); err != nil {
		return err
	}
	if err := s.in.PutN(src, n); err != nil {
		return preconditionErr(err)
	}
	return nil
}

// Flush implements Stage.
func (s *PolyphaseStage[F]) Flush() error {
	if !s.flushed {
		s.flushed = true
		s.pad = s.ahead
	}
	return nil
}

// Drained implements Stage.
func (s *PolyphaseStage[F]) Drained() bool {
	return s.flushed && s.NumCanGet() == 0
}

// GetN implements Stage.
func (s *PolyphaseStage[F]) GetN(dst []F, n int) error {
	if err := checkGet(s.NumCanGet(), n, len(dst), s.channels); err != nil {
		return err
	}
	ch := s.channels
	for j := range n {
		s.feed(s.cur.base + int64(s.ahead) + 1 - s.pushed)
		s.kern.ConvolveFrame(dst[j*ch:(j+1)*ch], s.hist, s.w, s.rows[s.cur.phase])
		s.cur.advance(1)
	}
	return nil
}

// feed writes the next count frames into the history lines, taking them
// from the ring and then from flush padding. Frames that would be
// overwritten before use are skipped.
func (s *PolyphaseStage[F]) feed(count int64) {
	if count <= 0 {
		return
	}
	if skip := count - int64(s.taps); skip > 0 {
		fromRing := min(int(skip), s.in.NumCanGet())
		_ = s.in.Discard(fromRing)
		s.pad -= int(skip) - fromRing
		s.pushed += skip
		count -= skip
	}
	n := int(count)
	fromRing := min(n, s.in.NumCanGet())
	_ = s.in.GetN(s.scratch, fromRing)
	simdops.Deinterleave(s.chunk, s.scratch, fromRing)
	for c := range s.chunk {
		clear(s.chunk[c][fromRing:n])
	}
	s.pad -= n - fromRing

	first := min(n, s.taps-s.w)
	for c, line := range s.hist {
		src := s.chunk[c][:n]
		s.kern.DualCopy(line[s.w:s.w+first], line[s.w+s.taps:s.w+s.taps+first], src[:first])
		if first < n {
			s.kern.DualCopy(line[:n-first], line[s.taps:s.taps+n-first], src[first:])
		}
	}
	s.w = (s.w + n) % s.taps
	s.pushed += count
}

// Reset implements Stage.
func (s *PolyphaseStage[F]) Reset() {
	s.in.Reset()
	for _, line := range s.hist {
		clear(line)
	}
	s.w = 0
	s.pushed = 0
	s.pad = 0
	s.cur = newCursor(s.l, s.m)
	s.flushed = false
}
