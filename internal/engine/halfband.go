package engine

import (
	"fmt"

	"github.com/tphakala/go-audio-dsp/internal/filter"
	"github.com/tphakala/go-audio-dsp/internal/kernel"
	"github.com/tphakala/go-audio-dsp/internal/ringbuf"
	"github.com/tphakala/go-audio-dsp/internal/simdops"
)

// HalfbandStage converts the rate by exactly 2 with a 4k-tap half-band
// kernel, evaluated in the time domain.
//
// Upsampling: even outputs copy input frames unchanged; odd outputs are the
// 2k-tap branch over frames i-k+1 .. i+k. Downsampling: output j is
// center*x[2j] plus the branch over the 2k odd-distance frames around 2j.
type HalfbandStage[F Float] struct {
	dir      Direction
	channels int
	k        int
	kern     kernel.Kernel[F]

	branch []F
	center F

	behind, ahead int
	in            *ringbuf.Ring[F]
	start         int64 // absolute index of the oldest buffered frame
	cur           cursor
	flushed       bool

	window    []F   // interleaved copy of the buffered frames
	lines     [][]F // Up: planar window
	even, odd [][]F // Down: planar window split by parity
}

// NewHalfband builds a half-band stage. coeffs is a 4k kernel (see
// filter.ValidateHalfband); blockFrames bounds how many input frames can be
// buffered at once.
func NewHalfband[F Float](dir Direction, coeffs []float64, channels, blockFrames int, kern kernel.Kernel[F]) (*HalfbandStage[F], error) {
	if err := checkChannels(channels); err != nil {
		return nil, err
	}
	if blockFrames < 1 {
		return nil, configErr("block size %d must be positive", blockFrames)
	}
	k, err := filter.ValidateHalfband(coeffs)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}

	s := &HalfbandStage[F]{dir: dir, channels: channels, k: k, kern: kern}

	gain := 1.0
	if dir == Up {
		gain = 2
		s.behind, s.ahead = k-1, k
	} else {
		s.behind, s.ahead = 2*k-1, 2*k-1
		s.center = F(filter.HalfbandCenter(coeffs))
	}
	s.branch = convert[F](filter.HalfbandBranch(coeffs, gain))

	s.in = ringbuf.New[F](blockFrames+s.behind+2*s.ahead, channels)
	capFrames := s.in.Capacity()
	s.window = make([]F, capFrames*channels)
	if dir == Up {
		s.lines = planar[F](channels, capFrames)
	} else {
		s.even = planar[F](channels, capFrames/2+1)
		s.odd = planar[F](channels, capFrames/2+1)
	}
	s.Reset()
	return s, nil
}

// Name implements Stage.
func (s *HalfbandStage[F]) Name() string { return fmt.Sprintf("halfband-%s(k=%d)", s.dir, s.k) }

// Channels implements Stage.
func (s *HalfbandStage[F]) Channels() int { return s.channels }

// Ratio implements Stage.
func (s *HalfbandStage[F]) Ratio() (l, m int) { return s.dir.ratio() }

// Order returns k for the 4k-tap kernel.
func (s *HalfbandStage[F]) Order() int { return s.k }

// State implements Stage.
func (s *HalfbandStage[F]) State() State { return stateOf(s.flushed, s.Drained(), s.NumCanGet()) }

// NumCanPut reports the free ring space less the room held back for the
// zero padding Flush appends.
func (s *HalfbandStage[F]) NumCanPut() int {
	if s.flushed {
		return 0
	}
	return max(0, s.in.NumCanPut()-s.ahead)
}

// NumCanGet implements Stage.
func (s *HalfbandStage[F]) NumCanGet() int {
	return s.cur.available(s.end(), s.ahead)
}

func (s *HalfbandStage[F]) end() int64 {
	return s.start + int64(s.in.NumCanGet())
}

// PutN implements Stage.
func (s *HalfbandStage[F]) PutN(src []F, n int) error {
	if err := checkPut(s.flushed, s.NumCanPut(), n); err != nil {
		return err
	}
	if err := s.in.PutN(src, n); err != nil {
		return preconditionErr(err)
	}
	return nil
}

// Flush appends the lookahead as silence so the last frames can be produced.
func (s *HalfbandStage[F]) Flush() error {
	if s.flushed {
		return nil
	}
	s.flushed = true
	return s.in.PutZeros(s.ahead)
}

// Drained implements Stage.
func (s *HalfbandStage[F]) Drained() bool {
	return s.flushed && s.NumCanGet() == 0
}

// GetN implements Stage.
func (s *HalfbandStage[F]) GetN(dst []F, n int) error {
	if err := checkGet(s.NumCanGet(), n, len(dst), s.channels); err != nil {
		return err
	}
	if n == 0 {
		return nil
	}

	lastOff, _ := s.cur.at(n - 1)
	need := int(s.cur.base-s.start+lastOff) + s.ahead + 1
	if err := s.in.Peek(s.window, need); err != nil {
		return preconditionErr(err)
	}

	if s.dir == Up {
		s.upsample(dst, n, need)
	} else {
		s.downsample(dst, n, need)
	}

	s.cur.advance(n)
	drop := s.cur.base - int64(s.behind) - s.start
	s.start += drop
	return s.in.Discard(int(drop))
}

func (s *HalfbandStage[F]) upsample(dst []F, n, need int) {
	simdops.Deinterleave(s.lines, s.window, need)
	ch := s.channels
	for j := range n {
		off, phase := s.cur.at(j)
		idx := s.behind + int(off)
		out := dst[j*ch : (j+1)*ch]
		if phase == 0 {
			copy(out, s.window[idx*ch:(idx+1)*ch])
			continue
		}
		s.kern.HalfbandFrame(out, s.lines, int(off), s.branch)
	}
}

func (s *HalfbandStage[F]) downsample(dst []F, n, need int) {
	half := need / 2
	for c := range s.channels {
		for q := range half {
			s.even[c][q] = s.window[(2*q)*s.channels+c]
			s.odd[c][q] = s.window[(2*q+1)*s.channels+c]
		}
		if need%2 == 1 {
			s.even[c][half] = s.window[(need-1)*s.channels+c]
		}
	}
	ch := s.channels
	for j := range n {
		out := dst[j*ch : (j+1)*ch]
		s.kern.HalfbandFrame(out, s.even, j, s.branch)
		for c := range ch {
			out[c] += s.center * s.odd[c][j+s.k-1]
		}
	}
}

// Reset implements Stage.
func (s *HalfbandStage[F]) Reset() {
	s.in.Reset()
	_ = s.in.PutZeros(s.behind)
	s.start = -int64(s.behind)
	s.cur = newCursor(s.dir.ratio())
	s.flushed = false
}

func convert[F Float](src []float64) []F {
	out := make([]F, len(src))
	for i, v := range src {
		out[i] = F(v)
	}
	return out
}

func planar[F Float](channels, frames int) [][]F {
	lines := make([][]F, channels)
	for c := range lines {
		lines[c] = make([]F, frames)
	}
	return lines
}
