// Package beepstream adapts the resampler to github.com/faiface/beep, as a
// drop-in replacement for beep.Resample.
package beepstream

import (
	"fmt"

	"github.com/faiface/beep"

	audiodsp "github.com/tphakala/go-audio-dsp"
)

const (
	channels  = 2
	pullFrame = 512
)

// Streamer pulls stereo frames from a source streamer at one rate and
// yields them at another.
type Streamer struct {
	src     beep.Streamer
	r       *audiodsp.Resampler[float64]
	in      [][2]float64
	buf     []float64
	srcDone bool
	err     error
}

// Resample returns a streamer that converts s from rate from to rate to.
// Once s is drained the resampler is flushed, so the tail is delivered
// before the returned streamer reports the end.
func Resample(quality audiodsp.QualityPreset, from, to beep.SampleRate, s beep.Streamer) (*Streamer, error) {
	r, err := audiodsp.New[float64](&audiodsp.Config{
		InputRate:  int(from),
		OutputRate: int(to),
		Channels:   channels,
		Quality:    audiodsp.QualitySpec{Preset: quality},
	})
	if err != nil {
		return nil, fmt.Errorf("beepstream: %w", err)
	}
	return &Streamer{
		src: s,
		r:   r,
		in:  make([][2]float64, pullFrame),
		buf: make([]float64, pullFrame*channels),
	}, nil
}

// Stream fills samples with resampled frames. A source that has nothing
// ready yet ends the call early with ok still true.
func (s *Streamer) Stream(samples [][2]float64) (n int, ok bool) {
	for n < len(samples) && s.err == nil {
		if avail := s.r.NumCanGet(); avail > 0 {
			k := min(avail, len(samples)-n, pullFrame)
			if err := s.r.GetN(s.buf, k); err != nil {
				s.err = err
				break
			}
			for i := range k {
				samples[n+i] = [2]float64{s.buf[2*i], s.buf[2*i+1]}
			}
			n += k
			continue
		}
		if s.srcDone {
			break
		}
		if s.pull() == 0 && !s.srcDone && s.err == nil {
			return n, true
		}
	}
	return n, n > 0
}

// pull moves one chunk from the source into the resampler and returns
// the frames it moved. The resampler is flushed once the source reports
// the end.
func (s *Streamer) pull() int {
	k := min(s.r.NumCanPut(), len(s.in))
	if k == 0 {
		s.err = fmt.Errorf("beepstream: %w: resampler accepts no input", audiodsp.ErrInvalidState)
		return 0
	}
	got, ok := s.src.Stream(s.in[:k])
	if got > 0 {
		for i := range got {
			s.buf[2*i] = s.in[i][0]
			s.buf[2*i+1] = s.in[i][1]
		}
		if err := s.r.PutN(s.buf, got); err != nil {
			s.err = err
			return 0
		}
	}
	if ok {
		return got
	}
	if err := s.src.Err(); err != nil {
		s.err = err
	}
	s.srcDone = true
	if err := s.r.Flush(); err != nil {
		s.err = err
	}
	return got
}

// Err returns the first error from the source or the resampler.
func (s *Streamer) Err() error { return s.err }

// Resampler exposes the underlying resampler, for Info and Ratio.
func (s *Streamer) Resampler() *audiodsp.Resampler[float64] { return s.r }
