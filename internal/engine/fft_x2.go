package engine

import (
	"fmt"
	"math"

	"github.com/tphakala/simd/c128"

	"github.com/tphakala/go-audio-dsp/fft"
	"github.com/tphakala/go-audio-dsp/internal/ringbuf"
)

const fftSymTol = 1e-12

// FFTStage converts the rate by 2 with a long linear-phase low-pass applied
// by overlap-add block convolution. C selects the transform precision.
//
// Upsampling transforms a block of B frames at size N, repeats the
// spectrum to size 2N (the spectrum of the zero-stuffed block) and
// multiplies by the filter. Downsampling multiplies at size N and folds the
// upper half of the spectrum onto the lower, which decimates by 2 before a
// size N/2 inverse. Stereo frames travel as one complex sample, left in the
// real part and right in the imaginary part.
type FFTStage[F Float, C fft.Complex] struct {
	dir       Direction
	channels  int
	taps      int
	precision fft.Precision
	backend   string

	n       int // forward transform size
	block   int // input frames per block
	emitLen int // output frames completed per block
	delay   int // output frames of group delay skipped at the start

	fwd, inv fft.Transform[C]
	h        []C // filter spectrum, scaled for the round trip
	mul      func(dst, a, b []C)

	in, out *ringbuf.Ring[F]
	frames  []F
	buf     []C
	spec    []C
	rep     []C
	prod    []C
	res     []C
	acc     []C
	emitBuf []F

	skip     int
	totalIn  int64
	produced int64
	flushed  bool
}

// NewFFTHalfband builds a block-transform 2x stage. taps is an odd-length
// symmetric low-pass of length 4q+1 with unity DC gain and cutoff at a
// quarter of the input rate (see filter.DesignFFTHalfband).
func NewFFTHalfband[F Float, C fft.Complex](dir Direction, taps []float64, channels, blockFrames int, backend fft.Backend) (*FFTStage[F, C], error) {
	if err := checkChannels(channels); err != nil {
		return nil, err
	}
	if blockFrames < 1 {
		return nil, configErr("block size %d must be positive", blockFrames)
	}
	if err := validateFFTTaps(taps); err != nil {
		return nil, err
	}
	if backend == nil {
		backend = fft.Default()
	}

	q := (len(taps) - 1) / 4
	s := &FFTStage[F, C]{
		dir:       dir,
		channels:  channels,
		taps:      len(taps),
		precision: fft.PrecisionOf[C](),
		backend:   backend.Name(),
		n:         ringbuf.NextPow2(max(2*len(taps), blockFrames)),
		mul:       spectrumMul[C](),
	}

	invSize := 2 * s.n
	if dir == Up {
		s.block = s.n - 2*q
		s.emitLen = 2 * s.block
		s.delay = 2 * q
	} else {
		invSize = s.n / 2
		s.block = s.n - 4*q
		s.emitLen = s.block / 2
		s.delay = q
	}

	var err error
	if s.fwd, err = fft.Setup[C](backend, s.n); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrNotSupported, err)
	}
	if s.inv, err = fft.Setup[C](backend, invSize); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrNotSupported, err)
	}

	s.buf = make([]C, max(s.n, invSize))
	s.spec = make([]C, s.n)
	s.rep = make([]C, invSize)
	s.prod = make([]C, max(s.n, invSize))
	s.res = make([]C, invSize)
	s.acc = make([]C, invSize)
	s.filterSpectrum(taps)

	s.frames = make([]F, s.block*channels)
	s.emitBuf = make([]F, s.emitLen*channels)
	s.in = ringbuf.New[F](s.block+blockFrames, channels)
	s.out = ringbuf.New[F](s.emitLen+2*blockFrames, channels)
	s.Reset()
	return s, nil
}

func validateFFTTaps(taps []float64) error {
	if len(taps) < 5 || (len(taps)-1)%4 != 0 {
		return configErr("fft half-band length %d is not 4q+1", len(taps))
	}
	for i := range len(taps) / 2 {
		lo, hi := taps[i], taps[len(taps)-1-i]
		if math.IsNaN(lo) || math.IsInf(lo, 0) || math.Abs(lo-hi) > fftSymTol {
			return configErr("fft half-band not symmetric at tap %d", i)
		}
	}
	return nil
}

// filterSpectrum stores the filter DFT with the gain and the inverse
// transform scale folded in. Upsampling needs a gain of 2 and downsampling
// averages the two folded halves.
func (s *FFTStage[F, C]) filterSpectrum(taps []float64) {
	var t fft.Transform[C]
	var g float64
	if s.dir == Up {
		t, g = s.inv, 2/s.inv.Scale()
	} else {
		t, g = s.fwd, 1/(2*s.inv.Scale())
	}
	size := t.Size()
	src := make([]C, size)
	for i, v := range taps {
		src[i] = C(complex(v*g, 0))
	}
	s.h = make([]C, size)
	t.Forward(s.h, src)
}

// spectrumMul returns the element-wise product routine for C.
func spectrumMul[C fft.Complex]() func(dst, a, b []C) {
	var zero C
	if _, ok := any(zero).(complex128); ok {
		f := func(dst, a, b []complex128) { c128.Mul(dst, a, b) }
		return any(f).(func(dst, a, b []C))
	}
	return func(dst, a, b []C) {
		for i := range dst {
			dst[i] = a[i] * b[i]
		}
	}
}

// Name implements Stage.
func (s *FFTStage[F, C]) Name() string {
	return fmt.Sprintf("fft-halfband-%s(%d taps, N=%d, %s %s)", s.dir, s.taps, s.n, s.backend, s.precision)
}

// Channels implements Stage.
func (s *FFTStage[F, C]) Channels() int { return s.channels }

// Ratio implements Stage.
func (s *FFTStage[F, C]) Ratio() (l, m int) { return s.dir.ratio() }

// BlockFrames returns the input frames consumed per transform.
func (s *FFTStage[F, C]) BlockFrames() int { return s.block }

// State implements Stage.
func (s *FFTStage[F, C]) State() State { return stateOf(s.flushed, s.Drained(), s.NumCanGet()) }

// NumCanPut implements Stage.
func (s *FFTStage[F, C]) NumCanPut() int {
	if s.flushed {
		return 0
	}
	return s.in.NumCanPut()
}

// NumCanGet implements Stage.
func (s *FFTStage[F, C]) NumCanGet() int { return s.out.NumCanGet() }

// PutN implements Stage.
func (s *FFTStage[F, C]) PutN(src []F, n int) error {
	if err := checkPut(s.flushed, s.NumCanPut(), n); err != nil {
		return err
	}
	if err := s.in.PutN(src, n); err != nil {
		return preconditionErr(err)
	}
	s.totalIn += int64(n)
	return s.pump()
}

// GetN implements Stage.
func (s *FFTStage[F, C]) GetN(dst []F, n int) error {
	if err := checkGet(s.NumCanGet(), n, len(dst), s.channels); err != nil {
		return err
	}
	if err := s.out.GetN(dst, n); err != nil {
		return preconditionErr(err)
	}
	return s.pump()
}

// Flush zero-pads the final partial block and releases the filter tail.
func (s *FFTStage[F, C]) Flush() error {
	if s.flushed {
		return nil
	}
	s.flushed = true
	return s.pump()
}

// Drained implements Stage.
func (s *FFTStage[F, C]) Drained() bool {
	return s.flushed && s.in.NumCanGet() == 0 && s.produced == s.target() && s.out.NumCanGet() == 0
}

// target is the total output owed once the input is complete.
func (s *FFTStage[F, C]) target() int64 {
	if s.dir == Up {
		return 2 * s.totalIn
	}
	return (s.totalIn + 1) / 2
}

func (s *FFTStage[F, C]) pump() error {
	for s.out.NumCanPut() >= s.emitLen {
		n := s.in.NumCanGet()
		var err error
		switch {
		case n >= s.block:
			err = s.process(s.block)
		case s.flushed && s.produced < s.target():
			err = s.process(n)
		default:
			return nil
		}
		if err != nil {
			return err
		}
	}
	return nil
}

// process convolves the next n input frames into the accumulator, then
// emits the frames no later block can touch.
func (s *FFTStage[F, C]) process(n int) error {
	if n > 0 {
		if err := s.in.GetN(s.frames, n); err != nil {
			return preconditionErr(err)
		}
		s.load(n)
		s.fwd.Forward(s.spec, s.buf[:s.n])
		if s.dir == Up {
			copy(s.rep, s.spec)
			copy(s.rep[s.n:], s.spec)
			s.mul(s.prod[:2*s.n], s.rep, s.h)
			s.inv.Inverse(s.res, s.prod[:2*s.n])
		} else {
			s.mul(s.prod[:s.n], s.spec, s.h)
			half := s.n / 2
			for k := range half {
				s.rep[k] = s.prod[k] + s.prod[k+half]
			}
			s.inv.Inverse(s.res, s.rep)
		}
		for i, v := range s.res {
			s.acc[i] += v
		}
	}
	return s.emit()
}

func (s *FFTStage[F, C]) load(n int) {
	buf := s.buf[:s.n]
	if s.channels == 2 {
		for i := range n {
			buf[i] = C(complex(float64(s.frames[2*i]), float64(s.frames[2*i+1])))
		}
	} else {
		for i := range n {
			buf[i] = C(complex(float64(s.frames[i]), 0))
		}
	}
	clear(buf[n:])
}

func (s *FFTStage[F, C]) emit() error {
	from := min(s.skip, s.emitLen)
	s.skip -= from
	count := s.emitLen - from
	if s.flushed {
		count = int(min(int64(count), s.target()-s.produced))
	}
	ch := s.channels
	for i := range count {
		v := complex128(s.acc[from+i])
		s.emitBuf[i*ch] = F(real(v))
		if ch == 2 {
			s.emitBuf[i*ch+1] = F(imag(v))
		}
	}
	if count > 0 {
		if err := s.out.PutN(s.emitBuf, count); err != nil {
			return preconditionErr(err)
		}
		s.produced += int64(count)
	}

	copy(s.acc, s.acc[s.emitLen:])
	clear(s.acc[len(s.acc)-s.emitLen:])
	return nil
}

// Reset implements Stage.
func (s *FFTStage[F, C]) Reset() {
	s.in.Reset()
	s.out.Reset()
	clear(s.acc)
	s.skip = s.delay
	s.totalIn = 0
	s.produced = 0
	s.flushed = false
}
