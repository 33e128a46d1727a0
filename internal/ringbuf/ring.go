// Package ringbuf provides a fixed-capacity circular buffer of interleaved
// audio frames.
//
// Capacity is rounded up to a power of two so cursors can be masked
// instead of reduced modulo. The buffer never grows and never overwrites:
// callers query NumCanPut/NumCanGet before moving frames, and requests that
// exceed the advertised headroom fail without touching the buffer.
package ringbuf

import (
	"errors"
	"fmt"
)

var (
	// ErrOverflow is returned when a put exceeds NumCanPut.
	ErrOverflow = errors.New("ring buffer overflow")

	// ErrUnderflow is returned when a get, peek or discard exceeds NumCanGet.
	ErrUnderflow = errors.New("ring buffer underflow")

	// ErrShortSlice is returned when a source or destination slice holds
	// fewer than n frames.
	ErrShortSlice = errors.New("slice shorter than requested frames")
)

// Float is the sample type stored in a ring.
type Float interface {
	float32 | float64
}

// Ring is a single-owner FIFO of audio frames. It holds no lock.
type Ring[F Float] struct {
	data     []F
	channels int
	mask     uint64 // capacity - 1
	readPos  uint64 // frames, unmasked
	writePos uint64 // frames, unmasked
}

// New creates a ring holding at least minFrames frames of the given
// channel count.
func New[F Float](minFrames, channels int) *Ring[F] {
	if channels < 1 {
		channels = 1
	}
	capFrames := NextPow2(minFrames)
	return &Ring[F]{
		data:     make([]F, capFrames*channels),
		channels: channels,
		mask:     uint64(capFrames - 1),
	}
}

// NextPow2 returns the smallest power of two >= n (1 for n <= 1).
func NextPow2(n int) int {
	p := 1
	for p < n {
		p <<= 1
	}
	return p
}

// Capacity returns the fixed frame capacity, always a power of two.
func (r *Ring[F]) Capacity() int { return int(r.mask) + 1 }

// Channels returns the number of samples per frame.
func (r *Ring[F]) Channels() int { return r.channels }

// NumCanPut returns how many frames can be written without overflow.
func (r *Ring[F]) NumCanPut() int { return r.Capacity() - r.NumCanGet() }

// NumCanGet returns how many frames are buffered.
func (r *Ring[F]) NumCanGet() int { return int(r.writePos - r.readPos) }

// PutN copies n frames from src into the buffer.
func (r *Ring[F]) PutN(src []F, n int) error {
	if err := r.checkPut(n); err != nil {
		return err
	}
	if len(src) < n*r.channels {
		return fmt.Errorf("%w: put %d frames from %d samples", ErrShortSlice, n, len(src))
	}
	r.write(src[:n*r.channels])
	r.writePos += uint64(n)
	return nil
}

// PutZeros appends n silent frames.
func (r *Ring[F]) PutZeros(n int) error {
	if err := r.checkPut(n); err != nil {
		return err
	}
	r.span(r.writePos, n, func(seg []F, _ int) { clear(seg) })
	r.writePos += uint64(n)
	return nil
}

// GetN moves n frames out of the buffer into dst.
func (r *Ring[F]) GetN(dst []F, n int) error {
	if err := r.Peek(dst, n); err != nil {
		return err
	}
	r.readPos += uint64(n)
	return nil
}

// Peek copies the n oldest frames into dst without consuming them.
func (r *Ring[F]) Peek(dst []F, n int) error {
	if err := r.checkGet(n); err != nil {
		return err
	}
	if len(dst) < n*r.channels {
		return fmt.Errorf("%w: get %d frames into %d samples", ErrShortSlice, n, len(dst))
	}
	r.span(r.readPos, n, func(seg []F, off int) { copy(dst[off:], seg) })
	return nil
}

// Discard drops the n oldest frames.
func (r *Ring[F]) Discard(n int) error {
	if err := r.checkGet(n); err != nil {
		return err
	}
	r.readPos += uint64(n)
	return nil
}

// Reset empties the buffer. Capacity is unchanged.
func (r *Ring[F]) Reset() {
	r.readPos = 0
	r.writePos = 0
}

func (r *Ring[F]) checkPut(n int) error {
	if n < 0 || n > r.NumCanPut() {
		return fmt.Errorf("%w: put %d frames, room for %d", ErrOverflow, n, r.NumCanPut())
	}
	return nil
}

func (r *Ring[F]) checkGet(n int) error {
	if n < 0 || n > r.NumCanGet() {
		return fmt.Errorf("%w: get %d frames, %d buffered", ErrUnderflow, n, r.NumCanGet())
	}
	return nil
}

func (r *Ring[F]) write(src []F) {
	r.span(r.writePos, len(src)/r.channels, func(seg []F, off int) { copy(seg, src[off:]) })
}

// span visits the at most two contiguous storage segments covering n
// frames starting at pos. off is the sample offset of seg within the run.
func (r *Ring[F]) span(pos uint64, n int, fn func(seg []F, off int)) {
	if n == 0 {
		return
	}
	start := int(pos&r.mask) * r.channels
	total := n * r.channels
	first := min(total, len(r.data)-start)
	fn(r.data[start:start+first], 0)
	if first < total {
		fn(r.data[:total-first], first)
	}
}
