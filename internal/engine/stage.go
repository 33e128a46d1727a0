// Package engine implements the streaming resampling stages: the half-band
// 2x stage, its block-transform alternative and the rational polyphase
// stage.
//
// All stages share one push/pull contract. Callers query NumCanPut and
// NumCanGet before moving frames; Flush marks the end of input, after which
// every buffered frame becomes producible without lookahead. Stages are
// zero-phase aligned: output frame j corresponds to input time j*M/L, so
// stages chain without accumulating delay.
//
// A stage is owned by one goroutine. Nothing in this package locks.
package engine

import (
	"github.com/tphakala/go-audio-dsp/internal/ringbuf"
	"github.com/tphakala/go-audio-dsp/internal/simdops"
)

// Float is the sample type constraint.
type Float = simdops.Float

// MaxChannels is the largest supported frame width.
const MaxChannels = 2

// State is the lifecycle position of a stage.
type State int

const (
	// StateFilling: not flushed, no output producible yet.
	StateFilling State = iota
	// StateProducing: not flushed, output available.
	StateProducing
	// StateFlushing: flushed, tail output still pending.
	StateFlushing
	// StateDrained: flushed and fully drained. Terminal until Reset.
	StateDrained
)

func (s State) String() string {
	switch s {
	case StateFilling:
		return "filling"
	case StateProducing:
		return "producing"
	case StateFlushing:
		return "flushing"
	case StateDrained:
		return "drained"
	default:
		return "unknown"
	}
}

// Direction selects doubling or halving for the 2x stages.
type Direction int

const (
	// Up doubles the sample rate.
	Up Direction = iota
	// Down halves the sample rate.
	Down
)

func (d Direction) String() string {
	if d == Up {
		return "up"
	}
	return "down"
}

func (d Direction) ratio() (l, m int) {
	if d == Up {
		return 2, 1
	}
	return 1, 2
}

// Stage is the streaming contract every resampling stage implements.
// Frames are interleaved: n frames occupy n*Channels() samples.
type Stage[F Float] interface {
	Name() string
	Channels() int

	// Ratio returns the fixed output/input rate ratio as l/m.
	Ratio() (l, m int)

	State() State
	NumCanPut() int
	NumCanGet() int
	PutN(src []F, n int) error
	GetN(dst []F, n int) error

	// Flush ends the input. Repeated calls are no-ops.
	Flush() error

	// Drained reports whether the stage is flushed and will produce
	// nothing more.
	Drained() bool

	// Reset returns the stage to its freshly constructed state.
	Reset()
}

// stateOf derives the lifecycle state from the flush flag and output
// availability.
func stateOf(flushed, drained bool, canGet int) State {
	switch {
	case !flushed && canGet == 0:
		return StateFilling
	case !flushed:
		return StateProducing
	case drained:
		return StateDrained
	default:
		return StateFlushing
	}
}

func checkChannels(channels int) error {
	if channels < 1 || channels > MaxChannels {
		return configErr("channels %d outside [1, %d]", channels, MaxChannels)
	}
	return nil
}

func checkPut(flushed bool, canPut, n int) error {
	if flushed {
		return ErrInvalidState
	}
	if n < 0 || n > canPut {
		return preconditionErr(ringbuf.ErrOverflow)
	}
	return nil
}

func checkGet(canGet, n, got, channels int) error {
	if n < 0 || n > canGet {
		return preconditionErr(ringbuf.ErrUnderflow)
	}
	if got < n*channels {
		return preconditionErr(ringbuf.ErrShortSlice)
	}
	return nil
}
