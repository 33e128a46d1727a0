package pipeline

import (
	"fmt"
	"log/slog"

	"github.com/tphakala/go-audio-dsp/fft"
	"github.com/tphakala/go-audio-dsp/internal/engine"
	"github.com/tphakala/go-audio-dsp/internal/filter"
	"github.com/tphakala/go-audio-dsp/internal/kernel"
	"github.com/tphakala/go-audio-dsp/internal/ringbuf"
)

// ChainConfig holds what a chain needs beyond its plan.
type ChainConfig[F engine.Float] struct {
	Channels    int
	BlockFrames int // 0 selects the default
	Kernel      kernel.Kernel[F]
	Backend     fft.Backend // nil selects fft.Default()
	Logger      *slog.Logger
}

// Chain runs the stages of a plan as one stream. Frames written to the
// chain enter the first stage; every call moves as much data downstream as
// the stages accept.
type Chain[F engine.Float] struct {
	stages   []engine.Stage[F]
	pass     *ringbuf.Ring[F] // only for an empty plan
	channels int
	block    int
	scratch  []F
	flushed  bool
}

// NewChain instantiates every stage of plan.
func NewChain[F engine.Float](plan *Plan, cfg ChainConfig[F]) (*Chain[F], error) {
	if cfg.BlockFrames == 0 {
		cfg.BlockFrames = defaultBlockFrames
	}
	if cfg.BlockFrames < 1 {
		return nil, fmt.Errorf("%w: block size %d must be positive", engine.ErrInvalidConfig, cfg.BlockFrames)
	}
	if cfg.Channels < 1 || cfg.Channels > engine.MaxChannels {
		return nil, fmt.Errorf("%w: channels %d outside [1, %d]", engine.ErrInvalidConfig, cfg.Channels, engine.MaxChannels)
	}
	if cfg.Backend == nil {
		cfg.Backend = fft.Default()
	}
	if cfg.Kernel.Convolve == nil {
		cfg.Kernel = kernel.Best[F]()
	}
	log := cfg.Logger
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}

	c := &Chain[F]{
		channels: cfg.Channels,
		block:    cfg.BlockFrames,
		scratch:  make([]F, cfg.BlockFrames*cfg.Channels),
	}
	if len(plan.Stages) == 0 {
		c.pass = ringbuf.New[F](cfg.BlockFrames, cfg.Channels)
	}
	for i, spec := range plan.Stages {
		st, err := newStage(spec, cfg)
		if err != nil {
			return nil, fmt.Errorf("stage %d (%s): %w", i, spec, err)
		}
		log.Debug("pipeline stage", slog.Int("index", i), slog.String("stage", st.Name()))
		c.stages = append(c.stages, st)
	}
	return c, nil
}

func newStage[F engine.Float](spec StageSpec, cfg ChainConfig[F]) (engine.Stage[F], error) {
	switch spec.Kind {
	case KindHalfband:
		h, err := filter.DesignHalfband(spec.Order, spec.Attenuation)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", engine.ErrInvalidConfig, err)
		}
		return engine.NewHalfband(spec.Dir, h, cfg.Channels, cfg.BlockFrames, cfg.Kernel)

	case KindFFTHalfband:
		taps, err := filter.DesignFFTHalfband(spec.Attenuation)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", engine.ErrInvalidConfig, err)
		}
		if spec.Precision == fft.Single {
			return engine.NewFFTHalfband[F, complex64](spec.Dir, taps, cfg.Channels, cfg.BlockFrames, cfg.Backend)
		}
		return engine.NewFFTHalfband[F, complex128](spec.Dir, taps, cfg.Channels, cfg.BlockFrames, cfg.Backend)

	case KindPolyphase:
		table, err := filter.DesignPhaseTable(filter.PhaseParams{
			L:            spec.L,
			M:            spec.M,
			TapsPerPhase: spec.TapsPerPhase,
			Cutoff:       spec.Cutoff,
			Attenuation:  spec.Attenuation,
		})
		if err != nil {
			return nil, fmt.Errorf("%w: %w", engine.ErrNotSupported, err)
		}
		return engine.NewPolyphase(table, cfg.Channels, cfg.BlockFrames, cfg.Kernel)

	default:
		return nil, fmt.Errorf("%w: unknown stage kind %s", engine.ErrInvalidConfig, spec.Kind)
	}
}

// Stages returns the instantiated stages in order.
func (c *Chain[F]) Stages() []engine.Stage[F] { return c.stages }

// Channels returns the frame width.
func (c *Chain[F]) Channels() int { return c.channels }

// NumCanPut reports how many frames the first stage accepts.
func (c *Chain[F]) NumCanPut() int {
	if c.pass != nil {
		if c.flushed {
			return 0
		}
		return c.pass.NumCanPut()
	}
	return c.stages[0].NumCanPut()
}

// NumCanGet reports how many frames the last stage holds.
func (c *Chain[F]) NumCanGet() int {
	if c.pass != nil {
		return c.pass.NumCanGet()
	}
	return c.stages[len(c.stages)-1].NumCanGet()
}

// PutN writes n frames into the first stage.
func (c *Chain[F]) PutN(src []F, n int) error {
	if c.pass != nil {
		if c.flushed {
			return engine.ErrInvalidState
		}
		if err := c.pass.PutN(src, n); err != nil {
			return fmt.Errorf("%w: %w", engine.ErrPrecondition, err)
		}
		return nil
	}
	if err := c.stages[0].PutN(src, n); err != nil {
		return err
	}
	return c.pump()
}

// GetN reads n frames from the last stage.
func (c *Chain[F]) GetN(dst []F, n int) error {
	if c.pass != nil {
		if err := c.pass.GetN(dst, n); err != nil {
			return fmt.Errorf("%w: %w", engine.ErrPrecondition, err)
		}
		return nil
	}
	if err := c.stages[len(c.stages)-1].GetN(dst, n); err != nil {
		return err
	}
	return c.pump()
}

// Flush ends the input. Each stage is flushed once its predecessor has
// drained into it, so later stages receive the full tail first.
func (c *Chain[F]) Flush() error {
	if c.flushed {
		return nil
	}
	c.flushed = true
	if c.pass != nil {
		return nil
	}
	if err := c.stages[0].Flush(); err != nil {
		return err
	}
	return c.pump()
}

// Drained reports whether the chain is flushed and fully read.
func (c *Chain[F]) Drained() bool {
	if c.pass != nil {
		return c.flushed && c.pass.NumCanGet() == 0
	}
	return c.stages[len(c.stages)-1].Drained()
}

// Reset returns every stage to its initial state.
func (c *Chain[F]) Reset() {
	if c.pass != nil {
		c.pass.Reset()
	}
	for _, s := range c.stages {
		s.Reset()
	}
	c.flushed = false
}

// pump moves frames downstream until no stage boundary makes progress.
func (c *Chain[F]) pump() error {
	for moved := true; moved; {
		moved = false
		for i := 0; i+1 < len(c.stages); i++ {
			src, dst := c.stages[i], c.stages[i+1]
			for {
				n := min(src.NumCanGet(), dst.NumCanPut(), c.block)
				if n == 0 {
					break
				}
				if err := src.GetN(c.scratch, n); err != nil {
					return err
				}
				if err := dst.PutN(c.scratch, n); err != nil {
					return err
				}
				moved = true
			}
			if src.Drained() && dst.State() < engine.StateFlushing {
				if err := dst.Flush(); err != nil {
					return err
				}
				moved = true
			}
		}
	}
	return nil
}
