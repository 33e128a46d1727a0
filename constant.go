package audiodsp

import (
	"fmt"
	"log/slog"

	"github.com/tphakala/go-audio-dsp/fft"
	"github.com/tphakala/go-audio-dsp/internal/kernel"
	"github.com/tphakala/go-audio-dsp/internal/pipeline"
)

// Resampler converts a stream between two fixed sample rates.
//
// It is a push/pull stream: write input with PutN while NumCanPut allows,
// read output with GetN while NumCanGet allows, and call Flush once the
// input ends. Output frame j sits at input time j*M/L, and after Flush the
// stream yields exactly floor((n-1)*L/M)+1 frames for n input frames.
//
// A Resampler is not safe for concurrent use; independent instances are.
type Resampler[F Float] struct {
	config  Config
	quality QualitySpec
	plan    *pipeline.Plan
	chain   *pipeline.Chain[F]
	kernel  string
	backend string

	totalIn  int64
	produced int64
	flushed  bool
}

// New creates a resampler for config. The stage plan is chosen from the
// rate ratio and the quality settings.
func New[F Float](config *Config) (*Resampler[F], error) {
	if config == nil {
		return nil, fmt.Errorf("%w: config is nil", ErrInvalidConfig)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	kern, err := kernel.Lookup[F](config.Kernel)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrNotSupported, err)
	}

	backend := config.FFTBackend
	if backend == nil {
		backend = fft.Default()
	}

	quality := config.Quality.Resolve()
	plan, err := buildPlan(config, quality)
	if err != nil {
		return nil, err
	}

	cfg := *config
	cfg.FFTBackend = backend
	chain, err := buildChain(plan, &cfg, kern)
	if err != nil {
		return nil, err
	}

	logger().Debug("resampler created",
		slog.Any("plan", plan),
		slog.String("quality", quality.Preset.String()),
		slog.String("kernel", kern.Name),
		slog.String("fft", backend.Name()),
		slog.Int("channels", config.Channels))

	return &Resampler[F]{
		config:  cfg,
		quality: quality,
		plan:    plan,
		chain:   chain,
		kernel:  kern.Name,
		backend: backend.Name(),
	}, nil
}

// Channels returns the samples per frame.
func (r *Resampler[F]) Channels() int { return r.config.Channels }

// Ratio returns OutputRate/InputRate in lowest terms.
func (r *Resampler[F]) Ratio() (l, m int) { return r.plan.L, r.plan.M }

// Stages returns the names of the instantiated stages in order.
func (r *Resampler[F]) Stages() []string {
	stages := r.chain.Stages()
	names := make([]string, len(stages))
	for i, s := range stages {
		names[i] = s.Name()
	}
	return names
}

// NumCanPut returns how many frames PutN accepts now. It is 0 after Flush.
func (r *Resampler[F]) NumCanPut() int {
	if r.flushed {
		return 0
	}
	return r.chain.NumCanPut()
}

// NumCanGet returns how many frames GetN can deliver now.
func (r *Resampler[F]) NumCanGet() int {
	n := int64(r.chain.NumCanGet())
	if r.flushed {
		n = min(n, r.limit()-r.produced)
	}
	return int(max(n, 0))
}

// PutN writes n interleaved frames from src.
func (r *Resampler[F]) PutN(src []F, n int) error {
	if r.flushed {
		return ErrInvalidState
	}
	if err := r.chain.PutN(src, n); err != nil {
		return err
	}
	r.totalIn += int64(n)
	return nil
}

// GetN reads n interleaved frames into dst.
func (r *Resampler[F]) GetN(dst []F, n int) error {
	if n < 0 || n > r.NumCanGet() {
		return fmt.Errorf("%w: get %d frames, %d available", ErrPrecondition, n, r.NumCanGet())
	}
	if err := r.chain.GetN(dst, n); err != nil {
		return err
	}
	r.produced += int64(n)
	return nil
}

// Flush marks the end of input. Further PutN calls fail with
// ErrInvalidState. Calling Flush again is a no-op.
func (r *Resampler[F]) Flush() error {
	if r.flushed {
		return nil
	}
	r.flushed = true
	return r.chain.Flush()
}

// Drained reports whether every output frame has been read after Flush.
func (r *Resampler[F]) Drained() bool {
	return r.flushed && r.produced >= r.limit()
}

// Reset returns the resampler to its freshly constructed state.
func (r *Resampler[F]) Reset() {
	r.chain.Reset()
	r.totalIn = 0
	r.produced = 0
	r.flushed = false
}

// Info returns information about the resampler.
func (r *Resampler[F]) Info() Info {
	return Info{
		InputRate:  r.config.InputRate,
		OutputRate: r.config.OutputRate,
		L:          r.plan.L,
		M:          r.plan.M,
		Channels:   r.config.Channels,
		Quality:    r.quality,
		Plan:       r.plan.String(),
		Stages:     r.Stages(),
		Kernel:     r.kernel,
		FFTBackend: r.backend,
		CPU:        kernel.CPUSummary(),
	}
}

// limit is the output length implied by the input written so far:
// outputs j with j*M/L <= n-1.
func (r *Resampler[F]) limit() int64 {
	if r.totalIn == 0 {
		return 0
	}
	l, m := int64(r.plan.L), int64(r.plan.M)
	last := r.totalIn - 1
	return (last/m)*l + (last%m)*l/m + 1
}
