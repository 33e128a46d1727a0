package audiodsp

import (
	"fmt"

	"github.com/tphakala/go-audio-dsp/internal/kernel"
	"github.com/tphakala/go-audio-dsp/internal/pipeline"
)

// pipelineParams converts a resolved quality spec to plan parameters.
func pipelineParams(q QualitySpec) pipeline.Params {
	return pipeline.Params{
		MaxHalfbandStages: q.MaxHalfbandStages,
		Halfband:          q.Halfband,
		HalfbandOrder:     q.HalfbandOrder,
		TapsPerPhase:      q.TapsPerPhase,
		Cutoff:            q.Cutoff,
		Attenuation:       q.Attenuation,
	}
}

// buildPlan decomposes the configured conversion into stages.
func buildPlan(config *Config, quality QualitySpec) (*pipeline.Plan, error) {
	plan, err := pipeline.BuildPlan(config.InputRate, config.OutputRate, pipelineParams(quality))
	if err != nil {
		return nil, fmt.Errorf("failed to build pipeline: %w", err)
	}
	return plan, nil
}

// buildChain instantiates plan for sample type F.
func buildChain[F Float](plan *pipeline.Plan, config *Config, kern kernel.Kernel[F]) (*pipeline.Chain[F], error) {
	chain, err := pipeline.NewChain(plan, pipeline.ChainConfig[F]{
		Channels:    config.Channels,
		BlockFrames: config.BlockFrames,
		Kernel:      kern,
		Backend:     config.FFTBackend,
		Logger:      logger(),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to build pipeline: %w", err)
	}
	return chain, nil
}
