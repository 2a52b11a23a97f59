// Author: Kaviru Hapuarachchi
// GitHub: https://github.com/Kavirubc
// Created: 2026-02-02
// Last Modified: 2026-10-16

package steps

import (
	"github.com/similigh/mailbox-monitor/internal/core/pipeline"
)

// RegisterAll registers all built-in steps with the registry.
func RegisterAll(r *pipeline.Registry) {
	r.Register("gatekeeper", func(deps *pipeline.Dependencies) (pipeline.Step, error) {
		return NewGatekeeper(deps), nil
	})

	r.Register("extractor", func(deps *pipeline.Dependencies) (pipeline.Step, error) {
		return NewExtractor(deps), nil
	})

	r.Register("predictor", func(deps *pipeline.Dependencies) (pipeline.Step, error) {
		return NewPredictor(deps), nil
	})

	r.Register("decision", func(deps *pipeline.Dependencies) (pipeline.Step, error) {
		return NewDecider(deps), nil
	})

	r.Register("reassigner", func(deps *pipeline.Dependencies) (pipeline.Step, error) {
		return NewReassigner(deps), nil
	})
}
