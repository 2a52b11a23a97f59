// Author: Kaviru Hapuarachchi
// GitHub: https://github.com/kavirubc
// Created: 2026-02-04
// Last Modified: 2026-10-16

package steps

import (
	"go.uber.org/zap"

	"github.com/similigh/mailbox-monitor/internal/core/pipeline"
	"github.com/similigh/mailbox-monitor/internal/prediction"
)

// Predictor asks the prediction provider for a recommended assignee.
type Predictor struct {
	predictor prediction.Predictor
	logger    *zap.Logger
}

// NewPredictor creates a new predictor step.
func NewPredictor(deps *pipeline.Dependencies) *Predictor {
	return &Predictor{
		predictor: deps.Predictor,
		logger:    stepLogger(deps, "predictor"),
	}
}

// Name returns the step name.
func (s *Predictor) Name() string {
	return "predictor"
}

// Run requests a prediction. Failures leave ctx.Prediction nil so the
// decision step skips the email.
func (s *Predictor) Run(ctx *pipeline.Context) error {
	if s.predictor == nil {
		s.logger.Warn("No prediction provider configured, skipping")
		return nil
	}

	// Without an issue reference there is nothing to act on.
	if !ctx.Notification.HasURL() {
		return nil
	}

	p, err := s.predictor.Predict(ctx.Ctx, prediction.BuildRequest(ctx.Notification))
	if err != nil {
		s.logger.Warn("Prediction failed (non-blocking)",
			zap.String("url", ctx.Notification.GetURL()),
			zap.Error(err))
		ctx.Result.Errors = append(ctx.Result.Errors, err)
		return nil // Graceful degradation
	}

	ctx.Prediction = p
	ctx.Result.RecommendedAssignee = p.RecommendedAssignee
	ctx.Result.Confidence = p.Confidence

	s.logger.Info("Received prediction",
		zap.String("url", ctx.Notification.GetURL()),
		zap.String("recommended_assignee", p.RecommendedAssignee),
		zap.Float64("confidence", p.Confidence),
		zap.Strings("alternatives", p.Alternatives))
	return nil
}
