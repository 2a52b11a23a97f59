// Author: Kaviru Hapuarachchi
// GitHub: https://github.com/Kavirubc
// Created: 2026-02-02
// Last Modified: 2026-10-16

// Package gemini provides a Gemini-backed assignee predictor.
package gemini

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/generative-ai-go/genai"
	"go.uber.org/zap"
	"google.golang.org/api/option"

	"github.com/similigh/mailbox-monitor/internal/metrics"
	"github.com/similigh/mailbox-monitor/internal/prediction"
	"github.com/similigh/mailbox-monitor/internal/tracker"
)

// DefaultModel is used when no model is configured.
const DefaultModel = "gemini-2.0-flash-lite"

// DefaultTimeout bounds each Gemini call unless SetTimeout overrides it.
const DefaultTimeout = 30 * time.Second

// MemberLister supplies the candidate assignees for a project.
type MemberLister interface {
	Members(ctx context.Context, project string) ([]tracker.Member, error)
}

// Predictor recommends assignees using Gemini.
type Predictor struct {
	client  *genai.Client
	model   string
	members MemberLister
	retry   RetryConfig
	timeout time.Duration
	logger  *zap.Logger
}

// NewPredictor creates a new Gemini predictor. members may be nil, in which
// case the prompt carries no candidate list.
func NewPredictor(apiKey, model string, members MemberLister, logger *zap.Logger) (*Predictor, error) {
	ctx := context.Background()
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	if model == "" {
		model = DefaultModel
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Predictor{
		client:  client,
		model:   model,
		members: members,
		retry:   DefaultRetryConfig(),
		timeout: DefaultTimeout,
		logger:  logger.Named("gemini"),
	}, nil
}

// SetRetryConfig overrides the retry policy for Gemini calls.
func (p *Predictor) SetRetryConfig(cfg RetryConfig) {
	p.retry = cfg
}

// SetTimeout sets the per-call deadline. Zero disables it.
func (p *Predictor) SetTimeout(d time.Duration) {
	p.timeout = d
}

// Close closes the Gemini client.
func (p *Predictor) Close() error {
	return p.client.Close()
}

// Predict asks Gemini for an assignee. The JSON answer goes through the same
// validation as the HTTP prediction service.
func (p *Predictor) Predict(ctx context.Context, req prediction.Request) (*prediction.Prediction, error) {
	start := time.Now()
	candidates := p.candidates(ctx, req.Issue)
	prompt := buildAssigneePrompt(req.Issue, candidates)

	model := p.client.GenerativeModel(p.model)
	model.SetTemperature(0.2) // Low temperature for consistent assignments
	model.ResponseMIMEType = "application/json"

	resp, err := withRetry(ctx, p.retry, "predict assignee", func() (*genai.GenerateContentResponse, error) {
		return callWithTimeout(ctx, p.timeout, func(ctx context.Context) (*genai.GenerateContentResponse, error) {
			return model.GenerateContent(ctx, genai.Text(prompt))
		})
	})
	if err != nil {
		metrics.RecordPredictionLatency("gemini", "error", time.Since(start))
		return nil, fmt.Errorf("failed to predict assignee: %w", err)
	}

	text := responseText(resp)
	if text == "" {
		metrics.RecordPredictionLatency("gemini", "invalid", time.Since(start))
		return nil, fmt.Errorf("%w: empty response from LLM", prediction.ErrInvalidPrediction)
	}

	pred, err := prediction.ParseResponse([]byte(cleanJSON(text)))
	if err != nil {
		metrics.RecordPredictionLatency("gemini", "invalid", time.Since(start))
		return nil, err
	}
	metrics.RecordPredictionLatency("gemini", "ok", time.Since(start))
	return pred, nil
}

// Health verifies the API key and model by counting tokens of a short prompt.
func (p *Predictor) Health(ctx context.Context) error {
	model := p.client.GenerativeModel(p.model)
	_, err := callWithTimeout(ctx, p.timeout, func(ctx context.Context) (*genai.CountTokensResponse, error) {
		return model.CountTokens(ctx, genai.Text("health check"))
	})
	if err != nil {
		return fmt.Errorf("gemini health check failed: %w", err)
	}
	return nil
}

func (p *Predictor) candidates(ctx context.Context, issue prediction.IssueFields) []string {
	if p.members == nil {
		return nil
	}

	project := issue.Project
	if ref, err := tracker.ParseIssueURL(issue.URL); err == nil {
		project = ref.Project
	}
	if project == "" {
		return nil
	}

	members, err := p.members.Members(ctx, project)
	if err != nil {
		p.logger.Warn("Failed to list candidate assignees", zap.String("project", project), zap.Error(err))
		return nil
	}

	names := make([]string, 0, len(members))
	for _, m := range members {
		names = append(names, m.Username)
	}
	return names
}

// callWithTimeout runs fn under ctx bounded by timeout.
func callWithTimeout[T any](ctx context.Context, timeout time.Duration, fn func(context.Context) (T, error)) (T, error) {
	if timeout <= 0 {
		return fn(ctx)
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	return fn(ctx)
}

// responseText concatenates the text parts of the first candidate.
func responseText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return ""
	}

	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if txt, ok := part.(genai.Text); ok {
			sb.WriteString(string(txt))
		}
	}
	return strings.TrimSpace(sb.String())
}

// cleanJSON strips a markdown code fence around a JSON answer.
func cleanJSON(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}
