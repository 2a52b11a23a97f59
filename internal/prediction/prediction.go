// Author: Kaviru Hapuarachchi
// GitHub: https://github.com/Kavirubc
// Created: 2026-10-16
// Last Modified: 2026-10-16

// Package prediction maps issue notifications to assignee prediction requests
// and validates the answers that come back.
package prediction

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/similigh/mailbox-monitor/internal/notification"
)

// ErrInvalidPrediction is returned when a prediction response does not have
// the required shape. The notification is dropped for the current cycle.
var ErrInvalidPrediction = errors.New("invalid prediction")

// Predictor asks an external service who should own an issue.
type Predictor interface {
	Predict(ctx context.Context, req Request) (*Prediction, error)
	Health(ctx context.Context) error
}

// Request is the payload sent to the prediction service.
type Request struct {
	Issue IssueFields `json:"issue"`
}

// IssueFields carries the notification fields on the wire. The core fields are
// always present; Priority and Milestone are only sent when extracted.
type IssueFields struct {
	Title           string   `json:"title"`
	Description     string   `json:"description"`
	Labels          []string `json:"labels"`
	CurrentAssignee string   `json:"current_assignee"`
	Project         string   `json:"project"`
	URL             string   `json:"url"`
	IssueNumber     string   `json:"issue_number"`
	Priority        *string  `json:"priority,omitempty"`
	Milestone       *string  `json:"milestone,omitempty"`
}

// Prediction is a validated answer from the prediction service.
type Prediction struct {
	RecommendedAssignee string   `json:"recommended_assignee"`
	Confidence          float64  `json:"confidence"`
	Reasoning           *string  `json:"reasoning,omitempty"`
	Alternatives        []string `json:"alternatives,omitempty"`
}

// GetReasoning returns the Reasoning field if it's non-nil, zero value otherwise.
func (p *Prediction) GetReasoning() string {
	if p == nil || p.Reasoning == nil {
		return ""
	}
	return *p.Reasoning
}

// BuildRequest converts a notification into a prediction request.
func BuildRequest(n *notification.IssueNotification) Request {
	labels := []string{}
	if n != nil && n.Labels != nil {
		labels = append(labels, n.Labels...)
	}

	fields := IssueFields{
		Title:           n.GetTitle(),
		Description:     n.GetDescription(),
		Labels:          labels,
		CurrentAssignee: n.GetCurrentAssignee(),
		Project:         n.GetProject(),
		URL:             n.GetURL(),
		IssueNumber:     n.GetIssueNumber(),
	}
	if n != nil {
		fields.Priority = n.Priority
		fields.Milestone = n.Milestone
	}
	return Request{Issue: fields}
}

// ParseResponse validates a raw JSON prediction response.
//
// recommended_assignee must be present and a string. confidence, when present,
// must be a number; alternatives, when present, must be an array. Anything else
// yields ErrInvalidPrediction.
func ParseResponse(raw []byte) (*Prediction, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPrediction, err)
	}

	var p Prediction

	assignee, ok := fields["recommended_assignee"]
	if !ok {
		return nil, fmt.Errorf("%w: missing recommended_assignee", ErrInvalidPrediction)
	}
	if err := json.Unmarshal(assignee, &p.RecommendedAssignee); err != nil || isNull(assignee) {
		return nil, fmt.Errorf("%w: recommended_assignee is not a string", ErrInvalidPrediction)
	}

	if c, ok := fields["confidence"]; ok {
		if isNull(c) {
			return nil, fmt.Errorf("%w: confidence is not a number", ErrInvalidPrediction)
		}
		if err := json.Unmarshal(c, &p.Confidence); err != nil {
			return nil, fmt.Errorf("%w: confidence is not a number", ErrInvalidPrediction)
		}
	}

	if a, ok := fields["alternatives"]; ok {
		var items []json.RawMessage
		if isNull(a) || json.Unmarshal(a, &items) != nil {
			return nil, fmt.Errorf("%w: alternatives is not an array", ErrInvalidPrediction)
		}
		p.Alternatives = make([]string, 0, len(items))
		for _, item := range items {
			var s string
			if err := json.Unmarshal(item, &s); err != nil {
				s = string(item)
			}
			p.Alternatives = append(p.Alternatives, s)
		}
	}

	if r, ok := fields["reasoning"]; ok && !isNull(r) {
		var s string
		if err := json.Unmarshal(r, &s); err != nil {
			s = string(r)
		}
		p.Reasoning = &s
	}

	return &p, nil
}

func isNull(raw json.RawMessage) bool {
	return string(raw) == "null"
}
