// Author: Kaviru Hapuarachchi
// GitHub: https://github.com/Kavirubc
// Created: 2026-10-16
// Last Modified: 2026-10-16

// Package decision turns a notification and a prediction into an action.
package decision

import (
	"fmt"

	"github.com/similigh/mailbox-monitor/internal/notification"
	"github.com/similigh/mailbox-monitor/internal/prediction"
)

// Action is the verdict for one notification.
type Action string

const (
	Skip          Action = "skip"
	Apply         Action = "apply"
	SimulateApply Action = "simulate_apply"
)

// Rule names, reported on every Decision.
const (
	RuleNoURL           = "no_url"
	RuleNoPrediction    = "no_prediction"
	RuleLowConfidence   = "low_confidence"
	RuleAlreadyAssigned = "already_assigned"
	RuleDryRun          = "dry_run"
	RuleApply           = "apply"
)

// Policy controls how confident a prediction must be and whether changes are made.
type Policy struct {
	MinConfidence float64
	DryRun        bool
}

// Decision is the immutable result of Decide.
type Decision struct {
	Action Action `json:"action"`
	Reason string `json:"reason"`
	Rule   string `json:"rule"`
}

type input struct {
	n      *notification.IssueNotification
	p      *prediction.Prediction
	policy Policy
}

type rule struct {
	name    string
	when    func(in input) bool
	verdict func(in input) (Action, string)
}

// rules are evaluated top to bottom; the first match wins.
var rules = []rule{
	{
		name: RuleNoURL,
		when: func(in input) bool { return !in.n.HasURL() },
		verdict: func(input) (Action, string) {
			return Skip, "no issue reference found"
		},
	},
	{
		name: RuleNoPrediction,
		when: func(in input) bool { return in.p == nil },
		verdict: func(input) (Action, string) {
			return Skip, "no usable prediction"
		},
	},
	{
		name: RuleLowConfidence,
		when: func(in input) bool { return in.p.Confidence < in.policy.MinConfidence },
		verdict: func(in input) (Action, string) {
			return Skip, fmt.Sprintf("confidence %g < min_confidence %g", in.p.Confidence, in.policy.MinConfidence)
		},
	},
	{
		name: RuleAlreadyAssigned,
		when: func(in input) bool {
			return in.n.CurrentAssignee != nil && *in.n.CurrentAssignee == in.p.RecommendedAssignee
		},
		verdict: func(in input) (Action, string) {
			return Skip, fmt.Sprintf("already assigned to recommended assignee %s", in.p.RecommendedAssignee)
		},
	},
	{
		name: RuleDryRun,
		when: func(in input) bool { return in.policy.DryRun },
		verdict: func(in input) (Action, string) {
			return SimulateApply, fmt.Sprintf("dry run: would assign %s (confidence %g)", in.p.RecommendedAssignee, in.p.Confidence)
		},
	},
	{
		name: RuleApply,
		when: func(input) bool { return true },
		verdict: func(in input) (Action, string) {
			return Apply, fmt.Sprintf("assign %s (confidence %g)", in.p.RecommendedAssignee, in.p.Confidence)
		},
	},
}

// Decide applies the rule table to a notification and its prediction.
// A nil prediction means no usable prediction was obtained.
func Decide(n *notification.IssueNotification, p *prediction.Prediction, policy Policy) Decision {
	in := input{n: n, p: p, policy: policy}
	for _, r := range rules {
		if r.when(in) {
			action, reason := r.verdict(in)
			return Decision{Action: action, Reason: reason, Rule: r.name}
		}
	}
	// Unreachable: the last rule always matches.
	return Decision{Action: Skip, Reason: "no rule matched"}
}

// Mutates reports whether the action changes tracker state.
func (a Action) Mutates() bool {
	return a == Apply
}
