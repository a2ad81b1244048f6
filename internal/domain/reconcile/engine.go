// Package reconcile joins manifest constraints against extracted source
// facts and emits contract violations (the CTR rule family). Rules are
// independent passes over one shared join; none of them mutates a fact.
package reconcile

import (
	"github.com/pactlint/pactlint/internal/domain"
	"github.com/pactlint/pactlint/internal/domain/fact"
	"github.com/pactlint/pactlint/internal/domain/manifest"
)

// Rule is one CTR evaluator. Implementations are stateless.
type Rule interface {
	// ID returns the unique rule identifier (e.g. "CTR-request-shape").
	ID() string

	// Description returns a human-readable summary of what the rule checks.
	Description() string

	// Why returns a brief explanation of why the rule matters.
	Why() string

	// DefaultSeverity returns the severity used absent a config override.
	DefaultSeverity() string

	// Check evaluates the rule for one endpoint join.
	Check(ctx *EndpointContext) []domain.Violation
}

// EndpointContext is the read-only join a rule evaluates: one endpoint's
// constraints plus the fact sets of the files implementing each side.
type EndpointContext struct {
	Contract *manifest.Contract
	Endpoint *manifest.Endpoint
	Client   *fact.Set
	Server   *fact.Set
	Config   domain.ProjectConfig
}

// severityFor resolves a rule's severity, downgrading error findings built
// on inferred facts to warnings. Inferred facts never hard-fail a rule.
func (c *EndpointContext) severityFor(r Rule, confidence string) string {
	sev := c.Config.SeverityFor(r.ID(), r.DefaultSeverity())
	if sev == domain.SeverityError && confidence == fact.Inferred {
		return domain.SeverityWarning
	}
	return sev
}

// validationFacts returns ValidationCall facts for a path from both sides:
// either side enforcing a constraint satisfies parity.
func (c *EndpointContext) validationFacts(path string) []fact.Fact {
	epID := c.Endpoint.ID()
	facts := append([]fact.Fact{}, c.Client.Lookup(epID, fact.ValidationCall, path)...)
	return append(facts, c.Server.Lookup(epID, fact.ValidationCall, path)...)
}

// siteFor returns a representative source location for absence findings:
// the first client-side fact for this endpoint, so the violation points at
// the call site rather than nowhere.
func (c *EndpointContext) siteFor(kinds ...fact.Kind) fact.Location {
	epID := c.Endpoint.ID()
	for _, k := range kinds {
		for _, set := range []*fact.Set{c.Client, c.Server} {
			if facts := set.ByKind(epID, k); len(facts) > 0 {
				return facts[0].Loc
			}
		}
	}
	return fact.Location{}
}

func (c *EndpointContext) violation(r Rule, confidence, fieldPath, message string, loc fact.Location) domain.Violation {
	return domain.Violation{
		RuleID:     r.ID(),
		Severity:   c.severityFor(r, confidence),
		Confidence: confidence,
		Message:    message,
		ContractID: c.Contract.ID,
		EndpointID: c.Endpoint.ID(),
		FieldPath:  fieldPath,
		File:       loc.File,
		Line:       loc.Line,
		Column:     loc.Column,
	}
}

// Engine evaluates every registered CTR rule over an endpoint join.
type Engine struct {
	rules []Rule
}

// NewEngine returns an engine with the full CTR rule set registered in
// stable evaluation order.
func NewEngine() *Engine {
	return &Engine{rules: []Rule{
		&RequestShape{},
		&ResponseShape{},
		&ManifestConformance{},
		&StrictnessParity{},
		&StatusCodeHandling{},
		&Nullability{},
		&Pagination{},
	}}
}

// Rules exposes the registered rule set, for listing and documentation.
func (e *Engine) Rules() []Rule { return e.rules }

// Reconcile runs every rule against one endpoint join. When multiple rules
// fire on the same field all of them are emitted; presentation-level
// collapsing belongs to the aggregator.
func (e *Engine) Reconcile(ctx *EndpointContext) []domain.Violation {
	var out []domain.Violation
	for _, r := range e.rules {
		if ctx.Config.SeverityFor(r.ID(), r.DefaultSeverity()) == domain.SeverityOff {
			continue
		}
		out = append(out, r.Check(ctx)...)
	}
	return out
}

// ReconcileContract runs the full rule set over every endpoint of a
// contract. Fact sets are read-only; the same sets may be joined against
// many endpoints concurrently by callers if they wish.
func (e *Engine) ReconcileContract(contract *manifest.Contract, client, server *fact.Set, cfg domain.ProjectConfig) []domain.Violation {
	var out []domain.Violation
	for i := range contract.Endpoints {
		ctx := &EndpointContext{
			Contract: contract,
			Endpoint: &contract.Endpoints[i],
			Client:   client,
			Server:   server,
			Config:   cfg,
		}
		out = append(out, e.Reconcile(ctx)...)
	}
	return out
}
