package engine

import (
	"context"
	"fmt"

	"github.com/open-policy-agent/opa/v1/ast"
	"github.com/open-policy-agent/opa/v1/rego"
	"go.uber.org/zap"

	"github.com/OmarHalima/workforce-console/internal/policy/domain"
	"github.com/OmarHalima/workforce-console/internal/policy/repository"
)

// Default Rego policy mirroring the built-in role rules: admins mutate
// anything, managers mutate what they are associated with, employees mutate
// their own tasks, authors mutate their own articles.
const defaultRegoPolicy = `package workforce.actions

default allow = false

allow if {
	input.actor.role == "admin"
}

allow if {
	input.actor.role == "project_manager"
	input.resource.associated
}

allow if {
	input.actor.role == "employee"
	startswith(input.action, "task.")
	input.resource.assignee_id == input.actor.id
	input.resource.assignee_id != ""
}

allow if {
	startswith(input.action, "knowledge.")
	input.resource.author_id == input.actor.id
	input.resource.author_id != ""
}
`

// OPAEvaluator authorizes workspace actions using OPA Rego. The stored
// workspace policy overrides the built-in default; a policy that fails to
// compile falls back to the default rather than failing open or closed.
type OPAEvaluator struct {
	policyRepo repository.Repository
	log        *zap.Logger
}

// NewOPAEvaluator returns an OPA-based action evaluator.
func NewOPAEvaluator(policyRepo repository.Repository, log *zap.Logger) *OPAEvaluator {
	if log == nil {
		log = zap.NewNop()
	}
	return &OPAEvaluator{policyRepo: policyRepo, log: log}
}

// HealthCheck verifies that the in-process Rego engine can compile and
// evaluate the default policy. Does not touch the policy repo or database.
func (e *OPAEvaluator) HealthCheck(ctx context.Context) error {
	compiler, err := ast.CompileModules(map[string]string{"workspace.rego": defaultRegoPolicy})
	if err != nil {
		return fmt.Errorf("compile default policy: %w", err)
	}
	input := buildInput(ActionInput{ActorID: "", Role: "employee", Action: "task.update"})
	q := rego.New(
		rego.Query("data.workforce.actions.allow"),
		rego.Compiler(compiler),
		rego.Input(input),
	)
	rs, err := q.Eval(ctx)
	if err != nil {
		return fmt.Errorf("eval default policy: %w", err)
	}
	if len(rs) == 0 || len(rs[0].Expressions) == 0 {
		return fmt.Errorf("policy query returned no result")
	}
	return nil
}

// Authorize evaluates the workspace action policy for the given input.
func (e *OPAEvaluator) Authorize(ctx context.Context, in ActionInput) (Decision, error) {
	source := defaultRegoPolicy
	if e.policyRepo != nil {
		stored, err := e.policyRepo.GetByName(ctx, domain.WorkspacePolicyName)
		if err != nil {
			e.log.Warn("load workspace policy failed, using default", zap.Error(err))
		} else if stored != nil && stored.Rego != "" {
			source = stored.Rego
		}
	}

	decision, err := e.evaluate(ctx, source, in)
	if err != nil && source != defaultRegoPolicy {
		e.log.Warn("stored policy evaluation failed, using default", zap.Error(err))
		decision, err = e.evaluate(ctx, defaultRegoPolicy, in)
	}
	if err != nil {
		return Decision{}, err
	}
	return decision, nil
}

func (e *OPAEvaluator) evaluate(ctx context.Context, source string, in ActionInput) (Decision, error) {
	compiler, err := ast.CompileModules(map[string]string{"workspace.rego": source})
	if err != nil {
		return Decision{}, fmt.Errorf("compile policy: %w", err)
	}
	q := rego.New(
		rego.Query("data.workforce.actions.allow"),
		rego.Compiler(compiler),
		rego.Input(buildInput(in)),
	)
	rs, err := q.Eval(ctx)
	if err != nil {
		return Decision{}, fmt.Errorf("eval policy: %w", err)
	}
	if len(rs) == 0 || len(rs[0].Expressions) == 0 {
		return Decision{}, fmt.Errorf("policy query returned no result")
	}
	allow, ok := rs[0].Expressions[0].Value.(bool)
	if !ok {
		return Decision{}, fmt.Errorf("policy allow is not a boolean")
	}
	return Decision{Allow: allow}, nil
}

// DefaultRego returns the built-in workspace policy source, used to seed the
// stored policy and to show admins the baseline.
func DefaultRego() string {
	return defaultRegoPolicy
}

// ValidateRego reports whether the given Rego source compiles.
func ValidateRego(source string) error {
	_, err := ast.CompileModules(map[string]string{"workspace.rego": source})
	return err
}

func buildInput(in ActionInput) map[string]interface{} {
	return map[string]interface{}{
		"actor": map[string]interface{}{
			"id":   in.ActorID,
			"role": in.Role,
		},
		"action": in.Action,
		"resource": map[string]interface{}{
			"associated":  in.Associated,
			"assignee_id": in.AssigneeID,
			"author_id":   in.AuthorID,
		},
	}
}
