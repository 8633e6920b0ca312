package engine

import "context"

// ActionInput describes a console mutation to authorize. Resource fields that
// do not apply to the action are left at their zero values.
type ActionInput struct {
	ActorID string
	Role    string
	// Action names the mutation, e.g. "project.update", "task.create",
	// "user.update", "knowledge.delete".
	Action string
	// Associated reports whether the actor is tied to the target project as
	// owner, manager, or member. Computed by the caller from loaded state.
	Associated bool
	// AssigneeID is the task assignee, when the action targets a task.
	AssigneeID string
	// AuthorID is the article author, when the action targets an article.
	AuthorID string
}

// Decision is the outcome of evaluating an action against policy.
type Decision struct {
	Allow bool
}

// Evaluator authorizes console mutations using OPA or other engines.
type Evaluator interface {
	// Authorize evaluates the workspace action policy for the given input.
	Authorize(ctx context.Context, input ActionInput) (Decision, error)
	// HealthCheck verifies the engine can compile and evaluate its built-in policy.
	HealthCheck(ctx context.Context) error
}
