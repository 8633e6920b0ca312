package domain

import "time"

// ActionPolicy is a stored Rego policy governing console mutations. The
// engine compiles it on use and falls back to the built-in default when the
// stored source does not compile.
type ActionPolicy struct {
	ID        string
	Name      string
	Rego      string
	UpdatedBy string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// WorkspacePolicyName is the name of the singleton policy governing
// project/task/user mutations.
const WorkspacePolicyName = "workspace_actions"
