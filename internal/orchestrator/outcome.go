package orchestrator

import (
	"terraform-provider-cloudram/internal/apiclient/apimodels"
	"terraform-provider-cloudram/internal/resolver"
)

type OutcomeKind string

const (
	// OutcomeSkipped means another run held the lock and nothing was done.
	OutcomeSkipped OutcomeKind = "skipped"
	// OutcomeAgentOffline means the run stopped at the Agent check.
	OutcomeAgentOffline OutcomeKind = "agent_offline"
	// OutcomeSignIn means no credential was available.
	OutcomeSignIn OutcomeKind = "sign_in"
	// OutcomeRedirect means the VM is usable and Target is its operational view.
	OutcomeRedirect OutcomeKind = "redirect"
	// OutcomeResolve means the VM is stopped and Choices were offered.
	OutcomeResolve OutcomeKind = "resolve"
	// OutcomePending means the VM exists but is not actionable yet.
	OutcomePending OutcomeKind = "pending"
	OutcomeFailed  OutcomeKind = "failed"
)

// Outcome is how one allocation run ended.
type Outcome struct {
	RunID   string
	Kind    OutcomeKind
	Message string
	Target  string
	Status  *apimodels.ResourceStatus
	Choices []resolver.Choice
	Err     error
}

func (o *Outcome) Succeeded() bool {
	return o != nil && o.Kind == OutcomeRedirect
}
