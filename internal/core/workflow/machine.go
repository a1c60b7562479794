package workflow

import (
	"fmt"

	"github.com/SscSPs/agent_onboarding_portal/internal/apperrors"
	"github.com/SscSPs/agent_onboarding_portal/internal/core/domain"
	"github.com/SscSPs/agent_onboarding_portal/internal/utils/onboarding"
)

// Snapshot is everything the guards read about a request, taken inside the
// transaction that holds the request row lock.
type Snapshot struct {
	Request          domain.OnboardingRequest
	Validation       domain.ValidationSummary
	DepositConfirmed bool
}

// Machine evaluates transitions against a Table.
type Machine struct {
	table *Table
}

// NewMachine returns a machine for table.
func NewMachine(table *Table) *Machine {
	return &Machine{table: table}
}

// Table returns the lifecycle definition the machine runs on.
func (m *Machine) Table() *Table {
	return m.table
}

// AttemptTransition returns the edge taken when role moves a request from current to
// requested, or a *apperrors.WorkflowError naming the first guard that failed.
func (m *Machine) AttemptTransition(current, requested domain.RequestStatus, role domain.Role, snap Snapshot) (Transition, error) {
	from, to := current.String(), requested.String()

	currentDef, ok := m.table.Status(current)
	if !ok {
		return Transition{}, apperrors.NewWorkflowError(apperrors.ErrInvalidTransition, from, to, "unknown current status")
	}
	if currentDef.Terminal {
		return Transition{}, apperrors.NewWorkflowError(apperrors.ErrTerminalState, from, to, "")
	}

	target, ok := m.table.Status(requested)
	if !ok {
		return Transition{}, apperrors.NewWorkflowError(apperrors.ErrInvalidTransition, from, to, "unknown target status")
	}
	if required, restricted := target.RequiredRole(); restricted && role != required {
		return Transition{}, apperrors.NewWorkflowError(apperrors.ErrTransitionUnauthorized, from, to,
			fmt.Sprintf("only %s may move a request to %s", required, to))
	}

	edge, ok := m.table.Edge(current, requested)
	if !ok {
		return Transition{}, apperrors.NewWorkflowError(apperrors.ErrInvalidTransition, from, to, "")
	}
	return m.attemptEdge(edge, role, snap)
}

// Apply resolves action from current and runs the guards on the resulting edge.
func (m *Machine) Apply(current domain.RequestStatus, action string, role domain.Role, snap Snapshot) (Transition, error) {
	edge, err := m.ResolveAction(current, action)
	if err != nil {
		return Transition{}, err
	}
	return m.attemptEdge(edge, role, snap)
}

func (m *Machine) attemptEdge(edge Transition, role domain.Role, snap Snapshot) (Transition, error) {
	from, to := edge.From.String(), edge.To.String()
	target, _ := m.table.Status(edge.To)
	if required, restricted := target.RequiredRole(); restricted && role != required {
		return Transition{}, apperrors.NewWorkflowError(apperrors.ErrTransitionUnauthorized, from, to,
			fmt.Sprintf("only %s may move a request to %s", required, to))
	}
	if !edge.Allows(role) {
		return Transition{}, apperrors.NewWorkflowError(apperrors.ErrTransitionUnauthorized, from, to,
			fmt.Sprintf("role %s may not %s", role, edge.Action))
	}
	if err := m.checkTarget(target, snap, from, to); err != nil {
		return Transition{}, err
	}
	return edge, nil
}

// ResolveAction finds the edge named action leaving current.
func (m *Machine) ResolveAction(current domain.RequestStatus, action string) (Transition, error) {
	if m.table.IsTerminal(current) {
		return Transition{}, apperrors.NewWorkflowError(apperrors.ErrTerminalState, current.String(), "", "")
	}
	edge, ok := m.table.EdgeForAction(current, action)
	if !ok {
		return Transition{}, apperrors.NewWorkflowError(apperrors.ErrInvalidTransition, current.String(), "",
			fmt.Sprintf("action %q is not available", action))
	}
	return edge, nil
}

// AvailableActions lists the edges role could take from current, ignoring payload guards.
func (m *Machine) AvailableActions(current domain.RequestStatus, role domain.Role) []Transition {
	var out []Transition
	for _, edge := range m.table.From(current) {
		target, _ := m.table.Status(edge.To)
		if required, restricted := target.RequiredRole(); restricted && role != required {
			continue
		}
		if edge.Allows(role) {
			out = append(out, edge)
		}
	}
	return out
}

func (m *Machine) checkTarget(target StatusDefinition, snap Snapshot, from, to string) error {
	if target.RequiresCompletePayload {
		if result := onboarding.ValidateRequest(snap.Request); !result.Valid {
			werr := apperrors.NewWorkflowError(apperrors.ErrIncompleteSubmission, from, to, "request is not complete")
			werr.FieldErrors = result.Errors
			return werr
		}
	}
	if target.RequiresErrorFeedback && snap.Validation.ErrorCount == 0 {
		return apperrors.NewWorkflowError(apperrors.ErrNoCorrectionsRequested, from, to, "no field is marked as error")
	}
	if target.RequiresResolvedFeedback && snap.Validation.ErrorCount > 0 {
		return apperrors.NewWorkflowError(apperrors.ErrUnresolvedFeedback, from, to,
			fmt.Sprintf("%d field(s) still marked as error", snap.Validation.ErrorCount))
	}
	if target.RequiresDeposit && !snap.DepositConfirmed {
		return apperrors.NewWorkflowError(apperrors.ErrDepositRequired, from, to, "")
	}
	return nil
}
