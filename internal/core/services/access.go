package services

import (
	"github.com/SscSPs/agent_onboarding_portal/internal/apperrors"
	"github.com/SscSPs/agent_onboarding_portal/internal/core/domain"
)

// canAccessRequest reports whether actor may see and act on req: agents their own
// requests, bank roles the requests of their bank, super admins everything.
func canAccessRequest(actor domain.Actor, req *domain.OnboardingRequest) bool {
	switch actor.Role {
	case domain.RoleSuperAdmin:
		return true
	case domain.RoleAgent:
		return req.AgentID == actor.UserID
	default:
		return actor.InBank(req.BankID)
	}
}

func authorizeRequest(actor domain.Actor, req *domain.OnboardingRequest) error {
	if !canAccessRequest(actor, req) {
		return apperrors.NewForbiddenError("request belongs to another tenant")
	}
	return nil
}

// scopeFilter narrows filter to what actor may list.
func scopeFilter(actor domain.Actor, filter domain.RequestFilter) (domain.RequestFilter, error) {
	switch actor.Role {
	case domain.RoleSuperAdmin:
		return filter, nil
	case domain.RoleAgent:
		userID := actor.UserID
		filter.AgentID = &userID
		filter.BankID = nil
		return filter, nil
	default:
		if actor.BankID == nil {
			return filter, apperrors.NewForbiddenError("user is not attached to a bank")
		}
		if filter.BankID != nil && *filter.BankID != *actor.BankID {
			return filter, apperrors.NewForbiddenError("cannot list requests of another bank")
		}
		bankID := *actor.BankID
		filter.BankID = &bankID
		return filter, nil
	}
}

func requireRole(actor domain.Actor, allowed ...domain.Role) error {
	for _, r := range allowed {
		if actor.Role == r {
			return nil
		}
	}
	return apperrors.NewForbiddenError("role " + string(actor.Role) + " may not perform this operation")
}
