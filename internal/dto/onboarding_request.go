package dto

import (
	"time"

	"github.com/SscSPs/agent_onboarding_portal/internal/core/domain"
	"github.com/SscSPs/agent_onboarding_portal/internal/utils/onboarding"
)

// CreateOnboardingRequest carries the sections an agent starts a request with.
type CreateOnboardingRequest struct {
	onboarding.SectionsPayload
}

// UpdateSectionsRequest carries changed sections and the version the agent edited.
type UpdateSectionsRequest struct {
	Version int64 `json:"version" binding:"required,min=1"`
	onboarding.SectionsPayload
}

// ListRequestsParams defines query parameters for listing requests.
type ListRequestsParams struct {
	Limit     int     `form:"limit,default=20"`
	NextToken *string `form:"nextToken"`
	Status    *string `form:"status"`
	BankID    *string `form:"bankID"`
	AgencyID  *string `form:"agencyID"`
	AgentID   *string `form:"agentID"`
}

// OnboardingRequestResponse is the view of a request returned by the API.
type OnboardingRequestResponse struct {
	RequestID     string               `json:"requestID"`
	BankID        string               `json:"bankID"`
	AgencyID      string               `json:"agencyID"`
	AgentID       string               `json:"agentID"`
	Status        domain.RequestStatus `json:"status"`
	StatusCode    int                  `json:"statusCode"`
	PersonalInfo  *domain.PersonalInfo `json:"personalInfo,omitempty"`
	BusinessInfo  *domain.BusinessInfo `json:"businessInfo,omitempty"`
	Shareholders  []domain.Shareholder `json:"shareholders"`
	Documents     domain.Documents     `json:"documents"`
	SubmittedAt   *time.Time           `json:"submittedAt,omitempty"`
	Version       int64                `json:"version"`
	CreatedAt     time.Time            `json:"createdAt"`
	LastUpdatedAt time.Time            `json:"lastUpdatedAt"`
}

// ListRequestsResponse is a page of requests.
type ListRequestsResponse struct {
	Requests  []OnboardingRequestResponse `json:"requests"`
	NextToken *string                     `json:"nextToken,omitempty"`
}

// ReadinessResponse reports whether a request would pass submission checks.
type ReadinessResponse struct {
	Valid  bool        `json:"valid"`
	Errors interface{} `json:"errors"`
}

// ToOnboardingRequestResponse converts a domain.OnboardingRequest to its API view
func ToOnboardingRequestResponse(r *domain.OnboardingRequest) OnboardingRequestResponse {
	shareholders := r.Shareholders
	if shareholders == nil {
		shareholders = []domain.Shareholder{}
	}
	return OnboardingRequestResponse{
		RequestID:     r.RequestID,
		BankID:        r.BankID,
		AgencyID:      r.AgencyID,
		AgentID:       r.AgentID,
		Status:        r.Status,
		StatusCode:    int(r.Status),
		PersonalInfo:  r.PersonalInfo,
		BusinessInfo:  r.BusinessInfo,
		Shareholders:  shareholders,
		Documents:     r.Documents,
		SubmittedAt:   r.SubmittedAt,
		Version:       r.Version,
		CreatedAt:     r.CreatedAt,
		LastUpdatedAt: r.LastUpdatedAt,
	}
}

// ToListRequestsResponse converts a page of requests.
func ToListRequestsResponse(requests []domain.OnboardingRequest, nextToken *string) ListRequestsResponse {
	out := make([]OnboardingRequestResponse, len(requests))
	for i := range requests {
		out[i] = ToOnboardingRequestResponse(&requests[i])
	}
	return ListRequestsResponse{Requests: out, NextToken: nextToken}
}
