package mapping

import (
	"encoding/json"
	"fmt"

	"github.com/SscSPs/agent_onboarding_portal/internal/core/domain"
	"github.com/SscSPs/agent_onboarding_portal/internal/models"
)

// ToModelOnboardingRequest converts a domain request to its row, encoding sections as JSON.
func ToModelOnboardingRequest(d domain.OnboardingRequest) (models.OnboardingRequest, error) {
	m := models.OnboardingRequest{
		RequestID:   d.RequestID,
		BankID:      d.BankID,
		AgencyID:    d.AgencyID,
		AgentID:     d.AgentID,
		Status:      int16(d.Status),
		SubmittedAt: d.SubmittedAt,
		AuditFields: ToModelAuditFields(d.AuditFields),
	}
	var err error
	if d.PersonalInfo != nil {
		if m.PersonalInfo, err = json.Marshal(d.PersonalInfo); err != nil {
			return m, fmt.Errorf("encode personalInfo: %w", err)
		}
	}
	if d.BusinessInfo != nil {
		if m.BusinessInfo, err = json.Marshal(d.BusinessInfo); err != nil {
			return m, fmt.Errorf("encode businessInfo: %w", err)
		}
	}
	shareholders := d.Shareholders
	if shareholders == nil {
		shareholders = []domain.Shareholder{}
	}
	if m.Shareholders, err = json.Marshal(shareholders); err != nil {
		return m, fmt.Errorf("encode shareholders: %w", err)
	}
	if m.Documents, err = json.Marshal(normalizeDocuments(d.Documents)); err != nil {
		return m, fmt.Errorf("encode documents: %w", err)
	}
	return m, nil
}

// ToDomainOnboardingRequest converts a row to a domain request.
func ToDomainOnboardingRequest(m models.OnboardingRequest) (domain.OnboardingRequest, error) {
	d := domain.OnboardingRequest{
		RequestID:   m.RequestID,
		BankID:      m.BankID,
		AgencyID:    m.AgencyID,
		AgentID:     m.AgentID,
		Status:      domain.RequestStatus(m.Status),
		SubmittedAt: m.SubmittedAt,
		AuditFields: ToDomainAuditFields(m.AuditFields),
	}
	if len(m.PersonalInfo) > 0 {
		d.PersonalInfo = &domain.PersonalInfo{}
		if err := json.Unmarshal(m.PersonalInfo, d.PersonalInfo); err != nil {
			return d, fmt.Errorf("decode personalInfo of %s: %w", m.RequestID, err)
		}
	}
	if len(m.BusinessInfo) > 0 {
		d.BusinessInfo = &domain.BusinessInfo{}
		if err := json.Unmarshal(m.BusinessInfo, d.BusinessInfo); err != nil {
			return d, fmt.Errorf("decode businessInfo of %s: %w", m.RequestID, err)
		}
	}
	if len(m.Shareholders) > 0 {
		if err := json.Unmarshal(m.Shareholders, &d.Shareholders); err != nil {
			return d, fmt.Errorf("decode shareholders of %s: %w", m.RequestID, err)
		}
	}
	if len(m.Documents) > 0 {
		if err := json.Unmarshal(m.Documents, &d.Documents); err != nil {
			return d, fmt.Errorf("decode documents of %s: %w", m.RequestID, err)
		}
	}
	d.Documents = normalizeDocuments(d.Documents)
	return d, nil
}

func normalizeDocuments(docs domain.Documents) domain.Documents {
	if docs.ProofOfResidence == nil {
		docs.ProofOfResidence = []string{}
	}
	if docs.IdentityDocument == nil {
		docs.IdentityDocument = []string{}
	}
	if docs.Signature == nil {
		docs.Signature = []string{}
	}
	if docs.BankDetails == nil {
		docs.BankDetails = []string{}
	}
	return docs
}

// ToModelStatusHistoryEntry converts a history entry to its row.
func ToModelStatusHistoryEntry(d domain.StatusHistoryEntry) (models.StatusHistoryEntry, error) {
	m := models.StatusHistoryEntry{
		EntryID:   d.EntryID,
		RequestID: d.RequestID,
		Status:    int16(d.Status),
		UserID:    d.UserID,
		Role:      string(d.Role),
		Comment:   d.Comment,
		CreatedAt: d.CreatedAt,
	}
	if d.PreviousStatus != nil {
		prev := int16(*d.PreviousStatus)
		m.PreviousStatus = &prev
	}
	if d.Action != "" {
		action := d.Action
		m.Action = &action
	}
	if len(d.Metadata) > 0 {
		raw, err := json.Marshal(d.Metadata)
		if err != nil {
			return m, fmt.Errorf("encode history metadata: %w", err)
		}
		m.Metadata = raw
	}
	return m, nil
}

// ToDomainStatusHistoryEntry converts a row to a history entry.
func ToDomainStatusHistoryEntry(m models.StatusHistoryEntry) (domain.StatusHistoryEntry, error) {
	d := domain.StatusHistoryEntry{
		EntryID:   m.EntryID,
		RequestID: m.RequestID,
		Status:    domain.RequestStatus(m.Status),
		UserID:    m.UserID,
		Role:      domain.Role(m.Role),
		Comment:   m.Comment,
		CreatedAt: m.CreatedAt,
	}
	if m.PreviousStatus != nil {
		prev := domain.RequestStatus(*m.PreviousStatus)
		d.PreviousStatus = &prev
	}
	if m.Action != nil {
		d.Action = *m.Action
	}
	if len(m.Metadata) > 0 {
		if err := json.Unmarshal(m.Metadata, &d.Metadata); err != nil {
			return d, fmt.Errorf("decode history metadata: %w", err)
		}
	}
	return d, nil
}
