package mapping

import (
	"github.com/SscSPs/agent_onboarding_portal/internal/core/domain"
	"github.com/SscSPs/agent_onboarding_portal/internal/models"
)

func ToModelBank(d domain.Bank) models.Bank {
	return models.Bank{BankID: d.BankID, Name: d.Name, Code: d.Code, IsActive: d.IsActive, AuditFields: ToModelAuditFields(d.AuditFields)}
}

func ToDomainBank(m models.Bank) domain.Bank {
	return domain.Bank{BankID: m.BankID, Name: m.Name, Code: m.Code, IsActive: m.IsActive, AuditFields: ToDomainAuditFields(m.AuditFields)}
}

func ToModelAgency(d domain.Agency) models.Agency {
	return models.Agency{AgencyID: d.AgencyID, BankID: d.BankID, Name: d.Name, City: d.City, IsActive: d.IsActive, AuditFields: ToModelAuditFields(d.AuditFields)}
}

func ToDomainAgency(m models.Agency) domain.Agency {
	return domain.Agency{AgencyID: m.AgencyID, BankID: m.BankID, Name: m.Name, City: m.City, IsActive: m.IsActive, AuditFields: ToDomainAuditFields(m.AuditFields)}
}
