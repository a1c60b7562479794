package mapping

import (
	"github.com/SscSPs/agent_onboarding_portal/internal/core/domain"
	"github.com/SscSPs/agent_onboarding_portal/internal/models"
)

func ToModelFieldValidation(d domain.FieldValidation) models.FieldValidation {
	return models.FieldValidation{
		ValidationID: d.ValidationID,
		RequestID:    d.RequestID,
		FieldID:      d.FieldID,
		Status:       string(d.Status),
		Comment:      d.Comment,
		ValidatedBy:  d.ValidatedBy,
		ValidatedAt:  d.ValidatedAt,
	}
}

func ToDomainFieldValidation(m models.FieldValidation) domain.FieldValidation {
	return domain.FieldValidation{
		ValidationID: m.ValidationID,
		RequestID:    m.RequestID,
		FieldID:      m.FieldID,
		Status:       domain.VerdictStatus(m.Status),
		Comment:      m.Comment,
		ValidatedBy:  m.ValidatedBy,
		ValidatedAt:  m.ValidatedAt,
	}
}

func ToModelDepositConfirmation(d domain.DepositConfirmation) models.DepositConfirmation {
	return models.DepositConfirmation{
		RequestID:   d.RequestID,
		Amount:      d.Amount,
		Reference:   d.Reference,
		Source:      string(d.Source),
		ConfirmedBy: d.ConfirmedBy,
		ConfirmedAt: d.ConfirmedAt,
	}
}

func ToDomainDepositConfirmation(m models.DepositConfirmation) domain.DepositConfirmation {
	return domain.DepositConfirmation{
		RequestID:   m.RequestID,
		Amount:      m.Amount,
		Reference:   m.Reference,
		Source:      domain.DepositSource(m.Source),
		ConfirmedBy: m.ConfirmedBy,
		ConfirmedAt: m.ConfirmedAt,
	}
}

func ToModelStoredDocument(d domain.StoredDocument) models.StoredDocument {
	return models.StoredDocument{
		Reference:        d.Reference,
		RequestID:        d.RequestID,
		Category:         string(d.Category),
		OriginalFilename: d.OriginalFilename,
		ContentType:      d.ContentType,
		Size:             d.Size,
		Checksum:         d.Checksum,
		UploadedBy:       d.UploadedBy,
		UploadedAt:       d.UploadedAt,
	}
}

func ToDomainStoredDocument(m models.StoredDocument) domain.StoredDocument {
	return domain.StoredDocument{
		Reference:        m.Reference,
		RequestID:        m.RequestID,
		Category:         domain.DocumentCategory(m.Category),
		OriginalFilename: m.OriginalFilename,
		ContentType:      m.ContentType,
		Size:             m.Size,
		Checksum:         m.Checksum,
		UploadedBy:       m.UploadedBy,
		UploadedAt:       m.UploadedAt,
	}
}
