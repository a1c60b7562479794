package onboarding

import (
	"testing"
	"time"

	"github.com/SscSPs/agent_onboarding_portal/internal/core/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func verdict(fieldID string, status domain.VerdictStatus, at time.Time) domain.FieldValidation {
	return domain.FieldValidation{FieldID: fieldID, Status: status, ValidatedAt: at, ValidatedBy: "reviewer"}
}

func TestCheckOwnershipTolerance(t *testing.T) {
	shareholders := func(values ...string) []domain.Shareholder {
		out := make([]domain.Shareholder, len(values))
		for i, v := range values {
			out[i] = domain.Shareholder{Type: domain.ShareholderCompany, OwnershipPercentage: decimal.RequireFromString(v)}
		}
		return out
	}

	tests := []struct {
		name   string
		values []string
		valid  bool
		total  string
	}{
		{"forty sixty", []string{"40", "60"}, true, "100"},
		{"thirds", []string{"33.33", "33.33", "33.34"}, true, "100"},
		{"lower bound", []string{"99.99"}, true, "99.99"},
		{"upper bound", []string{"50", "50.01"}, true, "100.01"},
		{"below tolerance", []string{"99.98"}, false, "99.98"},
		{"above tolerance", []string{"60", "40.02"}, false, "100.02"},
		{"sixty alone", []string{"60"}, false, "60"},
		{"empty", nil, false, "0"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			res := CheckOwnership(shareholders(tc.values...))
			assert.Equal(t, tc.valid, res.Valid)
			assert.True(t, res.Total.Equal(decimal.RequireFromString(tc.total)), res.Total.String())
		})
	}
}

func TestSummarizeUsesLatestVerdictPerField(t *testing.T) {
	t0 := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	registered := []string{"personalInfo.email", "personalInfo.mobile", "businessInfo.siret", "documents.signature"}
	entries := []domain.FieldValidation{
		verdict("personalInfo.email", domain.VerdictError, t0),
		verdict("personalInfo.mobile", domain.VerdictWarning, t0),
		verdict("businessInfo.siret", domain.VerdictOK, t0),
		verdict("personalInfo.email", domain.VerdictOK, t0.Add(time.Minute)),
	}

	summary := Summarize(registered, entries)

	assert.Equal(t, domain.ValidationSummary{
		ValidCount:      2,
		ErrorCount:      0,
		WarningCount:    1,
		TotalFields:     4,
		ProgressPercent: 50,
	}, summary)
}

func TestSummarizeRevalidationKeepsTotal(t *testing.T) {
	t0 := time.Now()
	registered := []string{"personalInfo.email"}
	first := Summarize(registered, []domain.FieldValidation{verdict("personalInfo.email", domain.VerdictOK, t0)})
	second := Summarize(registered, []domain.FieldValidation{
		verdict("personalInfo.email", domain.VerdictOK, t0),
		verdict("personalInfo.email", domain.VerdictError, t0.Add(time.Second)),
	})

	assert.Equal(t, first.TotalFields, second.TotalFields)
	assert.Equal(t, 1, first.ValidCount)
	assert.Equal(t, 0, second.ValidCount)
	assert.Equal(t, 1, second.ErrorCount)
}

func TestSummarizeIgnoresUnregisteredAndDuplicates(t *testing.T) {
	summary := Summarize(
		[]string{"personalInfo.email", "personalInfo.email"},
		[]domain.FieldValidation{verdict("businessInfo.siret", domain.VerdictError, time.Now())},
	)

	assert.Equal(t, 1, summary.TotalFields)
	assert.Equal(t, 0, summary.ErrorCount)
	assert.Equal(t, 0, summary.ProgressPercent)
}

func TestSummarizeRoundsProgress(t *testing.T) {
	now := time.Now()
	summary := Summarize(
		[]string{"personalInfo.a", "personalInfo.b", "personalInfo.c"},
		[]domain.FieldValidation{
			verdict("personalInfo.a", domain.VerdictOK, now),
			verdict("personalInfo.b", domain.VerdictOK, now),
		},
	)
	assert.Equal(t, 67, summary.ProgressPercent)

	assert.Equal(t, 0, Summarize(nil, nil).ProgressPercent)
}

func TestFieldIDsCoverPresentSections(t *testing.T) {
	req := domain.OnboardingRequest{
		BusinessInfo: &domain.BusinessInfo{},
		Shareholders: []domain.Shareholder{{}, {}},
		Documents:    domain.Documents{Signature: []string{"s1"}},
	}

	ids := FieldIDs(req)

	assert.Contains(t, ids, "businessInfo.siret")
	assert.Contains(t, ids, "businessInfo.address")
	assert.Contains(t, ids, "shareholders.0")
	assert.Contains(t, ids, "shareholders.1")
	assert.Contains(t, ids, "documents.signature")
	assert.NotContains(t, ids, "documents.bankDetails")
	assert.NotContains(t, ids, "personalInfo.email")
	assert.Len(t, ids, 8+2+1)
}

func TestValidateFieldID(t *testing.T) {
	assert.NoError(t, ValidateFieldID("personalInfo.email"))
	assert.NoError(t, ValidateFieldID("personalInfo.address.street"))
	assert.NoError(t, ValidateFieldID("shareholders.0"))
	assert.Error(t, ValidateFieldID("email"))
	assert.Error(t, ValidateFieldID("payroll.email"))
	assert.Error(t, ValidateFieldID("personalInfo."))
	assert.Error(t, ValidateFieldID("personalInfo.e mail"))
}
