package onboarding

import (
	"encoding/json"
	"testing"

	"github.com/SscSPs/agent_onboarding_portal/internal/apperrors"
	"github.com/SscSPs/agent_onboarding_portal/internal/core/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const validPersonalInfo = `{
	"title": "madame",
	"surname": "Durand",
	"firstName": "Claire",
	"email": "claire.durand@example.com",
	"mobile": "0612345678",
	"address": {"street": "12 rue de la Paix", "city": "Paris", "postalCode": "75002", "country": "FR"},
	"birthDate": "1985-04-12",
	"birthPlace": "Lyon",
	"birthCountry": "FR",
	"nationality": "FR",
	"taxResidence": "FR",
	"isUsCitizen": false
}`

const validBusinessInfo = `{
	"legalForm": "SAS",
	"siret": "12345678901234",
	"companyName": "Durand Conseil",
	"industryCode": "6201Z",
	"address": {"street": "8 avenue Foch", "city": "Paris", "postalCode": "75016", "country": "FR"},
	"activityDescription": "IT consulting services",
	"clientLocation": "France",
	"clientTypes": "B2B"
}`

const fullDocuments = `{"proofOfResidence":["r1"],"identityDocument":["i1"],"signature":["s1"],"bankDetails":["b1"]}`

func raw(s string) json.RawMessage { return json.RawMessage(s) }

func hasError(errs []apperrors.FieldError, field, message string) bool {
	for _, fe := range errs {
		if fe.Field == field && fe.Message == message {
			return true
		}
	}
	return false
}

func hasField(errs []apperrors.FieldError, field string) bool {
	for _, fe := range errs {
		if fe.Field == field {
			return true
		}
	}
	return false
}

func TestSubmitReportsMissingDocumentsAndOwnershipTogether(t *testing.T) {
	payload := SectionsPayload{
		PersonalInfo: raw(validPersonalInfo),
		BusinessInfo: raw(validBusinessInfo),
		Shareholders: raw(`[{"type":"individual","ownershipPercentage":60,"firstName":"Claire","lastName":"Durand","birthDate":"1985-04-12","nationality":"FR"}]`),
		Documents:    raw(`{"identityDocument":["f1"],"proofOfResidence":[],"signature":[],"bankDetails":[]}`),
	}

	_, result := ValidateSections(ModeSubmit, payload)

	assert.False(t, result.Valid)
	assert.True(t, hasError(result.Errors, "documents", "Missing documents: proofOfResidence, signature, bankDetails"), result.Errors)
	assert.True(t, hasError(result.Errors, "shareholders", "ownership percentages must total 100 (got 60)"), result.Errors)
	assert.Len(t, result.Errors, 2)
}

func TestSubmitAcceptsCompletePayload(t *testing.T) {
	payload := SectionsPayload{
		PersonalInfo: raw(validPersonalInfo),
		BusinessInfo: raw(validBusinessInfo),
		Shareholders: raw(`[
			{"type":"individual","ownershipPercentage":40,"firstName":"Claire","lastName":"Durand","birthDate":"1985-04-12","nationality":"FR"},
			{"type":"company","ownershipPercentage":"60","companyName":"Holding D","registrationNumber":"RCS123456"}
		]`),
		Documents: raw(fullDocuments),
	}

	parsed, result := ValidateSections(ModeSubmit, payload)

	require.True(t, result.Valid, result.Errors)
	assert.Empty(t, result.Errors)
	require.NotNil(t, parsed.PersonalInfo)
	assert.Equal(t, "Claire", parsed.PersonalInfo.FirstName)
	require.Len(t, parsed.Shareholders, 2)
	assert.True(t, parsed.Shareholders[1].OwnershipPercentage.Equal(decimal.NewFromInt(60)))
	assert.NoError(t, result.Err())
}

func TestSubmitRequiresEverySection(t *testing.T) {
	_, result := ValidateSections(ModeSubmit, SectionsPayload{PersonalInfo: raw(validPersonalInfo)})

	assert.True(t, hasError(result.Errors, "businessInfo", "is required"))
	assert.True(t, hasError(result.Errors, "shareholders", "is required"))
	assert.True(t, hasError(result.Errors, "documents", "is required"))
	assert.False(t, hasField(result.Errors, "personalInfo"))
}

func TestCreateOrUpdateNeedsAtLeastOneSection(t *testing.T) {
	_, result := ValidateSections(ModeCreateOrUpdate, SectionsPayload{PersonalInfo: raw("null")})

	require.False(t, result.Valid)
	assert.Equal(t, []apperrors.FieldError{{Message: "at least one section must be provided"}}, result.Errors)
	assert.ErrorIs(t, result.Err(), apperrors.ErrValidation)
}

func TestCreateOrUpdateAllowsDraftLists(t *testing.T) {
	parsed, result := ValidateSections(ModeCreateOrUpdate, SectionsPayload{
		Shareholders: raw(`[]`),
		Documents:    raw(`{"proofOfResidence":[],"identityDocument":[],"signature":[],"bankDetails":[]}`),
	})

	assert.True(t, result.Valid, result.Errors)
	assert.True(t, parsed.HasShareholders)
	assert.Empty(t, parsed.Shareholders)
	require.NotNil(t, parsed.Documents)
}

func TestCreateOrUpdateChecksOwnershipEagerly(t *testing.T) {
	_, result := ValidateSections(ModeCreateOrUpdate, SectionsPayload{
		Shareholders: raw(`[{"type":"company","ownershipPercentage":50,"companyName":"Holding D","registrationNumber":"RCS123456"}]`),
	})

	assert.True(t, hasError(result.Errors, "shareholders", "ownership percentages must total 100 (got 50)"))
}

func TestShareholderShapesAreStrict(t *testing.T) {
	tests := []struct {
		name    string
		entry   string
		field   string
		message string
	}{
		{
			name:    "company field on individual",
			entry:   `{"type":"individual","ownershipPercentage":100,"firstName":"A","lastName":"B","birthDate":"1990-01-01","nationality":"FR","companyName":"X"}`,
			field:   "shareholders.0.companyName",
			message: "is not allowed for individual shareholders",
		},
		{
			name:    "unknown key",
			entry:   `{"type":"company","ownershipPercentage":100,"companyName":"X","registrationNumber":"12345","vat":"FR1"}`,
			field:   "shareholders.0.vat",
			message: "is not allowed for company shareholders",
		},
		{
			name:    "unknown type",
			entry:   `{"type":"trust","ownershipPercentage":100}`,
			field:   "shareholders.0.type",
			message: "must be one of: individual, company",
		},
		{
			name:    "missing type",
			entry:   `{"ownershipPercentage":100}`,
			field:   "shareholders.0.type",
			message: "is required",
		},
		{
			name:    "missing percentage",
			entry:   `{"type":"company","companyName":"X","registrationNumber":"12345"}`,
			field:   "shareholders.0.ownershipPercentage",
			message: "is required",
		},
		{
			name:    "null type",
			entry:   `{"type":null,"ownershipPercentage":100,"companyName":"X","registrationNumber":"12345"}`,
			field:   "shareholders.0.type",
			message: "is required",
		},
		{
			name:    "null percentage",
			entry:   `{"type":"individual","ownershipPercentage":null,"firstName":"A","lastName":"B","birthDate":"1990-01-01","nationality":"FR"}`,
			field:   "shareholders.0.ownershipPercentage",
			message: "is required",
		},
		{
			name:    "short registration number",
			entry:   `{"type":"company","ownershipPercentage":100,"companyName":"X","registrationNumber":"123"}`,
			field:   "shareholders.0.registrationNumber",
			message: "must be at least 5 characters",
		},
		{
			name:    "percentage above 100",
			entry:   `{"type":"individual","ownershipPercentage":120,"firstName":"A","lastName":"B","birthDate":"1990-01-01","nationality":"FR"}`,
			field:   "shareholders.0.ownershipPercentage",
			message: "must be between 0 and 100",
		},
		{
			name:    "individual missing last name",
			entry:   `{"type":"individual","ownershipPercentage":100,"firstName":"A","birthDate":"1990-01-01","nationality":"FR"}`,
			field:   "shareholders.0.lastName",
			message: "is required",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, result := ValidateSections(ModeCreateOrUpdate, SectionsPayload{Shareholders: raw("[" + tc.entry + "]")})
			assert.False(t, result.Valid)
			assert.True(t, hasError(result.Errors, tc.field, tc.message), result.Errors)
		})
	}
}

func TestNullPercentageDoesNotCountAsZero(t *testing.T) {
	_, result := ValidateSections(ModeCreateOrUpdate, SectionsPayload{
		Shareholders: raw(`[
			{"type":"individual","ownershipPercentage":null,"firstName":"A","lastName":"B","birthDate":"1990-01-01","nationality":"FR"},
			{"type":"company","ownershipPercentage":"100","companyName":"Holding D","registrationNumber":"RCS123456"}
		]`),
	})

	assert.False(t, result.Valid)
	assert.True(t, hasError(result.Errors, "shareholders.0.ownershipPercentage", "is required"), result.Errors)
}

func TestSectionRejectsTrailingData(t *testing.T) {
	tests := []struct {
		name    string
		payload SectionsPayload
		field   string
	}{
		{"personal info", SectionsPayload{PersonalInfo: raw(validPersonalInfo + ` {"x":1}`)}, domain.SectionPersonalInfo},
		{"business info", SectionsPayload{BusinessInfo: raw(validBusinessInfo + ` 1`)}, domain.SectionBusinessInfo},
		{"documents", SectionsPayload{Documents: raw(fullDocuments + `}`)}, domain.SectionDocuments},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			parsed, result := ValidateSections(ModeCreateOrUpdate, tc.payload)
			assert.False(t, result.Valid)
			assert.True(t, hasError(result.Errors, tc.field, "must be a single JSON value"), result.Errors)
			assert.Nil(t, parsed.PersonalInfo)
			assert.Nil(t, parsed.BusinessInfo)
			assert.Nil(t, parsed.Documents)
		})
	}
}

func TestPersonalInfoRules(t *testing.T) {
	var base map[string]any
	require.NoError(t, json.Unmarshal([]byte(validPersonalInfo), &base))

	tests := []struct {
		name    string
		mutate  func(m map[string]any)
		field   string
		message string
	}{
		{"title", func(m map[string]any) { m["title"] = "mr" }, "personalInfo.title", "must be one of: madame, monsieur"},
		{"surname", func(m map[string]any) { m["surname"] = "D" }, "personalInfo.surname", "must be at least 2 characters"},
		{"email", func(m map[string]any) { m["email"] = "not-an-email" }, "personalInfo.email", "must be a valid email address"},
		{"mobile", func(m map[string]any) { m["mobile"] = "06123" }, "personalInfo.mobile", "must be at least 10 characters"},
		{"us citizen", func(m map[string]any) { delete(m, "isUsCitizen") }, "personalInfo.isUsCitizen", "is required"},
		{"tax residence", func(m map[string]any) { delete(m, "taxResidence") }, "personalInfo.taxResidence", "is required"},
		{"street", func(m map[string]any) {
			m["address"].(map[string]any)["street"] = "rue"
		}, "personalInfo.address.street", "must be at least 5 characters"},
		{"postal code", func(m map[string]any) {
			m["address"].(map[string]any)["postalCode"] = "750"
		}, "personalInfo.address.postalCode", "must be at least 5 characters"},
		{"unknown field", func(m map[string]any) { m["nickname"] = "Clo" }, "personalInfo.nickname", "is not allowed"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			var m map[string]any
			require.NoError(t, json.Unmarshal([]byte(validPersonalInfo), &m))
			tc.mutate(m)
			payload, err := json.Marshal(m)
			require.NoError(t, err)

			_, result := ValidateSections(ModeCreateOrUpdate, SectionsPayload{PersonalInfo: payload})
			assert.True(t, hasError(result.Errors, tc.field, tc.message), result.Errors)
		})
	}
}

func TestPersonalInfoTypeMismatchNamesField(t *testing.T) {
	var m map[string]any
	require.NoError(t, json.Unmarshal([]byte(validPersonalInfo), &m))
	m["isUsCitizen"] = "no"
	payload, err := json.Marshal(m)
	require.NoError(t, err)

	_, result := ValidateSections(ModeCreateOrUpdate, SectionsPayload{PersonalInfo: payload})

	require.Len(t, result.Errors, 1)
	assert.Equal(t, "personalInfo.isUsCitizen", result.Errors[0].Field)
	assert.Contains(t, result.Errors[0].Message, "must be of type")
}

func TestBusinessInfoRules(t *testing.T) {
	tests := []struct {
		name    string
		key     string
		value   string
		field   string
		message string
	}{
		{"siret length", "siret", "1234567890123", "businessInfo.siret", "must be exactly 14 digits"},
		{"siret letters", "siret", "1234567890123A", "businessInfo.siret", "must be exactly 14 digits"},
		{"industry code digits only", "industryCode", "62011", "businessInfo.industryCode", "must match the format 4 digits followed by 1 uppercase letter (e.g. 6201Z)"},
		{"industry code lowercase", "industryCode", "6201z", "businessInfo.industryCode", "must match the format 4 digits followed by 1 uppercase letter (e.g. 6201Z)"},
		{"activity description", "activityDescription", "IT", "businessInfo.activityDescription", "must be at least 10 characters"},
		{"client types", "clientTypes", "B", "businessInfo.clientTypes", "must be at least 2 characters"},
		{"legal form", "legalForm", "", "businessInfo.legalForm", "is required"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			var m map[string]any
			require.NoError(t, json.Unmarshal([]byte(validBusinessInfo), &m))
			m[tc.key] = tc.value
			payload, err := json.Marshal(m)
			require.NoError(t, err)

			_, result := ValidateSections(ModeCreateOrUpdate, SectionsPayload{BusinessInfo: payload})
			assert.True(t, hasError(result.Errors, tc.field, tc.message), result.Errors)
		})
	}
}

func TestBrokenSectionDoesNotHideOthers(t *testing.T) {
	_, result := ValidateSections(ModeCreateOrUpdate, SectionsPayload{
		PersonalInfo: raw(`"not an object"`),
		BusinessInfo: raw(`{"legalForm":"SAS"}`),
	})

	assert.True(t, hasField(result.Errors, "personalInfo"))
	assert.True(t, hasError(result.Errors, "businessInfo.siret", "is required"))
}

func TestDocumentReferencesMustBeNonEmpty(t *testing.T) {
	_, result := ValidateSections(ModeCreateOrUpdate, SectionsPayload{Documents: raw(`{"signature":[" "]}`)})

	assert.True(t, hasError(result.Errors, "documents.signature.0", "must be a non-empty file reference"))
}

func TestValidateRequestUsesSubmitRules(t *testing.T) {
	var personal domain.PersonalInfo
	require.NoError(t, json.Unmarshal([]byte(validPersonalInfo), &personal))
	var business domain.BusinessInfo
	require.NoError(t, json.Unmarshal([]byte(validBusinessInfo), &business))

	req := domain.OnboardingRequest{
		PersonalInfo: &personal,
		BusinessInfo: &business,
		Shareholders: []domain.Shareholder{{
			Type: domain.ShareholderCompany, OwnershipPercentage: decimal.NewFromInt(100),
			CompanyName: "Holding D", RegistrationNumber: "RCS123456",
		}},
		Documents: domain.Documents{
			ProofOfResidence: []string{"r1"}, IdentityDocument: []string{"i1"},
			Signature: []string{"s1"}, BankDetails: []string{"b1"},
		},
	}
	assert.True(t, ValidateRequest(req).Valid)

	req.Documents.Signature = nil
	req.BusinessInfo = nil
	result := ValidateRequest(req)
	assert.True(t, hasError(result.Errors, "documents", "Missing documents: signature"))
	assert.True(t, hasError(result.Errors, "businessInfo", "is required"))

	req.Shareholders = nil
	assert.True(t, hasError(ValidateRequest(req).Errors, "shareholders", "at least one shareholder is required"))
}
