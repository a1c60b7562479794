package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Section names used in field ids and validation errors.
const (
	SectionPersonalInfo = "personalInfo"
	SectionBusinessInfo = "businessInfo"
	SectionShareholders = "shareholders"
	SectionDocuments    = "documents"
)

// Sections lists the payload sections in a stable order.
var Sections = []string{SectionPersonalInfo, SectionBusinessInfo, SectionShareholders, SectionDocuments}

// OnboardingRequest is an end-customer account-opening request submitted by an agent.
type OnboardingRequest struct {
	RequestID    string        `json:"requestID"`
	BankID       string        `json:"bankID"`
	AgencyID     string        `json:"agencyID"`
	AgentID      string        `json:"agentID"`
	Status       RequestStatus `json:"status"`
	PersonalInfo *PersonalInfo `json:"personalInfo,omitempty"`
	BusinessInfo *BusinessInfo `json:"businessInfo,omitempty"`
	Shareholders []Shareholder `json:"shareholders"`
	Documents    Documents     `json:"documents"`
	SubmittedAt  *time.Time    `json:"submittedAt,omitempty"`
	AuditFields
}

// Address is shared by the personal and business sections.
type Address struct {
	Street     string `json:"street" validate:"required,min=5"`
	City       string `json:"city" validate:"required,min=2"`
	PostalCode string `json:"postalCode" validate:"required,min=5"`
	Country    string `json:"country" validate:"required,min=2"`
}

// PersonalInfo describes the natural person opening the account.
type PersonalInfo struct {
	Title        string  `json:"title" validate:"required,oneof=madame monsieur"`
	Surname      string  `json:"surname" validate:"required,min=2"`
	FirstName    string  `json:"firstName" validate:"required,min=2"`
	Email        string  `json:"email" validate:"required,email"`
	Mobile       string  `json:"mobile" validate:"required,min=10"`
	Address      Address `json:"address"`
	BirthDate    string  `json:"birthDate" validate:"required"`
	BirthPlace   string  `json:"birthPlace" validate:"required"`
	BirthCountry string  `json:"birthCountry" validate:"required"`
	Nationality  string  `json:"nationality" validate:"required"`
	TaxResidence string  `json:"taxResidence" validate:"required"`
	IsUsCitizen  *bool   `json:"isUsCitizen" validate:"required"`
}

// BusinessInfo describes the company being onboarded.
type BusinessInfo struct {
	LegalForm           string  `json:"legalForm" validate:"required"`
	Siret               string  `json:"siret" validate:"required,siret"`
	CompanyName         string  `json:"companyName" validate:"required,min=2"`
	IndustryCode        string  `json:"industryCode" validate:"required,industrycode"`
	Address             Address `json:"address"`
	ActivityDescription string  `json:"activityDescription" validate:"required,min=10"`
	ClientLocation      string  `json:"clientLocation" validate:"required,min=2"`
	ClientTypes         string  `json:"clientTypes" validate:"required,min=2"`
}

// ShareholderType discriminates the two shareholder shapes.
type ShareholderType string

const (
	ShareholderIndividual ShareholderType = "individual"
	ShareholderCompany    ShareholderType = "company"
)

// Shareholder holds a percentage of the onboarded business. Only the fields of its Type are set.
type Shareholder struct {
	Type                ShareholderType `json:"type"`
	OwnershipPercentage decimal.Decimal `json:"ownershipPercentage"`

	FirstName   string `json:"firstName,omitempty"`
	LastName    string `json:"lastName,omitempty"`
	BirthDate   string `json:"birthDate,omitempty"`
	Nationality string `json:"nationality,omitempty"`

	CompanyName        string `json:"companyName,omitempty"`
	RegistrationNumber string `json:"registrationNumber,omitempty"`
}

// DocumentCategory is one of the four fixed document buckets.
type DocumentCategory string

const (
	DocProofOfResidence DocumentCategory = "proofOfResidence"
	DocIdentityDocument DocumentCategory = "identityDocument"
	DocSignature        DocumentCategory = "signature"
	DocBankDetails      DocumentCategory = "bankDetails"
)

// DocumentCategories lists the categories in the order used by error messages.
var DocumentCategories = []DocumentCategory{DocProofOfResidence, DocIdentityDocument, DocSignature, DocBankDetails}

// IsValid reports whether c is one of the fixed categories.
func (c DocumentCategory) IsValid() bool {
	for _, known := range DocumentCategories {
		if c == known {
			return true
		}
	}
	return false
}

// Documents maps each category to stored-file references.
type Documents struct {
	ProofOfResidence []string `json:"proofOfResidence"`
	IdentityDocument []string `json:"identityDocument"`
	Signature        []string `json:"signature"`
	BankDetails      []string `json:"bankDetails"`
}

// Refs returns the references stored under category.
func (d Documents) Refs(category DocumentCategory) []string {
	switch category {
	case DocProofOfResidence:
		return d.ProofOfResidence
	case DocIdentityDocument:
		return d.IdentityDocument
	case DocSignature:
		return d.Signature
	case DocBankDetails:
		return d.BankDetails
	}
	return nil
}

// WithRef returns a copy of d with ref appended under category.
func (d Documents) WithRef(category DocumentCategory, ref string) Documents {
	switch category {
	case DocProofOfResidence:
		d.ProofOfResidence = append(append([]string{}, d.ProofOfResidence...), ref)
	case DocIdentityDocument:
		d.IdentityDocument = append(append([]string{}, d.IdentityDocument...), ref)
	case DocSignature:
		d.Signature = append(append([]string{}, d.Signature...), ref)
	case DocBankDetails:
		d.BankDetails = append(append([]string{}, d.BankDetails...), ref)
	}
	return d
}

// HasRef reports whether ref is stored in any category.
func (d Documents) HasRef(ref string) bool {
	for _, category := range DocumentCategories {
		for _, r := range d.Refs(category) {
			if r == ref {
				return true
			}
		}
	}
	return false
}

// RequestFilter narrows a request listing.
type RequestFilter struct {
	BankID   *string
	AgencyID *string
	AgentID  *string
	Status   *RequestStatus
}
