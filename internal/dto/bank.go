package dto

import (
	"time"

	"github.com/SscSPs/agent_onboarding_portal/internal/core/domain"
)

// CreateBankRequest defines the data needed to register a bank.
type CreateBankRequest struct {
	Name string `json:"name" binding:"required,min=2"`
	Code string `json:"code" binding:"required,min=2,max=16"`
}

// CreateAgencyRequest defines the data needed to add an agency to a bank.
type CreateAgencyRequest struct {
	Name string `json:"name" binding:"required,min=2"`
	City string `json:"city" binding:"required,min=2"`
}

// ListBanksParams defines query parameters for listing banks.
type ListBanksParams struct {
	Limit  int `form:"limit,default=20"`
	Offset int `form:"offset,default=0"`
}

// BankResponse is the public view of a bank.
type BankResponse struct {
	BankID    string    `json:"bankID"`
	Name      string    `json:"name"`
	Code      string    `json:"code"`
	IsActive  bool      `json:"isActive"`
	CreatedAt time.Time `json:"createdAt"`
}

// AgencyResponse is the public view of an agency.
type AgencyResponse struct {
	AgencyID  string    `json:"agencyID"`
	BankID    string    `json:"bankID"`
	Name      string    `json:"name"`
	City      string    `json:"city"`
	IsActive  bool      `json:"isActive"`
	CreatedAt time.Time `json:"createdAt"`
}

func ToBankResponse(b domain.Bank) BankResponse {
	return BankResponse{BankID: b.BankID, Name: b.Name, Code: b.Code, IsActive: b.IsActive, CreatedAt: b.CreatedAt}
}

func ToBankResponseList(banks []domain.Bank) []BankResponse {
	out := make([]BankResponse, len(banks))
	for i, b := range banks {
		out[i] = ToBankResponse(b)
	}
	return out
}

func ToAgencyResponse(a domain.Agency) AgencyResponse {
	return AgencyResponse{AgencyID: a.AgencyID, BankID: a.BankID, Name: a.Name, City: a.City, IsActive: a.IsActive, CreatedAt: a.CreatedAt}
}

func ToAgencyResponseList(agencies []domain.Agency) []AgencyResponse {
	out := make([]AgencyResponse, len(agencies))
	for i, a := range agencies {
		out[i] = ToAgencyResponse(a)
	}
	return out
}
