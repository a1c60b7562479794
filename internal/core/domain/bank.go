package domain

// Bank is a tenant of the portal.
type Bank struct {
	BankID   string `json:"bankID"`
	Name     string `json:"name"`
	Code     string `json:"code"`
	IsActive bool   `json:"isActive"`
	AuditFields
}

// Agency is a branch of a bank that agents belong to.
type Agency struct {
	AgencyID string `json:"agencyID"`
	BankID   string `json:"bankID"`
	Name     string `json:"name"`
	City     string `json:"city"`
	IsActive bool   `json:"isActive"`
	AuditFields
}
