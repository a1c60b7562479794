package models

// Bank represents a row of the banks table.
type Bank struct {
	BankID   string `db:"bank_id"`
	Name     string `db:"name"`
	Code     string `db:"code"`
	IsActive bool   `db:"is_active"`
	AuditFields
}

// Agency represents a row of the agencies table.
type Agency struct {
	AgencyID string `db:"agency_id"`
	BankID   string `db:"bank_id"`
	Name     string `db:"name"`
	City     string `db:"city"`
	IsActive bool   `db:"is_active"`
	AuditFields
}
