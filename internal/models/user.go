package models

import (
	"database/sql"
	"time"
)

// User represents a row of the users table.
type User struct {
	UserID       string  `db:"user_id"`
	Username     string  `db:"username"`
	Email        string  `db:"email"`
	PasswordHash string  `db:"password_hash"`
	Name         string  `db:"name"`
	Role         string  `db:"role"`
	BankID       *string `db:"bank_id"`
	AgencyID     *string `db:"agency_id"`
	AuditFields
	DeletedAt *time.Time `db:"deleted_at"`

	// Refresh Token Fields
	RefreshTokenHash       sql.NullString `db:"refresh_token_hash"`
	RefreshTokenExpiryTime sql.NullTime   `db:"refresh_token_expiry_time"`
}
