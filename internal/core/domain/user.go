package domain

import "time"

// User represents a portal user in the domain.
type User struct {
	UserID       string  `json:"userID"` // Primary Key (e.g., UUID)
	Username     string  `json:"username"`
	Email        string  `json:"email"`
	PasswordHash string  `json:"-"`
	Name         string  `json:"name"`
	Role         Role    `json:"role"`
	BankID       *string `json:"bankID,omitempty"`
	AgencyID     *string `json:"agencyID,omitempty"`

	RefreshTokenHash       string     `json:"-"`
	RefreshTokenExpiryTime *time.Time `json:"-"`
	AuditFields
	DeletedAt *time.Time `json:"deletedAt,omitempty"` // Used for soft delete
}

// Actor returns the authorization view of the user.
func (u User) Actor() Actor {
	return Actor{UserID: u.UserID, Role: u.Role, BankID: u.BankID, AgencyID: u.AgencyID}
}

// GoogleUserInfo holds the profile fields read from Google's userinfo endpoint.
type GoogleUserInfo struct {
	ID            string `json:"id"`
	Email         string `json:"email"`
	VerifiedEmail bool   `json:"verified_email"`
	Name          string `json:"name"`
}
