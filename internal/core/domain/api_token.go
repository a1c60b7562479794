package domain

import "time"

// APIToken authenticates a bank integration on behalf of a user.
type APIToken struct {
	ID         string     `json:"id"`
	UserID     string     `json:"userID"`
	Name       string     `json:"name"`
	TokenHash  string     `json:"-"`
	LastUsedAt *time.Time `json:"lastUsedAt,omitempty"`
	ExpiresAt  *time.Time `json:"expiresAt,omitempty"`
	CreatedAt  time.Time  `json:"createdAt"`
	UpdatedAt  time.Time  `json:"updatedAt"`
	DeletedAt  *time.Time `json:"-"`
}

// ExpiredAt reports whether the token is past its expiry at now. Tokens without expiry never expire.
func (t *APIToken) ExpiredAt(now time.Time) bool {
	return t.ExpiresAt != nil && !now.Before(*t.ExpiresAt)
}
