package model

import "time"

// SessionToken is the durable record of an issued token pair. Superseded
// records are flagged revoked and kept until the sweep removes them.
type SessionToken struct {
	ID           string    `json:"id"`
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token"`
	UserID       string    `json:"user_id"`
	Revoked      bool      `json:"revoked"`
	ExpiresAt    time.Time `json:"expires_at"`
	CreatedAt    time.Time `json:"created_at"`
}

// Live reports whether the record is still usable at the given instant.
// A record expiring exactly now is dead.
func (t SessionToken) Live(now time.Time) bool {
	return !t.Revoked && now.Before(t.ExpiresAt) && t.RefreshToken != ""
}

// SessionClaims are the verified contents of a signed session token.
type SessionClaims struct {
	Subject     string    `json:"sub"`
	CompanyID   int64     `json:"company_id"`
	CompanyName string    `json:"company_name"`
	IssuedAt    time.Time `json:"iat"`
	ExpiresAt   time.Time `json:"exp"`
}

// TokenPair is a freshly minted access/refresh pair plus session context.
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int64  `json:"expires_in"`
}

// AuthResult is the response shape shared by register, login, refresh and
// company switch.
type AuthResult struct {
	TokenPair
	Message       string           `json:"message,omitempty"`
	Profile       Profile          `json:"profile"`
	Companies     []CompanySummary `json:"companies"`
	ActiveCompany CompanySummary   `json:"active_company"`
}
