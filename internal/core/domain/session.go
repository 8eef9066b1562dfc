package domain

import "time"

// Claims is the validated identity extracted from a session token.
type Claims struct {
	AccountID   int64
	Email       string
	Username    string
	DisplayName string
	Role        Role
	TokenID     string
	IssuedAt    time.Time
	ExpiresAt   time.Time
}

// Session is returned to the client after a successful login or registration.
type Session struct {
	Token     string    `json:"token"`
	AccountID int64     `json:"account_id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	Role      Role      `json:"role"`
	ExpiresAt time.Time `json:"expires_at"`
}
