package domain

import "time"

// Claims is what a validated token asserts about its bearer.
type Claims struct {
	Subject   string
	Email     string
	Roles     []string
	Issuer    string
	Audience  []string
	IssuedAt  time.Time
	ExpiresAt time.Time
	TokenID   string
}

// Token is a signed, self-contained credential handed to the client.
type Token struct {
	Value     string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// AuthResult is the outcome of a successful login.
type AuthResult struct {
	Token         Token
	UserID        string
	Email         string
	RequestedRole string
	Roles         []string
}
