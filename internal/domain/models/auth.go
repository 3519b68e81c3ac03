package models

import "github.com/golang-jwt/jwt/v5"

// Claims are the JWT claims issued by the session provider.
// Only the subject is required; the remaining fields are informational.
type Claims struct {
	jwt.RegisteredClaims
	Email       string `json:"email"`
	Role        string `json:"role"` // "authenticated" or "anon"
	SessionID   string `json:"session_id"`
	IsAnonymous bool   `json:"is_anonymous"`
}
