package models

import "github.com/golang-jwt/jwt/v5"

// Session is the locally signed-in identity. ID changes on every login.
type Session struct {
	ID    string `json:"id,omitempty"`
	Email string `json:"email"`
	Name  string `json:"name"`
}

// Claims defines the structure of the session token claims.
type Claims struct {
	Email     string `json:"email"`
	Name      string `json:"name"`
	SessionID string `json:"sid,omitempty"`
	jwt.RegisteredClaims
}
