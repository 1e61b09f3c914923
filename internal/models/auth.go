package models

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// UserInfo describes the authenticated account in responses.
type UserInfo struct {
	ID             string   `json:"id"`
	Name           string   `json:"name"`
	Email          string   `json:"email"`
	Role           UserRole `json:"role"`
	ProfilePicture string   `json:"profilePicture,omitempty"`
}

// AuthResult is returned by signup and login. The token is also set as a cookie.
type AuthResult struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
	User      UserInfo  `json:"user"`
}

// JWTClaims represents the JWT payload for session tokens.
type JWTClaims struct {
	UserID string   `json:"user_id"`
	Role   UserRole `json:"role"`
	Email  string   `json:"email"`
	Name   string   `json:"name"`
	jwt.RegisteredClaims
}
