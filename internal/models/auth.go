package models

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// AuthIdentity is a credential record owned by the identity store.
type AuthIdentity struct {
	ID           string    `db:"id" json:"id"`
	Email        string    `db:"email" json:"email"`
	PasswordHash string    `db:"password_hash" json:"-"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}

// Session is the token bundle handed to a signed-in client.
type Session struct {
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token"`
	TokenType    string    `json:"token_type"`
	ExpiresIn    int64     `json:"expires_in"`
	ExpiresAt    time.Time `json:"expires_at"`
}

// AuthResult pairs a profile with its freshly issued session.
type AuthResult struct {
	User    *User    `json:"user"`
	Session *Session `json:"session"`
}

// AccessClaims is the JWT payload of access tokens. Subject carries the
// identity ID and ID (jti) is used for sign-out revocation.
type AccessClaims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

// VerifiedIdentity is what the identity store vouches for after checking a token.
type VerifiedIdentity struct {
	AuthID    string
	Email     string
	TokenID   string
	ExpiresAt time.Time
}
