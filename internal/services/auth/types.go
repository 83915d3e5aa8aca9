package auth

import (
	"errors"
	"time"
)

var (
	ErrInvalidInput    = errors.New("invalid input")
	ErrUnauthorized    = errors.New("unauthorized")
	ErrEmailTaken      = errors.New("email already registered")
	ErrSessionNotFound = errors.New("session not found")
	ErrRefreshNotFound = errors.New("refresh token not found")
)

// SessionRecord is what the session store keeps per sid. SubjectID points at
// a business owner or an admin user depending on Role.
type SessionRecord struct {
	SID       string
	SubjectID int64
	Role      string
	ExpiresAt time.Time
}

type AccessClaims struct {
	SubjectID int64
	SID       string
	Role      string
	ExpiresAt time.Time
}

type Me struct {
	ID          int64
	Role        string
	Email       string
	DisplayName string
}

type AuthResult struct {
	AccessToken   string
	RefreshToken  string
	AccessExpires time.Time
	Me            Me
}
