package models

import (
	"time"

	"github.com/Temutjin2k/auth-service/internal/domain/types"
	"github.com/golang-jwt/jwt/v5"
)

// AccessToken is a freshly issued, signed bearer token.
type AccessToken struct {
	Token     string
	Type      types.TokenType
	ExpiresAt time.Time
}

// Claims is the payload of an access token. Subject carries the username.
type Claims struct {
	jwt.RegisteredClaims
}
