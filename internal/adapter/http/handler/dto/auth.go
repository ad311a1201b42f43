package dto

import (
	"time"

	"github.com/Temutjin2k/auth-service/internal/domain/models"
	"github.com/Temutjin2k/auth-service/pkg/validator"
)

// GrantTypePassword is the only OAuth2 grant accepted by the login form.
const GrantTypePassword = "password"

type RegisterUserRequest struct {
	Username string `json:"username" example:"alice"`
	Password string `json:"password" example:"secret123"`
	FullName string `json:"full_name,omitempty" example:"Alice A"`
}

func (r *RegisterUserRequest) ToModel() models.RegisterRequest {
	return models.RegisterRequest{
		Username: r.Username,
		Password: r.Password,
		FullName: r.FullName,
	}
}

type LoginRequest struct {
	Username  string `json:"username" example:"alice"`
	Password  string `json:"password" example:"secret123"`
	GrantType string `json:"grant_type,omitempty" example:"password"`
}

func ValidateLogin(v *validator.Validator, req *LoginRequest) {
	v.Check(req.Username != "", "username", "must be provided")
	v.Check(req.Password != "", "password", "must be provided")
	v.Check(req.GrantType == "" || req.GrantType == GrantTypePassword, "grant_type", "must be \"password\"")
}

type MessageResponse struct {
	Message string `json:"message" example:"User registered successfully"`
}

type TokenResponse struct {
	AccessToken string    `json:"access_token"`
	TokenType   string    `json:"token_type" example:"bearer"`
	ExpiresAt   time.Time `json:"expires_at"`
}

func NewTokenResponse(t *models.AccessToken) TokenResponse {
	return TokenResponse{
		AccessToken: t.Token,
		TokenType:   t.Type.String(),
		ExpiresAt:   t.ExpiresAt,
	}
}

type ErrorResponse struct {
	Error any `json:"error"`
}
