package middleware

import (
	"context"

	"github.com/Temutjin2k/auth-service/internal/domain/models"
	"github.com/Temutjin2k/auth-service/pkg/logger"
)

type (
	AuthService interface {
		Resolve(ctx context.Context, token string) (*models.PublicIdentity, error)
	}

	Middleware struct {
		auth        AuthService
		serviceName string
		log         logger.Logger
	}
)

func NewMiddleware(auth AuthService, serviceName string, log logger.Logger) *Middleware {
	return &Middleware{
		auth:        auth,
		serviceName: serviceName,
		log:         log,
	}
}
