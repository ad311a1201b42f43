package models

import (
	"time"

	"github.com/Temutjin2k/auth-service/internal/domain/types"
)

// AuthEvent is published for audit consumers. It carries no secrets.
type AuthEvent struct {
	Type       types.AuthEventType `json:"type"`
	Username   string              `json:"username"`
	RequestID  string              `json:"request_id,omitempty"`
	OccurredAt time.Time           `json:"occurred_at"`
}
