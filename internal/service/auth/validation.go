package auth

import (
	"unicode/utf8"

	"github.com/Temutjin2k/auth-service/internal/domain/models"
	"github.com/Temutjin2k/auth-service/pkg/validator"
)

const (
	UsernameMinLen = 3
	UsernameMaxLen = 20
	PasswordMinLen = 6
	FullNameMaxLen = 100
)

// ValidateRegistration checks length constraints only. Any characters are
// allowed in a username and long passwords are truncated by the hasher, not
// rejected. It returns a *ValidationError, never a storage error.
func ValidateRegistration(req models.RegisterRequest) error {
	v := validator.New()

	v.Check(req.Username != "", "username", "must be provided")
	v.Check(validator.RuneCountBetween(req.Username, UsernameMinLen, UsernameMaxLen), "username", "must be between 3 and 20 characters long")

	v.Check(req.Password != "", "password", "must be provided")
	v.Check(utf8.RuneCountInString(req.Password) >= PasswordMinLen, "password", "must be at least 6 characters long")

	v.Check(utf8.RuneCountInString(req.FullName) <= FullNameMaxLen, "full_name", "must not be more than 100 characters long")

	if !v.Valid() {
		return &ValidationError{Errors: v.Errors}
	}
	return nil
}
