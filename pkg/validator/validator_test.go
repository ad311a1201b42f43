package validator

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidator_FirstErrorWins(t *testing.T) {
	v := New()
	assert.True(t, v.Valid())

	v.Check(false, "username", "must be provided")
	v.Check(false, "username", "must be at least 3 characters long")
	v.Check(true, "password", "never recorded")

	assert.False(t, v.Valid())
	assert.Equal(t, map[string]string{"username": "must be provided"}, v.Errors)
}

func TestRuneCountBetween(t *testing.T) {
	assert.True(t, RuneCountBetween("ééé", 3, 3))
	assert.False(t, RuneCountBetween("ab", 3, 20))
}
