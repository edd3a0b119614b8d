package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCreateUser(t *testing.T) {
	u, err := CreateUser("Thandi M", "thandi@example.com", "s3cret-pass")
	assert.NoError(t, err)
	assert.Equal(t, ROLE_USER, u.Role)
	assert.Equal(t, STATUS_ACTIVE, u.Status)
	assert.NotEqual(t, "s3cret-pass", u.Password, "password must be stored hashed")
	assert.True(t, u.CheckPassword("s3cret-pass"))
	assert.False(t, u.CheckPassword("wrong"))
}

func TestCreateUserValidation(t *testing.T) {
	tests := []struct {
		name     string
		username string
		email    string
		password string
	}{
		{"short name", "ab", "a@example.com", "s3cret-pass"},
		{"bad email", "Thandi M", "not-an-email", "s3cret-pass"},
		{"short password", "Thandi M", "a@example.com", "abc"},
	}
	for _, tt := range tests {
		_, err := CreateUser(tt.username, tt.email, tt.password)
		assert.Error(t, err, tt.name)
	}
}

func TestGenerateAPIToken(t *testing.T) {
	u := &User{}
	token := u.GenerateAPIToken()

	assert.NotEmpty(t, token)
	assert.Len(t, u.APITokenHash, 64)
	assert.NotEqual(t, token, u.APITokenHash, "plaintext token must never be stored")
	assert.Equal(t, u.APITokenHash, HashAPIToken(token))

	// Rotation invalidates the previous token.
	oldHash := u.APITokenHash
	second := u.GenerateAPIToken()
	assert.NotEqual(t, token, second)
	assert.NotEqual(t, oldHash, u.APITokenHash)
}

func TestUserIsActive(t *testing.T) {
	assert.True(t, (&User{Status: STATUS_ACTIVE}).IsActive())
	assert.False(t, (&User{Status: STATUS_INACTIVE}).IsActive())
	assert.False(t, (&User{Status: STATUS_DISABLED}).IsActive())
}
