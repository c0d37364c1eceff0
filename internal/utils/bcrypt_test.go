package utils

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashPassword(t *testing.T) {
	password := "Passw0rd!"
	hashedPassword, err := HashPassword(password)

	assert.NoError(t, err)
	assert.NotEmpty(t, hashedPassword)
	assert.NotEqual(t, password, hashedPassword)
	assert.NotContains(t, hashedPassword, password)
}

func TestHashPassword_FreshSalt(t *testing.T) {
	first, err := HashPassword("Passw0rd!")
	require.NoError(t, err)
	second, err := HashPassword("Passw0rd!")
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
	assert.True(t, CheckPasswordHash("Passw0rd!", first))
	assert.True(t, CheckPasswordHash("Passw0rd!", second))
}

func TestCheckPasswordHash(t *testing.T) {
	password := "Passw0rd!"
	hashedPassword, _ := HashPassword(password)

	assert.True(t, CheckPasswordHash(password, hashedPassword))
	assert.False(t, CheckPasswordHash("wrongpassword", hashedPassword))
}

func TestCheckPasswordHash_InvalidHash(t *testing.T) {
	assert.False(t, CheckPasswordHash("Passw0rd!", "invalidhash"))
	assert.False(t, CheckPasswordHash("Passw0rd!", ""))
}

func TestValidatePassword(t *testing.T) {
	tests := []struct {
		name     string
		password string
		want     error
	}{
		{"valid", "Abcdef1!", nil},
		{"valid with every symbol class", "Zz9{};:,<.>", nil},
		{"too short", "Ab1!", ErrPasswordTooShort},
		{"too long", "Aa1!" + strings.Repeat("x", 70), ErrPasswordTooLong},
		{"no upper", "abcdef1!", ErrPasswordNoUpper},
		{"no lower", "ABCDEF1!", ErrPasswordNoLower},
		{"no digit", "Abcdefg!", ErrPasswordNoDigit},
		{"no symbol", "Abcdefg1", ErrPasswordNoSymbol},
		{"symbol outside set", "Abcdefg1?", ErrPasswordNoSymbol},
		{"non-ascii upper", "Éabcdef1!", ErrPasswordNoUpper},
		{"non-ascii lower", "ABCDEFGß1!", ErrPasswordNoLower},
		{"non-ascii digit", "Abcdefg٣!", ErrPasswordNoDigit},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePassword(tt.password)
			if tt.want == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.want)
		})
	}
}
