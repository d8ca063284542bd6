package utils

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestHashPassword(t *testing.T) {
	hash, err := HashPassword("s3cret")
	require.NoError(t, err)
	assert.True(t, CheckPassword(hash, "s3cret"))
	assert.False(t, CheckPassword(hash, "wrong"))

	cost, err := bcrypt.Cost([]byte(hash))
	require.NoError(t, err)
	assert.Equal(t, 12, cost)
}

func TestTokenRoundTrip(t *testing.T) {
	userID := uuid.New()

	token, err := GenerateToken("test-secret", userID, time.Hour)
	require.NoError(t, err)

	parsed, err := ParseToken("test-secret", token)
	require.NoError(t, err)
	assert.Equal(t, userID, parsed)

	_, err = ParseToken("other-secret", token)
	assert.Error(t, err)
}

func TestIsEmail(t *testing.T) {
	assert.True(t, IsEmail("user@example.com"))
	assert.True(t, IsEmail("a.b+c@sub.example.co"))
	assert.False(t, IsEmail("userexample.com"))
	assert.False(t, IsEmail("user@example"))
	assert.False(t, IsEmail("user @example.com"))
}

func TestIsPhone(t *testing.T) {
	assert.True(t, IsPhone("9876543210"))
	assert.True(t, IsPhone("+919876543210"))
	assert.True(t, IsPhone("+91 98765-43210"))
	assert.False(t, IsPhone("12345"), "too few digits")
	assert.False(t, IsPhone("+1234567890123456"), "too many digits")
	assert.False(t, IsPhone("98765abc10"))
}

func TestIsStrictPhone(t *testing.T) {
	assert.True(t, IsStrictPhone("+919876543210"))
	assert.False(t, IsStrictPhone("9876543210"), "country code required")
	assert.False(t, IsStrictPhone("+915876543210"), "local part must start 6-9")
	assert.False(t, IsStrictPhone("+91 9876543210"), "no spaces")
}

func TestNextExpenseNumber(t *testing.T) {
	assert.Equal(t, "EXP-2026-001", NextExpenseNumber("", 2026))
	assert.Equal(t, "EXP-2026-002", NextExpenseNumber("EXP-2026-001", 2026))
	assert.Equal(t, "EXP-2026-100", NextExpenseNumber("EXP-2026-099", 2026))
	assert.Equal(t, "EXP-2026-1000", NextExpenseNumber("EXP-2026-999", 2026), "sequence keeps growing past the pad width")
	assert.Equal(t, "EXP-2026-1001", NextExpenseNumber("EXP-2026-1000", 2026), "sequence continues beyond four digits")
	assert.Equal(t, "EXP-2027-001", NextExpenseNumber("EXP-2026-042", 2027), "resets at year boundary")
}
