package handlers

import (
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/veloria/internal/models"
	"github.com/example/veloria/internal/utils"
)

func TestLoginGate(t *testing.T) {
	hash, err := utils.HashPassword("s3cret-pass")
	require.NoError(t, err)

	active := func() *models.User {
		return &models.User{
			PasswordHash: hash,
			Provider:     models.ProviderLocal,
			IsVerified:   true,
			IsActive:     true,
		}
	}

	t.Run("unknown account and wrong password share one message", func(t *testing.T) {
		notFound := loginGate(false, &models.User{}, "anything")
		require.NotNil(t, notFound)

		badPass := loginGate(true, active(), "wrong-pass")
		require.NotNil(t, badPass)

		assert.Equal(t, notFound.message, badPass.message)
		assert.Equal(t, notFound.status, badPass.status)
		assert.Equal(t, fiber.StatusUnauthorized, notFound.status)
	})

	t.Run("deactivated account", func(t *testing.T) {
		u := active()
		u.IsActive = false

		denial := loginGate(true, u, "s3cret-pass")
		require.NotNil(t, denial)
		assert.Equal(t, fiber.StatusForbidden, denial.status)
		assert.Equal(t, "account is deactivated", denial.message)
		assert.False(t, denial.needsVerification)
	})

	t.Run("unverified account asks for verification", func(t *testing.T) {
		u := active()
		u.IsVerified = false

		denial := loginGate(true, u, "s3cret-pass")
		require.NotNil(t, denial)
		assert.Equal(t, fiber.StatusForbidden, denial.status)
		assert.True(t, denial.needsVerification)
	})

	t.Run("phone account without a password points at phone login", func(t *testing.T) {
		u := active()
		u.Provider = models.ProviderPhone
		u.PasswordHash = ""

		denial := loginGate(true, u, "whatever")
		require.NotNil(t, denial)
		assert.Equal(t, fiber.StatusBadRequest, denial.status)
		assert.True(t, denial.usePhoneLogin)
	})

	t.Run("valid credentials pass", func(t *testing.T) {
		assert.Nil(t, loginGate(true, active(), "s3cret-pass"))
	})
}
