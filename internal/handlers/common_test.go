package handlers

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCustomerMatch(t *testing.T) {
	t.Run("both fields present", func(t *testing.T) {
		cond, args := customerMatch("user@example.com", "+919876543210")
		assert.Equal(t, "email = ? OR phone = ?", cond)
		assert.Equal(t, []interface{}{"user@example.com", "+919876543210"}, args)
	})

	t.Run("empty email is excluded from the predicate", func(t *testing.T) {
		// Phone-provider accounts store an empty email; matching on it
		// would link every such account to the first one's profile.
		cond, args := customerMatch("", "+919876543210")
		assert.Equal(t, "phone = ?", cond)
		require.Len(t, args, 1)
		assert.Equal(t, "+919876543210", args[0])
	})

	t.Run("empty phone is excluded from the predicate", func(t *testing.T) {
		cond, args := customerMatch("user@example.com", "")
		assert.Equal(t, "email = ?", cond)
		require.Len(t, args, 1)
		assert.Equal(t, "user@example.com", args[0])
	})

	t.Run("nothing to match on", func(t *testing.T) {
		cond, args := customerMatch("", "")
		assert.Empty(t, cond)
		assert.Empty(t, args)
	})
}
