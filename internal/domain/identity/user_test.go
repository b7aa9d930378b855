package identity

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewUser(t *testing.T) {
	t.Run("creates user with hashed password", func(t *testing.T) {
		user, err := NewUser("Jane.Doe@Example.com", "Jane", "Doe", "s3cret-pass", RoleUser)
		require.NoError(t, err)

		assert.Equal(t, "jane.doe@example.com", user.Email)
		assert.NotEqual(t, "s3cret-pass", user.PasswordHash)
		assert.True(t, user.CheckPassword("s3cret-pass"))
		assert.False(t, user.CheckPassword("wrong-pass"))
	})

	t.Run("defaults to USER role", func(t *testing.T) {
		user, err := NewUser("a@b.com", "A", "B", "password1", "")
		require.NoError(t, err)
		assert.Equal(t, RoleUser, user.Role)
		assert.False(t, user.IsAdmin())
	})

	t.Run("rejects invalid email", func(t *testing.T) {
		_, err := NewUser("not-an-email", "A", "B", "password1", RoleUser)
		require.Error(t, err)
	})

	t.Run("rejects short password", func(t *testing.T) {
		_, err := NewUser("a@b.com", "A", "B", "short", RoleUser)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "at least 8 characters")
	})

	t.Run("rejects unknown role", func(t *testing.T) {
		_, err := NewUser("a@b.com", "A", "B", "password1", "SUPERUSER")
		require.Error(t, err)
	})
}

func TestUserChangePassword(t *testing.T) {
	user, err := NewUser("a@b.com", "A", "B", "password1", RoleAdmin)
	require.NoError(t, err)

	require.NoError(t, user.ChangePassword("password2"))
	assert.False(t, user.CheckPassword("password1"))
	assert.True(t, user.CheckPassword("password2"))

	require.Error(t, user.ChangePassword("short"))
}
