package domain

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRoleSatisfies(t *testing.T) {
	t.Parallel()

	require.True(t, RoleAdmin.Satisfies(RoleUser))
	require.True(t, RoleAdmin.Satisfies(RoleAdmin))
	require.True(t, RoleUser.Satisfies(RoleUser))
	require.False(t, RoleUser.Satisfies(RoleAdmin))

	// An unknown role satisfies nothing.
	require.False(t, Role("").Satisfies(RoleUser))
}

func TestParseRole(t *testing.T) {
	t.Parallel()

	r, err := ParseRole(" admin ")
	require.NoError(t, err)
	require.Equal(t, RoleAdmin, r)

	r, err = ParseRole("user")
	require.NoError(t, err)
	require.Equal(t, RoleUser, r)

	_, err = ParseRole("superuser")
	require.ErrorIs(t, err, ErrUnknownRole)
}
