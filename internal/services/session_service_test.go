package services

import (
	"testing"

	"github.com/rmateus/taskman-be/internal/common"
	"github.com/stretchr/testify/require"
)

func TestIssueReplacesExistingToken(t *testing.T) {
	db := newTestDB(t)
	users := NewUserService(db)
	sessions := NewSessionService(db)

	user, err := users.Register("alice", "alice@example.com", "Pass12345", "", "")
	require.NoError(t, err)

	first, err := sessions.Issue(user.ID)
	require.NoError(t, err)

	second, err := sessions.Issue(user.ID)
	require.NoError(t, err)
	require.NotEqual(t, first, second)

	// The replaced token is dead, the new one resolves.
	_, err = sessions.Resolve(first)
	require.ErrorIs(t, err, common.ErrInvalidToken)

	resolved, err := sessions.Resolve(second)
	require.NoError(t, err)
	require.Equal(t, user.ID, resolved.ID)
}

func TestRevokeIsIdempotent(t *testing.T) {
	db := newTestDB(t)
	users := NewUserService(db)
	sessions := NewSessionService(db)

	user, err := users.Register("bob", "bob@example.com", "Pass12345", "", "")
	require.NoError(t, err)

	token, err := sessions.Issue(user.ID)
	require.NoError(t, err)

	require.NoError(t, sessions.Revoke(token))
	require.NoError(t, sessions.Revoke(token))
	require.NoError(t, sessions.Revoke("never-issued"))

	_, err = sessions.Resolve(token)
	require.ErrorIs(t, err, common.ErrInvalidToken)
}

func TestResolveUnknownToken(t *testing.T) {
	db := newTestDB(t)
	sessions := NewSessionService(db)

	_, err := sessions.Resolve("deadbeef")
	require.ErrorIs(t, err, common.ErrInvalidToken)
}
