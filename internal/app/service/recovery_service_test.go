package service

import (
	"context"
	"testing"
	"travelgram/internal/common"
	"travelgram/internal/common/security"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupRecovery(t *testing.T) (*RecoveryService, *fakeUserRepo, string) {
	t.Helper()
	initTestConfig(t)
	repo := newFakeUserRepo()

	auth := NewAuthService(repo)
	resp, err := auth.Signup(context.Background(), validSignup())
	require.NoError(t, err)

	return NewRecoveryService(repo), repo, resp.UserID
}

func TestRequestReset_RevealsQuestion(t *testing.T) {
	s, _, userID := setupRecovery(t)

	for _, identifier := range []string{"alice", "alice@x.com"} {
		challenge, err := s.RequestReset(context.Background(), identifier)
		require.NoError(t, err)
		assert.Equal(t, "First pet?", challenge.SecurityQuestion)
		assert.Equal(t, userID, challenge.UserID)
	}
}

func TestRequestReset_UnknownIdentifier(t *testing.T) {
	s, _, _ := setupRecovery(t)

	_, err := s.RequestReset(context.Background(), "nobody@x.com")
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestVerifyAnswer_ExactMatchOnly(t *testing.T) {
	s, _, _ := setupRecovery(t)

	cases := []struct {
		answer string
		want   bool
	}{
		{"rex", true},
		{"Rex", false}, // comparison is case-sensitive, as stored
		{"rex ", false},
		{"", false},
	}
	for _, tc := range cases {
		got, err := s.VerifyAnswer(context.Background(), "alice", tc.answer)
		require.NoError(t, err)
		assert.Equal(t, tc.want, got, "answer %q", tc.answer)
	}
}

func TestCompleteReset_OverwritesPassword(t *testing.T) {
	s, repo, userID := setupRecovery(t)

	require.NoError(t, s.CompleteReset(context.Background(), userID, "newpass99"))

	stored, err := repo.FindByID(context.Background(), userID)
	require.NoError(t, err)
	assert.True(t, security.CheckPasswordHash("newpass99", stored.HashedPassword))
	assert.False(t, security.CheckPasswordHash("hunter22", stored.HashedPassword))
}

func TestCompleteReset_UnknownUser(t *testing.T) {
	s, _, _ := setupRecovery(t)

	err := s.CompleteReset(context.Background(), "missing-id", "whatever1")
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestAuthenticatedReset(t *testing.T) {
	s, repo, userID := setupRecovery(t)

	err := s.AuthenticatedReset(context.Background(), userID, "wrong-old", "newpass99")
	assert.ErrorIs(t, err, common.ErrInvalidCredentials)

	require.NoError(t, s.AuthenticatedReset(context.Background(), userID, "hunter22", "newpass99"))

	stored, err := repo.FindByID(context.Background(), userID)
	require.NoError(t, err)
	assert.True(t, security.CheckPasswordHash("newpass99", stored.HashedPassword))
}
