package auth_test

import (
	"civicdesk/backend/internal/auth"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenManager_IssueAndVerify(t *testing.T) {
	m := auth.NewTokenManager("secret", time.Hour)

	token, err := m.Issue("user-1", "admin")
	require.NoError(t, err)

	claims, err := m.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.Subject)
	assert.Equal(t, "admin", claims.Role)
	assert.Equal(t, auth.Identity{ID: "user-1", Role: "admin"}, claims.Identity())
	assert.WithinDuration(t, time.Now().Add(time.Hour), claims.ExpiresAt.Time, 5*time.Second)
}

func TestTokenManager_DefaultTTL(t *testing.T) {
	m := auth.NewTokenManager("secret", 0)
	assert.Equal(t, 24*time.Hour, m.TTL())
}

func TestTokenManager_FailureKinds(t *testing.T) {
	issuedAt := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	m := auth.NewTokenManager("secret", time.Hour).WithClock(func() time.Time { return issuedAt })

	token, err := m.Issue("user-1", "citizen")
	require.NoError(t, err)

	tests := []struct {
		name    string
		verify  func() error
		wantErr error
	}{
		{
			name: "malformed",
			verify: func() error {
				_, err := m.Verify("not-a-token")
				return err
			},
			wantErr: auth.ErrTokenMalformed,
		},
		{
			name: "signature mismatch",
			verify: func() error {
				other := auth.NewTokenManager("other-secret", time.Hour).WithClock(func() time.Time { return issuedAt })
				_, err := other.Verify(token)
				return err
			},
			wantErr: auth.ErrTokenSignature,
		},
		{
			name: "tampered payload",
			verify: func() error {
				parts := strings.Split(token, ".")
				parts[1] = parts[1] + "x"
				_, err := m.Verify(strings.Join(parts, "."))
				return err
			},
			wantErr: nil,
		},
		{
			name: "expired",
			verify: func() error {
				later := auth.NewTokenManager("secret", time.Hour).WithClock(func() time.Time { return issuedAt.Add(2 * time.Hour) })
				_, err := later.Verify(token)
				return err
			},
			wantErr: auth.ErrTokenExpired,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.verify()
			require.Error(t, err)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			}
		})
	}
}

func TestIdentity_Roles(t *testing.T) {
	assert.True(t, auth.Identity{Role: "admin"}.IsStaff())
	assert.True(t, auth.Identity{Role: "department_head"}.IsStaff())
	assert.False(t, auth.Identity{Role: "citizen"}.IsStaff())
	assert.True(t, auth.Identity{Role: "citizen"}.HasRole("admin", "citizen"))
	assert.False(t, auth.Identity{Role: "citizen"}.HasRole())
}

func TestPasswordHashing(t *testing.T) {
	hash, err := auth.HashPassword("correct horse")
	require.NoError(t, err)

	assert.NotEqual(t, "correct horse", hash)
	assert.True(t, auth.IsHashed(hash))
	assert.False(t, auth.IsHashed("correct horse"))
	assert.NoError(t, auth.CheckPassword(hash, "correct horse"))
	assert.ErrorIs(t, auth.CheckPassword(hash, "wrong horse"), auth.ErrPasswordMismatch)
}
