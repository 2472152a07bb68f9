package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatYen(t *testing.T) {
	tests := []struct {
		amount int64
		want   string
	}{
		{0, "¥0"},
		{980, "¥980"},
		{1000, "¥1,000"},
		{1234567, "¥1,234,567"},
		{-2500, "-¥2,500"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, FormatYen(tt.amount))
	}
}

func TestAdminTokenRoundTrip(t *testing.T) {
	secret := []byte("test-secret")

	token, err := GenerateAdminToken(secret, "Owner@Example.com", RoleAdmin, time.Hour)
	require.NoError(t, err)

	claims, err := ParseAdminToken(token, secret)
	require.NoError(t, err)
	assert.Equal(t, "owner@example.com", claims.Email)
	assert.Equal(t, RoleAdmin, claims.AppMetadata.Role)

	_, err = ParseAdminToken(token, []byte("other-secret"))
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestExpiredAdminToken(t *testing.T) {
	secret := []byte("test-secret")

	token, err := GenerateAdminToken(secret, "owner@example.com", RoleAdmin, -time.Minute)
	require.NoError(t, err)

	_, err = ParseAdminToken(token, secret)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestIsAllowlisted(t *testing.T) {
	allow := []string{"owner@example.com"}

	assert.True(t, IsAllowlisted(" OWNER@example.com ", allow))
	assert.False(t, IsAllowlisted("guest@example.com", allow))
	assert.False(t, IsAllowlisted("", allow))
}

func TestBearerToken(t *testing.T) {
	assert.Equal(t, "abc", BearerToken("Bearer abc"))
	assert.Equal(t, "abc", BearerToken("bearer   abc "))
	assert.Equal(t, "", BearerToken("Basic abc"))
	assert.Equal(t, "", BearerToken(""))
}
