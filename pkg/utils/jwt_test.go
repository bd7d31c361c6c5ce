package utils

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateAndValidateToken(t *testing.T) {
	userID := uuid.New()

	token, expiresAt, err := GenerateToken(userID, "alice", "user", "secret", 1)
	require.NoError(t, err)
	require.NotEmpty(t, token)
	assert.WithinDuration(t, time.Now().Add(time.Hour), expiresAt, time.Minute)

	claims, err := ValidateToken(token, "secret")
	require.NoError(t, err)
	assert.Equal(t, userID, claims.UserID)
	assert.Equal(t, "alice", claims.Username)
	assert.Equal(t, "user", claims.Role)
	assert.Equal(t, userID.String(), claims.Subject)
}

func TestValidateTokenWrongSecret(t *testing.T) {
	token, _, err := GenerateToken(uuid.New(), "alice", "user", "secret", 1)
	require.NoError(t, err)

	_, err = ValidateToken(token, "other-secret")
	assert.Error(t, err)
}

func TestValidateTokenGarbage(t *testing.T) {
	_, err := ValidateToken("not.a.token", "secret")
	assert.Error(t, err)
}

func TestGenerateTokenDefaultExpiry(t *testing.T) {
	_, expiresAt, err := GenerateToken(uuid.New(), "alice", "user", "secret", 0)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(24*time.Hour), expiresAt, time.Minute)
}

func TestHashAndCheckPassword(t *testing.T) {
	hash, err := HashPassword("secret")
	require.NoError(t, err)
	assert.NotEqual(t, "secret", hash)

	assert.True(t, CheckPassword(hash, "secret"))
	assert.False(t, CheckPassword(hash, "wrong"))
	assert.False(t, CheckPassword("not-a-hash", "secret"))
}

func TestSanitizeString(t *testing.T) {
	assert.Equal(t, "alice", SanitizeString("  alice  "))
	assert.Equal(t, "&lt;b&gt;alice&lt;/b&gt;", SanitizeString("<b>alice</b>"))
}

func TestSanitizeText(t *testing.T) {
	assert.Equal(t, "red backpack", SanitizeText(" red backpack "))
	assert.Equal(t, "line1\nline2", SanitizeText("line1\nline2"))
	assert.Equal(t, "ab", SanitizeText("a\x00b"))
}
