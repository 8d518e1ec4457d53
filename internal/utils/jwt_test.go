package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestGenerateAndValidateToken(t *testing.T) {
	id := primitive.NewObjectID()
	now := time.Now()

	token, expiresAt, err := GenerateToken(id, "lw420flpfs", "secret", time.Hour, now)
	require.NoError(t, err)
	assert.WithinDuration(t, now.Add(time.Hour), expiresAt, time.Second)

	claims, err := ValidateToken(token, "secret")
	require.NoError(t, err)
	assert.Equal(t, "lw420flpfs", claims.Username)

	got, err := claims.UserID()
	require.NoError(t, err)
	assert.Equal(t, id, got)
}

func TestValidateTokenRejects(t *testing.T) {
	id := primitive.NewObjectID()

	token, _, err := GenerateToken(id, "u", "secret", time.Hour, time.Now())
	require.NoError(t, err)

	_, err = ValidateToken(token, "other-secret")
	assert.Error(t, err)

	expired, _, err := GenerateToken(id, "u", "secret", time.Minute, time.Now().Add(-time.Hour))
	require.NoError(t, err)
	_, err = ValidateToken(expired, "secret")
	assert.Error(t, err)

	_, err = ValidateToken("not-a-token", "secret")
	assert.Error(t, err)
}

func TestGenerateRandomNumericString(t *testing.T) {
	code, err := GenerateRandomNumericString(6)
	require.NoError(t, err)
	assert.Len(t, code, 6)
	assert.Regexp(t, `^[0-9]{6}$`, code)

	_, err = GenerateRandomNumericString(0)
	assert.Error(t, err)
}
