package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/erazemk/trznica/internal/db"
)

func TestRevokeAndCheckToken(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	revoked, err := IsTokenRevoked(ctx, database, "test-jti-1")
	require.NoError(t, err)
	assert.False(t, revoked, "token should not be revoked initially")

	require.NoError(t, RevokeToken(ctx, database, "test-jti-1", time.Now().Add(time.Hour)))

	revoked, err = IsTokenRevoked(ctx, database, "test-jti-1")
	require.NoError(t, err)
	assert.True(t, revoked)

	revoked, err = IsTokenRevoked(ctx, database, "test-jti-2")
	require.NoError(t, err)
	assert.False(t, revoked, "different JTI should not be revoked")
}

func TestRevokeTokenIdempotent(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	require.NoError(t, RevokeToken(ctx, database, "test-jti-1", time.Now().Add(time.Hour)))
	require.NoError(t, RevokeToken(ctx, database, "test-jti-1", time.Now().Add(time.Hour)))
}
