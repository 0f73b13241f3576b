package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appErrors "github.com/noah-isme/civic-desk-api/pkg/errors"
)

func TestCacheRepositoryWithoutRedis(t *testing.T) {
	repo := NewCacheRepository(nil)
	ctx := context.Background()

	var dest []string
	assert.ErrorIs(t, repo.Get(ctx, "categories", &dest), appErrors.ErrCacheMiss)
	require.NoError(t, repo.Set(ctx, "categories", []string{"water"}, time.Minute))
	require.NoError(t, repo.Delete(ctx, "categories"))

	require.NoError(t, repo.RevokeToken(ctx, "jti-1", time.Minute))
	revoked, err := repo.IsTokenRevoked(ctx, "jti-1")
	require.NoError(t, err)
	assert.False(t, revoked)
}
