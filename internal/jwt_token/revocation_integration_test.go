//go:build integration

package jwttoken

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"confpaper/pkg/testutil/containers"
)

func TestRedisRevocationListAgainstRedis(t *testing.T) {
	rc := containers.NewRedisContainer(t)
	list := NewRedisRevocationList(rc.Client)
	ctx := context.Background()

	revoked, err := list.IsTokenRevoked(ctx, "jti-1")
	require.NoError(t, err)
	assert.False(t, revoked)

	require.NoError(t, list.RevokeToken(ctx, "jti-1", time.Minute))
	revoked, err = list.IsTokenRevoked(ctx, "jti-1")
	require.NoError(t, err)
	assert.True(t, revoked)

	ttl, err := rc.Client.TTL(ctx, "trl:jti:jti-1").Result()
	require.NoError(t, err)
	assert.Positive(t, ttl)
}
